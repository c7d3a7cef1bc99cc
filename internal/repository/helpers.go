package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mfai/ambassador/api/internal/database"
	"github.com/shopspring/decimal"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"go.uber.org/zap"
)

// ErrAlreadyCompleted is returned when a completion guard fires inside a
// transaction, including when a concurrent request won the race.
var ErrAlreadyCompleted = errors.New("already completed")

// completedGuard is the THROW message suffix of completion guards
const completedGuard = "already completed"

// isUniqueConstraintError checks if an error is a unique constraint violation
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "unique") ||
		strings.Contains(errStr, "duplicate") ||
		strings.Contains(errStr, "already contains") ||
		strings.Contains(errStr, "already exists")
}

// completionAttempts bounds how often a completion batch that lost an
// optimistic commit is replayed. The replay re-runs the guard, which then
// sees the winner's write.
const completionAttempts = 3

// isTransactionConflict matches SurrealDB's optimistic commit failure
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "read or write conflict") ||
		strings.Contains(msg, "transaction conflict")
}

// mapCompletionError translates a THROW from a completion guard, or a commit
// conflict that outlived its retries, into ErrAlreadyCompleted.
func mapCompletionError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), completedGuard) || isTransactionConflict(err) {
		return fmt.Errorf("%w: %v", ErrAlreadyCompleted, err)
	}
	return err
}

// executeCompletion runs a guarded completion batch, replaying it while the
// commit loses to a concurrent writer.
func executeCompletion(ctx context.Context, db database.Database, tb *database.TxBuilder) error {
	var err error
	for attempt := 1; attempt <= completionAttempts; attempt++ {
		_, err = database.ExecuteTransaction(ctx, db, tb)
		if !isTransactionConflict(err) || ctx.Err() != nil {
			break
		}
		zap.L().Debug("completion commit conflict, retrying", zap.Int("attempt", attempt))
	}
	return mapCompletionError(err)
}

// datetime wraps t so the driver encodes it as a SurrealDB datetime
func datetime(t time.Time) models.CustomDateTime {
	return models.CustomDateTime{Time: t.UTC()}
}

// convertSurrealID renders a record id as "table:key" whatever shape the
// driver decoded it into.
func convertSurrealID(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case models.RecordID:
		return recordIDString(v.Table, v.ID)
	case *models.RecordID:
		if v != nil {
			return recordIDString(v.Table, v.ID)
		}
	case map[string]interface{}:
		table := firstString(v, "tb", "Table")
		key := ""
		if raw, ok := firstValue(v, "id", "ID"); ok {
			key = keyString(raw)
		}
		if table == "" {
			return key
		}
		if key != "" {
			return table + ":" + key
		}
	}
	return fmt.Sprint(id)
}

// recordIDs parses "table:key" strings into driver record ids so queries
// compare record values rather than their rendered form. Malformed ids are
// skipped.
func recordIDs(ids []string) []models.RecordID {
	out := make([]models.RecordID, 0, len(ids))
	for _, id := range ids {
		rid, err := models.ParseRecordID(id)
		if err != nil {
			continue
		}
		out = append(out, *rid)
	}
	return out
}

func recordIDString(table string, key interface{}) string {
	return table + ":" + keyString(key)
}

// keyString unwraps the {"String": "abc"} form some driver versions emit
func keyString(key interface{}) string {
	switch v := key.(type) {
	case string:
		return v
	case map[string]interface{}:
		if s, ok := v["String"].(string); ok {
			return s
		}
	}
	return fmt.Sprint(key)
}

func firstValue(m map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			return s
		}
	}
	return ""
}

// firstRecord unwraps a QueryOne result into a record map
func firstRecord(result interface{}) (map[string]interface{}, error) {
	if resp, ok := result.(map[string]interface{}); ok && resp["status"] == "OK" {
		result = resp["result"]
	}
	if rows, ok := result.([]interface{}); ok {
		if len(rows) == 0 {
			return nil, database.ErrNotFound
		}
		result = rows[0]
	}

	switch data := result.(type) {
	case nil:
		return nil, database.ErrNotFound
	case map[string]interface{}:
		return data, nil
	default:
		return nil, fmt.Errorf("unexpected record type %T", result)
	}
}

// statementRecords returns the records produced by statement idx of a Query
// result. A single-object result counts as one record.
func statementRecords(results []interface{}, idx int) []map[string]interface{} {
	if idx >= len(results) {
		return nil
	}

	resp, _ := results[idx].(map[string]interface{})
	switch v := resp["result"].(type) {
	case map[string]interface{}:
		return []map[string]interface{}{v}
	case []interface{}:
		return objects(v)
	}
	return []map[string]interface{}{}
}

// objects keeps the map elements of rows
func objects(rows []interface{}) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

func getString(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// getStringPtr returns nil for a missing or empty value
func getStringPtr(m map[string]interface{}, key string) *string {
	if s := getString(m, key); s != "" {
		return &s
	}
	return nil
}

// number widens any numeric type the CBOR decoder may produce
func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func getInt(m map[string]interface{}, key string) int {
	n, _ := number(m[key])
	return int(n)
}

// getDecimal reads a token amount. Integers and strings convert exactly;
// floats go through decimal's shortest representation.
func getDecimal(m map[string]interface{}, key string) decimal.Decimal {
	switch v := m[key].(type) {
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case uint64:
		return decimal.NewFromUint64(v)
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
		return decimal.Zero
	}
	if f, ok := number(m[key]); ok {
		return decimal.NewFromFloat(f)
	}
	return decimal.Zero
}

func getBool(m map[string]interface{}, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// getTime returns nil for a missing or unparseable time
func getTime(m map[string]interface{}, key string) *time.Time {
	if t := parseTime(m[key]); !t.IsZero() {
		return &t
	}
	return nil
}

// getTimeValue is getTime for required fields
func getTimeValue(m map[string]interface{}, key string) time.Time {
	return parseTime(m[key])
}

// parseTime accepts the datetime shapes the driver returns, plus RFC 3339
// strings
func parseTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t != nil {
			return t.Time
		}
	case string:
		parsed, _ := time.Parse(time.RFC3339Nano, t)
		return parsed
	}
	return time.Time{}
}

// getStringSlice reads a list of strings or record links. It never returns
// nil so empty lists encode as [].
func getStringSlice(m map[string]interface{}, key string) []string {
	items, _ := m[key].([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, convertSurrealID(item))
		}
	}
	return out
}

func getMapSlice(m map[string]interface{}, key string) []map[string]interface{} {
	items, _ := m[key].([]interface{})
	return objects(items)
}

// getMap returns an empty map for a missing object
func getMap(m map[string]interface{}, key string) map[string]interface{} {
	if v, ok := m[key].(map[string]interface{}); ok {
		return v
	}
	return map[string]interface{}{}
}

// ptrToNone maps a nil pointer to NONE in SurrealQL
func ptrToNone(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
