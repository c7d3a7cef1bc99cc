package database

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mfai/ambassador/api/internal/metrics"
	"github.com/surrealdb/surrealdb.go"
	"go.uber.org/zap"
)

const (
	connectBackoffStart = 250 * time.Millisecond
	connectBackoffMax   = 2 * time.Second
)

// SurrealDB implements Database over the surrealdb.go websocket client
type SurrealDB struct {
	db     *surrealdb.DB
	config Config
	log    *zap.Logger
}

// NewSurrealDB creates an unconnected client. Call Connect before use.
func NewSurrealDB(cfg Config) *SurrealDB {
	return &SurrealDB{
		config: cfg,
		log:    zap.L().Named("surrealdb"),
	}
}

func (s *SurrealDB) endpoint() string {
	return fmt.Sprintf("ws://%s:%s", s.config.Host, s.config.Port)
}

// Connect dials, signs in and selects the namespace, retrying with backoff
// until it succeeds or ctx is done. The last attempt's error is returned.
func (s *SurrealDB) Connect(ctx context.Context) error {
	backoff := connectBackoffStart
	for attempt := 1; ; attempt++ {
		metrics.DBConnectAttemptsTotal.Inc()

		db, err := s.dial(ctx)
		if err == nil {
			s.db = db
			return nil
		}

		s.log.Warn("connect attempt failed",
			zap.String("endpoint", s.endpoint()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, connectBackoffMax)
	}
}

func (s *SurrealDB) dial(ctx context.Context) (*surrealdb.DB, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, s.endpoint())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	if _, err := db.SignIn(ctx, &surrealdb.Auth{
		Username: s.config.User,
		Password: s.config.Password,
	}); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("%w: signin failed: %v", ErrConnection, err)
	}

	if err := db.Use(ctx, s.config.Namespace, s.config.Database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("%w: use %s/%s failed: %v", ErrConnection, s.config.Namespace, s.config.Database, err)
	}

	return db, nil
}

// Close closes the connection if one is open
func (s *SurrealDB) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close(context.Background())
}

// Ping asks the server for its version
func (s *SurrealDB) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrConnection
	}
	if _, err := s.db.Version(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// Query runs query and returns one {status, result} map per statement.
// If any statement failed, the distinct failure messages are joined into a
// single ErrQuery so the THROW that aborted a transaction stays visible.
func (s *SurrealDB) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	if s.db == nil {
		return nil, ErrConnection
	}

	start := time.Now()
	results, err := surrealdb.Query[interface{}](ctx, s.db, query, vars)
	s.observe(query, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	if results == nil {
		return nil, nil
	}

	var failures []string
	output := make([]interface{}, 0, len(*results))
	for _, r := range *results {
		if r.Status == "OK" {
			output = append(output, map[string]interface{}{
				"status": r.Status,
				"result": r.Result,
			})
			continue
		}

		msg := "statement failed"
		if r.Error != nil {
			msg = r.Error.Message
		}
		if !slices.Contains(failures, msg) {
			failures = append(failures, msg)
		}
	}
	if len(failures) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrQuery, strings.Join(failures, "; "))
	}
	return output, nil
}

func (s *SurrealDB) observe(query string, elapsed time.Duration, err error) {
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.DBQueryDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())

	if s.config.SlowQuery > 0 && elapsed > s.config.SlowQuery {
		s.log.Warn("slow query",
			zap.Duration("elapsed", elapsed),
			zap.String("query", summarizeQuery(query)),
		)
	}
}

// summarizeQuery collapses whitespace and truncates long statements for logs
func summarizeQuery(query string) string {
	const maxLen = 120
	q := strings.Join(strings.Fields(query), " ")
	if len(q) > maxLen {
		return q[:maxLen] + "..."
	}
	return q
}

// QueryOne returns the first record of the first statement. Scalar results
// are returned as-is.
func (s *SurrealDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	results, err := s.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return firstRow(results[0])
}

func firstRow(statement interface{}) (interface{}, error) {
	resp, ok := statement.(map[string]interface{})
	if !ok {
		return statement, nil
	}

	rows, ok := resp["result"].([]interface{})
	if !ok {
		return resp["result"], nil
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Execute runs a statement and discards its results
func (s *SurrealDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	_, err := s.Query(ctx, query, vars)
	return err
}
