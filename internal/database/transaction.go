package database

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// paramPattern matches a SurrealQL parameter reference such as $points
var paramPattern = regexp.MustCompile(`\$[A-Za-z_][A-Za-z0-9_]*`)

// TxBuilder accumulates statements that must commit together. Each statement
// gets its own parameter namespace, so two statements may both bind $id:
//
//	tb := NewTxBuilder()
//	tb.Guard("(SELECT VALUE active FROM ONLY type::record($id)) = false",
//	    "ambassador disabled", map[string]interface{}{"id": ambassadorID})
//	tb.Add("UPDATE type::record($id) SET points += $points", vars)
//	_, err := ExecuteTransaction(ctx, db, tb)
//
// Nothing reaches the database before ExecuteTransaction. Read-then-write
// checks therefore belong inside the batch as a Guard.
type TxBuilder struct {
	statements []string
	vars       map[string]interface{}
}

// NewTxBuilder creates an empty transaction builder
func NewTxBuilder() *TxBuilder {
	return &TxBuilder{vars: make(map[string]interface{})}
}

// Add appends a statement. Parameters present in vars are renamed to
// $s<n>_<name>; any other parameter ($this, $before, ...) is left alone.
// The returned map gives the renamed form of each key in vars.
func (tb *TxBuilder) Add(query string, vars map[string]interface{}) map[string]string {
	prefix := fmt.Sprintf("s%d_", len(tb.statements)+1)

	renamed := make(map[string]string, len(vars))
	for name, value := range vars {
		renamed[name] = prefix + name
		tb.vars[prefix+name] = value
	}

	stmt := paramPattern.ReplaceAllStringFunc(query, func(ref string) string {
		if name, ok := renamed[ref[1:]]; ok {
			return "$" + name
		}
		return ref
	})

	tb.statements = append(tb.statements, strings.TrimSuffix(strings.TrimSpace(stmt), ";"))
	return renamed
}

// Guard appends a check that aborts the whole transaction with message
// when cond evaluates to true. The message surfaces in the ErrQuery text.
func (tb *TxBuilder) Guard(cond, message string, vars map[string]interface{}) {
	tb.Add(fmt.Sprintf("IF %s { THROW %q }", cond, message), vars)
}

// Len returns the number of statements added so far
func (tb *TxBuilder) Len() int {
	return len(tb.statements)
}

// Build returns the BEGIN/COMMIT wrapped query and its merged parameters
func (tb *TxBuilder) Build() (string, map[string]interface{}) {
	if len(tb.statements) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, stmt := range tb.statements {
		sb.WriteString(stmt)
		sb.WriteString(";\n")
	}
	sb.WriteString("COMMIT TRANSACTION;")

	return sb.String(), tb.vars
}

// ExecuteTransaction sends the builder's statements as one request.
// An empty builder is a no-op.
func ExecuteTransaction(ctx context.Context, db Database, tb *TxBuilder) ([]interface{}, error) {
	query, vars := tb.Build()
	if query == "" {
		return nil, nil
	}
	return db.Query(ctx, query, vars)
}
