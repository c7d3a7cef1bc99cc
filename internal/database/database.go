package database

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors. Wrapped errors keep the driver message after the sentinel
// text, so callers match with errors.Is and log err.Error().
var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrConnection = errors.New("database connection error")
	// ErrQuery covers statement failures, including a THROW that aborted a
	// transaction.
	ErrQuery = errors.New("query error")
)

// Database is the query surface the repositories depend on
type Database interface {
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query returns one {status, result} entry per statement
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)

	// QueryOne returns the first record of the first statement, or
	// ErrNotFound when that statement produced no rows
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)

	// Execute runs a mutation and discards its results
	Execute(ctx context.Context, query string, vars map[string]interface{}) error
}

// Config holds SurrealDB connection settings
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string

	// SlowQuery logs statements slower than this at warn level. Zero disables it.
	SlowQuery time.Duration
}
