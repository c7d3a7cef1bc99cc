// Package database provides SurrealDB connectivity for the ambassador API.
//
// The Database interface abstracts the three query shapes the repositories use:
//   - Query: returns the per-statement results of a query
//   - QueryOne: returns the first record of the first statement
//   - Execute: runs a mutation and only reports errors
//
//	db := database.NewSurrealDB(database.Config{
//	    Host: "localhost", Port: "8000",
//	    Namespace: "ambassador", Database: "main",
//	    User: "root", Password: "root",
//	})
//	// Connect retries with backoff until ctx is done
//	if err := db.Connect(ctx); err != nil {
//	    return err
//	}
//	defer db.Close()
//
// # Transactions
//
// Transactions are BATCH-BASED. TxBuilder accumulates statements and
// ExecuteTransaction sends them wrapped in BEGIN/COMMIT TRANSACTION as one
// request, so they succeed or fail together. TxBuilder.Guard adds a check
// that THROWs to abort the whole batch; the thrown message is surfaced in
// the returned ErrQuery.
//
// # Observability
//
// Every round trip is observed in surrealdb_query_duration_seconds.
// Statements slower than Config.SlowQuery are logged through zap.
//
// # Error Types
//
//   - ErrNotFound: record does not exist
//   - ErrDuplicate: unique index violation
//   - ErrConnection: database connection failed
//   - ErrQuery: statement failed, including aborted transactions
package database
