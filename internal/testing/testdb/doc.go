// Package testdb provides isolated SurrealDB namespaces for repository tests.
//
// New connects to the server named by TEST_DB_HOST (plus optional
// TEST_DB_PORT, TEST_DB_USER and TEST_DB_PASSWORD), creates a random
// namespace and applies migrations/*.surql. Tests are skipped when
// TEST_DB_HOST is unset so `go test ./...` works without a database.
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    defer tdb.Close()
//
//	    tdb.MustExec("CREATE mission:seed SET title = 'x'", nil)
//	}
//
// The namespace is dropped at test cleanup even without the deferred Close.
// Migrations are found by walking up from the working directory, or under
// AMBASSADOR_ROOT when set.
package testdb
