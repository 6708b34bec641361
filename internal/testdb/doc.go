//go:build integration

// Package testdb provides database helpers for integration tests.
//
// Each test runs in its own transaction that is rolled back when the test
// completes, so tests can run in parallel against one database without
// cleanup:
//
//	func TestDesignStore(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        designs := postgres.NewPostgresDesignStore(tx, nil)
//	        // ...
//	    })
//	}
//
// The connection string comes from DATABASE_URL or DEEPTATTOO_DATABASE_URL.
// Tests are skipped when neither is set. The embedded migrations are applied
// once per test binary.
package testdb
