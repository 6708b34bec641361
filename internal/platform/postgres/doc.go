// Package postgres implements the store interfaces and task.TaskStore on
// PostgreSQL through database/sql and the pgx stdlib driver.
//
// Every store accepts a store.DBTX, so the same code runs against a *sql.DB
// or inside a transaction (see the WithTx methods). Driver errors are mapped
// to store sentinels with MapError. The schema lives in migrations/ and is
// embedded in the binary; Migrate applies it with goose.
package postgres
