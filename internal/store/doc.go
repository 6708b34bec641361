// Package store defines the persistence interfaces for users, styles,
// designs, favorites, usage counters and task records, along with the
// error values every implementation returns. Implementations live in
// internal/platform/postgres.
package store
