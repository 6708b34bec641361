package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UsageStore persists per-user, per-endpoint, per-day request counters.
type UsageStore interface {
	// GetCount returns the counter value, or zero when no row exists.
	GetCount(ctx context.Context, userID uuid.UUID, endpoint string, day time.Time) (int, error)

	// Increment adds one to the counter, creating it at one if absent, and
	// returns the new value.
	Increment(ctx context.Context, userID uuid.UUID, endpoint string, day time.Time) (int, error)

	// IncrementIfBelow adds one only when the current value is below limit,
	// in a single statement. It returns the resulting value and whether the
	// increment happened.
	IncrementIfBelow(ctx context.Context, userID uuid.UUID, endpoint string, day time.Time, limit int) (int, bool, error)

	// Decrement takes one back from an existing counter, never going below
	// zero. A missing counter is left absent.
	Decrement(ctx context.Context, userID uuid.UUID, endpoint string, day time.Time) error

	// DeleteBefore removes counters for days strictly before cutoff and
	// returns how many were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
