package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deeptattoo/deeptattoo-api/internal/store"
	"github.com/google/uuid"
)

// MockUsageStore implements store.UsageStore with in-memory counters.
type MockUsageStore struct {
	GetCountFn  func(ctx context.Context, userID uuid.UUID, endpoint string, day time.Time) (int, error)
	IncrementFn func(ctx context.Context, userID uuid.UUID, endpoint string, day time.Time) (int, error)
	DecrementFn func(ctx context.Context, userID uuid.UUID, endpoint string, day time.Time) error

	mu             sync.Mutex
	counts         map[string]int
	days           map[string]time.Time
	GetCountCalls  int
	IncrementCalls int
	DecrementCalls int
}

var _ store.UsageStore = (*MockUsageStore)(nil)

// NewMockUsageStore creates an empty usage store.
func NewMockUsageStore() *MockUsageStore {
	return &MockUsageStore{
		counts: make(map[string]int),
		days:   make(map[string]time.Time),
	}
}

func usageKey(userID uuid.UUID, endpoint string, day time.Time) string {
	return fmt.Sprintf("%s|%s|%s", userID, endpoint, day.Format("2006-01-02"))
}

// Set seeds a counter value.
func (m *MockUsageStore) Set(userID uuid.UUID, endpoint string, day time.Time, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := usageKey(userID, endpoint, day)
	m.counts[k] = count
	m.days[k] = day
}

// Count returns the current counter value without recording a call.
func (m *MockUsageStore) Count(userID uuid.UUID, endpoint string, day time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[usageKey(userID, endpoint, day)]
}

// GetCount implements store.UsageStore
func (m *MockUsageStore) GetCount(ctx context.Context, userID uuid.UUID, endpoint string, day time.Time) (int, error) {
	m.mu.Lock()
	m.GetCountCalls++
	m.mu.Unlock()

	if m.GetCountFn != nil {
		return m.GetCountFn(ctx, userID, endpoint, day)
	}
	return m.Count(userID, endpoint, day), nil
}

// Increment implements store.UsageStore
func (m *MockUsageStore) Increment(ctx context.Context, userID uuid.UUID, endpoint string, day time.Time) (int, error) {
	m.mu.Lock()
	m.IncrementCalls++
	m.mu.Unlock()

	if m.IncrementFn != nil {
		return m.IncrementFn(ctx, userID, endpoint, day)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	k := usageKey(userID, endpoint, day)
	m.counts[k]++
	m.days[k] = day
	return m.counts[k], nil
}

// IncrementIfBelow implements store.UsageStore atomically under the mock's lock.
func (m *MockUsageStore) IncrementIfBelow(
	ctx context.Context,
	userID uuid.UUID,
	endpoint string,
	day time.Time,
	limit int,
) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IncrementCalls++

	k := usageKey(userID, endpoint, day)
	if m.counts[k] >= limit {
		return m.counts[k], false, nil
	}
	m.counts[k]++
	m.days[k] = day
	return m.counts[k], true, nil
}

// Decrement implements store.UsageStore
func (m *MockUsageStore) Decrement(ctx context.Context, userID uuid.UUID, endpoint string, day time.Time) error {
	m.mu.Lock()
	m.DecrementCalls++
	m.mu.Unlock()

	if m.DecrementFn != nil {
		return m.DecrementFn(ctx, userID, endpoint, day)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if k := usageKey(userID, endpoint, day); m.counts[k] > 0 {
		m.counts[k]--
	}
	return nil
}

// DeleteBefore implements store.UsageStore
func (m *MockUsageStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for k, day := range m.days {
		if day.Before(cutoff) {
			delete(m.days, k)
			delete(m.counts, k)
			removed++
		}
	}
	return removed, nil
}
