package mocks

import (
	"sync"

	"github.com/deeptattoo/deeptattoo-api/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

// MockPasswordVerifier implements auth.PasswordVerifier. Unless CompareFn is
// set, the outcome is ShouldSucceed; a failure returns the same error as a
// real bcrypt mismatch.
type MockPasswordVerifier struct {
	ShouldSucceed bool
	CompareFn     func(hashedPassword, password string) error

	mu sync.Mutex
	// CompareCalledWith holds the arguments of the last Compare call.
	CompareCalledWith struct {
		HashedPassword string
		Password       string
	}
	CompareCallCount int
}

var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)

func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.mu.Lock()
	m.CompareCalledWith.HashedPassword = hashedPassword
	m.CompareCalledWith.Password = password
	m.CompareCallCount++
	m.mu.Unlock()

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if m.ShouldSucceed {
		return nil
	}
	return bcrypt.ErrMismatchedHashAndPassword
}
