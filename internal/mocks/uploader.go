package mocks

import (
	"context"
	"sync"
)

// MockUploader implements storage.Uploader for testing. Stored objects are
// kept in memory keyed by object key.
type MockUploader struct {
	StoreFn func(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// BaseURL prefixes the reference returned by the default implementation
	BaseURL string

	mu      sync.Mutex
	Objects map[string][]byte
	calls   int
}

// NewMockUploader creates an in-memory uploader returning baseURL+key.
func NewMockUploader(baseURL string) *MockUploader {
	return &MockUploader{
		BaseURL: baseURL,
		Objects: make(map[string][]byte),
	}
}

// Store implements the storage.Uploader interface
func (m *MockUploader) Store(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.StoreFn != nil {
		return m.StoreFn(ctx, key, data, contentType)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Objects == nil {
		m.Objects = make(map[string][]byte)
	}
	m.Objects[key] = append([]byte(nil), data...)
	return m.BaseURL + key, nil
}

// Calls returns how many times Store was called.
func (m *MockUploader) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
