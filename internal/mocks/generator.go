package mocks

import (
	"context"
	"sync"

	"github.com/deeptattoo/deeptattoo-api/internal/generation"
)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, prompt string) (*generation.Image, error)

	// ModelName is returned by Model and stamped on default images
	ModelName string

	// Default response values
	Image *generation.Image
	Err   error

	mu      sync.Mutex
	prompts []string
}

// Generate implements the generation.Generator interface
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (*generation.Image, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, prompt)
	}
	return m.Image, m.Err
}

// Model implements the generation.Generator interface
func (m *MockGenerator) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// Calls returns how many times Generate was called.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns every prompt passed to Generate.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// NewMockGeneratorWithImage creates a MockGenerator that returns data as a PNG
func NewMockGeneratorWithImage(data []byte) *MockGenerator {
	return &MockGenerator{
		ModelName: "mock-model",
		Image: &generation.Image{
			Data:        data,
			ContentType: "image/png",
			Model:       "mock-model",
		},
	}
}

// MockGeneratorThatFails creates a MockGenerator that simulates a generation failure
func MockGeneratorThatFails() *MockGenerator {
	return &MockGenerator{
		Err: generation.ErrGenerationFailed,
	}
}
