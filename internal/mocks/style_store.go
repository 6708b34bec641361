package mocks

import (
	"context"
	"sort"

	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/store"
)

// MockStyleStore implements store.StyleStore over a fixed catalog.
type MockStyleStore struct {
	ListActiveFn func(ctx context.Context) ([]*domain.Style, error)
	GetByIDFn    func(ctx context.Context, id int64) (*domain.Style, error)

	Styles map[int64]*domain.Style
}

var _ store.StyleStore = (*MockStyleStore)(nil)

// NewMockStyleStore returns a store holding styles keyed by ID.
func NewMockStyleStore(styles ...*domain.Style) *MockStyleStore {
	m := &MockStyleStore{Styles: make(map[int64]*domain.Style)}
	for _, s := range styles {
		m.Styles[s.ID] = s
	}
	return m
}

// ListActive implements store.StyleStore
func (m *MockStyleStore) ListActive(ctx context.Context) ([]*domain.Style, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx)
	}

	var out []*domain.Style
	for _, s := range m.Styles {
		if s.IsActive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

// GetByID implements store.StyleStore
func (m *MockStyleStore) GetByID(ctx context.Context, id int64) (*domain.Style, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	s, ok := m.Styles[id]
	if !ok {
		return nil, store.ErrStyleNotFound
	}
	return s, nil
}
