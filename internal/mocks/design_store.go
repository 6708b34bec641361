package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/store"
	"github.com/google/uuid"
)

// MockDesignStore implements store.DesignStore with an in-memory map.
// Function fields override the default behavior.
type MockDesignStore struct {
	CreateFn    func(ctx context.Context, design *domain.Design) error
	GetByIDFn   func(ctx context.Context, id uuid.UUID) (*domain.Design, error)
	ListFn      func(ctx context.Context, filter store.DesignFilter) ([]*domain.Design, error)
	FinalizeFn  func(ctx context.Context, design *domain.Design) error
	SetPublicFn func(ctx context.Context, id uuid.UUID, public bool) error
	DeleteFn    func(ctx context.Context, id uuid.UUID) error

	mu            sync.Mutex
	Designs       map[uuid.UUID]*domain.Design
	Favorites     map[uuid.UUID]map[uuid.UUID]bool // user -> design
	FinalizeCalls int
}

var _ store.DesignStore = (*MockDesignStore)(nil)

// NewMockDesignStore creates an empty store.
func NewMockDesignStore() *MockDesignStore {
	return &MockDesignStore{
		Designs:   make(map[uuid.UUID]*domain.Design),
		Favorites: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

// Put stores a copy of design.
func (m *MockDesignStore) Put(design *domain.Design) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *design
	m.Designs[design.ID] = &cp
}

// Create implements store.DesignStore
func (m *MockDesignStore) Create(ctx context.Context, design *domain.Design) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, design)
	}
	if err := design.Validate(); err != nil {
		return err
	}
	m.Put(design)
	return nil
}

// GetByID implements store.DesignStore. It returns a copy so callers cannot
// mutate stored state without Finalize.
func (m *MockDesignStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Design, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.Designs[id]
	if !ok {
		return nil, store.ErrDesignNotFound
	}
	cp := *d
	return &cp, nil
}

// List implements store.DesignStore
func (m *MockDesignStore) List(ctx context.Context, filter store.DesignFilter) ([]*domain.Design, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Design
	for _, d := range m.Designs {
		if filter.OwnerID != uuid.Nil && d.UserID != filter.OwnerID {
			continue
		}
		if filter.FavoritedBy != uuid.Nil && !m.Favorites[filter.FavoritedBy][d.ID] {
			continue
		}
		if filter.PublicCompletedOnly && !(d.IsPublic && d.Status == domain.DesignStatusCompleted) {
			continue
		}
		if filter.StyleName != "" && d.StyleName != filter.StyleName {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(d.Prompt), strings.ToLower(filter.Search)) {
			continue
		}
		cp := *d
		if filter.Viewer != uuid.Nil {
			cp.IsFavorite = m.Favorites[filter.Viewer][d.ID]
		}
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Finalize implements store.DesignStore, refusing a second terminal write.
func (m *MockDesignStore) Finalize(ctx context.Context, design *domain.Design) error {
	m.mu.Lock()
	m.FinalizeCalls++
	m.mu.Unlock()

	if m.FinalizeFn != nil {
		return m.FinalizeFn(ctx, design)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.Designs[design.ID]
	if !ok {
		return store.ErrDesignNotFound
	}
	if current.Status != domain.DesignStatusProcessing {
		return store.ErrDesignAlreadyFinal
	}
	cp := *design
	m.Designs[design.ID] = &cp
	return nil
}

// SetPublic implements store.DesignStore
func (m *MockDesignStore) SetPublic(ctx context.Context, id uuid.UUID, public bool) error {
	if m.SetPublicFn != nil {
		return m.SetPublicFn(ctx, id, public)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.Designs[id]
	if !ok {
		return store.ErrDesignNotFound
	}
	d.IsPublic = public
	return nil
}

// Delete implements store.DesignStore
func (m *MockDesignStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Designs[id]; !ok {
		return store.ErrDesignNotFound
	}
	delete(m.Designs, id)
	for _, favs := range m.Favorites {
		delete(favs, id)
	}
	return nil
}

// WithTx implements store.DesignStore; the mock ignores transactions.
func (m *MockDesignStore) WithTx(tx *sql.Tx) store.DesignStore {
	return m
}

// MockFavoriteStore implements store.FavoriteStore on top of a MockDesignStore
// so listings see favorites.
type MockFavoriteStore struct {
	AddFn    func(ctx context.Context, userID, designID uuid.UUID) error
	RemoveFn func(ctx context.Context, userID, designID uuid.UUID) error

	Designs *MockDesignStore
}

var _ store.FavoriteStore = (*MockFavoriteStore)(nil)

// Add implements store.FavoriteStore
func (m *MockFavoriteStore) Add(ctx context.Context, userID, designID uuid.UUID) error {
	if m.AddFn != nil {
		return m.AddFn(ctx, userID, designID)
	}

	d := m.Designs
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.Designs[designID]; !ok {
		return store.ErrDesignNotFound
	}
	if d.Favorites[userID] == nil {
		d.Favorites[userID] = make(map[uuid.UUID]bool)
	}
	d.Favorites[userID][designID] = true
	return nil
}

// Remove implements store.FavoriteStore
func (m *MockFavoriteStore) Remove(ctx context.Context, userID, designID uuid.UUID) error {
	if m.RemoveFn != nil {
		return m.RemoveFn(ctx, userID, designID)
	}

	d := m.Designs
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.Favorites[userID], designID)
	return nil
}
