package api

import (
	"context"

	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/service"
	"github.com/google/uuid"
)

type mockUserService struct {
	RegisterFn      func(ctx context.Context, email, username, password string) (*domain.User, error)
	GetUserFn       func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetProfileFn    func(ctx context.Context, userID uuid.UUID) (*service.Profile, error)
	UpdateProfileFn func(ctx context.Context, userID uuid.UUID, input service.UpdateProfileInput) (*domain.User, error)
}

var _ service.UserService = (*mockUserService)(nil)

func (m *mockUserService) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	return m.RegisterFn(ctx, email, username, password)
}

func (m *mockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.GetUserFn == nil {
		return &domain.User{ID: userID, Email: "ink@example.com", Username: "ink_lover"}, nil
	}
	return m.GetUserFn(ctx, userID)
}

func (m *mockUserService) GetProfile(ctx context.Context, userID uuid.UUID) (*service.Profile, error) {
	return m.GetProfileFn(ctx, userID)
}

func (m *mockUserService) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	input service.UpdateProfileInput,
) (*domain.User, error) {
	return m.UpdateProfileFn(ctx, userID, input)
}

type mockSubscriptionService struct {
	VerifyPurchaseFn func(ctx context.Context, userID uuid.UUID, plan domain.SubscriptionPlan, token string) (*domain.User, error)
}

func (m *mockSubscriptionService) VerifyPurchase(
	ctx context.Context,
	userID uuid.UUID,
	plan domain.SubscriptionPlan,
	token string,
) (*domain.User, error) {
	return m.VerifyPurchaseFn(ctx, userID, plan, token)
}

type mockStyleService struct {
	ListActiveStylesFn func(ctx context.Context) ([]*domain.Style, error)
}

func (m *mockStyleService) ListActiveStyles(ctx context.Context) ([]*domain.Style, error) {
	return m.ListActiveStylesFn(ctx)
}

type mockDesignService struct {
	CreateDesignFn     func(ctx context.Context, user *domain.User, input service.CreateDesignInput) (*domain.Design, error)
	ListDesignsFn      func(ctx context.Context, userID uuid.UUID, page service.Page) ([]*domain.Design, error)
	GetDesignFn        func(ctx context.Context, userID, designID uuid.UUID) (*domain.Design, error)
	SetPublicFn        func(ctx context.Context, userID, designID uuid.UUID, public bool) (*domain.Design, error)
	DeleteDesignFn     func(ctx context.Context, userID, designID uuid.UUID) error
	FavoriteDesignFn   func(ctx context.Context, userID, designID uuid.UUID) error
	UnfavoriteDesignFn func(ctx context.Context, userID, designID uuid.UUID) error
	ListFavoritesFn    func(ctx context.Context, userID uuid.UUID, page service.Page) ([]*domain.Design, error)
	GalleryFn          func(ctx context.Context, query service.GalleryQuery) ([]*domain.Design, error)
}

var _ service.DesignService = (*mockDesignService)(nil)

func (m *mockDesignService) CreateDesign(
	ctx context.Context,
	user *domain.User,
	input service.CreateDesignInput,
) (*domain.Design, error) {
	return m.CreateDesignFn(ctx, user, input)
}

func (m *mockDesignService) ListDesigns(ctx context.Context, userID uuid.UUID, page service.Page) ([]*domain.Design, error) {
	return m.ListDesignsFn(ctx, userID, page)
}

func (m *mockDesignService) GetDesign(ctx context.Context, userID, designID uuid.UUID) (*domain.Design, error) {
	return m.GetDesignFn(ctx, userID, designID)
}

func (m *mockDesignService) SetPublic(ctx context.Context, userID, designID uuid.UUID, public bool) (*domain.Design, error) {
	return m.SetPublicFn(ctx, userID, designID, public)
}

func (m *mockDesignService) DeleteDesign(ctx context.Context, userID, designID uuid.UUID) error {
	return m.DeleteDesignFn(ctx, userID, designID)
}

func (m *mockDesignService) FavoriteDesign(ctx context.Context, userID, designID uuid.UUID) error {
	return m.FavoriteDesignFn(ctx, userID, designID)
}

func (m *mockDesignService) UnfavoriteDesign(ctx context.Context, userID, designID uuid.UUID) error {
	return m.UnfavoriteDesignFn(ctx, userID, designID)
}

func (m *mockDesignService) ListFavorites(ctx context.Context, userID uuid.UUID, page service.Page) ([]*domain.Design, error) {
	return m.ListFavoritesFn(ctx, userID, page)
}

func (m *mockDesignService) Gallery(ctx context.Context, query service.GalleryQuery) ([]*domain.Design, error) {
	return m.GalleryFn(ctx, query)
}
