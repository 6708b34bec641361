package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/quota"
	"github.com/deeptattoo/deeptattoo-api/internal/store"
	"github.com/google/uuid"
)

// Profile is a user together with today's remaining design creations.
type Profile struct {
	User *domain.User
	// RemainingCreations is quota.Unlimited for pro users.
	RemainingCreations int
}

// UpdateProfileInput holds the profile fields a user may change. Nil
// fields are left untouched.
type UpdateProfileInput struct {
	Username       *string
	ProfilePicture *string
}

// UserService provides user-related operations
type UserService interface {
	// Register creates a free-tier user with the given credentials.
	Register(ctx context.Context, email, username, password string) (*domain.User, error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// GetProfile retrieves the user and their remaining creations for today.
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)

	// UpdateProfile changes the username and/or profile picture.
	// Following the pattern of getting the full user first, then updating the
	// specific fields, inside one transaction.
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	admitter  quota.Admitter
	db        *sql.DB
	logger    *slog.Logger
	now       func() time.Time
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(userStore store.UserStore, admitter quota.Admitter, db *sql.DB, logger *slog.Logger) *UserServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		userStore: userStore,
		admitter:  admitter,
		db:        db,
		logger:    logger.With("component", "user_service"),
		now:       time.Now,
	}
}

// Register implements UserService.
// Uses a transaction to ensure atomicity of the operation
func (s *UserServiceImpl) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	user, err := domain.NewUser(email, username, password)
	if err != nil {
		s.logger.Debug("rejected registration",
			"error", err,
			"email", email)
		return nil, domain.NewValidationError("user", err.Error(), err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			s.logger.Debug("attempted to register with an existing email or username",
				"email", email,
				"username", username)
		} else {
			s.logger.Error("failed to save user to database",
				"error", err,
				"email", email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		"user_id", user.ID,
		"email", user.Email)

	return user, nil
}

// GetUser implements UserService.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			s.logger.Error("failed to retrieve user",
				"error", err,
				"user_id", userID)
		}
		return nil, NewServiceError("get_user", "failed to retrieve user", err)
	}
	return user, nil
}

// GetProfile implements UserService.
func (s *UserServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	remaining, err := s.admitter.Remaining(ctx, user, domain.DesignCreationEndpoint, domain.UsageDay(s.now()))
	if err != nil {
		return nil, NewServiceError("get_profile", "failed to read usage", err)
	}

	return &Profile{User: user, RemainingCreations: remaining}, nil
}

// UpdateProfile implements UserService.
func (s *UserServiceImpl) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	input UpdateProfileInput,
) (*domain.User, error) {
	var updated *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if input.Username != nil {
			user.Username = strings.TrimSpace(*input.Username)
		}
		if input.ProfilePicture != nil {
			user.ProfilePicture = strings.TrimSpace(*input.ProfilePicture)
		}
		user.UpdatedAt = s.now().UTC()

		if err := user.Validate(); err != nil {
			return domain.NewValidationError("user", err.Error(), err)
		}
		if err := txStore.Update(ctx, user); err != nil {
			return err
		}

		updated = user
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			s.logger.Debug("attempted to update to an existing username",
				"user_id", userID)
		}
		return nil, NewServiceError("update_profile", "failed to update profile", err)
	}

	s.logger.Info("user profile updated",
		"user_id", userID)
	return updated, nil
}
