package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/mocks"
	"github.com/deeptattoo/deeptattoo-api/internal/quota"
	"github.com/deeptattoo/deeptattoo-api/internal/service"
	"github.com/deeptattoo/deeptattoo-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const validPassword = "correct-horse-battery"

func newUserService(t *testing.T, users store.UserStore, usage *mocks.MockUsageStore) (*service.UserServiceImpl, sqlmock.Sqlmock) {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return service.NewUserService(users, quota.NewGate(usage, 5, testLogger()), db, testLogger()), sqlMock
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		email     string
		username  string
		password  string
		existing  *domain.User
		wantErrIs []error
	}{
		{
			name:     "success",
			email:    "ink@example.com",
			username: "ink_lover",
			password: validPassword,
		},
		{
			name:      "short password",
			email:     "ink@example.com",
			username:  "ink_lover",
			password:  "short",
			wantErrIs: []error{domain.ErrValidation, domain.ErrPasswordTooShort},
		},
		{
			name:      "bad email",
			email:     "not-an-email",
			username:  "ink_lover",
			password:  validPassword,
			wantErrIs: []error{domain.ErrValidation, domain.ErrInvalidEmail},
		},
		{
			name:      "bad username",
			email:     "ink@example.com",
			username:  "no spaces allowed",
			password:  validPassword,
			wantErrIs: []error{domain.ErrValidation, domain.ErrInvalidUsername},
		},
		{
			name:      "duplicate email",
			email:     "ink@example.com",
			username:  "ink_lover",
			password:  validPassword,
			existing:  &domain.User{ID: uuid.New(), Email: "ink@example.com", Username: "someone"},
			wantErrIs: []error{store.ErrEmailExists, store.ErrDuplicate},
		},
		{
			name:      "duplicate username",
			email:     "ink@example.com",
			username:  "ink_lover",
			password:  validPassword,
			existing:  &domain.User{ID: uuid.New(), Email: "other@example.com", Username: "ink_lover"},
			wantErrIs: []error{store.ErrUsernameExists},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			users := mocks.NewMockUserStore()
			if tt.existing != nil {
				users.Users[tt.existing.Email] = tt.existing
			}
			svc, sqlMock := newUserService(t, users, mocks.NewMockUsageStore())

			validInput := tt.wantErrIs == nil || tt.existing != nil
			if validInput {
				sqlMock.ExpectBegin()
				if tt.wantErrIs == nil {
					sqlMock.ExpectCommit()
				} else {
					sqlMock.ExpectRollback()
				}
			}

			user, err := svc.Register(context.Background(), tt.email, tt.username, tt.password)
			require.NoError(t, sqlMock.ExpectationsWereMet())

			if tt.wantErrIs != nil {
				require.Error(t, err)
				for _, want := range tt.wantErrIs {
					assert.ErrorIs(t, err, want)
				}
				assert.Nil(t, user)
				return
			}

			require.NoError(t, err)
			assert.False(t, user.IsPro)
			assert.Equal(t, user.ID, users.LastUserID)
		})
	}
}

func TestUserService_GetUser(t *testing.T) {
	t.Parallel()

	users := mocks.NewMockUserStore()
	existing := &domain.User{ID: uuid.New(), Email: "ink@example.com", Username: "ink_lover", HashedPassword: "hash"}
	users.Users[existing.Email] = existing
	svc, _ := newUserService(t, users, mocks.NewMockUsageStore())

	got, err := svc.GetUser(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, existing.Email, got.Email)

	_, err = svc.GetUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestUserService_GetProfile(t *testing.T) {
	t.Parallel()

	day := domain.UsageDay(time.Now())

	tests := []struct {
		name          string
		isPro         bool
		used          int
		wantRemaining int
	}{
		{name: "fresh free user", wantRemaining: 5},
		{name: "partly used", used: 3, wantRemaining: 2},
		{name: "exhausted", used: 7, wantRemaining: 0},
		{name: "pro user", isPro: true, used: 40, wantRemaining: quota.Unlimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			users := mocks.NewMockUserStore()
			user := &domain.User{ID: uuid.New(), Email: "ink@example.com", Username: "ink_lover", IsPro: tt.isPro}
			users.Users[user.Email] = user
			usage := mocks.NewMockUsageStore()
			usage.Set(user.ID, domain.DesignCreationEndpoint, day, tt.used)
			svc, _ := newUserService(t, users, usage)

			profile, err := svc.GetProfile(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Equal(t, user.ID, profile.User.ID)
			assert.Equal(t, tt.wantRemaining, profile.RemainingCreations)
		})
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()

	strPtr := func(s string) *string { return &s }

	t.Run("updates given fields", func(t *testing.T) {
		t.Parallel()

		users := mocks.NewMockUserStore()
		user := &domain.User{ID: uuid.New(), Email: "ink@example.com", Username: "ink_lover", HashedPassword: "hash"}
		users.Users[user.Email] = user
		svc, sqlMock := newUserService(t, users, mocks.NewMockUsageStore())
		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()

		updated, err := svc.UpdateProfile(context.Background(), user.ID, service.UpdateProfileInput{
			ProfilePicture: strPtr(" https://media.example.com/me.png "),
		})
		require.NoError(t, err)
		require.NoError(t, sqlMock.ExpectationsWereMet())
		assert.Equal(t, "ink_lover", updated.Username)
		assert.Equal(t, "https://media.example.com/me.png", updated.ProfilePicture)
	})

	t.Run("invalid username rolls back", func(t *testing.T) {
		t.Parallel()

		users := mocks.NewMockUserStore()
		user := &domain.User{ID: uuid.New(), Email: "ink@example.com", Username: "ink_lover", HashedPassword: "hash"}
		users.Users[user.Email] = user
		svc, sqlMock := newUserService(t, users, mocks.NewMockUsageStore())
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		_, err := svc.UpdateProfile(context.Background(), user.ID, service.UpdateProfileInput{
			Username: strPtr("x"),
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
		require.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("taken username", func(t *testing.T) {
		t.Parallel()

		user := &domain.User{ID: uuid.New(), Email: "ink@example.com", Username: "ink_lover", HashedPassword: "hash"}
		users := &mocks.TestifyMockUserStore{}
		users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		users.On("Update", mock.Anything, mock.AnythingOfType("*domain.User")).Return(store.ErrUsernameExists)

		svc, sqlMock := newUserService(t, users, mocks.NewMockUsageStore())
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		_, err := svc.UpdateProfile(context.Background(), user.ID, service.UpdateProfileInput{
			Username: strPtr("taken_name"),
		})
		assert.ErrorIs(t, err, store.ErrDuplicate)
		users.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()

		svc, sqlMock := newUserService(t, mocks.NewMockUserStore(), mocks.NewMockUsageStore())
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		_, err := svc.UpdateProfile(context.Background(), uuid.New(), service.UpdateProfileInput{})
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		t.Parallel()

		users := mocks.NewMockUserStore()
		users.GetByIDFn = func(context.Context, uuid.UUID) (*domain.User, error) {
			return nil, errors.New("connection reset")
		}
		svc, sqlMock := newUserService(t, users, mocks.NewMockUsageStore())
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		_, err := svc.UpdateProfile(context.Background(), uuid.New(), service.UpdateProfileInput{})
		var svcErr *service.ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "update_profile", svcErr.Operation)
	})
}
