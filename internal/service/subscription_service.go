package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/store"
	"github.com/google/uuid"
)

// PurchaseVerifier checks a store receipt for a plan.
type PurchaseVerifier interface {
	Verify(ctx context.Context, plan domain.SubscriptionPlan, token string) error
}

// AcceptAllVerifier treats every purchase token as valid. Receipt
// validation against the app stores is not wired in.
type AcceptAllVerifier struct{}

// Verify implements PurchaseVerifier.
func (AcceptAllVerifier) Verify(context.Context, domain.SubscriptionPlan, string) error {
	return nil
}

// SubscriptionService activates paid plans.
type SubscriptionService interface {
	// VerifyPurchase checks the purchase token and moves the user onto plan.
	VerifyPurchase(ctx context.Context, userID uuid.UUID, plan domain.SubscriptionPlan, token string) (*domain.User, error)
}

type subscriptionServiceImpl struct {
	userStore store.UserStore
	verifier  PurchaseVerifier
	db        *sql.DB
	logger    *slog.Logger
	now       func() time.Time
}

// NewSubscriptionService creates a SubscriptionService. A nil verifier
// accepts every purchase.
func NewSubscriptionService(
	userStore store.UserStore,
	verifier PurchaseVerifier,
	db *sql.DB,
	logger *slog.Logger,
) SubscriptionService {
	if verifier == nil {
		verifier = AcceptAllVerifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &subscriptionServiceImpl{
		userStore: userStore,
		verifier:  verifier,
		db:        db,
		logger:    logger.With("component", "subscription_service"),
		now:       time.Now,
	}
}

// VerifyPurchase implements SubscriptionService.
func (s *subscriptionServiceImpl) VerifyPurchase(
	ctx context.Context,
	userID uuid.UUID,
	plan domain.SubscriptionPlan,
	token string,
) (*domain.User, error) {
	plan = domain.SubscriptionPlan(strings.ToLower(strings.TrimSpace(string(plan))))
	if !plan.IsPro() {
		return nil, domain.NewValidationError("plan", "must be pro_monthly or pro_yearly", domain.ErrInvalidPlan)
	}

	if err := s.verifier.Verify(ctx, plan, token); err != nil {
		return nil, NewServiceError("verify_purchase", "purchase verification failed", err)
	}

	var activated *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := user.ActivateSubscription(plan, s.now()); err != nil {
			return err
		}
		if err := txStore.Update(ctx, user); err != nil {
			return err
		}

		activated = user
		return nil
	})
	if err != nil {
		return nil, NewServiceError("verify_purchase", "failed to activate subscription", err)
	}

	s.logger.Info("subscription activated",
		slog.String("user_id", userID.String()),
		slog.String("plan", string(plan)))
	return activated, nil
}
