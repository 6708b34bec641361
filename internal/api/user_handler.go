package api

import (
	"log/slog"
	"net/http"

	"github.com/deeptattoo/deeptattoo-api/internal/api/shared"
	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/service"
)

// UserHandler serves the caller's own profile and subscription.
type UserHandler struct {
	users         service.UserService
	subscriptions service.SubscriptionService
	logger        *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(
	users service.UserService,
	subscriptions service.SubscriptionService,
	logger *slog.Logger,
) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		users:         users,
		subscriptions: subscriptions,
		logger:        logger.With("component", "user_handler"),
	}
}

// GetMe handles GET /users/me.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	profile, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, profileToResponse(profile))
}

// UpdateMe handles PATCH /users/me.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, service.UpdateProfileInput{
		Username:       req.Username,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// VerifyPurchase handles POST /subscriptions/verify-purchase.
func (h *UserHandler) VerifyPurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req VerifyPurchaseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.subscriptions.VerifyPurchase(r.Context(), userID, domain.SubscriptionPlan(req.Plan), req.Token)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}
