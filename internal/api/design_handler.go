package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/deeptattoo/deeptattoo-api/internal/api/shared"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/logger"
	"github.com/deeptattoo/deeptattoo-api/internal/service"
)

// DesignHandler serves design creation, the caller's designs, favorites and
// the public gallery.
type DesignHandler struct {
	designs service.DesignService
	users   service.UserService
	logger  *slog.Logger
}

// NewDesignHandler creates a DesignHandler.
func NewDesignHandler(designs service.DesignService, users service.UserService, logger *slog.Logger) *DesignHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DesignHandler{
		designs: designs,
		users:   users,
		logger:  logger.With("component", "design_handler"),
	}
}

// CreateDesign handles POST /designs. The design is returned in processing
// state; generation continues in the background.
func (h *DesignHandler) CreateDesign(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateDesignRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	design, err := h.designs.CreateDesign(r.Context(), user, service.CreateDesignInput{
		StyleID:     req.Style,
		Prompt:      req.Prompt,
		Gender:      req.Gender,
		Placement:   req.OutputFormat,
		AspectRatio: req.AspectRatio,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("design accepted",
		slog.String("design_id", design.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, designToResponse(design))
}

// ListDesigns handles GET /designs.
func (h *DesignHandler) ListDesigns(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	designs, err := h.designs.ListDesigns(r.Context(), userID, parsePage(r))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, designsToResponse(designs))
}

// GetDesign handles GET /designs/{id}.
func (h *DesignHandler) GetDesign(w http.ResponseWriter, r *http.Request) {
	userID, designID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	design, err := h.designs.GetDesign(r.Context(), userID, designID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, designToResponse(design))
}

// UpdateDesign handles PATCH /designs/{id}. Only is_public can change.
func (h *DesignHandler) UpdateDesign(w http.ResponseWriter, r *http.Request) {
	userID, designID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateDesignRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	design, err := h.designs.SetPublic(r.Context(), userID, designID, *req.IsPublic)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, designToResponse(design))
}

// DeleteDesign handles DELETE /designs/{id}.
func (h *DesignHandler) DeleteDesign(w http.ResponseWriter, r *http.Request) {
	userID, designID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.designs.DeleteDesign(r.Context(), userID, designID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondNoContent(w)
}

// Favorite handles POST /designs/{id}/favorite.
func (h *DesignHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	userID, designID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.designs.FavoriteDesign(r.Context(), userID, designID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{Status: "favorited"})
}

// Unfavorite handles DELETE /designs/{id}/unfavorite.
func (h *DesignHandler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	userID, designID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.designs.UnfavoriteDesign(r.Context(), userID, designID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondNoContent(w)
}

// ListFavorites handles GET /favorites.
func (h *DesignHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	designs, err := h.designs.ListFavorites(r.Context(), userID, parsePage(r))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, designsToResponse(designs))
}

// Gallery handles GET /gallery. Anonymous callers are allowed; an
// authenticated caller also gets is_favorite flags.
func (h *DesignHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	style := q.Get("style")
	if style == "" {
		style = q.Get("style__name")
	}

	query := service.GalleryQuery{
		Style:  strings.TrimSpace(style),
		Search: strings.TrimSpace(q.Get("search")),
		Page:   parsePage(r),
	}
	if viewer, ok := getUserIDFromContext(r); ok {
		query.Viewer = viewer
	}

	designs, err := h.designs.Gallery(r.Context(), query)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, designsToResponse(designs))
}
