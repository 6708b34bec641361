package api

import (
	"net/http"

	"github.com/deeptattoo/deeptattoo-api/internal/api/shared"
	"github.com/deeptattoo/deeptattoo-api/internal/service"
)

// StyleHandler serves the style catalog.
type StyleHandler struct {
	styles service.StyleService
}

// NewStyleHandler creates a StyleHandler.
func NewStyleHandler(styles service.StyleService) *StyleHandler {
	return &StyleHandler{styles: styles}
}

// ListStyles handles GET /styles.
func (h *StyleHandler) ListStyles(w http.ResponseWriter, r *http.Request) {
	styles, err := h.styles.ListActiveStyles(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	out := make([]StyleResponse, 0, len(styles))
	for _, s := range styles {
		out = append(out, styleToResponse(s))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}
