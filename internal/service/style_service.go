package service

import (
	"context"
	"log/slog"

	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/store"
)

// StyleService exposes the style catalog.
type StyleService interface {
	// ListActiveStyles returns the styles a design can be created with.
	ListActiveStyles(ctx context.Context) ([]*domain.Style, error)
}

type styleServiceImpl struct {
	styles store.StyleStore
	logger *slog.Logger
}

// NewStyleService creates a StyleService.
func NewStyleService(styles store.StyleStore, logger *slog.Logger) StyleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &styleServiceImpl{styles: styles, logger: logger.With("component", "style_service")}
}

func (s *styleServiceImpl) ListActiveStyles(ctx context.Context) ([]*domain.Style, error) {
	styles, err := s.styles.ListActive(ctx)
	if err != nil {
		return nil, NewServiceError("list_styles", "failed to list styles", err)
	}
	if styles == nil {
		styles = []*domain.Style{}
	}
	return styles, nil
}
