package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/logger"
	"github.com/deeptattoo/deeptattoo-api/internal/quota"
	"github.com/deeptattoo/deeptattoo-api/internal/store"
	"github.com/deeptattoo/deeptattoo-api/internal/task"
	"github.com/google/uuid"
)

// Listing bounds applied when a caller passes no or oversized limits.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// TaskEnqueuer hands persisted tasks to the background workers.
type TaskEnqueuer interface {
	// Enqueue queues the task without blocking and reports whether it was
	// queued. A task that is not queued stays pending in the task store.
	Enqueue(t task.Task) bool
}

// GenerationTaskFactory creates generation jobs for new designs.
type GenerationTaskFactory interface {
	CreateTask(designID uuid.UUID, prompt string) (*task.GenerationTask, error)
}

// Page selects a window of a listing.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalized() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// CreateDesignInput carries a validated design request.
type CreateDesignInput struct {
	StyleID int64
	Prompt  string
	Gender  string
	// Placement is the body placement or background hint, e.g. "arm".
	Placement   string
	AspectRatio string
}

// GalleryQuery filters the public gallery.
type GalleryQuery struct {
	// Viewer fills IsFavorite when set.
	Viewer uuid.UUID
	Style  string
	Search string
	Page   Page
}

// DesignService provides design-related operations
type DesignService interface {
	// CreateDesign admits the request against the daily quota, stores the
	// design in processing state together with its generation task, and
	// queues the task. It returns as soon as the records are committed.
	CreateDesign(ctx context.Context, user *domain.User, input CreateDesignInput) (*domain.Design, error)

	// ListDesigns returns the user's designs, newest first.
	ListDesigns(ctx context.Context, userID uuid.UUID, page Page) ([]*domain.Design, error)

	// GetDesign returns one of the user's designs.
	// Designs of other users are reported as ErrDesignNotFound.
	GetDesign(ctx context.Context, userID, designID uuid.UUID) (*domain.Design, error)

	// SetPublic changes whether the design appears in the gallery.
	SetPublic(ctx context.Context, userID, designID uuid.UUID, public bool) (*domain.Design, error)

	// DeleteDesign removes one of the user's designs.
	DeleteDesign(ctx context.Context, userID, designID uuid.UUID) error

	// FavoriteDesign marks a design the user can see as a favorite. Repeating it is a no-op.
	FavoriteDesign(ctx context.Context, userID, designID uuid.UUID) error

	// UnfavoriteDesign removes a favorite. Removing a missing favorite is a no-op.
	UnfavoriteDesign(ctx context.Context, userID, designID uuid.UUID) error

	// ListFavorites returns the designs the user favorited, newest first.
	ListFavorites(ctx context.Context, userID uuid.UUID, page Page) ([]*domain.Design, error)

	// Gallery returns public completed designs matching the query.
	Gallery(ctx context.Context, query GalleryQuery) ([]*domain.Design, error)
}

// designServiceImpl implements the DesignService interface
type designServiceImpl struct {
	db        *sql.DB
	designs   store.DesignStore
	favorites store.FavoriteStore
	styles    store.StyleStore
	tasks     task.TaskStore
	admitter  quota.Admitter
	factory   GenerationTaskFactory
	runner    TaskEnqueuer
	logger    *slog.Logger
	now       func() time.Time
}

// DesignServiceDeps groups the collaborators of the design service.
type DesignServiceDeps struct {
	DB        *sql.DB
	Designs   store.DesignStore
	Favorites store.FavoriteStore
	Styles    store.StyleStore
	Tasks     task.TaskStore
	Admitter  quota.Admitter
	Factory   GenerationTaskFactory
	Runner    TaskEnqueuer
}

// NewDesignService creates a new DesignService.
// It returns an error if any of the required dependencies are nil.
func NewDesignService(deps DesignServiceDeps, logger *slog.Logger) (DesignService, error) {
	switch {
	case deps.DB == nil:
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	case deps.Designs == nil:
		return nil, &ServiceError{Operation: "create_service", Message: "design store cannot be nil"}
	case deps.Favorites == nil:
		return nil, &ServiceError{Operation: "create_service", Message: "favorite store cannot be nil"}
	case deps.Styles == nil:
		return nil, &ServiceError{Operation: "create_service", Message: "style store cannot be nil"}
	case deps.Tasks == nil:
		return nil, &ServiceError{Operation: "create_service", Message: "task store cannot be nil"}
	case deps.Admitter == nil:
		return nil, &ServiceError{Operation: "create_service", Message: "quota admitter cannot be nil"}
	case deps.Factory == nil:
		return nil, &ServiceError{Operation: "create_service", Message: "task factory cannot be nil"}
	case deps.Runner == nil:
		return nil, &ServiceError{Operation: "create_service", Message: "task runner cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &designServiceImpl{
		db:        deps.DB,
		designs:   deps.Designs,
		favorites: deps.Favorites,
		styles:    deps.Styles,
		tasks:     deps.Tasks,
		admitter:  deps.Admitter,
		factory:   deps.Factory,
		runner:    deps.Runner,
		logger:    logger.With("component", "design_service"),
		now:       time.Now,
	}, nil
}

// CreateDesign implements DesignService.
func (s *designServiceImpl) CreateDesign(
	ctx context.Context,
	user *domain.User,
	input CreateDesignInput,
) (*domain.Design, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	style, err := s.styles.GetByID(ctx, input.StyleID)
	if err != nil {
		if errors.Is(err, store.ErrStyleNotFound) {
			return nil, ErrStyleUnavailable
		}
		return nil, NewServiceError("create_design", "failed to load style", err)
	}
	if !style.IsActive {
		return nil, ErrStyleUnavailable
	}

	design, err := domain.NewDesign(user.ID, style, input.Prompt)
	if err != nil {
		return nil, domain.NewValidationError("prompt", err.Error(), err)
	}

	day := domain.UsageDay(s.now())
	decision, err := s.admitter.CheckAndAdmit(ctx, user, domain.DesignCreationEndpoint, day)
	if err != nil {
		return nil, NewServiceError("create_design", "failed to check quota", err)
	}
	if decision == quota.Denied {
		return nil, quota.ErrQuotaExceeded
	}

	// Only a committed design counts against the quota.
	release := func() {
		if err := s.admitter.Release(context.WithoutCancel(ctx), user, domain.DesignCreationEndpoint, day); err != nil {
			log.Error("failed to release quota admission",
				slog.String("error", err.Error()),
				slog.String("user_id", user.ID.String()))
		}
	}

	prompt := domain.ComposePrompt(style.DisplayName, design.Prompt, input.Gender, input.Placement)
	genTask, err := s.factory.CreateTask(design.ID, prompt)
	if err != nil {
		release()
		return nil, NewServiceError("create_design", "failed to create generation task", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.designs.WithTx(tx).Create(ctx, design); err != nil {
			return err
		}
		return s.tasks.WithTx(tx).SaveTask(ctx, genTask)
	})
	if err != nil {
		log.Error("failed to save design and task",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()),
			slog.String("design_id", design.ID.String()))
		release()
		return nil, NewServiceError("create_design", "failed to save design", err)
	}

	if !s.runner.Enqueue(genTask) {
		log.Warn("generation task not queued, left pending",
			slog.String("design_id", design.ID.String()),
			slog.String("task_id", genTask.ID().String()))
	}

	log.Info("design created",
		slog.String("design_id", design.ID.String()),
		slog.String("user_id", user.ID.String()),
		slog.String("style", style.Name),
		slog.String("aspect_ratio", input.AspectRatio))

	return design, nil
}

// ListDesigns implements DesignService.
func (s *designServiceImpl) ListDesigns(ctx context.Context, userID uuid.UUID, page Page) ([]*domain.Design, error) {
	page = page.normalized()
	designs, err := s.designs.List(ctx, store.DesignFilter{
		OwnerID: userID,
		Viewer:  userID,
		Limit:   page.Limit,
		Offset:  page.Offset,
	})
	if err != nil {
		return nil, NewServiceError("list_designs", "failed to list designs", err)
	}
	return designs, nil
}

// GetDesign implements DesignService.
func (s *designServiceImpl) GetDesign(ctx context.Context, userID, designID uuid.UUID) (*domain.Design, error) {
	design, err := s.designs.GetByID(ctx, designID)
	if err != nil {
		return nil, NewServiceError("get_design", "failed to load design", err)
	}
	if design.UserID != userID {
		return nil, ErrDesignNotFound
	}
	return design, nil
}

// SetPublic implements DesignService.
func (s *designServiceImpl) SetPublic(
	ctx context.Context,
	userID, designID uuid.UUID,
	public bool,
) (*domain.Design, error) {
	design, err := s.ownedDesign(ctx, "set_public", userID, designID)
	if err != nil {
		return nil, err
	}

	if err := s.designs.SetPublic(ctx, designID, public); err != nil {
		return nil, NewServiceError("set_public", "failed to update design", err)
	}
	design.IsPublic = public

	logger.FromContextOrDefault(ctx, s.logger).Debug("design visibility changed",
		slog.String("design_id", designID.String()),
		slog.Bool("is_public", public))
	return design, nil
}

// DeleteDesign implements DesignService.
func (s *designServiceImpl) DeleteDesign(ctx context.Context, userID, designID uuid.UUID) error {
	if _, err := s.ownedDesign(ctx, "delete_design", userID, designID); err != nil {
		return err
	}

	if err := s.designs.Delete(ctx, designID); err != nil {
		return NewServiceError("delete_design", "failed to delete design", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("design deleted",
		slog.String("design_id", designID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// FavoriteDesign implements DesignService.
func (s *designServiceImpl) FavoriteDesign(ctx context.Context, userID, designID uuid.UUID) error {
	if _, err := s.visibleDesign(ctx, "favorite_design", userID, designID); err != nil {
		return err
	}
	if err := s.favorites.Add(ctx, userID, designID); err != nil {
		return NewServiceError("favorite_design", "failed to add favorite", err)
	}
	return nil
}

// UnfavoriteDesign implements DesignService.
func (s *designServiceImpl) UnfavoriteDesign(ctx context.Context, userID, designID uuid.UUID) error {
	if _, err := s.visibleDesign(ctx, "unfavorite_design", userID, designID); err != nil {
		return err
	}
	if err := s.favorites.Remove(ctx, userID, designID); err != nil {
		return NewServiceError("unfavorite_design", "failed to remove favorite", err)
	}
	return nil
}

// ListFavorites implements DesignService.
func (s *designServiceImpl) ListFavorites(ctx context.Context, userID uuid.UUID, page Page) ([]*domain.Design, error) {
	page = page.normalized()
	designs, err := s.designs.List(ctx, store.DesignFilter{
		FavoritedBy: userID,
		Viewer:      userID,
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return nil, NewServiceError("list_favorites", "failed to list favorites", err)
	}
	return designs, nil
}

// Gallery implements DesignService.
func (s *designServiceImpl) Gallery(ctx context.Context, query GalleryQuery) ([]*domain.Design, error) {
	page := query.Page.normalized()
	designs, err := s.designs.List(ctx, store.DesignFilter{
		PublicCompletedOnly: true,
		Viewer:              query.Viewer,
		StyleName:           query.Style,
		Search:              query.Search,
		Limit:               page.Limit,
		Offset:              page.Offset,
	})
	if err != nil {
		return nil, NewServiceError("gallery", "failed to list gallery", err)
	}
	return designs, nil
}

// ownedDesign loads a design that must belong to userID.
func (s *designServiceImpl) ownedDesign(ctx context.Context, op string, userID, designID uuid.UUID) (*domain.Design, error) {
	design, err := s.designs.GetByID(ctx, designID)
	if err != nil {
		return nil, NewServiceError(op, "failed to load design", err)
	}
	if design.UserID != userID {
		logger.FromContextOrDefault(ctx, s.logger).Warn("design access denied",
			slog.String("operation", op),
			slog.String("design_id", designID.String()),
			slog.String("user_id", userID.String()))
		return nil, ErrNotOwned
	}
	return design, nil
}

// visibleDesign loads a design the user owns or that is in the public gallery.
func (s *designServiceImpl) visibleDesign(ctx context.Context, op string, userID, designID uuid.UUID) (*domain.Design, error) {
	design, err := s.designs.GetByID(ctx, designID)
	if err != nil {
		return nil, NewServiceError(op, "failed to load design", err)
	}
	if design.UserID == userID {
		return design, nil
	}
	if design.IsPublic && design.Status == domain.DesignStatusCompleted {
		return design, nil
	}
	return nil, ErrDesignNotFound
}
