package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/deeptattoo/deeptattoo-api/internal/config"
	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/logger"
	"github.com/deeptattoo/deeptattoo-api/internal/store"
)

// ErrQuotaExceeded is returned by callers when a request is denied.
var ErrQuotaExceeded = errors.New("daily creation limit exceeded")

// Unlimited is the Remaining value for users without a quota.
const Unlimited = -1

// Decision is the outcome of an admission check.
type Decision int

const (
	Denied Decision = iota
	Admitted
)

func (d Decision) String() string {
	if d == Admitted {
		return "admitted"
	}
	return "denied"
}

// Admitter decides whether a user may make one more request to endpoint on
// day, counting the request when admitted. Release hands back an admission
// whose request was never carried out.
type Admitter interface {
	CheckAndAdmit(ctx context.Context, user *domain.User, endpoint string, day time.Time) (Decision, error)
	Release(ctx context.Context, user *domain.User, endpoint string, day time.Time) error
	Remaining(ctx context.Context, user *domain.User, endpoint string, day time.Time) (int, error)
}

// New returns an AtomicGate when cfg.Atomic is set, otherwise a Gate.
func New(usage store.UsageStore, cfg config.QuotaConfig, logger *slog.Logger) Admitter {
	if cfg.Atomic {
		return NewAtomicGate(usage, cfg.DailyLimit, logger)
	}
	return NewGate(usage, cfg.DailyLimit, logger)
}

// Gate is the check-then-increment admission gate.
//
// The read and the increment are separate calls: two requests that both read
// limit-1 are both admitted and the counter ends above the limit. Use
// AtomicGate where that matters.
type Gate struct {
	usage  store.UsageStore
	limit  int
	logger *slog.Logger
}

var _ Admitter = (*Gate)(nil)

// NewGate creates a Gate admitting limit requests per user, endpoint and day.
func NewGate(usage store.UsageStore, limit int, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		usage:  usage,
		limit:  limit,
		logger: logger.With("component", "quota_gate"),
	}
}

// CheckAndAdmit implements Admitter.
func (g *Gate) CheckAndAdmit(ctx context.Context, user *domain.User, endpoint string, day time.Time) (Decision, error) {
	if user.IsPro {
		return Admitted, nil
	}

	log := logger.FromContextOrDefault(ctx, g.logger)

	count, err := g.usage.GetCount(ctx, user.ID, endpoint, day)
	if err != nil {
		return Denied, fmt.Errorf("failed to read usage: %w", err)
	}
	if count >= g.limit {
		log.Info("quota exceeded",
			slog.String("user_id", user.ID.String()),
			slog.String("endpoint", endpoint),
			slog.Int("count", count),
			slog.Int("limit", g.limit))
		return Denied, nil
	}

	if _, err := g.usage.Increment(ctx, user.ID, endpoint, day); err != nil {
		return Denied, fmt.Errorf("failed to record usage: %w", err)
	}
	return Admitted, nil
}

// Release implements Admitter.
func (g *Gate) Release(ctx context.Context, user *domain.User, endpoint string, day time.Time) error {
	return release(ctx, g.usage, user, endpoint, day)
}

// Remaining implements Admitter.
func (g *Gate) Remaining(ctx context.Context, user *domain.User, endpoint string, day time.Time) (int, error) {
	return remaining(ctx, g.usage, g.limit, user, endpoint, day)
}

// AtomicGate admits and counts in a single conditional upsert.
type AtomicGate struct {
	usage  store.UsageStore
	limit  int
	logger *slog.Logger
}

var _ Admitter = (*AtomicGate)(nil)

// NewAtomicGate creates an AtomicGate admitting limit requests per user,
// endpoint and day.
func NewAtomicGate(usage store.UsageStore, limit int, logger *slog.Logger) *AtomicGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &AtomicGate{
		usage:  usage,
		limit:  limit,
		logger: logger.With("component", "quota_gate"),
	}
}

// CheckAndAdmit implements Admitter.
func (g *AtomicGate) CheckAndAdmit(ctx context.Context, user *domain.User, endpoint string, day time.Time) (Decision, error) {
	if user.IsPro {
		return Admitted, nil
	}

	count, ok, err := g.usage.IncrementIfBelow(ctx, user.ID, endpoint, day, g.limit)
	if err != nil {
		return Denied, fmt.Errorf("failed to record usage: %w", err)
	}
	if !ok {
		logger.FromContextOrDefault(ctx, g.logger).Info("quota exceeded",
			slog.String("user_id", user.ID.String()),
			slog.String("endpoint", endpoint),
			slog.Int("count", count),
			slog.Int("limit", g.limit))
		return Denied, nil
	}
	return Admitted, nil
}

// Release implements Admitter.
func (g *AtomicGate) Release(ctx context.Context, user *domain.User, endpoint string, day time.Time) error {
	return release(ctx, g.usage, user, endpoint, day)
}

// Remaining implements Admitter.
func (g *AtomicGate) Remaining(ctx context.Context, user *domain.User, endpoint string, day time.Time) (int, error) {
	return remaining(ctx, g.usage, g.limit, user, endpoint, day)
}

// Pro admissions were never counted, so there is nothing to give back.
func release(ctx context.Context, usage store.UsageStore, user *domain.User, endpoint string, day time.Time) error {
	if user.IsPro {
		return nil
	}
	if err := usage.Decrement(ctx, user.ID, endpoint, day); err != nil {
		return fmt.Errorf("failed to release usage: %w", err)
	}
	return nil
}

func remaining(
	ctx context.Context,
	usage store.UsageStore,
	limit int,
	user *domain.User,
	endpoint string,
	day time.Time,
) (int, error) {
	if user.IsPro {
		return Unlimited, nil
	}

	count, err := usage.GetCount(ctx, user.ID, endpoint, day)
	if err != nil {
		return 0, fmt.Errorf("failed to read usage: %w", err)
	}
	if count >= limit {
		return 0, nil
	}
	return limit - count, nil
}
