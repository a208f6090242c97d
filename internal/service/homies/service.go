// Package homies is the matching core: relationship actions, the candidate
// feed, linked lists, profile views and messaging.
package homies

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oggyb/homies/internal/app"
	"github.com/oggyb/homies/internal/domain"
	svcErr "github.com/oggyb/homies/internal/errors"
	"github.com/oggyb/homies/internal/events"
	"github.com/oggyb/homies/internal/metrics"
	"github.com/oggyb/homies/internal/repository"
)

// ProfileStore is the read-only view of user profiles.
type ProfileStore interface {
	GetUser(ctx context.Context, id uint64) (domain.User, error)
	ListCandidates(ctx context.Context, excludeID uint64, search string) ([]domain.User, error)
}

// ConnectionStore persists connections. Save is compare-and-swap on Version.
type ConnectionStore interface {
	FindByPair(ctx context.Context, pair domain.Pair) (*domain.Connection, error)
	Create(ctx context.Context, c *domain.Connection) (*domain.Connection, error) // ErrConflict on an existing pair
	Save(ctx context.Context, c *domain.Connection) (*domain.Connection, error)
	ListByPredicate(ctx context.Context, userID uint64, t domain.LinkType) ([]*domain.Connection, error)
	ListByUser(ctx context.Context, userID uint64) ([]*domain.Connection, error)
}

// AdmirerCache caches the admirer count of a user.
type AdmirerCache interface {
	GetAdmirerCount(ctx context.Context, userID uint64) (int64, bool, error)
	SetAdmirerCount(ctx context.Context, userID uint64, count int64) error
	InvalidateAdmirerCounts(ctx context.Context, userIDs ...uint64) error
}

const (
	defaultStoreTimeout     = 3 * time.Second
	defaultPublishTimeout   = 5 * time.Second
	defaultMaxMessageLength = 500
	defaultPageSize         = 20
)

// Service implements the homies operations on top of the stores.
// The acting user is always an explicit argument.
type Service struct {
	profiles    ProfileStore
	connections ConnectionStore
	cache       AdmirerCache
	events      events.Publisher
	metrics     *metrics.Metrics
	log         *slog.Logger
	now         func() time.Time

	storeTimeout     time.Duration
	publishTimeout   time.Duration
	maxMessageLength int
	pageSize         int
}

// NewHomiesService wires the gorm repositories from AppContext.
func NewHomiesService(appCtx *app.AppContext) *Service {
	return New(
		repository.NewUserRepository(appCtx.DB),
		repository.NewConnectionRepository(appCtx.DB),
		appCtx,
	)
}

// New creates a Service over explicit stores. Cache, events, metrics and
// config come from appCtx; missing ones fall back to no-ops and defaults.
func New(profiles ProfileStore, connections ConnectionStore, appCtx *app.AppContext) *Service {
	s := &Service{
		profiles:         profiles,
		connections:      connections,
		events:           appCtx.Events,
		metrics:          appCtx.Metrics,
		log:              appCtx.Logger,
		now:              appCtx.Now,
		storeTimeout:     defaultStoreTimeout,
		publishTimeout:   defaultPublishTimeout,
		maxMessageLength: defaultMaxMessageLength,
		pageSize:         defaultPageSize,
	}
	if appCtx.RedisCache != nil {
		s.cache = appCtx.RedisCache
	}
	if s.events == nil {
		s.events = events.NopPublisher{}
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if cfg := appCtx.Config; cfg != nil {
		if cfg.Store.Timeout > 0 {
			s.storeTimeout = cfg.Store.Timeout
		}
		if cfg.Kafka.PublishTimeout > 0 {
			s.publishTimeout = cfg.Kafka.PublishTimeout
		}
		if cfg.Messages.MaxLength > 0 {
			s.maxMessageLength = cfg.Messages.MaxLength
		}
		if cfg.Links.PageSize > 0 {
			s.pageSize = cfg.Links.PageSize
		}
	}
	return s
}

// storeCtx bounds every store call of one operation.
func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

// invalidate drops cached admirer counts. Failures are logged only.
func (s *Service) invalidate(ctx context.Context, userIDs ...uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAdmirerCounts(ctx, userIDs...); err != nil {
		s.log.Warn("failed to invalidate admirer counts", "users", userIDs, "err", err)
	}
}

// publish sends an event once the write is committed. It runs on its own
// deadline, detached from the caller's cancellation and the store timeout.
// Failures are logged only.
func (s *Service) publish(ctx context.Context, e events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Warn("failed to publish event", "type", e.Type, "connection_id", e.ConnectionID, "err", err)
	}
}

// findConnection returns the connection of pair, or nil when the pair never
// interacted.
func (s *Service) findConnection(ctx context.Context, pair domain.Pair) (*domain.Connection, error) {
	c, err := s.connections.FindByPair(ctx, pair)
	if errors.Is(err, svcErr.ErrNoConnection) {
		return nil, nil
	}
	return c, err
}
