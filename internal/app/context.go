package app

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/homies/internal/cache"
	"github.com/oggyb/homies/internal/config"
	"github.com/oggyb/homies/internal/events"
	"github.com/oggyb/homies/internal/metrics"
)

// AppContext holds shared dependencies (DB, Redis, Kafka, Logger, etc.)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Events     events.Publisher
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Clock      func() time.Time
}

// New creates a new AppContext. A nil publisher drops events.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, pub events.Publisher, logger *slog.Logger) *AppContext {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Events:     pub,
		Metrics:    metrics.New(),
		Logger:     logger,
		Clock:      time.Now,
	}
}

// Now returns the current time in UTC.
func (a *AppContext) Now() time.Time {
	if a.Clock == nil {
		return time.Now().UTC()
	}
	return a.Clock().UTC()
}
