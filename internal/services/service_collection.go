package services

import (
	"context"
	"fmt"

	"merithub/internal/badges"
	"merithub/internal/cache"
	"merithub/internal/config"
	"merithub/internal/database"
	"merithub/internal/events"
	"merithub/internal/repositories"

	"go.uber.org/zap"
)

// ServiceCollection holds all services with dependency injection
type ServiceCollection struct {
	// Core Services
	Badge        BadgeService        `json:"-"`
	Content      ContentService      `json:"-"`
	Notification NotificationService `json:"-"`

	// Repository Collection
	Repositories *repositories.Collection `json:"-"`

	// Infrastructure Components
	Cache     cache.Cache       `json:"-"`
	EventBus  events.EventBus   `json:"-"`
	Logger    *zap.Logger       `json:"-"`
	Config    *config.Config    `json:"-"`
	DBManager *database.Manager `json:"-"`
}

// NewServiceCollection wires the full service graph. The badge catalog is
// registered during construction, so a returned collection is ready to
// sweep immediately.
func NewServiceCollection(
	dbManager *database.Manager,
	c cache.Cache,
	bus events.EventBus,
	cfg *config.Config,
	logger *zap.Logger,
	custom ...badges.Evaluator,
) (*ServiceCollection, error) {
	if dbManager == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	repos, err := repositories.NewCollection(dbManager, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create repositories: %w", err)
	}

	evaluators, err := badges.Catalog(custom...)
	if err != nil {
		return nil, fmt.Errorf("failed to build badge catalog: %w", err)
	}

	contentService := NewContentService(repos.Content, c, cfg.Badges.ProfileCacheTTL, logger)
	notificationService := NewNotificationService(bus, logger)

	badgeService, err := NewBadgeService(
		repos.Badge,
		contentService,
		notificationService,
		bus,
		evaluators,
		logger,
	)
	if err != nil {
		return nil, err
	}

	collection := &ServiceCollection{
		Badge:        badgeService,
		Content:      contentService,
		Notification: notificationService,
		Repositories: repos,
		Cache:        c,
		EventBus:     bus,
		Logger:       logger,
		Config:       cfg,
		DBManager:    dbManager,
	}

	logger.Info("Service collection initialized",
		zap.Int("evaluators", len(evaluators)),
	)

	return collection, nil
}

// HealthCheck verifies the collection's infrastructure dependencies.
func (sc *ServiceCollection) HealthCheck(ctx context.Context) error {
	if health := sc.DBManager.Health(ctx); health.Status == database.StatusUnhealthy {
		return NewServiceUnavailableError(fmt.Sprintf("database unhealthy: %v", health.Errors))
	}
	if sc.Cache != nil {
		if err := sc.Cache.Health(ctx); err != nil {
			return NewServiceUnavailableError(fmt.Sprintf("cache unhealthy: %v", err))
		}
	}
	if sc.EventBus != nil {
		if err := sc.EventBus.Health(); err != nil {
			return NewServiceUnavailableError(fmt.Sprintf("event bus unhealthy: %v", err))
		}
	}
	return nil
}
