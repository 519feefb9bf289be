package repositories

import (
	"fmt"

	"merithub/internal/database"

	"go.uber.org/zap"
)

// Collection holds all repository instances for dependency injection
type Collection struct {
	Badge   BadgeRepository
	Content ContentRepository

	// Database and logger for custom operations
	db     *database.Manager
	logger *zap.Logger
}

// NewCollection creates a new repository collection with all dependencies
func NewCollection(db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	collection := &Collection{
		db:     db,
		logger: logger,
	}

	collection.Badge = NewBadgeRepository(db, logger)
	collection.Content = NewContentRepository(db, logger)

	logger.Info("Repository collection initialized")

	return collection, nil
}

// DB returns the underlying database manager
func (c *Collection) DB() *database.Manager {
	return c.db
}
