package services

import (
	"context"

	"merithub/internal/models"
)

// ===============================
// CORE SERVICE INTERFACES
// ===============================

// BadgeService orchestrates badge evaluation and awarding.
type BadgeService interface {
	// ProcessUserBadges runs one full evaluation sweep for a user: it
	// fetches the user's content and aggregate profile, runs every
	// registered evaluator, grants qualifying badges idempotently and
	// notifies only genuinely new grants. The result carries every
	// confirmed grant record, new and pre-existing alike. A sweep is
	// safe to re-run at any time.
	ProcessUserBadges(ctx context.Context, userRef string) (*SweepResult, error)

	// CountUserBadges returns the number of grants a user holds.
	CountUserBadges(ctx context.Context, userRef string) (int64, error)

	// GetUserBadges returns a user's grants, newest first.
	GetUserBadges(ctx context.Context, userRef string) ([]*models.UserBadge, error)

	// ListDefinitions returns the registered badge definitions.
	ListDefinitions(ctx context.Context) ([]*models.BadgeDefinition, error)
}

// ContentService is the engine's read-side view of the content store,
// with caching on the expensive aggregate queries.
type ContentService interface {
	GetAuthoredPosts(ctx context.Context, userRef string) ([]models.ContentItem, error)
	GetAuthoredAnswers(ctx context.Context, userRef string) ([]models.ContentItem, error)
	GetOwnedCollections(ctx context.Context, userRef string) ([]models.ContentItem, error)
	GetUserProfile(ctx context.Context, userRef string) (*models.UserProfile, error)
	ListActiveUserRefs(ctx context.Context, limit, offset int) ([]string, error)
}

// NotificationService delivers award notifications. Implementations must
// tolerate delivery failure; the caller treats notification as best-effort.
type NotificationService interface {
	NotifyBadgeAwarded(ctx context.Context, userRef string, badge *models.UserBadge) error
}
