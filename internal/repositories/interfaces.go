package repositories

import (
	"context"

	"merithub/internal/models"
)

// ===============================
// REPOSITORY INTERFACES
// ===============================

// BadgeRepository owns the badge ledger: the registered badge definitions
// and the per-user grant records.
type BadgeRepository interface {
	// UpsertDefinition registers a badge definition by key, updating the
	// display metadata if the key already exists.
	UpsertDefinition(ctx context.Context, def *models.BadgeDefinition) error

	// GetDefinition returns the definition for a key, or nil when the key
	// is not registered.
	GetDefinition(ctx context.Context, key string) (*models.BadgeDefinition, error)

	// ListDefinitions returns all registered definitions ordered by key.
	ListDefinitions(ctx context.Context) ([]*models.BadgeDefinition, error)

	// Award grants a badge slot to a user. The call is idempotent: if the
	// slot (user_ref, badge_key, dedupe_key) is already granted, the
	// existing record is returned with IsNew false. An unregistered badge
	// key is not an error; the call returns (nil, nil).
	Award(ctx context.Context, userRef, badgeKey string, dedupeKey *string) (*models.UserBadge, error)

	// ListUserBadges returns a user's grants, newest first, with display
	// fields joined from the definitions.
	ListUserBadges(ctx context.Context, userRef string) ([]*models.UserBadge, error)

	// CountUserBadges returns the number of grants a user holds.
	CountUserBadges(ctx context.Context, userRef string) (int64, error)
}

// ContentRepository is the read-only view of the content store the engine
// evaluates against. The engine never writes through this interface.
type ContentRepository interface {
	GetAuthoredPosts(ctx context.Context, userRef string) ([]models.ContentItem, error)
	GetAuthoredAnswers(ctx context.Context, userRef string) ([]models.ContentItem, error)
	GetOwnedCollections(ctx context.Context, userRef string) ([]models.ContentItem, error)

	// GetUserProfile returns the user's lifetime counters. Users with no
	// recorded activity get an all-zero profile, not an error.
	GetUserProfile(ctx context.Context, userRef string) (*models.UserProfile, error)

	// ListActiveUserRefs pages through users with any recorded content,
	// for the recurring sweep.
	ListActiveUserRefs(ctx context.Context, limit, offset int) ([]string, error)
}
