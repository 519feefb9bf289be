package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"merithub/internal/database"
	"merithub/internal/models"

	"go.uber.org/zap"
)

// badgeRepository implements BadgeRepository on PostgreSQL
type badgeRepository struct {
	*BaseRepository
}

// NewBadgeRepository creates a new badge ledger repository
func NewBadgeRepository(db *database.Manager, logger *zap.Logger) BadgeRepository {
	return &badgeRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ===============================
// BADGE DEFINITIONS
// ===============================

// UpsertDefinition registers a definition by key. Display metadata is
// refreshed on conflict so code-side catalog edits propagate on restart.
func (r *badgeRepository) UpsertDefinition(ctx context.Context, def *models.BadgeDefinition) error {
	query := `
		INSERT INTO badge_definitions (
			key, name, description, icon, level, kind,
			reputation_award, is_system_badge
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (key) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			icon = EXCLUDED.icon,
			level = EXCLUDED.level,
			kind = EXCLUDED.kind,
			reputation_award = EXCLUDED.reputation_award,
			is_system_badge = EXCLUDED.is_system_badge,
			updated_at = NOW()
		RETURNING created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		def.Key, def.Name, def.Description, def.Icon,
		def.Level, def.Kind, def.ReputationAward, def.IsSystemBadge,
	).Scan(&def.CreatedAt, &def.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert badge definition %q: %w", def.Key, err)
	}
	return nil
}

// GetDefinition returns the definition for a key, or nil when unregistered.
func (r *badgeRepository) GetDefinition(ctx context.Context, key string) (*models.BadgeDefinition, error) {
	query := `
		SELECT key, name, description, icon, level, kind,
		       reputation_award, is_system_badge, created_at, updated_at
		FROM badge_definitions
		WHERE key = $1`

	var def models.BadgeDefinition
	err := r.QueryRowContext(ctx, query, key).Scan(
		&def.Key, &def.Name, &def.Description, &def.Icon,
		&def.Level, &def.Kind, &def.ReputationAward, &def.IsSystemBadge,
		&def.CreatedAt, &def.UpdatedAt,
	)
	if r.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get badge definition %q: %w", key, err)
	}
	return &def, nil
}

// ListDefinitions returns all registered definitions ordered by key.
func (r *badgeRepository) ListDefinitions(ctx context.Context) ([]*models.BadgeDefinition, error) {
	query := `
		SELECT key, name, description, icon, level, kind,
		       reputation_award, is_system_badge, created_at, updated_at
		FROM badge_definitions
		ORDER BY key`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list badge definitions: %w", err)
	}
	defer rows.Close()

	var defs []*models.BadgeDefinition
	for rows.Next() {
		var def models.BadgeDefinition
		if err := rows.Scan(
			&def.Key, &def.Name, &def.Description, &def.Icon,
			&def.Level, &def.Kind, &def.ReputationAward, &def.IsSystemBadge,
			&def.CreatedAt, &def.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan badge definition: %w", err)
		}
		defs = append(defs, &def)
	}
	return defs, rows.Err()
}

// ===============================
// AWARDS
// ===============================

// Award grants one badge slot idempotently. Uniqueness is enforced by the
// partial unique indexes on user_badges, so concurrent awards of the same
// slot race safely: exactly one insert wins and the rest observe the
// existing record.
func (r *badgeRepository) Award(ctx context.Context, userRef, badgeKey string, dedupeKey *string) (*models.UserBadge, error) {
	def, err := r.GetDefinition(ctx, badgeKey)
	if err != nil {
		return nil, err
	}
	if def == nil {
		// Unregistered keys are skipped, not failed. Evaluators and
		// ledger contents can drift during rollout.
		r.GetLogger().Warn("Skipping award for unregistered badge key",
			zap.String("badge_key", badgeKey),
			zap.String("user_ref", userRef),
		)
		return nil, nil
	}

	badge := &models.UserBadge{
		UserRef:    userRef,
		BadgeKey:   badgeKey,
		DedupeKey:  dedupeKey,
		BadgeName:  def.Name,
		BadgeLevel: def.Level,
	}

	insert := `
		INSERT INTO user_badges (user_ref, badge_key, dedupe_key)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
		RETURNING id, granted_at`

	err = r.QueryRowContext(ctx, insert, userRef, badgeKey, dedupeKey).
		Scan(&badge.ID, &badge.GrantedAt)
	if err == nil {
		badge.IsNew = true
		return badge, nil
	}
	if !r.IsNotFound(err) {
		return nil, fmt.Errorf("failed to award badge %q to %s: %w", badgeKey, userRef, err)
	}

	// The slot already exists; return the record that holds it.
	existing := `
		SELECT id, granted_at
		FROM user_badges
		WHERE user_ref = $1
		  AND badge_key = $2
		  AND dedupe_key IS NOT DISTINCT FROM $3`

	err = r.QueryRowContext(ctx, existing, userRef, badgeKey, dedupeKey).
		Scan(&badge.ID, &badge.GrantedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing badge %q for %s: %w", badgeKey, userRef, err)
	}

	badge.IsNew = false
	return badge, nil
}

// ListUserBadges returns a user's grants, newest first.
func (r *badgeRepository) ListUserBadges(ctx context.Context, userRef string) ([]*models.UserBadge, error) {
	query := `
		SELECT ub.id, ub.user_ref, ub.badge_key, ub.dedupe_key, ub.granted_at,
		       bd.name, bd.level
		FROM user_badges ub
		JOIN badge_definitions bd ON bd.key = ub.badge_key
		WHERE ub.user_ref = $1
		ORDER BY ub.granted_at DESC, ub.id DESC`

	rows, err := r.QueryContext(ctx, query, userRef)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges for %s: %w", userRef, err)
	}
	defer rows.Close()

	var badges []*models.UserBadge
	for rows.Next() {
		var b models.UserBadge
		if err := rows.Scan(
			&b.ID, &b.UserRef, &b.BadgeKey, &b.DedupeKey, &b.GrantedAt,
			&b.BadgeName, &b.BadgeLevel,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user badge: %w", err)
		}
		badges = append(badges, &b)
	}
	return badges, rows.Err()
}

// CountUserBadges returns the number of grants a user holds.
func (r *badgeRepository) CountUserBadges(ctx context.Context, userRef string) (int64, error) {
	var count int64
	err := r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_badges WHERE user_ref = $1`, userRef,
	).Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to count badges for %s: %w", userRef, err)
	}
	return count, nil
}
