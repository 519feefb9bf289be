package repositories

import (
	"context"
	"fmt"

	"merithub/internal/database"
	"merithub/internal/models"

	"go.uber.org/zap"
)

// contentRepository implements ContentRepository against the reference
// content schema. Deployments with their own content store swap in an
// adapter implementing the same interface.
type contentRepository struct {
	*BaseRepository
}

// NewContentRepository creates a read-only content store adapter
func NewContentRepository(db *database.Manager, logger *zap.Logger) ContentRepository {
	return &contentRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// GetAuthoredPosts returns snapshots of the user's published posts.
func (r *contentRepository) GetAuthoredPosts(ctx context.Context, userRef string) ([]models.ContentItem, error) {
	query := `
		SELECT id, user_ref, score, view_count,
		       has_header_image, image_count,
		       COALESCE(array_length(tags, 1), 0) AS tag_count, tags,
		       created_at
		FROM posts
		WHERE user_ref = $1 AND published = true
		ORDER BY id`

	rows, err := r.QueryContext(ctx, query, userRef)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posts for %s: %w", userRef, err)
	}
	defer rows.Close()

	var items []models.ContentItem
	for rows.Next() {
		item := models.ContentItem{Kind: models.KindPost}
		if err := rows.Scan(
			&item.ID, &item.UserRef, &item.Score, &item.ViewCount,
			&item.HasHeaderImage, &item.ImageCount,
			&item.TagCount, &item.Tags,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetAuthoredAnswers returns snapshots of the user's answers.
func (r *contentRepository) GetAuthoredAnswers(ctx context.Context, userRef string) ([]models.ContentItem, error) {
	query := `
		SELECT id, user_ref, score, view_count, is_correct, created_at
		FROM answers
		WHERE user_ref = $1
		ORDER BY id`

	rows, err := r.QueryContext(ctx, query, userRef)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch answers for %s: %w", userRef, err)
	}
	defer rows.Close()

	var items []models.ContentItem
	for rows.Next() {
		item := models.ContentItem{Kind: models.KindAnswer}
		if err := rows.Scan(
			&item.ID, &item.UserRef, &item.Score, &item.ViewCount,
			&item.IsCorrectAnswer, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetOwnedCollections returns snapshots of the user's collections.
func (r *contentRepository) GetOwnedCollections(ctx context.Context, userRef string) ([]models.ContentItem, error) {
	query := `
		SELECT id, user_ref, score, item_count, follower_count, created_at
		FROM collections
		WHERE user_ref = $1
		ORDER BY id`

	rows, err := r.QueryContext(ctx, query, userRef)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collections for %s: %w", userRef, err)
	}
	defer rows.Close()

	var items []models.ContentItem
	for rows.Next() {
		item := models.ContentItem{Kind: models.KindCollection}
		if err := rows.Scan(
			&item.ID, &item.UserRef, &item.Score,
			&item.ItemCount, &item.FollowerCount, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetUserProfile returns the user's lifetime counters. A user with no
// profile row gets an all-zero profile.
func (r *contentRepository) GetUserProfile(ctx context.Context, userRef string) (*models.UserProfile, error) {
	query := `
		SELECT user_ref,
		       total_questions_authored, total_answers_authored,
		       total_articles_authored, total_links_authored,
		       total_comments_posted, total_votes_cast,
		       total_views_accrued, total_followers_gained,
		       reputation_score
		FROM user_profiles
		WHERE user_ref = $1`

	var profile models.UserProfile
	err := r.QueryRowContext(ctx, query, userRef).Scan(
		&profile.UserRef,
		&profile.TotalQuestionsAuthored, &profile.TotalAnswersAuthored,
		&profile.TotalArticlesAuthored, &profile.TotalLinksAuthored,
		&profile.TotalCommentsPosted, &profile.TotalVotesCast,
		&profile.TotalViewsAccrued, &profile.TotalFollowersGained,
		&profile.ReputationScore,
	)
	if r.IsNotFound(err) {
		return &models.UserProfile{UserRef: userRef}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile for %s: %w", userRef, err)
	}
	return &profile, nil
}

// ListActiveUserRefs pages through users with any recorded content.
func (r *contentRepository) ListActiveUserRefs(ctx context.Context, limit, offset int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT DISTINCT user_ref FROM (
			SELECT user_ref FROM posts
			UNION
			SELECT user_ref FROM answers
			UNION
			SELECT user_ref FROM collections
			UNION
			SELECT user_ref FROM user_profiles
		) refs
		ORDER BY user_ref
		LIMIT $1 OFFSET $2`

	rows, err := r.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("failed to scan user ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
