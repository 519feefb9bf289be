package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"merithub/internal/cache"
	"merithub/internal/models"
	"merithub/internal/repositories"

	"go.uber.org/zap"
)

// contentService wraps the content repository with caching on the user
// aggregate profile, which is the expensive query during reactive sweeps.
type contentService struct {
	repo       repositories.ContentRepository
	cache      cache.Cache
	profileTTL time.Duration
	logger     *zap.Logger
}

// NewContentService creates a content service backed by the content store
func NewContentService(
	repo repositories.ContentRepository,
	c cache.Cache,
	profileTTL time.Duration,
	logger *zap.Logger,
) ContentService {
	return &contentService{
		repo:       repo,
		cache:      c,
		profileTTL: profileTTL,
		logger:     logger,
	}
}

func (s *contentService) GetAuthoredPosts(ctx context.Context, userRef string) ([]models.ContentItem, error) {
	return s.repo.GetAuthoredPosts(ctx, userRef)
}

func (s *contentService) GetAuthoredAnswers(ctx context.Context, userRef string) ([]models.ContentItem, error) {
	return s.repo.GetAuthoredAnswers(ctx, userRef)
}

func (s *contentService) GetOwnedCollections(ctx context.Context, userRef string) ([]models.ContentItem, error) {
	return s.repo.GetOwnedCollections(ctx, userRef)
}

// GetUserProfile serves the aggregate profile from cache when fresh. A
// stale profile can only delay an award, never produce a wrong one, so a
// short TTL is acceptable.
func (s *contentService) GetUserProfile(ctx context.Context, userRef string) (*models.UserProfile, error) {
	key := profileCacheKey(userRef)

	if s.cache != nil && s.profileTTL > 0 {
		if cached, found := s.cache.Get(ctx, key); found {
			if profile := decodeCachedProfile(cached); profile != nil {
				return profile, nil
			}
		}
	}

	profile, err := s.repo.GetUserProfile(ctx, userRef)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.profileTTL > 0 {
		if err := s.cache.Set(ctx, key, profile, s.profileTTL); err != nil {
			s.logger.Debug("Failed to cache user profile",
				zap.String("user_ref", userRef),
				zap.Error(err),
			)
		}
	}

	return profile, nil
}

func (s *contentService) ListActiveUserRefs(ctx context.Context, limit, offset int) ([]string, error) {
	return s.repo.ListActiveUserRefs(ctx, limit, offset)
}

func profileCacheKey(userRef string) string {
	return fmt.Sprintf("profile:%s", userRef)
}

// decodeCachedProfile recovers a profile from whatever shape the cache
// provider hands back. The in-memory provider returns the stored pointer;
// the Redis provider round-trips through JSON and returns a generic map or
// the raw string. Returns nil when the value is unusable, which falls
// through to the store.
func decodeCachedProfile(cached interface{}) *models.UserProfile {
	switch v := cached.(type) {
	case *models.UserProfile:
		return v
	case models.UserProfile:
		return &v
	case string:
		var profile models.UserProfile
		if err := json.Unmarshal([]byte(v), &profile); err == nil {
			return &profile
		}
	case map[string]interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		var profile models.UserProfile
		if err := json.Unmarshal(data, &profile); err == nil {
			return &profile
		}
	}
	return nil
}
