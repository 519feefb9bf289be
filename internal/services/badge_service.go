package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"merithub/internal/badges"
	"merithub/internal/events"
	"merithub/internal/models"
	"merithub/internal/repositories"

	"go.uber.org/zap"
)

// badgeService is the badge engine orchestrator. It owns an immutable
// evaluator list fixed at construction time and drives the three-phase
// sweep: per-item rules, item-set rules, then user aggregate rules.
type badgeService struct {
	repo       repositories.BadgeRepository
	content    ContentService
	notifier   NotificationService
	bus        events.EventBus
	evaluators []badges.Evaluator
	logger     *zap.Logger
}

// NewBadgeService creates the orchestrator and synchronously registers
// every evaluator's definition into the ledger. Registration failure is
// fatal: an engine whose catalog is not in the ledger would award against
// unknown keys.
func NewBadgeService(
	repo repositories.BadgeRepository,
	content ContentService,
	notifier NotificationService,
	bus events.EventBus,
	evaluators []badges.Evaluator,
	logger *zap.Logger,
) (BadgeService, error) {
	if repo == nil {
		return nil, fmt.Errorf("badge repository is required")
	}
	if content == nil {
		return nil, fmt.Errorf("content service is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notification service is required")
	}

	// Private copy; callers cannot grow or reorder the evaluator list
	// after construction.
	owned := make([]badges.Evaluator, len(evaluators))
	copy(owned, evaluators)

	s := &badgeService{
		repo:       repo,
		content:    content,
		notifier:   notifier,
		bus:        bus,
		evaluators: owned,
		logger:     logger,
	}

	if err := s.syncCatalog(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to register badge catalog: %w", err)
	}

	logger.Info("Badge service initialized",
		zap.Int("evaluators", len(owned)),
	)

	return s, nil
}

// syncCatalog upserts every evaluator's definition by key.
func (s *badgeService) syncCatalog(ctx context.Context) error {
	for _, ev := range s.evaluators {
		def := ev.Definition()
		if err := s.repo.UpsertDefinition(ctx, &def); err != nil {
			return err
		}
	}
	s.logger.Info("Badge catalog registered", zap.Int("definitions", len(s.evaluators)))
	return nil
}

// ===============================
// SWEEP ORCHESTRATION
// ===============================

type contentFetch struct {
	items []models.ContentItem
	err   error
}

// ProcessUserBadges runs one sweep. The three content fetches run
// concurrently and are joined before evaluation begins. A failed fetch or
// award is logged and counted but never aborts the sweep; every award
// already committed stays committed.
func (s *badgeService) ProcessUserBadges(ctx context.Context, userRef string) (*SweepResult, error) {
	if userRef == "" {
		return nil, NewValidationError("user ref is required", nil)
	}

	start := time.Now()
	result := &SweepResult{UserRef: userRef}

	fetches := map[models.ContentKind]*contentFetch{
		models.KindPost:       {},
		models.KindAnswer:     {},
		models.KindCollection: {},
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		f := fetches[models.KindPost]
		f.items, f.err = s.content.GetAuthoredPosts(ctx, userRef)
	}()
	go func() {
		defer wg.Done()
		f := fetches[models.KindAnswer]
		f.items, f.err = s.content.GetAuthoredAnswers(ctx, userRef)
	}()
	go func() {
		defer wg.Done()
		f := fetches[models.KindCollection]
		f.items, f.err = s.content.GetOwnedCollections(ctx, userRef)
	}()
	wg.Wait()

	var items []models.ContentItem
	for _, kind := range []models.ContentKind{models.KindPost, models.KindAnswer, models.KindCollection} {
		f := fetches[kind]
		if f.err != nil {
			result.Errors++
			s.logger.Error("Content fetch failed, skipping kind for this sweep",
				zap.String("user_ref", userRef),
				zap.String("content_kind", string(kind)),
				zap.Error(f.err),
			)
			continue
		}
		items = append(items, f.items...)
	}

	// Phase 1: per-item rules, one award slot per qualifying item.
	for i := range items {
		item := &items[i]
		dedupe := item.DedupeKey()

		for _, ev := range s.evaluators {
			if !ev.EvaluatesItem() || !ev.EvaluateItem(*item) {
				continue
			}
			s.award(ctx, userRef, ev.Definition().Key, &dedupe, result)
		}
		result.ItemsEvaluated++
	}

	// Phase 2: item-set rules over everything fetched this sweep.
	for _, ev := range s.evaluators {
		if !ev.EvaluatesItemSet() || !ev.EvaluateItemSet(items) {
			continue
		}
		s.award(ctx, userRef, ev.Definition().Key, nil, result)
	}

	// Phase 3: user aggregate rules.
	profile, err := s.content.GetUserProfile(ctx, userRef)
	if err != nil {
		result.Errors++
		s.logger.Error("Profile fetch failed, skipping aggregate phase",
			zap.String("user_ref", userRef),
			zap.Error(err),
		)
	} else {
		for _, ev := range s.evaluators {
			if !ev.EvaluatesUser() || !ev.EvaluateUser(*profile) {
				continue
			}
			s.award(ctx, userRef, ev.Definition().Key, nil, result)
		}
	}

	result.Duration = time.Since(start)

	s.logger.Info("Badge sweep completed",
		zap.String("user_ref", userRef),
		zap.Int("items_evaluated", result.ItemsEvaluated),
		zap.Int("awarded", result.Awarded),
		zap.Int("newly_awarded", result.NewlyAwarded),
		zap.Int("errors", result.Errors),
		zap.Duration("duration", result.Duration),
	)

	if s.bus != nil {
		event := events.NewSweepCompletedEvent(userRef, result.Awarded, result.NewlyAwarded, result.Duration)
		if err := s.bus.PublishAsync(ctx, event); err != nil {
			s.logger.Debug("Failed to publish sweep completed event", zap.Error(err))
		}
	}

	return result, nil
}

// award grants one slot and notifies when the grant is new. Failures are
// folded into the result; the sweep continues.
func (s *badgeService) award(ctx context.Context, userRef, badgeKey string, dedupeKey *string, result *SweepResult) {
	record, err := s.repo.Award(ctx, userRef, badgeKey, dedupeKey)
	if err != nil {
		result.Errors++
		s.logger.Error("Badge award failed",
			zap.String("user_ref", userRef),
			zap.String("badge_key", badgeKey),
			zap.Error(err),
		)
		return
	}
	if record == nil {
		// Unregistered key; already logged by the ledger.
		return
	}

	result.Awarded++
	result.Badges = append(result.Badges, record)
	if !record.IsNew {
		return
	}
	result.NewlyAwarded++

	s.logger.Info("Badge awarded",
		zap.String("user_ref", userRef),
		zap.String("badge_key", badgeKey),
		zap.String("slot", record.Slot()),
	)

	if err := s.notifier.NotifyBadgeAwarded(ctx, userRef, record); err != nil {
		// Notification is best-effort; the grant stands either way.
		s.logger.Error("Badge award notification failed",
			zap.String("user_ref", userRef),
			zap.String("badge_key", badgeKey),
			zap.Error(err),
		)
	}
}

// ===============================
// QUERIES
// ===============================

func (s *badgeService) GetUserBadges(ctx context.Context, userRef string) ([]*models.UserBadge, error) {
	if userRef == "" {
		return nil, NewValidationError("user ref is required", nil)
	}
	return s.repo.ListUserBadges(ctx, userRef)
}

func (s *badgeService) CountUserBadges(ctx context.Context, userRef string) (int64, error) {
	if userRef == "" {
		return 0, NewValidationError("user ref is required", nil)
	}
	return s.repo.CountUserBadges(ctx, userRef)
}

func (s *badgeService) ListDefinitions(ctx context.Context) ([]*models.BadgeDefinition, error) {
	return s.repo.ListDefinitions(ctx)
}
