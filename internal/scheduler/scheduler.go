// Package scheduler drives badge sweeps: a recurring full sweep over every
// known user, plus reactive single-user sweeps triggered by content
// publication events.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"merithub/internal/config"
	"merithub/internal/events"
	"merithub/internal/services"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Scheduler coordinates recurring and reactive badge sweeps.
type Scheduler struct {
	badges  services.BadgeService
	content services.ContentService
	bus     events.EventBus
	cfg     *config.BadgeConfig
	logger  *zap.Logger

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a scheduler. Call Start to begin sweeping.
func New(
	badgeService services.BadgeService,
	contentService services.ContentService,
	bus events.EventBus,
	cfg *config.BadgeConfig,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		badges:  badgeService,
		content: contentService,
		bus:     bus,
		cfg:     cfg,
		logger:  logger,
		stop:    make(chan struct{}),
	}
}

// Start subscribes the reactive trigger and launches the recurring sweep
// loop. A zero SweepInterval disables the recurring loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.bus != nil {
		handler := events.NewEventHandlerFunc("badge-sweep-on-publish", s.handleContentPublished)
		if err := s.bus.Subscribe(events.TypeContentPublished, handler); err != nil {
			return fmt.Errorf("failed to subscribe to content events: %w", err)
		}
	}

	if s.cfg.SweepInterval > 0 {
		s.wg.Add(1)
		go s.sweepLoop(ctx)
	} else {
		s.logger.Info("Recurring badge sweep disabled")
	}

	return nil
}

// Stop halts the recurring loop and waits for in-flight sweeps to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}

// handleContentPublished sweeps the publishing user immediately.
func (s *Scheduler) handleContentPublished(ctx context.Context, event events.Event) error {
	userRef := event.GetUserRef()
	if userRef == "" {
		return nil
	}

	sweepCtx, cancel := context.WithTimeout(ctx, s.cfg.SweepTimeout)
	defer cancel()

	if _, err := s.badges.ProcessUserBadges(sweepCtx, userRef); err != nil {
		// Returning the error lets the bus count the failure; the next
		// sweep of this user will catch up regardless.
		return fmt.Errorf("reactive sweep for %s failed: %w", userRef, err)
	}
	return nil
}

func (s *Scheduler) sweepLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	s.logger.Info("Recurring badge sweep started",
		zap.Duration("interval", s.cfg.SweepInterval),
		zap.Int("batch_size", s.cfg.BatchSize),
	)

	for {
		select {
		case <-ticker.C:
			s.RunFullSweep(ctx)
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RunFullSweep pages through every known user and sweeps each one. Page
// fetches are retried with exponential backoff; a page that keeps failing
// ends the run early rather than spinning on a broken store.
func (s *Scheduler) RunFullSweep(ctx context.Context) {
	start := time.Now()
	users, failures := 0, 0

	offset := 0
	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		var refs []string
		fetch := func() error {
			var err error
			refs, err = s.content.ListActiveUserRefs(ctx, s.cfg.BatchSize, offset)
			return err
		}
		policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
		if err := backoff.Retry(fetch, policy); err != nil {
			s.logger.Error("Failed to fetch user page, ending sweep run",
				zap.Int("offset", offset),
				zap.Error(err),
			)
			return
		}
		if len(refs) == 0 {
			break
		}

		for _, userRef := range refs {
			if err := s.sweepUser(ctx, userRef); err != nil {
				failures++
				s.logger.Error("User sweep failed",
					zap.String("user_ref", userRef),
					zap.Error(err),
				)
			}
			users++
		}
		offset += len(refs)
	}

	s.logger.Info("Full badge sweep finished",
		zap.Int("users", users),
		zap.Int("failures", failures),
		zap.Duration("duration", time.Since(start)),
	)
}

func (s *Scheduler) sweepUser(ctx context.Context, userRef string) error {
	sweepCtx, cancel := context.WithTimeout(ctx, s.cfg.SweepTimeout)
	defer cancel()

	_, err := s.badges.ProcessUserBadges(sweepCtx, userRef)
	return err
}
