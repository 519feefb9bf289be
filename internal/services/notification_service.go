package services

import (
	"context"
	"fmt"

	"merithub/internal/events"
	"merithub/internal/models"

	"go.uber.org/zap"
)

// eventNotificationService delivers award notifications by publishing to
// the event bus. Downstream transports (email, in-app feed, webhooks)
// subscribe to the badge.awarded topic.
type eventNotificationService struct {
	bus    events.EventBus
	logger *zap.Logger
}

// NewNotificationService creates an event bus backed notification service
func NewNotificationService(bus events.EventBus, logger *zap.Logger) NotificationService {
	return &eventNotificationService{
		bus:    bus,
		logger: logger,
	}
}

// NotifyBadgeAwarded publishes one badge.awarded event for a new grant.
func (s *eventNotificationService) NotifyBadgeAwarded(ctx context.Context, userRef string, badge *models.UserBadge) error {
	event := events.NewBadgeAwardedEvent(userRef, badge)

	if err := s.bus.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish badge awarded event for %s: %w", badge.Slot(), err)
	}

	s.logger.Debug("Badge award notification published",
		zap.String("user_ref", userRef),
		zap.String("badge_key", badge.BadgeKey),
		zap.String("event_id", event.GetEventID()),
	)

	return nil
}
