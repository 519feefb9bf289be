package events

import (
	"time"

	"merithub/internal/models"
)

// Event types published and consumed by the badge engine.
const (
	TypeBadgeAwarded     = "badge.awarded"
	TypeContentPublished = "content.published"
	TypeSweepCompleted   = "badge.sweep_completed"
)

// BadgeAwardedEvent is emitted once per genuinely new badge grant. It is the
// hand-off point to the notification transport; delivery beyond the bus is
// someone else's problem.
type BadgeAwardedEvent struct {
	BaseEvent
	BadgeKey  string            `json:"badge_key"`
	BadgeName string            `json:"badge_name,omitempty"`
	DedupeKey *string           `json:"dedupe_key,omitempty"`
	GrantedAt time.Time         `json:"granted_at"`
	Level     models.BadgeLevel `json:"level,omitempty"`
}

// NewBadgeAwardedEvent creates a badge awarded event from a grant record
func NewBadgeAwardedEvent(userRef string, record *models.UserBadge) *BadgeAwardedEvent {
	return &BadgeAwardedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: TypeBadgeAwarded,
			Timestamp: time.Now(),
			UserRef:   userRef,
		},
		BadgeKey:  record.BadgeKey,
		BadgeName: record.BadgeName,
		DedupeKey: record.DedupeKey,
		GrantedAt: record.GrantedAt,
		Level:     record.BadgeLevel,
	}
}

// ContentPublishedEvent is the reactive trigger for a sweep: the platform
// emits it whenever a user publishes a post, answer or collection.
type ContentPublishedEvent struct {
	BaseEvent
	ContentKind models.ContentKind `json:"content_kind"`
	ContentID   int64              `json:"content_id"`
}

// NewContentPublishedEvent creates a content published event
func NewContentPublishedEvent(userRef string, kind models.ContentKind, contentID int64) *ContentPublishedEvent {
	return &ContentPublishedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: TypeContentPublished,
			Timestamp: time.Now(),
			UserRef:   userRef,
		},
		ContentKind: kind,
		ContentID:   contentID,
	}
}

// SweepCompletedEvent reports the outcome of one user's sweep for observers.
type SweepCompletedEvent struct {
	BaseEvent
	AwardCount int           `json:"award_count"`
	NewCount   int           `json:"new_count"`
	Duration   time.Duration `json:"duration"`
}

// NewSweepCompletedEvent creates a sweep completed event
func NewSweepCompletedEvent(userRef string, awardCount, newCount int, duration time.Duration) *SweepCompletedEvent {
	return &SweepCompletedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: TypeSweepCompleted,
			Timestamp: time.Now(),
			UserRef:   userRef,
		},
		AwardCount: awardCount,
		NewCount:   newCount,
		Duration:   duration,
	}
}
