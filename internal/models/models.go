// file: internal/models/models.go
package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// ===============================
// BADGE DEFINITIONS
// ===============================

// BadgeLevel is the ordered tier of a badge.
type BadgeLevel string

const (
	LevelBronze  BadgeLevel = "bronze"
	LevelSilver  BadgeLevel = "silver"
	LevelGold    BadgeLevel = "gold"
	LevelDiamond BadgeLevel = "diamond"
)

// Rank returns the ordinal position of the level (bronze < silver < gold < diamond).
func (l BadgeLevel) Rank() int {
	switch l {
	case LevelBronze:
		return 1
	case LevelSilver:
		return 2
	case LevelGold:
		return 3
	case LevelDiamond:
		return 4
	default:
		return 0
	}
}

// BadgeKind distinguishes how often a badge can be granted.
type BadgeKind string

const (
	// KindOneTime badges are granted at most once per user.
	KindOneTime BadgeKind = "one-time"
	// KindRepetitive badges are granted once per qualifying content item.
	KindRepetitive BadgeKind = "repetitive"
)

// BadgeDefinition is the immutable, code-defined metadata for one achievement.
// Definitions are registered into the ledger at startup by upsert-on-key and
// never mutated afterwards except by re-registration with the same key.
type BadgeDefinition struct {
	Key             string     `json:"key" db:"key" validate:"required,max=100"`
	Name            string     `json:"name" db:"name" validate:"required,max=150"`
	Description     string     `json:"description" db:"description" validate:"required,max=500"`
	Icon            string     `json:"icon" db:"icon" validate:"max=100"`
	Level           BadgeLevel `json:"level" db:"level" validate:"required,oneof=bronze silver gold diamond"`
	Kind            BadgeKind  `json:"kind" db:"kind" validate:"required,oneof=one-time repetitive"`
	ReputationAward int        `json:"reputation_award" db:"reputation_award" validate:"min=0"`
	IsSystemBadge   bool       `json:"is_system_badge" db:"is_system_badge"`

	// Timestamps (set by the ledger)
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserBadge represents one grant of a badge definition to one user.
// The tuple (user_ref, badge_key, dedupe_key) is unique; a NULL dedupe
// key is itself a unique one-time slot per (user_ref, badge_key).
type UserBadge struct {
	ID        int64     `json:"id" db:"id"`
	UserRef   string    `json:"user_ref" db:"user_ref"`
	BadgeKey  string    `json:"badge_key" db:"badge_key"`
	DedupeKey *string   `json:"dedupe_key,omitempty" db:"dedupe_key"`
	GrantedAt time.Time `json:"granted_at" db:"granted_at"`

	// IsNew reports whether this grant was created by the award call that
	// returned it, as opposed to an already-existing record.
	IsNew bool `json:"is_new" db:"-"`

	// Joined display fields (not in user_badges)
	BadgeName  string     `json:"badge_name,omitempty" db:"-"`
	BadgeLevel BadgeLevel `json:"badge_level,omitempty" db:"-"`
}

// Slot returns the award slot identity for logging and deduplication.
func (ub *UserBadge) Slot() string {
	if ub.DedupeKey == nil {
		return fmt.Sprintf("%s/%s", ub.UserRef, ub.BadgeKey)
	}
	return fmt.Sprintf("%s/%s/%s", ub.UserRef, ub.BadgeKey, *ub.DedupeKey)
}

// ===============================
// EVALUABLE CONTENT
// ===============================

// ContentKind discriminates the tagged union of evaluable content.
type ContentKind string

const (
	KindPost       ContentKind = "post"
	KindAnswer     ContentKind = "answer"
	KindCollection ContentKind = "collection"
)

// ContentItem is a point-in-time snapshot of one post, answer or collection,
// carrying only the attributes the badge evaluators read. The engine never
// writes these back; the content store owns them.
type ContentItem struct {
	ID      int64       `json:"id" db:"id"`
	Kind    ContentKind `json:"kind" db:"kind"`
	UserRef string      `json:"user_ref" db:"user_ref"`

	// Engagement
	Score     int `json:"score" db:"score"` // may be negative
	ViewCount int `json:"view_count" db:"view_count"`

	// Answers only
	IsCorrectAnswer bool `json:"is_correct_answer" db:"is_correct_answer"`

	// Collections only
	ItemCount     int `json:"item_count" db:"item_count"`
	FollowerCount int `json:"follower_count" db:"follower_count"`

	// Presentation
	HasHeaderImage bool        `json:"has_header_image" db:"has_header_image"`
	ImageCount     int         `json:"image_count" db:"image_count"`
	TagCount       int         `json:"tag_count" db:"tag_count"`
	Tags           StringArray `json:"tags" db:"tags"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DedupeKey builds the per-item award slot key, e.g. "post:42".
func (i *ContentItem) DedupeKey() string {
	return fmt.Sprintf("%s:%d", i.Kind, i.ID)
}

// UserProfile is a read-only projection of a user's lifetime counters,
// supplied by the content store. All-zero profiles are valid.
type UserProfile struct {
	UserRef string `json:"user_ref" db:"user_ref"`

	TotalQuestionsAuthored int `json:"total_questions_authored" db:"total_questions_authored"`
	TotalAnswersAuthored   int `json:"total_answers_authored" db:"total_answers_authored"`
	TotalArticlesAuthored  int `json:"total_articles_authored" db:"total_articles_authored"`
	TotalLinksAuthored     int `json:"total_links_authored" db:"total_links_authored"`
	TotalCommentsPosted    int `json:"total_comments_posted" db:"total_comments_posted"`
	TotalVotesCast         int `json:"total_votes_cast" db:"total_votes_cast"`
	TotalViewsAccrued      int `json:"total_views_accrued" db:"total_views_accrued"`
	TotalFollowersGained   int `json:"total_followers_gained" db:"total_followers_gained"`
	ReputationScore        int `json:"reputation_score" db:"reputation_score"`
}

// ===============================
// SQL HELPERS
// ===============================

// StringArray handles PostgreSQL text[] columns.
type StringArray []string

// Value implements driver.Valuer for StringArray.
func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}

	quoted := make([]string, len(s))
	for i, v := range s {
		quoted[i] = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return "{" + strings.Join(quoted, ",") + "}", nil
}

// Scan implements sql.Scanner for StringArray.
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported type for StringArray: %T", value)
	}

	raw = strings.Trim(raw, "{}")
	if raw == "" {
		*s = StringArray{}
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make(StringArray, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, `"`)
		p = strings.ReplaceAll(p, `\"`, `"`)
		result = append(result, p)
	}
	*s = result
	return nil
}
