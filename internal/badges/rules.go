package badges

import (
	"fmt"

	"merithub/internal/models"
	"merithub/internal/validation"
)

// ===============================
// RULE SPECIFICATIONS
// ===============================

// ItemField names a numeric attribute of a content item that a threshold
// rule compares against.
type ItemField string

const (
	FieldScore         ItemField = "score"
	FieldViewCount     ItemField = "view_count"
	FieldItemCount     ItemField = "item_count"
	FieldFollowerCount ItemField = "follower_count"
	FieldImageCount    ItemField = "image_count"
	FieldTagCount      ItemField = "tag_count"
)

// valueOf reads the named field from an item. Unknown fields read as zero,
// matching the "missing numeric fields are zero" contract.
func (f ItemField) valueOf(item models.ContentItem) int {
	switch f {
	case FieldScore:
		return item.Score
	case FieldViewCount:
		return item.ViewCount
	case FieldItemCount:
		return item.ItemCount
	case FieldFollowerCount:
		return item.FollowerCount
	case FieldImageCount:
		return item.ImageCount
	case FieldTagCount:
		return item.TagCount
	default:
		return 0
	}
}

// ProfileCounter names one lifetime counter of the user aggregate profile.
type ProfileCounter string

const (
	CounterQuestions  ProfileCounter = "questions_authored"
	CounterAnswers    ProfileCounter = "answers_authored"
	CounterArticles   ProfileCounter = "articles_authored"
	CounterLinks      ProfileCounter = "links_authored"
	CounterComments   ProfileCounter = "comments_posted"
	CounterVotes      ProfileCounter = "votes_cast"
	CounterViews      ProfileCounter = "views_accrued"
	CounterFollowers  ProfileCounter = "followers_gained"
	CounterReputation ProfileCounter = "reputation"
)

func (c ProfileCounter) valueOf(profile models.UserProfile) int {
	switch c {
	case CounterQuestions:
		return profile.TotalQuestionsAuthored
	case CounterAnswers:
		return profile.TotalAnswersAuthored
	case CounterArticles:
		return profile.TotalArticlesAuthored
	case CounterLinks:
		return profile.TotalLinksAuthored
	case CounterComments:
		return profile.TotalCommentsPosted
	case CounterVotes:
		return profile.TotalVotesCast
	case CounterViews:
		return profile.TotalViewsAccrued
	case CounterFollowers:
		return profile.TotalFollowersGained
	case CounterReputation:
		return profile.ReputationScore
	default:
		return 0
	}
}

// ItemThresholdSpec awards once per content item whose numeric field clears
// a threshold. Whether the comparison is strict (">") or inclusive (">=")
// is part of each badge's fixed contract; the badge description documents
// which operator applies.
type ItemThresholdSpec struct {
	Kind      models.ContentKind `validate:"required,oneof=post answer collection"`
	Field     ItemField          `validate:"required"`
	Threshold int                `validate:"min=0"`
	// Inclusive selects ">= Threshold" ("N or more"); the default is the
	// strict "> Threshold" ("more than N").
	Inclusive bool
	// RequireHeaderImage additionally requires the item to carry a header
	// image. Used by presentation badges.
	RequireHeaderImage bool
}

// SetCountSpec awards once per user when the fetched collection contains at
// least MinCount matching items. Counting predicates are always inclusive.
type SetCountSpec struct {
	Kind     models.ContentKind `validate:"required,oneof=post answer collection"`
	MinCount int                `validate:"min=1"`
	// CorrectOnly restricts counting to answers marked correct.
	CorrectOnly bool
}

// CounterRequirement is one conjunct of a profile rule: the named lifetime
// counter must be at least Min. Aggregate counters are always inclusive.
type CounterRequirement struct {
	Counter ProfileCounter `validate:"required"`
	Min     int            `validate:"min=1"`
}

// ProfileSpec awards once per user when every counter requirement is met
// simultaneously.
type ProfileSpec struct {
	Requirements []CounterRequirement `validate:"required,min=1,dive"`
}

// RuleSpec describes one catalog entry: a badge definition plus exactly one
// rule shape. The catalog is a table of these, interpreted by three generic
// evaluators, rather than one bespoke type per badge.
type RuleSpec struct {
	Def models.BadgeDefinition `validate:"required"`

	Item    *ItemThresholdSpec
	Set     *SetCountSpec
	Profile *ProfileSpec
}

// ===============================
// GENERIC RULE EVALUATORS
// ===============================

type itemThresholdEvaluator struct {
	baseEvaluator
	spec ItemThresholdSpec
}

func (e itemThresholdEvaluator) EvaluatesItem() bool { return true }

func (e itemThresholdEvaluator) EvaluateItem(item models.ContentItem) bool {
	if item.Kind != e.spec.Kind {
		return false
	}
	if e.spec.RequireHeaderImage && !item.HasHeaderImage {
		return false
	}

	value := e.spec.Field.valueOf(item)
	if e.spec.Inclusive {
		return value >= e.spec.Threshold
	}
	return value > e.spec.Threshold
}

type setCountEvaluator struct {
	baseEvaluator
	spec SetCountSpec
}

func (e setCountEvaluator) EvaluatesItemSet() bool { return true }

func (e setCountEvaluator) EvaluateItemSet(items []models.ContentItem) bool {
	count := 0
	for _, item := range items {
		if item.Kind != e.spec.Kind {
			continue
		}
		if e.spec.CorrectOnly && !item.IsCorrectAnswer {
			continue
		}
		count++
		if count >= e.spec.MinCount {
			return true
		}
	}
	return false
}

type profileEvaluator struct {
	baseEvaluator
	spec ProfileSpec
}

func (e profileEvaluator) EvaluatesUser() bool { return true }

func (e profileEvaluator) EvaluateUser(profile models.UserProfile) bool {
	for _, req := range e.spec.Requirements {
		if req.Counter.valueOf(profile) < req.Min {
			return false
		}
	}
	return len(e.spec.Requirements) > 0
}

// ===============================
// RULE COMPILATION
// ===============================

// NewEvaluator compiles a rule spec into its evaluator. The definition and
// the rule shape are validated; a spec must set exactly one shape, and the
// badge kind must agree with the shape (per-item rules are repetitive,
// set and profile rules are one-time).
func NewEvaluator(spec RuleSpec) (Evaluator, error) {
	if err := validation.ValidateStruct(&spec.Def); err != nil {
		return nil, fmt.Errorf("badge %q: invalid definition: %w", spec.Def.Key, err)
	}

	shapes := 0
	if spec.Item != nil {
		shapes++
	}
	if spec.Set != nil {
		shapes++
	}
	if spec.Profile != nil {
		shapes++
	}
	if shapes != 1 {
		return nil, fmt.Errorf("badge %q: rule spec must set exactly one shape, got %d", spec.Def.Key, shapes)
	}

	base := baseEvaluator{def: spec.Def}

	switch {
	case spec.Item != nil:
		if spec.Def.Kind != models.KindRepetitive {
			return nil, fmt.Errorf("badge %q: per-item rules must be repetitive", spec.Def.Key)
		}
		if err := validation.ValidateStruct(spec.Item); err != nil {
			return nil, fmt.Errorf("badge %q: invalid item rule: %w", spec.Def.Key, err)
		}
		return itemThresholdEvaluator{baseEvaluator: base, spec: *spec.Item}, nil

	case spec.Set != nil:
		if spec.Def.Kind != models.KindOneTime {
			return nil, fmt.Errorf("badge %q: set rules must be one-time", spec.Def.Key)
		}
		if err := validation.ValidateStruct(spec.Set); err != nil {
			return nil, fmt.Errorf("badge %q: invalid set rule: %w", spec.Def.Key, err)
		}
		return setCountEvaluator{baseEvaluator: base, spec: *spec.Set}, nil

	default:
		if spec.Def.Kind != models.KindOneTime {
			return nil, fmt.Errorf("badge %q: profile rules must be one-time", spec.Def.Key)
		}
		if err := validation.ValidateStruct(spec.Profile); err != nil {
			return nil, fmt.Errorf("badge %q: invalid profile rule: %w", spec.Def.Key, err)
		}
		return profileEvaluator{baseEvaluator: base, spec: *spec.Profile}, nil
	}
}
