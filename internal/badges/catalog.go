package badges

import (
	"fmt"

	"merithub/internal/models"
)

// ===============================
// BUILT-IN BADGE CATALOG
// ===============================

// builtinSpecs is the code-defined badge catalog. Each entry pairs the badge
// metadata with its rule; the engine registers the definitions into the
// ledger at startup and evaluates the rules during sweeps. Order here is the
// evaluation order.
//
// Operator conventions: per-item engagement thresholds are strict ("more
// than N") unless the description says "N or more"; set counts and profile
// counters are always inclusive.
var builtinSpecs = []RuleSpec{
	// --- Per-item: questions (posts) ---
	{
		Def: models.BadgeDefinition{
			Key: "good-question", Name: "Good Question",
			Description: "Question scored more than 10", Icon: "fa-circle-question",
			Level: models.LevelBronze, Kind: models.KindRepetitive, ReputationAward: 5,
		},
		Item: &ItemThresholdSpec{Kind: models.KindPost, Field: FieldScore, Threshold: 10},
	},
	{
		Def: models.BadgeDefinition{
			Key: "great-question", Name: "Great Question",
			Description: "Question scored more than 25", Icon: "fa-circle-question",
			Level: models.LevelSilver, Kind: models.KindRepetitive, ReputationAward: 15,
		},
		Item: &ItemThresholdSpec{Kind: models.KindPost, Field: FieldScore, Threshold: 25},
	},
	{
		Def: models.BadgeDefinition{
			Key: "stellar-question", Name: "Stellar Question",
			Description: "Question scored more than 100", Icon: "fa-star",
			Level: models.LevelGold, Kind: models.KindRepetitive, ReputationAward: 50,
		},
		Item: &ItemThresholdSpec{Kind: models.KindPost, Field: FieldScore, Threshold: 100},
	},
	{
		Def: models.BadgeDefinition{
			Key: "popular-question", Name: "Popular Question",
			Description: "Question viewed more than 1000 times", Icon: "fa-eye",
			Level: models.LevelBronze, Kind: models.KindRepetitive, ReputationAward: 10,
		},
		Item: &ItemThresholdSpec{Kind: models.KindPost, Field: FieldViewCount, Threshold: 1000},
	},
	{
		Def: models.BadgeDefinition{
			Key: "famous-question", Name: "Famous Question",
			Description: "Question viewed more than 10000 times", Icon: "fa-fire",
			Level: models.LevelGold, Kind: models.KindRepetitive, ReputationAward: 50,
		},
		Item: &ItemThresholdSpec{Kind: models.KindPost, Field: FieldViewCount, Threshold: 10000},
	},
	{
		Def: models.BadgeDefinition{
			Key: "illustrated-question", Name: "Illustrated Question",
			Description: "Question with a header image and 1 or more inline images", Icon: "fa-image",
			Level: models.LevelBronze, Kind: models.KindRepetitive, ReputationAward: 5,
		},
		Item: &ItemThresholdSpec{
			Kind: models.KindPost, Field: FieldImageCount, Threshold: 1,
			Inclusive: true, RequireHeaderImage: true,
		},
	},
	{
		Def: models.BadgeDefinition{
			Key: "well-tagged-question", Name: "Well-Tagged Question",
			Description: "Question with 3 or more tags", Icon: "fa-tags",
			Level: models.LevelBronze, Kind: models.KindRepetitive, ReputationAward: 2,
		},
		Item: &ItemThresholdSpec{Kind: models.KindPost, Field: FieldTagCount, Threshold: 3, Inclusive: true},
	},

	// --- Per-item: answers ---
	{
		Def: models.BadgeDefinition{
			Key: "good-answer", Name: "Good Answer",
			Description: "Answer scored more than 10", Icon: "fa-comment",
			Level: models.LevelBronze, Kind: models.KindRepetitive, ReputationAward: 5,
		},
		Item: &ItemThresholdSpec{Kind: models.KindAnswer, Field: FieldScore, Threshold: 10},
	},
	{
		Def: models.BadgeDefinition{
			Key: "great-answer", Name: "Great Answer",
			Description: "Answer scored more than 25", Icon: "fa-comment",
			Level: models.LevelSilver, Kind: models.KindRepetitive, ReputationAward: 15,
		},
		Item: &ItemThresholdSpec{Kind: models.KindAnswer, Field: FieldScore, Threshold: 25},
	},
	{
		Def: models.BadgeDefinition{
			Key: "stellar-answer", Name: "Stellar Answer",
			Description: "Answer scored more than 100", Icon: "fa-star",
			Level: models.LevelGold, Kind: models.KindRepetitive, ReputationAward: 50,
		},
		Item: &ItemThresholdSpec{Kind: models.KindAnswer, Field: FieldScore, Threshold: 100},
	},
	{
		Def: models.BadgeDefinition{
			Key: "noticed-answer", Name: "Noticed Answer",
			Description: "Answer viewed more than 500 times", Icon: "fa-eye",
			Level: models.LevelBronze, Kind: models.KindRepetitive, ReputationAward: 5,
		},
		Item: &ItemThresholdSpec{Kind: models.KindAnswer, Field: FieldViewCount, Threshold: 500},
	},

	// --- Per-item: collections ---
	{
		Def: models.BadgeDefinition{
			Key: "curated-collection", Name: "Curated Collection",
			Description: "Collection with 5 or more items", Icon: "fa-folder",
			Level: models.LevelBronze, Kind: models.KindRepetitive, ReputationAward: 5,
		},
		Item: &ItemThresholdSpec{Kind: models.KindCollection, Field: FieldItemCount, Threshold: 5, Inclusive: true},
	},
	{
		Def: models.BadgeDefinition{
			Key: "packed-collection", Name: "Packed Collection",
			Description: "Collection with more than 20 items", Icon: "fa-folder-tree",
			Level: models.LevelSilver, Kind: models.KindRepetitive, ReputationAward: 15,
		},
		Item: &ItemThresholdSpec{Kind: models.KindCollection, Field: FieldItemCount, Threshold: 20},
	},
	{
		Def: models.BadgeDefinition{
			Key: "followed-collection", Name: "Followed Collection",
			Description: "Collection with 5 or more followers", Icon: "fa-users",
			Level: models.LevelSilver, Kind: models.KindRepetitive, ReputationAward: 10,
		},
		Item: &ItemThresholdSpec{Kind: models.KindCollection, Field: FieldFollowerCount, Threshold: 5, Inclusive: true},
	},
	{
		Def: models.BadgeDefinition{
			Key: "popular-collection", Name: "Popular Collection",
			Description: "Collection scored more than 25", Icon: "fa-fire",
			Level: models.LevelGold, Kind: models.KindRepetitive, ReputationAward: 25,
		},
		Item: &ItemThresholdSpec{Kind: models.KindCollection, Field: FieldScore, Threshold: 25},
	},

	// --- One-time: content set milestones ---
	{
		Def: models.BadgeDefinition{
			Key: "solution-author", Name: "Solution Author",
			Description: "Wrote 1 or more accepted answers", Icon: "fa-check",
			Level: models.LevelBronze, Kind: models.KindOneTime, ReputationAward: 10,
		},
		Set: &SetCountSpec{Kind: models.KindAnswer, MinCount: 1, CorrectOnly: true},
	},
	{
		Def: models.BadgeDefinition{
			Key: "problem-solver", Name: "Problem Solver",
			Description: "Wrote 10 or more accepted answers", Icon: "fa-check-double",
			Level: models.LevelGold, Kind: models.KindOneTime, ReputationAward: 100,
		},
		Set: &SetCountSpec{Kind: models.KindAnswer, MinCount: 10, CorrectOnly: true},
	},
	{
		Def: models.BadgeDefinition{
			Key: "collector", Name: "Collector",
			Description: "Created 1 or more collections", Icon: "fa-folder-plus",
			Level: models.LevelBronze, Kind: models.KindOneTime, ReputationAward: 5,
		},
		Set: &SetCountSpec{Kind: models.KindCollection, MinCount: 1},
	},
	{
		Def: models.BadgeDefinition{
			Key: "archivist", Name: "Archivist",
			Description: "Created 5 or more collections", Icon: "fa-box-archive",
			Level: models.LevelSilver, Kind: models.KindOneTime, ReputationAward: 25,
		},
		Set: &SetCountSpec{Kind: models.KindCollection, MinCount: 5},
	},
	{
		Def: models.BadgeDefinition{
			Key: "prolific-author", Name: "Prolific Author",
			Description: "Published 20 or more questions", Icon: "fa-pen-nib",
			Level: models.LevelSilver, Kind: models.KindOneTime, ReputationAward: 50,
		},
		Set: &SetCountSpec{Kind: models.KindPost, MinCount: 20},
	},

	// --- One-time: reputation tiers ---
	{
		Def: models.BadgeDefinition{
			Key: "contributor", Name: "Contributor",
			Description: "Earned 100 or more reputation", Icon: "fa-seedling",
			Level: models.LevelBronze, Kind: models.KindOneTime, ReputationAward: 0, IsSystemBadge: true,
		},
		Profile: &ProfileSpec{Requirements: []CounterRequirement{{Counter: CounterReputation, Min: 100}}},
	},
	{
		Def: models.BadgeDefinition{
			Key: "established", Name: "Established",
			Description: "Earned 1000 or more reputation", Icon: "fa-tree",
			Level: models.LevelSilver, Kind: models.KindOneTime, ReputationAward: 0, IsSystemBadge: true,
		},
		Profile: &ProfileSpec{Requirements: []CounterRequirement{{Counter: CounterReputation, Min: 1000}}},
	},
	{
		Def: models.BadgeDefinition{
			Key: "trusted", Name: "Trusted",
			Description: "Earned 5000 or more reputation", Icon: "fa-shield",
			Level: models.LevelGold, Kind: models.KindOneTime, ReputationAward: 0, IsSystemBadge: true,
		},
		Profile: &ProfileSpec{Requirements: []CounterRequirement{{Counter: CounterReputation, Min: 5000}}},
	},
	{
		Def: models.BadgeDefinition{
			Key: "legendary", Name: "Legendary",
			Description: "Earned 20000 or more reputation", Icon: "fa-crown",
			Level: models.LevelDiamond, Kind: models.KindOneTime, ReputationAward: 0, IsSystemBadge: true,
		},
		Profile: &ProfileSpec{Requirements: []CounterRequirement{{Counter: CounterReputation, Min: 20000}}},
	},

	// --- One-time: participation milestones ---
	{
		Def: models.BadgeDefinition{
			Key: "commentator", Name: "Commentator",
			Description: "Posted 10 or more comments", Icon: "fa-comments",
			Level: models.LevelBronze, Kind: models.KindOneTime, ReputationAward: 5,
		},
		Profile: &ProfileSpec{Requirements: []CounterRequirement{{Counter: CounterComments, Min: 10}}},
	},
	{
		Def: models.BadgeDefinition{
			Key: "pundit", Name: "Pundit",
			Description: "Posted 100 or more comments", Icon: "fa-comments",
			Level: models.LevelSilver, Kind: models.KindOneTime, ReputationAward: 25,
		},
		Profile: &ProfileSpec{Requirements: []CounterRequirement{{Counter: CounterComments, Min: 100}}},
	},
	{
		Def: models.BadgeDefinition{
			Key: "supporter", Name: "Supporter",
			Description: "Cast 10 or more votes", Icon: "fa-thumbs-up",
			Level: models.LevelBronze, Kind: models.KindOneTime, ReputationAward: 5,
		},
		Profile: &ProfileSpec{Requirements: []CounterRequirement{{Counter: CounterVotes, Min: 10}}},
	},
	{
		Def: models.BadgeDefinition{
			Key: "civic-duty", Name: "Civic Duty",
			Description: "Cast 300 or more votes", Icon: "fa-check-to-slot",
			Level: models.LevelGold, Kind: models.KindOneTime, ReputationAward: 50,
		},
		Profile: &ProfileSpec{Requirements: []CounterRequirement{{Counter: CounterVotes, Min: 300}}},
	},
	{
		Def: models.BadgeDefinition{
			Key: "audience", Name: "Audience",
			Description: "Content viewed 10000 or more times in total", Icon: "fa-eye",
			Level: models.LevelSilver, Kind: models.KindOneTime, ReputationAward: 25,
		},
		Profile: &ProfileSpec{Requirements: []CounterRequirement{{Counter: CounterViews, Min: 10000}}},
	},
	{
		Def: models.BadgeDefinition{
			Key: "crowd-pleaser", Name: "Crowd Pleaser",
			Description: "Gained 50 or more followers", Icon: "fa-users",
			Level: models.LevelGold, Kind: models.KindOneTime, ReputationAward: 50,
		},
		Profile: &ProfileSpec{Requirements: []CounterRequirement{{Counter: CounterFollowers, Min: 50}}},
	},

	// --- One-time: breadth badges (every requirement must hold) ---
	{
		Def: models.BadgeDefinition{
			Key: "encyclopedia", Name: "Encyclopedia",
			Description: "Authored 1 or more of each: questions, answers, articles and links", Icon: "fa-book",
			Level: models.LevelSilver, Kind: models.KindOneTime, ReputationAward: 25,
		},
		Profile: &ProfileSpec{Requirements: []CounterRequirement{
			{Counter: CounterQuestions, Min: 1},
			{Counter: CounterAnswers, Min: 1},
			{Counter: CounterArticles, Min: 1},
			{Counter: CounterLinks, Min: 1},
		}},
	},
	{
		Def: models.BadgeDefinition{
			Key: "omni-scholar", Name: "Omni-Scholar",
			Description: "Authored 10 or more of each: questions, answers, articles and links", Icon: "fa-graduation-cap",
			Level: models.LevelDiamond, Kind: models.KindOneTime, ReputationAward: 200,
		},
		Profile: &ProfileSpec{Requirements: []CounterRequirement{
			{Counter: CounterQuestions, Min: 10},
			{Counter: CounterAnswers, Min: 10},
			{Counter: CounterArticles, Min: 10},
			{Counter: CounterLinks, Min: 10},
		}},
	},
}

// BuiltinEvaluators compiles the built-in catalog. It fails if any spec is
// malformed or if two entries share a key.
func BuiltinEvaluators() ([]Evaluator, error) {
	evaluators := make([]Evaluator, 0, len(builtinSpecs))
	seen := make(map[string]bool, len(builtinSpecs))

	for _, spec := range builtinSpecs {
		if seen[spec.Def.Key] {
			return nil, fmt.Errorf("duplicate badge key %q in catalog", spec.Def.Key)
		}
		seen[spec.Def.Key] = true

		ev, err := NewEvaluator(spec)
		if err != nil {
			return nil, err
		}
		evaluators = append(evaluators, ev)
	}
	return evaluators, nil
}

// Catalog returns the built-in evaluators followed by any custom evaluators,
// in a fixed order. The returned slice is owned by the caller; the engine
// takes its evaluator list once at construction and never changes it.
func Catalog(custom ...Evaluator) ([]Evaluator, error) {
	evaluators, err := BuiltinEvaluators()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(evaluators)+len(custom))
	for _, ev := range evaluators {
		seen[ev.Definition().Key] = true
	}
	for _, ev := range custom {
		key := ev.Definition().Key
		if seen[key] {
			return nil, fmt.Errorf("duplicate badge key %q in catalog", key)
		}
		seen[key] = true
		evaluators = append(evaluators, ev)
	}
	return evaluators, nil
}
