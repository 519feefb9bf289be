package badges

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merithub/internal/models"
)

func mustEvaluator(t *testing.T, spec RuleSpec) Evaluator {
	t.Helper()
	ev, err := NewEvaluator(spec)
	require.NoError(t, err)
	return ev
}

func repetitiveDef(key string) models.BadgeDefinition {
	return models.BadgeDefinition{
		Key: key, Name: key, Description: key,
		Level: models.LevelBronze, Kind: models.KindRepetitive,
	}
}

func oneTimeDef(key string) models.BadgeDefinition {
	return models.BadgeDefinition{
		Key: key, Name: key, Description: key,
		Level: models.LevelBronze, Kind: models.KindOneTime,
	}
}

func TestItemThresholdEvaluator(t *testing.T) {
	strict := mustEvaluator(t, RuleSpec{
		Def:  repetitiveDef("score-strict"),
		Item: &ItemThresholdSpec{Kind: models.KindPost, Field: FieldScore, Threshold: 10},
	})
	inclusive := mustEvaluator(t, RuleSpec{
		Def:  repetitiveDef("count-inclusive"),
		Item: &ItemThresholdSpec{Kind: models.KindCollection, Field: FieldItemCount, Threshold: 5, Inclusive: true},
	})

	t.Run("strict comparison excludes the boundary", func(t *testing.T) {
		assert.False(t, strict.EvaluateItem(models.ContentItem{Kind: models.KindPost, Score: 10}))
		assert.True(t, strict.EvaluateItem(models.ContentItem{Kind: models.KindPost, Score: 11}))
	})

	t.Run("inclusive comparison includes the boundary", func(t *testing.T) {
		assert.False(t, inclusive.EvaluateItem(models.ContentItem{Kind: models.KindCollection, ItemCount: 4}))
		assert.True(t, inclusive.EvaluateItem(models.ContentItem{Kind: models.KindCollection, ItemCount: 5}))
	})

	t.Run("wrong content kind never qualifies", func(t *testing.T) {
		assert.False(t, strict.EvaluateItem(models.ContentItem{Kind: models.KindAnswer, Score: 500}))
		assert.False(t, inclusive.EvaluateItem(models.ContentItem{Kind: models.KindPost, ItemCount: 50}))
	})

	t.Run("negative scores never clear a threshold", func(t *testing.T) {
		assert.False(t, strict.EvaluateItem(models.ContentItem{Kind: models.KindPost, Score: -3}))
	})

	t.Run("header image requirement is conjunctive", func(t *testing.T) {
		illustrated := mustEvaluator(t, RuleSpec{
			Def: repetitiveDef("illustrated"),
			Item: &ItemThresholdSpec{
				Kind: models.KindPost, Field: FieldImageCount, Threshold: 1,
				Inclusive: true, RequireHeaderImage: true,
			},
		})
		assert.False(t, illustrated.EvaluateItem(models.ContentItem{Kind: models.KindPost, ImageCount: 3}))
		assert.False(t, illustrated.EvaluateItem(models.ContentItem{Kind: models.KindPost, HasHeaderImage: true}))
		assert.True(t, illustrated.EvaluateItem(models.ContentItem{Kind: models.KindPost, HasHeaderImage: true, ImageCount: 1}))
	})

	t.Run("capability queries", func(t *testing.T) {
		assert.True(t, strict.EvaluatesItem())
		assert.False(t, strict.EvaluatesItemSet())
		assert.False(t, strict.EvaluatesUser())
	})

	t.Run("non-applicable evaluation modes return false", func(t *testing.T) {
		assert.False(t, strict.EvaluateItemSet([]models.ContentItem{{Kind: models.KindPost, Score: 999}}))
		assert.False(t, strict.EvaluateUser(models.UserProfile{ReputationScore: 999}))
	})
}

func TestSetCountEvaluator(t *testing.T) {
	solver := mustEvaluator(t, RuleSpec{
		Def: oneTimeDef("solver"),
		Set: &SetCountSpec{Kind: models.KindAnswer, MinCount: 2, CorrectOnly: true},
	})

	t.Run("empty set never qualifies", func(t *testing.T) {
		assert.False(t, solver.EvaluateItemSet(nil))
		assert.False(t, solver.EvaluateItemSet([]models.ContentItem{}))
	})

	t.Run("counts only matching items", func(t *testing.T) {
		items := []models.ContentItem{
			{Kind: models.KindAnswer, IsCorrectAnswer: true},
			{Kind: models.KindAnswer, IsCorrectAnswer: false},
			{Kind: models.KindPost, IsCorrectAnswer: true},
		}
		assert.False(t, solver.EvaluateItemSet(items))

		items = append(items, models.ContentItem{Kind: models.KindAnswer, IsCorrectAnswer: true})
		assert.True(t, solver.EvaluateItemSet(items))
	})

	t.Run("min count is inclusive", func(t *testing.T) {
		collector := mustEvaluator(t, RuleSpec{
			Def: oneTimeDef("collector-rule"),
			Set: &SetCountSpec{Kind: models.KindCollection, MinCount: 1},
		})
		assert.True(t, collector.EvaluateItemSet([]models.ContentItem{{Kind: models.KindCollection}}))
	})

	t.Run("capability queries", func(t *testing.T) {
		assert.False(t, solver.EvaluatesItem())
		assert.True(t, solver.EvaluatesItemSet())
		assert.False(t, solver.EvaluatesUser())
	})

	t.Run("non-applicable evaluation modes return false", func(t *testing.T) {
		assert.False(t, solver.EvaluateItem(models.ContentItem{Kind: models.KindAnswer, IsCorrectAnswer: true}))
		assert.False(t, solver.EvaluateUser(models.UserProfile{}))
	})
}

func TestProfileEvaluator(t *testing.T) {
	breadth := mustEvaluator(t, RuleSpec{
		Def: oneTimeDef("breadth"),
		Profile: &ProfileSpec{Requirements: []CounterRequirement{
			{Counter: CounterQuestions, Min: 1},
			{Counter: CounterAnswers, Min: 1},
			{Counter: CounterArticles, Min: 1},
		}},
	})

	t.Run("all requirements must hold simultaneously", func(t *testing.T) {
		assert.False(t, breadth.EvaluateUser(models.UserProfile{
			TotalQuestionsAuthored: 5,
			TotalAnswersAuthored:   5,
		}))
		assert.True(t, breadth.EvaluateUser(models.UserProfile{
			TotalQuestionsAuthored: 1,
			TotalAnswersAuthored:   1,
			TotalArticlesAuthored:  1,
		}))
	})

	t.Run("zero profile never qualifies", func(t *testing.T) {
		assert.False(t, breadth.EvaluateUser(models.UserProfile{}))
	})

	t.Run("thresholds are inclusive", func(t *testing.T) {
		rep := mustEvaluator(t, RuleSpec{
			Def:     oneTimeDef("rep-tier"),
			Profile: &ProfileSpec{Requirements: []CounterRequirement{{Counter: CounterReputation, Min: 100}}},
		})
		assert.False(t, rep.EvaluateUser(models.UserProfile{ReputationScore: 99}))
		assert.True(t, rep.EvaluateUser(models.UserProfile{ReputationScore: 100}))
	})

	t.Run("capability queries", func(t *testing.T) {
		assert.False(t, breadth.EvaluatesItem())
		assert.False(t, breadth.EvaluatesItemSet())
		assert.True(t, breadth.EvaluatesUser())
	})
}

func TestNewEvaluatorValidation(t *testing.T) {
	t.Run("rejects spec with no rule shape", func(t *testing.T) {
		_, err := NewEvaluator(RuleSpec{Def: oneTimeDef("shapeless")})
		assert.Error(t, err)
	})

	t.Run("rejects spec with multiple rule shapes", func(t *testing.T) {
		_, err := NewEvaluator(RuleSpec{
			Def:     oneTimeDef("two-shapes"),
			Set:     &SetCountSpec{Kind: models.KindPost, MinCount: 1},
			Profile: &ProfileSpec{Requirements: []CounterRequirement{{Counter: CounterVotes, Min: 1}}},
		})
		assert.Error(t, err)
	})

	t.Run("rejects one-time item rules", func(t *testing.T) {
		_, err := NewEvaluator(RuleSpec{
			Def:  oneTimeDef("one-time-item"),
			Item: &ItemThresholdSpec{Kind: models.KindPost, Field: FieldScore, Threshold: 10},
		})
		assert.Error(t, err)
	})

	t.Run("rejects repetitive set and profile rules", func(t *testing.T) {
		_, err := NewEvaluator(RuleSpec{
			Def: repetitiveDef("repetitive-set"),
			Set: &SetCountSpec{Kind: models.KindPost, MinCount: 1},
		})
		assert.Error(t, err)

		_, err = NewEvaluator(RuleSpec{
			Def:     repetitiveDef("repetitive-profile"),
			Profile: &ProfileSpec{Requirements: []CounterRequirement{{Counter: CounterVotes, Min: 1}}},
		})
		assert.Error(t, err)
	})

	t.Run("rejects invalid definition", func(t *testing.T) {
		_, err := NewEvaluator(RuleSpec{
			Def:  models.BadgeDefinition{Key: "no-name", Level: models.LevelBronze, Kind: models.KindRepetitive},
			Item: &ItemThresholdSpec{Kind: models.KindPost, Field: FieldScore, Threshold: 10},
		})
		assert.Error(t, err)
	})
}

func TestBuiltinCatalog(t *testing.T) {
	evaluators, err := BuiltinEvaluators()
	require.NoError(t, err)
	require.NotEmpty(t, evaluators)

	t.Run("keys are unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for _, ev := range evaluators {
			key := ev.Definition().Key
			assert.False(t, seen[key], "duplicate key %s", key)
			seen[key] = true
		}
	})

	t.Run("every evaluator reports exactly one capability", func(t *testing.T) {
		for _, ev := range evaluators {
			caps := 0
			if ev.EvaluatesItem() {
				caps++
			}
			if ev.EvaluatesItemSet() {
				caps++
			}
			if ev.EvaluatesUser() {
				caps++
			}
			assert.Equal(t, 1, caps, "badge %s", ev.Definition().Key)
		}
	})

	t.Run("per-item badges are repetitive, the rest one-time", func(t *testing.T) {
		for _, ev := range evaluators {
			def := ev.Definition()
			if ev.EvaluatesItem() {
				assert.Equal(t, models.KindRepetitive, def.Kind, "badge %s", def.Key)
			} else {
				assert.Equal(t, models.KindOneTime, def.Kind, "badge %s", def.Key)
			}
		}
	})

	t.Run("custom evaluators append after builtins", func(t *testing.T) {
		custom := mustEvaluator(t, RuleSpec{
			Def: oneTimeDef("custom-badge"),
			Set: &SetCountSpec{Kind: models.KindPost, MinCount: 3},
		})
		all, err := Catalog(custom)
		require.NoError(t, err)
		require.Len(t, all, len(evaluators)+1)
		assert.Equal(t, "custom-badge", all[len(all)-1].Definition().Key)
	})

	t.Run("custom evaluator with a builtin key is rejected", func(t *testing.T) {
		dup := mustEvaluator(t, RuleSpec{
			Def: oneTimeDef("solution-author"),
			Set: &SetCountSpec{Kind: models.KindAnswer, MinCount: 1, CorrectOnly: true},
		})
		_, err := Catalog(dup)
		assert.Error(t, err)
	})
}
