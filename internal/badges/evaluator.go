// Package badges holds the badge catalog and the predicate logic that
// decides whether a user has qualified for each badge. Evaluators are
// polymorphic over three evaluation shapes: a single content item, a whole
// collection of items of one kind, or the user's aggregate profile. The
// orchestrator only invokes the shapes an evaluator declares support for.
package badges

import (
	"merithub/internal/models"
)

// Evaluator decides whether a user qualifies for one badge definition.
// An evaluator supports at least one of the three evaluation shapes and
// reports its capabilities through the Evaluates* methods; calling an
// unsupported Evaluate* method returns false rather than panicking.
type Evaluator interface {
	// Definition returns the badge definition this evaluator is bound to.
	Definition() models.BadgeDefinition

	// Capability queries. The orchestrator dispatches on these instead of
	// probing optional methods.
	EvaluatesItem() bool
	EvaluatesItemSet() bool
	EvaluatesUser() bool

	// EvaluateItem is a stateless predicate over one content item. It must
	// return false for item kinds the badge does not apply to.
	EvaluateItem(item models.ContentItem) bool

	// EvaluateItemSet is a stateless predicate over a whole content
	// collection at once. An empty set never qualifies.
	EvaluateItemSet(items []models.ContentItem) bool

	// EvaluateUser is a stateless predicate over the user's lifetime
	// counters. All-zero profiles are valid input.
	EvaluateUser(profile models.UserProfile) bool
}

// baseEvaluator supplies the non-supported defaults so each rule shape only
// overrides the one evaluation path it implements.
type baseEvaluator struct {
	def models.BadgeDefinition
}

func (b baseEvaluator) Definition() models.BadgeDefinition { return b.def }

func (b baseEvaluator) EvaluatesItem() bool    { return false }
func (b baseEvaluator) EvaluatesItemSet() bool { return false }
func (b baseEvaluator) EvaluatesUser() bool    { return false }

func (b baseEvaluator) EvaluateItem(models.ContentItem) bool      { return false }
func (b baseEvaluator) EvaluateItemSet([]models.ContentItem) bool { return false }
func (b baseEvaluator) EvaluateUser(models.UserProfile) bool      { return false }
