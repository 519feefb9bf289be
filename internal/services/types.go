package services

import (
	"time"

	"merithub/internal/models"
)

// ===============================
// SWEEP TYPES
// ===============================

// SweepResult summarizes one user's evaluation sweep.
type SweepResult struct {
	UserRef string `json:"user_ref"`

	// ItemsEvaluated is the number of content items seen by the per-item
	// phase. Items from a failed fetch are not counted.
	ItemsEvaluated int `json:"items_evaluated"`

	// Awarded counts every grant confirmed during the sweep, new or
	// pre-existing.
	Awarded int `json:"awarded"`
	// NewlyAwarded counts only grants created by this sweep. One
	// notification is sent per newly awarded grant.
	NewlyAwarded int `json:"newly_awarded"`

	// Errors counts failed fetches and failed award calls. A sweep with
	// errors is partial, not failed; the next sweep catches up.
	Errors int `json:"errors"`

	// Badges holds every grant confirmed during the sweep, new and
	// pre-existing alike. Grants created by this sweep carry IsNew.
	Badges []*models.UserBadge `json:"badges"`

	Duration time.Duration `json:"duration"`
}
