// Package quickfix applies deterministic per-conflict-code fixes to a
// creation configuration.
package quickfix

import (
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/conflict"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/gaps"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/plan"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/provenance"
)

// #region limits

// Limits hold the system-wide ceilings quick fixes clamp to.
type Limits struct {
	WeeklyTSSRampCeiling float64
	WeeklyCTLRampCeiling float64
	// MinPrepDays is the minimum preparation window that post-goal recovery
	// must leave before the next goal.
	MinPrepDays int
}

// DefaultLimits returns the safety ceilings used when no settings override them.
func DefaultLimits() Limits {
	return Limits{
		WeeklyTSSRampCeiling: 50,
		WeeklyCTLRampCeiling: 5,
		MinPrepDays:          14,
	}
}

// #endregion limits

// #region apply

// Apply resolves a single conflict code with its deterministic transform.
// The returned config is a fresh snapshot with the constraints group marked
// as a user decision; ok is false for codes with no quick fix. Every
// successful fix is a high-impact edit, so the caller triggers a recompute.
func Apply(code string, cfg plan.Config, limits Limits) (next plan.Config, ok bool) {
	next = cfg.Clone()

	switch code {
	case conflict.CodeMinSessionsExceedsMax:
		if next.Constraints.MaxSessionsPerWeek < next.Constraints.MinSessionsPerWeek {
			next.Constraints.MaxSessionsPerWeek = next.Constraints.MinSessionsPerWeek
		}

	case conflict.CodeMinSessionsExceedsAvailableDays:
		next.Constraints.MinSessionsPerWeek = next.Availability.TrainingDayCount()

	case conflict.CodeMaxSessionsExceedsAvailableDays:
		next.Constraints.MaxSessionsPerWeek = next.Availability.TrainingDayCount()

	case conflict.CodeRequiredTSSRampExceedsCap:
		next.RampCaps.WeeklyTSS = limits.WeeklyTSSRampCeiling

	case conflict.CodeRequiredCTLRampExceedsCap:
		next.RampCaps.WeeklyCTL = limits.WeeklyCTLRampCeiling

	case conflict.CodePostGoalRecoveryOverlapsNextGoal,
		conflict.CodePostGoalRecoveryCompressesNextGoalPrep:
		next.PostGoalRecoveryDays = clampRecoveryDays(next.PostGoalRecoveryDays, next.Goals, limits.MinPrepDays)

	default:
		return cfg, false
	}

	// The fixed value is now an explicit user decision.
	next.Constraints.Source = provenance.SourceUser
	return next, true
}

// clampRecoveryDays caps recovery so at least minPrepDays remain before the
// next goal. Without a second dated goal there is nothing to recover into.
func clampRecoveryDays(current int, goals []plan.Goal, minPrepDays int) int {
	gap, ok := gaps.MinimumGapDays(goals)
	if !ok {
		return 0
	}
	allowed := gap - minPrepDays
	if current < allowed {
		allowed = current
	}
	if allowed < 0 {
		return 0
	}
	return allowed
}

// #endregion apply
