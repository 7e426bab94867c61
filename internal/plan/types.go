package plan

import (
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/provenance"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/weights"
)

// #region availability

// AvailabilityWindow is one trainable time window in a day ("HH:MM" bounds).
type AvailabilityWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailabilityDay holds the windows for one named weekday.
type AvailabilityDay struct {
	Day     string               `json:"day"`
	Windows []AvailabilityWindow `json:"windows,omitempty"`
}

// Availability is the weekly training availability schedule.
type Availability struct {
	Week         []AvailabilityDay `json:"week"`
	HardRestDays []string          `json:"hard_rest_days,omitempty"`
}

// Weekdays is the fixed day order for a full availability week.
var Weekdays = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// TrainingDayCount returns the number of days with at least one availability
// window, minus hard rest days. Used by quick fixes that cap session counts.
func (a Availability) TrainingDayCount() int {
	rest := make(map[string]bool, len(a.HardRestDays))
	for _, d := range a.HardRestDays {
		rest[d] = true
	}
	count := 0
	for _, day := range a.Week {
		if len(day.Windows) > 0 && !rest[day.Day] {
			count++
		}
	}
	return count
}

// #endregion availability

// #region influence

// Known recent-influence actions.
const (
	InfluenceAccepted = "accepted"
	InfluenceReduced  = "reduced"
	InfluenceIgnored  = "ignored"
)

// RecentInfluence captures how much recent training history should steer the
// generated plan, and what the user decided to do with the suggestion.
type RecentInfluence struct {
	InfluenceScore float64        `json:"influence_score"`
	Action         string         `json:"action"`
	Provenance     provenance.Tag `json:"provenance"`
}

// #endregion influence

// #region constraints

// Constraints are the session-count bounds on the generated plan. Source
// records whether the current values are defaults, suggestions, or user edits.
type Constraints struct {
	MinSessionsPerWeek int               `json:"min_sessions_per_week"`
	MaxSessionsPerWeek int               `json:"max_sessions_per_week"`
	Source             provenance.Source `json:"source"`
}

// RampCaps bound the weekly growth of training load and fitness.
type RampCaps struct {
	WeeklyTSS float64 `json:"weekly_tss"`
	WeeklyCTL float64 `json:"weekly_ctl"`
}

// #endregion constraints

// #region goals

// Goal is one dated target in the plan.
type Goal struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	TargetDate string `json:"target_date"` // YYYY-MM-DD
	Priority   string `json:"priority,omitempty"`
}

// #endregion goals

// #region locks

// Lock prevents suggestion merges from overwriting one field group.
type Lock struct {
	Locked   bool   `json:"locked"`
	LockedBy string `json:"locked_by,omitempty"`
}

// Locks is the closed set of lockable attributes. Weight locks are held
// per-key in the fixed weight order.
type Locks struct {
	Availability    Lock            `json:"availability"`
	RecentInfluence Lock            `json:"recent_influence"`
	Constraints     Lock            `json:"constraints"`
	Weights         weights.LockSet `json:"weights"`
}

// #endregion locks

// #region optimization

// OptimizationProfile holds the composite weight vector steering the
// projection engine's objective.
type OptimizationProfile struct {
	Weights weights.Vector `json:"weights"`
}

func defaultOptimization() OptimizationProfile {
	return OptimizationProfile{Weights: weights.Uniform()}
}

// #endregion optimization

// #region config

// Config is the full in-progress creation configuration. It is treated as an
// immutable snapshot: every mutation goes through Clone.
type Config struct {
	Name                   string              `json:"name"`
	Goals                  []Goal              `json:"goals,omitempty"`
	Availability           Availability        `json:"availability"`
	AvailabilityProvenance provenance.Tag      `json:"availability_provenance"`
	RecentInfluence        RecentInfluence     `json:"recent_influence"`
	Constraints            Constraints         `json:"constraints"`
	RampCaps               RampCaps            `json:"ramp_caps"`
	PostGoalRecoveryDays   int                 `json:"post_goal_recovery_days"`
	Optimization           OptimizationProfile `json:"optimization"`
	Locks                  Locks               `json:"locks"`
}

// #endregion config
