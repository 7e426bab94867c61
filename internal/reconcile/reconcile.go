// Package reconcile merges system-suggested defaults into an in-progress
// creation configuration without clobbering user edits or locked fields.
package reconcile

import (
	"time"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/conflict"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/forecast"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/plan"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/provenance"
)

// #region merge

// Merge computes the next configuration from the current one and a
// suggestion response. It is a pure function: calling it twice with the same
// inputs yields the same output, and the input snapshot is never mutated.
//
// Per group the rule is: seed mode always applies; recompute mode applies
// only when the group is neither dirty nor locked.
func Merge(current plan.Config, resp forecast.SuggestionResponse, dirty DirtyState, mode Mode, now time.Time) Result {
	next := current.Clone()
	res := Result{ContextSummary: resp.ContextSummary}

	sugg := resp.Suggestions

	// Availability group.
	if sugg.AvailabilityConfig != nil {
		decision := groupDecision(GroupAvailability, mode, dirty.Availability, current.Locks.Availability.Locked)
		if decision.Applied {
			next.Availability = sugg.AvailabilityConfig.Clone()
			next.AvailabilityProvenance = suggestedTag(sugg.AvailabilityProvenance, now)
		}
		res.Decisions = append(res.Decisions, decision)
	} else {
		res.Decisions = append(res.Decisions, GroupDecision{Group: GroupAvailability, Reason: ReasonNoSuggestion})
	}

	// Recent-influence group.
	if sugg.RecentInfluence != nil {
		decision := groupDecision(GroupRecentInfluence, mode, dirty.RecentInfluence, current.Locks.RecentInfluence.Locked)
		if decision.Applied {
			next.RecentInfluence.InfluenceScore = sugg.RecentInfluence.InfluenceScore
			if sugg.RecentInfluenceAction != "" {
				next.RecentInfluence.Action = sugg.RecentInfluenceAction
			}
			next.RecentInfluence.Provenance = suggestedTag(sugg.RecentInfluenceProvenance, now)
		}
		res.Decisions = append(res.Decisions, decision)
	} else {
		res.Decisions = append(res.Decisions, GroupDecision{Group: GroupRecentInfluence, Reason: ReasonNoSuggestion})
	}

	// Constraints group (session bounds, ramp caps, recovery days).
	if sugg.Constraints != nil {
		decision := groupDecision(GroupConstraints, mode, dirty.Constraints, current.Locks.Constraints.Locked)
		if decision.Applied {
			next.Constraints.MinSessionsPerWeek = sugg.Constraints.MinSessionsPerWeek
			next.Constraints.MaxSessionsPerWeek = sugg.Constraints.MaxSessionsPerWeek
			next.Constraints.Source = provenance.SourceSuggested
			next.RampCaps.WeeklyTSS = sugg.Constraints.WeeklyTSSRampCap
			next.RampCaps.WeeklyCTL = sugg.Constraints.WeeklyCTLRampCap
			next.PostGoalRecoveryDays = sugg.Constraints.PostGoalRecoveryDays
		}
		res.Decisions = append(res.Decisions, decision)
	} else {
		res.Decisions = append(res.Decisions, GroupDecision{Group: GroupConstraints, Reason: ReasonNoSuggestion})
	}

	res.Next = next
	res.InformationalConflicts = informational(sugg.LockedConflicts)
	return res
}

func groupDecision(group string, mode Mode, dirty, locked bool) GroupDecision {
	switch {
	case mode == ModeSeed:
		return GroupDecision{Group: group, Applied: true, Reason: ReasonSeeded}
	case dirty:
		// Dirty wins over lock state: once the user authored a change,
		// lock toggles are irrelevant to suppression.
		return GroupDecision{Group: group, Reason: ReasonSuppressedDirty}
	case locked:
		return GroupDecision{Group: group, Reason: ReasonSuppressedLock}
	default:
		return GroupDecision{Group: group, Applied: true, Reason: ReasonApplied}
	}
}

// suggestedTag passes the service-provided provenance through, forcing the
// source forward to suggested; absent provenance gets a bare suggested tag.
func suggestedTag(t *provenance.Tag, now time.Time) provenance.Tag {
	if t == nil {
		return provenance.Suggested(nil, nil, nil, now)
	}
	out := t.Clone()
	out.Source = provenance.SourceSuggested
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = now
	}
	return out
}

func informational(codes []string) []conflict.Conflict {
	if len(codes) == 0 {
		return nil
	}
	out := make([]conflict.Conflict, 0, len(codes))
	for _, code := range codes {
		out = append(out, conflict.Conflict{
			Code:     code,
			Severity: conflict.SeverityWarning,
			Message:  "suggestion withheld because the field is locked",
		})
	}
	return out
}

// #endregion merge

// #region dirty-update

// UpdateDirty recomputes the per-group dirty flags after the UI replaces the
// configuration snapshot. Each flag is previous OR "this edit looks
// user-authored"; flags never reset here.
//
// Recent influence intentionally treats any non-accepted action as a dirty
// trigger even when its provenance is not user-sourced: a non-default
// selection is an authored choice in the reference behavior.
func UpdateDirty(prev DirtyState, next plan.Config) DirtyState {
	d := prev
	if next.AvailabilityProvenance.Source == provenance.SourceUser {
		d.Availability = true
	}
	if next.RecentInfluence.Action != plan.InfluenceAccepted ||
		next.RecentInfluence.Provenance.Source == provenance.SourceUser {
		d.RecentInfluence = true
	}
	if next.Constraints.Source == provenance.SourceUser {
		d.Constraints = true
	}
	return d
}

// Reset clears all dirty flags. Only a full form reset calls this.
func Reset() DirtyState {
	return DirtyState{}
}

// #endregion dirty-update
