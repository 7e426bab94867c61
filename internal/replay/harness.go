// Package replay re-runs recorded session events through the merge pipeline
// in memory, checking the invariants that must hold after every step.
package replay

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/conflict"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/plan"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/quickfix"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/reconcile"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/weights"
)

// #region types

// StepResult captures the outcome of replaying one step.
type StepResult struct {
	Index int
	Kind  string
	// Decisions is populated for seed and suggestions steps.
	Decisions []reconcile.GroupDecision
	Dirty     reconcile.DirtyState
	// BlockingIssues carries the consolidated count as of this step.
	BlockingIssues int
	// Violations lists every invariant or expectation this step broke.
	Violations []string
}

// Summary aggregates a replay run.
type Summary struct {
	TotalSteps int
	Violations int
	Final      plan.Config
	FinalDirty reconcile.DirtyState
}

// #endregion types

// #region run

// Run replays every step of the fixture. It never stops early: a violated
// invariant is recorded and the run continues, so one pass reports everything.
func Run(f *Fixture, now time.Time) ([]StepResult, Summary) {
	current := plan.Default(now)
	if f.Start != nil {
		current = f.Start.Clone()
	}
	limits := quickfix.DefaultLimits()
	if f.Limits != nil {
		limits = *f.Limits
	}
	dirty := reconcile.UpdateDirty(reconcile.DirtyState{}, current)
	var issues []conflict.BlockingIssue

	results := make([]StepResult, 0, len(f.Steps))
	for i, step := range f.Steps {
		res := StepResult{Index: i, Kind: step.Kind}
		prev := current
		prevDirty := dirty

		switch step.Kind {
		case StepEdit:
			current = step.Config.Clone()
			dirty = reconcile.UpdateDirty(dirty, current)

		case StepSeed, StepSuggestions:
			mode := reconcile.ModeRecompute
			if step.Kind == StepSeed {
				mode = reconcile.ModeSeed
			}
			merged := reconcile.Merge(current, *step.Suggestions, dirty, mode, now)
			res.Decisions = merged.Decisions
			checkSuppression(prev, merged.Next, dirty, mode, &res)
			current = merged.Next

		case StepPreview:
			issues = conflict.Consolidate(
				step.Preview.Conflicts.Items,
				step.Preview.FeasibilitySafety.Blockers,
				conflict.DefaultDisplayLimit)

		case StepQuickFix:
			next, ok := quickfix.Apply(step.Code, current, limits)
			if !ok {
				res.Violations = append(res.Violations, fmt.Sprintf("no quick fix for code %q", step.Code))
				break
			}
			current = next
			dirty = reconcile.UpdateDirty(dirty, current)

		case StepWeight:
			current = current.Clone()
			current.Optimization.Weights = weights.Rebalance(
				current.Optimization.Weights, current.Locks.Weights,
				weights.Key(step.Key), step.Value)
			checkLockedWeights(prev, current, weights.Key(step.Key), &res)

		case StepLock:
			current = applyLock(current, step.Key, step.Locked)

		case StepReset:
			current = plan.Default(now)
			dirty = reconcile.Reset()
			issues = nil
		}

		checkWeightSum(current, &res)
		if step.Kind != StepReset {
			checkDirtyMonotonic(prevDirty, dirty, &res)
		}
		res.BlockingIssues = len(issues)
		checkExpect(step.Expect, &res, dirty)

		res.Dirty = dirty
		results = append(results, res)
	}

	sum := Summary{TotalSteps: len(results), Final: current, FinalDirty: dirty}
	for _, r := range results {
		sum.Violations += len(r.Violations)
	}
	return results, sum
}

func applyLock(cfg plan.Config, field string, locked bool) plan.Config {
	next := cfg.Clone()
	l := plan.Lock{Locked: locked}
	if locked {
		l.LockedBy = "user"
	}
	switch field {
	case reconcile.GroupAvailability:
		next.Locks.Availability = l
	case reconcile.GroupRecentInfluence:
		next.Locks.RecentInfluence = l
	case reconcile.GroupConstraints:
		next.Locks.Constraints = l
	default:
		if i, ok := weights.Index(weights.Key(field)); ok {
			next.Locks.Weights[i] = locked
		}
	}
	return next
}

// #endregion run

// #region checks

func checkWeightSum(cfg plan.Config, res *StepResult) {
	sum := cfg.Optimization.Weights.Sum()
	if math.Abs(sum-1) > 1e-6 {
		res.Violations = append(res.Violations,
			fmt.Sprintf("weight sum %v after %s step", sum, res.Kind))
	}
}

func checkDirtyMonotonic(prev, next reconcile.DirtyState, res *StepResult) {
	if (prev.Availability && !next.Availability) ||
		(prev.RecentInfluence && !next.RecentInfluence) ||
		(prev.Constraints && !next.Constraints) {
		res.Violations = append(res.Violations, "dirty flag regressed without a reset")
	}
}

// checkSuppression verifies that a recompute merge left dirty and locked
// groups byte-for-byte alone.
func checkSuppression(prev, next plan.Config, dirty reconcile.DirtyState, mode reconcile.Mode, res *StepResult) {
	if mode == reconcile.ModeSeed {
		return
	}
	if (dirty.Availability || prev.Locks.Availability.Locked) &&
		!reflect.DeepEqual(prev.Availability, next.Availability) {
		res.Violations = append(res.Violations, "suppressed availability group changed")
	}
	if (dirty.RecentInfluence || prev.Locks.RecentInfluence.Locked) &&
		prev.RecentInfluence.InfluenceScore != next.RecentInfluence.InfluenceScore {
		res.Violations = append(res.Violations, "suppressed recent-influence group changed")
	}
	if (dirty.Constraints || prev.Locks.Constraints.Locked) &&
		prev.Constraints != next.Constraints {
		res.Violations = append(res.Violations, "suppressed constraints group changed")
	}
}

// checkLockedWeights verifies a rebalance never moved a locked key.
func checkLockedWeights(prev, next plan.Config, active weights.Key, res *StepResult) {
	for i, k := range weights.KeyOrder {
		if k == active || !prev.Locks.Weights[i] {
			continue
		}
		if prev.Optimization.Weights[i] != next.Optimization.Weights[i] {
			res.Violations = append(res.Violations,
				fmt.Sprintf("locked weight %s moved from %v to %v",
					k, prev.Optimization.Weights[i], next.Optimization.Weights[i]))
		}
	}
}

func checkExpect(exp *Expect, res *StepResult, dirty reconcile.DirtyState) {
	if exp == nil {
		return
	}
	for group, want := range exp.Decisions {
		found := false
		for _, d := range res.Decisions {
			if d.Group != group {
				continue
			}
			found = true
			if d.Reason != want {
				res.Violations = append(res.Violations,
					fmt.Sprintf("group %s decision %q, expected %q", group, d.Reason, want))
			}
		}
		if !found {
			res.Violations = append(res.Violations,
				fmt.Sprintf("no decision recorded for group %s", group))
		}
	}
	if exp.Dirty != nil && *exp.Dirty != dirty {
		res.Violations = append(res.Violations,
			fmt.Sprintf("dirty state %+v, expected %+v", dirty, *exp.Dirty))
	}
	if exp.BlockingIssues != nil && *exp.BlockingIssues != res.BlockingIssues {
		res.Violations = append(res.Violations,
			fmt.Sprintf("%d blocking issues, expected %d", res.BlockingIssues, *exp.BlockingIssues))
	}
}

// #endregion checks
