package quickfix

import (
	"testing"
	"time"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/conflict"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/plan"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/provenance"
)

func baseConfig(t *testing.T) plan.Config {
	t.Helper()
	cfg := plan.Default(time.Now().UTC())
	cfg.Availability.Week[0].Windows = []plan.AvailabilityWindow{{Start: "06:00", End: "07:00"}}
	cfg.Availability.Week[1].Windows = []plan.AvailabilityWindow{{Start: "06:00", End: "07:00"}}
	cfg.Availability.Week[2].Windows = []plan.AvailabilityWindow{{Start: "18:00", End: "19:00"}}
	return cfg
}

func TestMinSessionsExceedsMax(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Constraints.MinSessionsPerWeek = 5
	cfg.Constraints.MaxSessionsPerWeek = 3

	next, ok := Apply(conflict.CodeMinSessionsExceedsMax, cfg, DefaultLimits())
	if !ok {
		t.Fatal("expected fix")
	}
	if next.Constraints.MaxSessionsPerWeek != 5 {
		t.Fatalf("max = %d, want 5", next.Constraints.MaxSessionsPerWeek)
	}
	if next.Constraints.Source != provenance.SourceUser {
		t.Fatalf("source = %s, want user", next.Constraints.Source)
	}
	// Original snapshot untouched.
	if cfg.Constraints.MaxSessionsPerWeek != 3 {
		t.Fatal("input snapshot mutated")
	}
}

func TestSessionsExceedAvailableDays(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Availability.HardRestDays = []string{"wed"}
	cfg.Constraints.MinSessionsPerWeek = 6
	cfg.Constraints.MaxSessionsPerWeek = 7

	next, ok := Apply(conflict.CodeMinSessionsExceedsAvailableDays, cfg, DefaultLimits())
	if !ok || next.Constraints.MinSessionsPerWeek != 2 {
		t.Fatalf("min = %d, want available-day count 2", next.Constraints.MinSessionsPerWeek)
	}

	next, ok = Apply(conflict.CodeMaxSessionsExceedsAvailableDays, cfg, DefaultLimits())
	if !ok || next.Constraints.MaxSessionsPerWeek != 2 {
		t.Fatalf("max = %d, want available-day count 2", next.Constraints.MaxSessionsPerWeek)
	}
}

func TestRampCapCeilings(t *testing.T) {
	cfg := baseConfig(t)
	cfg.RampCaps = plan.RampCaps{WeeklyTSS: 90, WeeklyCTL: 12}

	next, ok := Apply(conflict.CodeRequiredTSSRampExceedsCap, cfg, DefaultLimits())
	if !ok || next.RampCaps.WeeklyTSS != 50 {
		t.Fatalf("tss cap = %f, want 50", next.RampCaps.WeeklyTSS)
	}

	next, ok = Apply(conflict.CodeRequiredCTLRampExceedsCap, cfg, DefaultLimits())
	if !ok || next.RampCaps.WeeklyCTL != 5 {
		t.Fatalf("ctl cap = %f, want 5", next.RampCaps.WeeklyCTL)
	}
}

func TestRecoveryClampAgainstNextGoal(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Goals = []plan.Goal{
		{ID: "g1", TargetDate: "2026-05-01"},
		{ID: "g2", TargetDate: "2026-05-21"}, // gap 20, prep window 14 → allowed 6
	}
	cfg.PostGoalRecoveryDays = 10

	next, ok := Apply(conflict.CodePostGoalRecoveryOverlapsNextGoal, cfg, DefaultLimits())
	if !ok || next.PostGoalRecoveryDays != 6 {
		t.Fatalf("recovery = %d, want 6", next.PostGoalRecoveryDays)
	}

	// A current value below the allowance stays put.
	cfg.PostGoalRecoveryDays = 2
	next, _ = Apply(conflict.CodePostGoalRecoveryCompressesNextGoalPrep, cfg, DefaultLimits())
	if next.PostGoalRecoveryDays != 2 {
		t.Fatalf("recovery = %d, want 2", next.PostGoalRecoveryDays)
	}

	// Goals closer than the prep window clamp to zero.
	cfg.Goals[1].TargetDate = "2026-05-08"
	cfg.PostGoalRecoveryDays = 10
	next, _ = Apply(conflict.CodePostGoalRecoveryOverlapsNextGoal, cfg, DefaultLimits())
	if next.PostGoalRecoveryDays != 0 {
		t.Fatalf("recovery = %d, want 0", next.PostGoalRecoveryDays)
	}
}

func TestRecoveryClampWithoutSecondGoal(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Goals = []plan.Goal{{ID: "g1", TargetDate: "2026-05-01"}}
	cfg.PostGoalRecoveryDays = 7

	next, ok := Apply(conflict.CodePostGoalRecoveryOverlapsNextGoal, cfg, DefaultLimits())
	if !ok || next.PostGoalRecoveryDays != 0 {
		t.Fatalf("recovery = %d, want 0 with no second goal", next.PostGoalRecoveryDays)
	}
}

func TestUnknownCode(t *testing.T) {
	cfg := baseConfig(t)
	next, ok := Apply("no_such_fix", cfg, DefaultLimits())
	if ok {
		t.Fatal("unknown code must not report a fix")
	}
	if next.Constraints.Source != cfg.Constraints.Source {
		t.Fatal("unknown code must not mutate the config")
	}
}
