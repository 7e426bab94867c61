package plan

import (
	"testing"
	"time"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/provenance"
)

func TestCloneIsDeep(t *testing.T) {
	now := time.Now().UTC()
	cfg := Default(now)
	cfg.Availability.Week[0].Windows = []AvailabilityWindow{{Start: "06:00", End: "08:00"}}
	cfg.Availability.HardRestDays = []string{"sun"}
	cfg.Goals = []Goal{{ID: "g1", TargetDate: "2026-05-01"}}

	cp := cfg.Clone()
	cp.Availability.Week[0].Windows[0].Start = "07:00"
	cp.Availability.HardRestDays[0] = "mon"
	cp.Goals[0].TargetDate = "2027-01-01"

	if cfg.Availability.Week[0].Windows[0].Start != "06:00" {
		t.Fatal("availability windows aliased")
	}
	if cfg.Availability.HardRestDays[0] != "sun" {
		t.Fatal("hard rest days aliased")
	}
	if cfg.Goals[0].TargetDate != "2026-05-01" {
		t.Fatal("goals aliased")
	}
}

func TestTrainingDayCount(t *testing.T) {
	a := Availability{
		Week: []AvailabilityDay{
			{Day: "mon", Windows: []AvailabilityWindow{{Start: "06:00", End: "07:00"}}},
			{Day: "tue", Windows: []AvailabilityWindow{{Start: "06:00", End: "07:00"}}},
			{Day: "wed"},
			{Day: "sat", Windows: []AvailabilityWindow{{Start: "10:00", End: "12:00"}}},
		},
		HardRestDays: []string{"sat"},
	}
	if got := a.TrainingDayCount(); got != 2 {
		t.Fatalf("TrainingDayCount = %d, want 2", got)
	}
}

func TestHighImpactChangedDetectsWhitelistedFields(t *testing.T) {
	now := time.Now().UTC()
	base := Default(now)

	if HighImpactChanged(base, base.Clone()) {
		t.Fatal("identical snapshots must not be high-impact, even as separate copies")
	}

	avail := base.Clone()
	avail.Availability.Week[0].Windows = []AvailabilityWindow{{Start: "06:00", End: "07:00"}}
	if !HighImpactChanged(base, avail) {
		t.Fatal("availability change should be high-impact")
	}

	constraints := base.Clone()
	constraints.Constraints.MaxSessionsPerWeek = 9
	if !HighImpactChanged(base, constraints) {
		t.Fatal("constraints change should be high-impact")
	}

	locks := base.Clone()
	locks.Locks.Availability = Lock{Locked: true, LockedBy: "user"}
	if !HighImpactChanged(base, locks) {
		t.Fatal("lock change should be high-impact")
	}

	recovery := base.Clone()
	recovery.PostGoalRecoveryDays = 10
	if !HighImpactChanged(base, recovery) {
		t.Fatal("recovery days change should be high-impact")
	}

	caps := base.Clone()
	caps.RampCaps.WeeklyTSS = 55
	if !HighImpactChanged(base, caps) {
		t.Fatal("ramp cap change should be high-impact")
	}
}

func TestHighImpactChangedIgnoresNonWhitelistedFields(t *testing.T) {
	now := time.Now().UTC()
	base := Default(now)

	name := base.Clone()
	name.Name = "build to spring century"
	if HighImpactChanged(base, name) {
		t.Fatal("name edit must not be high-impact")
	}

	prov := base.Clone()
	prov.AvailabilityProvenance = provenance.UserTag(now)
	if HighImpactChanged(base, prov) {
		t.Fatal("provenance-only change must not be high-impact")
	}
}
