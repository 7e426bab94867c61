package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/plan"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "session.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSeedAndCurrent(t *testing.T) {
	s := tempStore(t)

	if _, err := s.Current(); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows before seeding, got %v", err)
	}

	cfg := plan.Default(time.Now().UTC())
	cfg.Name = "seeded"
	rec, err := s.SeedVersion(cfg)
	if err != nil {
		t.Fatalf("SeedVersion: %v", err)
	}
	if rec.VersionID == "" || rec.ParentID != "" {
		t.Fatalf("unexpected seed record: %+v", rec)
	}

	cur, err := s.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur.VersionID != rec.VersionID || cur.Config.Name != "seeded" {
		t.Fatalf("current mismatch: %+v", cur)
	}
}

func TestCommitMovesActivePointer(t *testing.T) {
	s := tempStore(t)
	now := time.Now().UTC()

	seed, err := s.SeedVersion(plan.Default(now))
	if err != nil {
		t.Fatalf("SeedVersion: %v", err)
	}

	next := plan.Default(now)
	next.Constraints.MaxSessionsPerWeek = 8
	rec, err := s.Commit(seed.VersionID, next)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if rec.ParentID != seed.VersionID {
		t.Fatalf("parent = %s, want %s", rec.ParentID, seed.VersionID)
	}

	cur, err := s.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur.VersionID != rec.VersionID || cur.Config.Constraints.MaxSessionsPerWeek != 8 {
		t.Fatalf("active pointer stale: %+v", cur)
	}

	got, err := s.Get(seed.VersionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Config.Constraints.MaxSessionsPerWeek != 6 {
		t.Fatalf("old snapshot changed: %+v", got.Config.Constraints)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	s := tempStore(t)
	now := time.Now().UTC()

	seed, _ := s.SeedVersion(plan.Default(now))
	parent := seed.VersionID
	for i := 0; i < 3; i++ {
		cfg := plan.Default(now)
		cfg.PostGoalRecoveryDays = i
		rec, err := s.Commit(parent, cfg)
		if err != nil {
			t.Fatalf("Commit %d: %v", i, err)
		}
		parent = rec.VersionID
	}

	hist, err := s.History(10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 4 {
		t.Fatalf("history length %d, want 4", len(hist))
	}
	if hist[0].Config.PostGoalRecoveryDays != 2 {
		t.Fatalf("newest first expected, got %+v", hist[0].Config.PostGoalRecoveryDays)
	}
}

func TestConfigSurvivesRoundTrip(t *testing.T) {
	s := tempStore(t)
	now := time.Now().UTC()

	cfg := plan.Default(now)
	cfg.Goals = []plan.Goal{{ID: "g1", TargetDate: "2026-05-01", Priority: "A"}}
	cfg.Availability.Week[0].Windows = []plan.AvailabilityWindow{{Start: "06:00", End: "07:30"}}
	cfg.Locks.Constraints = plan.Lock{Locked: true, LockedBy: "user"}

	rec, err := s.SeedVersion(cfg)
	if err != nil {
		t.Fatalf("SeedVersion: %v", err)
	}
	got, err := s.Get(rec.VersionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Config.Goals) != 1 || got.Config.Goals[0].TargetDate != "2026-05-01" {
		t.Fatalf("goals lost: %+v", got.Config.Goals)
	}
	if !got.Config.Locks.Constraints.Locked || got.Config.Locks.Constraints.LockedBy != "user" {
		t.Fatalf("locks lost: %+v", got.Config.Locks)
	}
	if got.Config.Optimization.Weights != cfg.Optimization.Weights {
		t.Fatalf("weights lost: %v", got.Config.Optimization.Weights)
	}
}
