package replay

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/reconcile"
)

const fixtureJSON = `{
  "description": "seed then user edit then recompute",
  "steps": [
    {
      "kind": "seed",
      "suggestions": {
        "suggestions": {
          "recent_influence": {"influence_score": 0.8},
          "constraints": {
            "min_sessions_per_week": 3,
            "max_sessions_per_week": 5,
            "weekly_tss_ramp_cap": 45,
            "weekly_ctl_ramp_cap": 4.5,
            "post_goal_recovery_days": 4
          }
        }
      },
      "expect": {"decisions": {"constraints": "seeded"}}
    },
    {"kind": "weight", "key": "fitness", "value": 0.5},
    {"kind": "reset", "expect": {"dirty": {"availability": false, "recent_influence": false, "constraints": false}}}
  ]
}`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadFixtureAndRun(t *testing.T) {
	f, err := LoadFixture(writeFixture(t, fixtureJSON))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if len(f.Steps) != 3 {
		t.Fatalf("steps = %d", len(f.Steps))
	}
	if f.Steps[0].Suggestions.Suggestions.Constraints.MaxSessionsPerWeek != 5 {
		t.Fatalf("parsed constraints: %+v", f.Steps[0].Suggestions.Suggestions.Constraints)
	}

	results, sum := Run(f, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	if sum.Violations != 0 {
		t.Fatalf("violations: %+v", results)
	}
	if sum.FinalDirty != (reconcile.DirtyState{}) {
		t.Fatalf("final dirty: %+v", sum.FinalDirty)
	}
}

func TestLoadFixtureMissingFile(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFixtureRejectsBadSteps(t *testing.T) {
	cases := map[string]string{
		"unknown kind":     `{"steps": [{"kind": "warp"}]}`,
		"edit sans config": `{"steps": [{"kind": "edit"}]}`,
		"quickfix sans code": `{"steps": [{"kind": "quickfix"}]}`,
		"weight sans key":  `{"steps": [{"kind": "weight"}]}`,
	}
	for name, content := range cases {
		if _, err := LoadFixture(writeFixture(t, content)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
