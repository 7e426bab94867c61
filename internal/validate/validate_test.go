package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/plan"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/weights"
)

func readyConfig() plan.Config {
	cfg := plan.Default(time.Now().UTC())
	cfg.Name = "spring century build"
	cfg.Goals = []plan.Goal{
		{ID: "g1", TargetDate: "2026-05-01", Priority: "A"},
		{ID: "g2", TargetDate: "2026-06-15", Priority: "B"},
	}
	return cfg
}

func TestReadyConfigPasses(t *testing.T) {
	if problems := Run(readyConfig()); len(problems) != 0 {
		t.Fatalf("expected no problems, got %v", problems)
	}
}

func TestRequiredFields(t *testing.T) {
	cfg := readyConfig()
	cfg.Name = ""
	cfg.Goals = nil

	problems := Run(cfg)
	if _, ok := problems["name"]; !ok {
		t.Fatalf("missing name problem: %v", problems)
	}
	if _, ok := problems["goals"]; !ok {
		t.Fatalf("missing goals problem: %v", problems)
	}
}

func TestGoalDateProblemsAreFieldPathKeyed(t *testing.T) {
	cfg := readyConfig()
	cfg.Goals = []plan.Goal{
		{ID: "g1", TargetDate: "2026-06-15"},
		{ID: "g2", TargetDate: "2026-05-01"},
		{ID: "g3", TargetDate: "05/30/2026"},
	}

	problems := Run(cfg)
	if msg, ok := problems["goals[1].target_date"]; !ok || !strings.Contains(msg, "ascending") {
		t.Fatalf("expected ordering problem on goals[1]: %v", problems)
	}
	if msg, ok := problems["goals[2].target_date"]; !ok || !strings.Contains(msg, "valid") {
		t.Fatalf("expected date format problem on goals[2]: %v", problems)
	}
}

func TestSessionBoundsProblem(t *testing.T) {
	cfg := readyConfig()
	cfg.Constraints.MinSessionsPerWeek = 8
	cfg.Constraints.MaxSessionsPerWeek = 4

	problems := Run(cfg)
	if _, ok := problems["constraints.min_sessions_per_week"]; !ok {
		t.Fatalf("expected session bound problem: %v", problems)
	}
}

func TestWeightSumProblem(t *testing.T) {
	cfg := readyConfig()
	cfg.Optimization.Weights = weights.Vector{0.5, 0.5, 0.5, 0}

	problems := Run(cfg)
	if _, ok := problems["optimization.weights"]; !ok {
		t.Fatalf("expected weight sum problem: %v", problems)
	}
}
