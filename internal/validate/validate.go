// Package validate runs create-time checks on a configuration, producing
// field-path-keyed messages. A non-empty result blocks the create action.
package validate

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/gaps"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/plan"
)

// #region run

// Run validates cfg for creation. The returned map is keyed by field path;
// an empty map means the configuration is structurally ready to create.
// Blocking conflicts are a separate gate handled by the conflict package.
func Run(cfg plan.Config) map[string]string {
	problems := make(map[string]string)

	if cfg.Name == "" {
		problems["name"] = "plan name is required"
	}

	if len(cfg.Goals) == 0 {
		problems["goals"] = "at least one goal is required"
	} else {
		checkGoals(cfg.Goals, problems)
	}

	if cfg.Constraints.MinSessionsPerWeek < 0 {
		problems["constraints.min_sessions_per_week"] = "must not be negative"
	}
	if cfg.Constraints.MinSessionsPerWeek > cfg.Constraints.MaxSessionsPerWeek {
		problems["constraints.min_sessions_per_week"] = fmt.Sprintf(
			"minimum %d exceeds maximum %d",
			cfg.Constraints.MinSessionsPerWeek, cfg.Constraints.MaxSessionsPerWeek)
	}
	if cfg.PostGoalRecoveryDays < 0 {
		problems["post_goal_recovery_days"] = "must not be negative"
	}

	if s := cfg.Optimization.Weights.Sum(); math.Abs(s-1) > 1e-6 {
		problems["optimization.weights"] = fmt.Sprintf("weights sum to %.6f, want 1", s)
	}

	return problems
}

func checkGoals(goals []plan.Goal, problems map[string]string) {
	prev := ""
	for i, g := range goals {
		path := fmt.Sprintf("goals[%d].target_date", i)
		if !gaps.ValidDate(g.TargetDate) {
			problems[path] = fmt.Sprintf("%q is not a valid YYYY-MM-DD date", g.TargetDate)
			continue
		}
		// ISO dates order lexically.
		if prev != "" && g.TargetDate < prev {
			problems[path] = "goals must be ordered by ascending target date"
		}
		prev = g.TargetDate
	}
}

// #endregion run
