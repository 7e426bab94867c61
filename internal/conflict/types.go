package conflict

// #region severity

// Severity classifies how hard a conflict blocks plan creation.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityWarning  Severity = "warning"
)

// #endregion severity

// #region codes

// Known conflict codes produced by the preview and feasibility collaborators.
const (
	CodeMinSessionsExceedsMax                  = "min_sessions_exceeds_max"
	CodeMinSessionsExceedsAvailableDays        = "min_sessions_exceeds_available_days"
	CodeMaxSessionsExceedsAvailableDays        = "max_sessions_exceeds_available_days"
	CodeRequiredTSSRampExceedsCap              = "required_tss_ramp_exceeds_cap"
	CodeRequiredCTLRampExceedsCap              = "required_ctl_ramp_exceeds_cap"
	CodePostGoalRecoveryOverlapsNextGoal       = "post_goal_recovery_overlaps_next_goal"
	CodePostGoalRecoveryCompressesNextGoalPrep = "post_goal_recovery_compresses_next_goal_prep"
)

// #endregion codes

// #region conflict

// Conflict is one detected configuration problem.
type Conflict struct {
	Code        string   `json:"code"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// BlockingIssue is the deduplicated, capped view of a blocking conflict
// surfaced to the create flow.
type BlockingIssue struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// #endregion conflict
