package forecast

import (
	"encoding/json"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/conflict"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/plan"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/provenance"
)

// #region suggestions

// ConstraintSuggestion carries suggested values for the constraints group.
type ConstraintSuggestion struct {
	MinSessionsPerWeek   int     `json:"min_sessions_per_week"`
	MaxSessionsPerWeek   int     `json:"max_sessions_per_week"`
	WeeklyTSSRampCap     float64 `json:"weekly_tss_ramp_cap"`
	WeeklyCTLRampCap     float64 `json:"weekly_ctl_ramp_cap"`
	PostGoalRecoveryDays int     `json:"post_goal_recovery_days"`
}

// InfluenceSuggestion carries the suggested recent-influence score.
type InfluenceSuggestion struct {
	InfluenceScore float64 `json:"influence_score"`
}

// Suggestions is the per-group payload of a suggestion response. Nil group
// pointers mean the service had nothing to suggest for that group.
type Suggestions struct {
	AvailabilityConfig        *plan.Availability    `json:"availability_config,omitempty"`
	AvailabilityProvenance    *provenance.Tag       `json:"availability_provenance,omitempty"`
	RecentInfluence           *InfluenceSuggestion  `json:"recent_influence,omitempty"`
	RecentInfluenceAction     string                `json:"recent_influence_action,omitempty"`
	RecentInfluenceProvenance *provenance.Tag       `json:"recent_influence_provenance,omitempty"`
	Constraints               *ConstraintSuggestion `json:"constraints,omitempty"`
	// LockedConflicts names fields whose suggestions were withheld by locks.
	LockedConflicts []string `json:"locked_conflicts,omitempty"`
}

// SuggestionResponse is the full payload of a suggestion fetch.
type SuggestionResponse struct {
	Suggestions    Suggestions     `json:"suggestions"`
	ContextSummary json.RawMessage `json:"context_summary,omitempty"`
}

// #endregion suggestions

// #region preview

// PreviewSnapshot identifies a server-side preview usable at create time.
type PreviewSnapshot struct {
	Token string `json:"token"`
}

// ConflictSet is the conflict portion of a preview response.
type ConflictSet struct {
	Items      []conflict.Conflict `json:"items"`
	IsBlocking bool                `json:"is_blocking"`
}

// FeasibilitySafety is the independent feasibility/safety summary.
type FeasibilitySafety struct {
	Blockers []conflict.Conflict `json:"blockers,omitempty"`
}

// PreviewResponse is the payload of a preview computation.
type PreviewResponse struct {
	CreationContextSummary json.RawMessage   `json:"creation_context_summary,omitempty"`
	FeasibilitySafety      FeasibilitySafety `json:"feasibility_safety"`
	PreviewSnapshot        *PreviewSnapshot  `json:"preview_snapshot,omitempty"`
	Conflicts              ConflictSet       `json:"conflicts"`
	ProjectionChart        json.RawMessage   `json:"projection_chart,omitempty"`
}

// #endregion preview

// #region create

// MinimalPlan is the identity portion of a create request.
type MinimalPlan struct {
	Name  string      `json:"name"`
	Goals []plan.Goal `json:"goals"`
}

// CreationInput carries the user's configuration and provenance overrides.
type CreationInput struct {
	UserValues          plan.Config               `json:"user_values"`
	ProvenanceOverrides map[string]provenance.Tag `json:"provenance_overrides,omitempty"`
}

// CreateRequest is the plan-create payload.
type CreateRequest struct {
	MinimalPlan          MinimalPlan   `json:"minimal_plan"`
	CreationInput        CreationInput `json:"creation_input"`
	PreviewSnapshotToken string        `json:"preview_snapshot_token,omitempty"`
	PostCreateBehavior   string        `json:"post_create_behavior"`
	IsActive             *bool         `json:"is_active,omitempty"`
}

// CreateResponse is the plan-create result.
type CreateResponse struct {
	PlanID string `json:"plan_id"`
}

// #endregion create
