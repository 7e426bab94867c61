package reconcile

import (
	"encoding/json"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/conflict"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/plan"
)

// #region mode

// Mode selects how a suggestion merge treats existing values.
type Mode string

const (
	// ModeSeed applies every suggestion unconditionally, establishing the
	// suggested baseline on first load.
	ModeSeed Mode = "seed"
	// ModeRecompute applies a group's suggestion only when the group is
	// neither dirty nor locked.
	ModeRecompute Mode = "recompute"
)

// #endregion mode

// #region groups

// Reconcilable field groups, each with its own dirty flag and lock.
const (
	GroupAvailability    = "availability"
	GroupRecentInfluence = "recent_influence"
	GroupConstraints     = "constraints"
)

// #endregion groups

// #region dirty

// DirtyState tracks which groups the user has authored changes to. Flags are
// monotonic within a session: they only move to true, and only a full form
// reset clears them.
type DirtyState struct {
	Availability    bool `json:"availability"`
	RecentInfluence bool `json:"recent_influence"`
	Constraints     bool `json:"constraints"`
}

// #endregion dirty

// #region result

// GroupDecision records what a merge did with one group's suggestion.
type GroupDecision struct {
	Group   string `json:"group"`
	Applied bool   `json:"applied"`
	Reason  string `json:"reason"`
}

// Decision reason values.
const (
	ReasonSeeded          = "seeded"
	ReasonApplied         = "applied"
	ReasonSuppressedDirty = "suppressed: group dirty"
	ReasonSuppressedLock  = "suppressed: group locked"
	ReasonNoSuggestion    = "no suggestion for group"
)

// Result is the outcome of a suggestion merge.
type Result struct {
	Next plan.Config
	// InformationalConflicts surface lock-caused suggestion suppressions
	// reported by the service; they never block creation.
	InformationalConflicts []conflict.Conflict
	ContextSummary         json.RawMessage
	Decisions              []GroupDecision
}

// #endregion result
