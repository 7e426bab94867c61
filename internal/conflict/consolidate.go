package conflict

import (
	"fmt"
	"strings"
)

// #region suppression

// suppressedCodes are surfaced elsewhere as review-only ramp observations and
// must never appear as create-blockers.
var suppressedCodes = map[string]bool{
	CodeRequiredTSSRampExceedsCap: true,
	CodeRequiredCTLRampExceedsCap: true,
}

// Suppressed reports whether code belongs to the review-only suppression set.
func Suppressed(code string) bool {
	return suppressedCodes[code]
}

// #endregion suppression

// #region consolidate

// DefaultDisplayLimit caps how many blocking issues are surfaced.
const DefaultDisplayLimit = 3

// Consolidate merges blocking conflicts from the preview conflict list and
// the feasibility/safety blockers into a deduplicated, capped issue list.
// The preview list goes first, so it wins both ordering and detail (its
// suggestions survive); a later conflict with the same (code, trimmed
// lowercased message) key is dropped. Truncation is stable: the first limit
// entries in insertion order, no re-sorting.
func Consolidate(items []Conflict, feasibilityBlockers []Conflict, limit int) []BlockingIssue {
	if limit <= 0 {
		limit = DefaultDisplayLimit
	}

	seen := make(map[string]bool)
	issues := make([]BlockingIssue, 0, limit)

	add := func(c Conflict) {
		if suppressedCodes[c.Code] {
			return
		}
		key := dedupeKey(c)
		if seen[key] {
			return
		}
		seen[key] = true
		issues = append(issues, BlockingIssue{
			Code:        c.Code,
			Message:     c.Message,
			Suggestions: append([]string(nil), c.Suggestions...),
		})
	}

	for _, c := range items {
		if c.Severity != SeverityBlocking {
			continue
		}
		add(c)
	}
	// Feasibility blockers are blocking by construction; no severity filter.
	for _, c := range feasibilityBlockers {
		add(c)
	}

	if len(issues) > limit {
		issues = issues[:limit]
	}
	return issues
}

func dedupeKey(c Conflict) string {
	return c.Code + ":" + strings.ToLower(strings.TrimSpace(c.Message))
}

// #endregion consolidate

// #region disabled-reason

// CreateDisabledReason renders the create-blocked message for the given
// issues. It is purely a function of the issue count: empty list means create
// is allowed and the empty string is returned.
func CreateDisabledReason(issues []BlockingIssue) string {
	switch n := len(issues); n {
	case 0:
		return ""
	case 1:
		return "Resolve 1 blocking conflict before creating this plan"
	default:
		return fmt.Sprintf("Resolve %d blocking conflicts before creating this plan", n)
	}
}

// #endregion disabled-reason
