package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/conflict"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/forecast"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/plan"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/provenance"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/reconcile"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/validate"
)

// #region view

// View is a read-only snapshot of the session for API consumers.
type View struct {
	VersionID              string                   `json:"version_id"`
	Config                 plan.Config              `json:"config"`
	Dirty                  reconcile.DirtyState     `json:"dirty"`
	BlockingIssues         []conflict.BlockingIssue `json:"blocking_issues"`
	CreateDisabledReason   string                   `json:"create_disabled_reason,omitempty"`
	InformationalConflicts []conflict.Conflict      `json:"informational_conflicts,omitempty"`
	ContextSummary         json.RawMessage          `json:"context_summary,omitempty"`
	PreviewToken           string                   `json:"preview_token,omitempty"`
}

// Snapshot returns the current session view.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		VersionID:              s.versionID,
		Config:                 s.current.Clone(),
		Dirty:                  s.dirty,
		BlockingIssues:         append([]conflict.BlockingIssue(nil), s.issues...),
		CreateDisabledReason:   conflict.CreateDisabledReason(s.issues),
		InformationalConflicts: append([]conflict.Conflict(nil), s.informational...),
		ContextSummary:         s.contextSummary,
		PreviewToken:           s.previewToken,
	}
}

// #endregion view

// #region create

// BlockedError reports why a create request was refused locally, before any
// call to the forecast service.
type BlockedError struct {
	// Fields maps field paths to validation messages.
	Fields map[string]string
	// Reason is the consolidated blocking-conflict summary, empty when the
	// refusal is validation-only.
	Reason string
}

func (e *BlockedError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("configuration invalid (%d field problems)", len(e.Fields))
}

// Create submits the plan. It refuses locally when field validation fails or
// blocking conflicts remain; both must clear before the service is called.
func (s *Session) Create(ctx context.Context) (forecast.CreateResponse, error) {
	s.mu.Lock()
	cfg := s.current.Clone()
	issues := append([]conflict.BlockingIssue(nil), s.issues...)
	token := s.previewToken
	s.mu.Unlock()

	if problems := validate.Run(cfg); len(problems) > 0 {
		return forecast.CreateResponse{}, &BlockedError{Fields: problems}
	}
	if reason := conflict.CreateDisabledReason(issues); reason != "" {
		return forecast.CreateResponse{}, &BlockedError{Reason: reason}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req := forecast.CreateRequest{
		MinimalPlan: forecast.MinimalPlan{
			Name:  cfg.Name,
			Goals: cfg.Goals,
		},
		CreationInput: forecast.CreationInput{
			UserValues: cfg,
		},
		PreviewSnapshotToken: token,
		PostCreateBehavior:   "stay",
	}
	req.CreationInput.ProvenanceOverrides = map[string]provenance.Tag{
		"availability_config": cfg.AvailabilityProvenance,
	}
	return s.svc.CreatePlan(ctx, req)
}

// #endregion create
