// Package session orchestrates one plan-creation session: edit intake,
// debounced preview and suggestion recomputes, quick fixes, and create.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"reflect"
	"sync"
	"time"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/conflict"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/config"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/forecast"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/logging"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/metrics"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/plan"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/quickfix"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/reconcile"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/schedule"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/store"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/weights"
)

// #region session-struct

// Session is the top-level coordinator for one creation configuration.
// The configuration is held as an immutable snapshot: callbacks running off
// debounce timers observe whole snapshots, never in-place mutation.
type Session struct {
	mu sync.Mutex

	store        *store.Store
	svc          forecast.Service
	sched        *schedule.Scheduler
	rec          metrics.Recorder
	limits       quickfix.Limits
	displayLimit int
	timeout      time.Duration

	current        plan.Config
	versionID      string
	dirty          reconcile.DirtyState
	issues         []conflict.BlockingIssue
	informational  []conflict.Conflict
	contextSummary json.RawMessage
	previewToken   string
}

// New opens or resumes a session. An existing active snapshot in the store
// is adopted; otherwise the default configuration is seeded.
func New(st *store.Store, svc forecast.Service, settings config.Settings, rec metrics.Recorder) (*Session, error) {
	if rec == nil {
		rec = metrics.Noop{}
	}
	s := &Session{
		store: st,
		svc:   svc,
		rec:   rec,
		limits: quickfix.Limits{
			WeeklyTSSRampCeiling: settings.Limits.WeeklyTSSRampCeiling,
			WeeklyCTLRampCeiling: settings.Limits.WeeklyCTLRampCeiling,
			MinPrepDays:          settings.Limits.MinPrepDays,
		},
		displayLimit: settings.DisplayLimit,
		timeout:      settings.RequestTimeout(),
	}

	cur, err := st.Current()
	switch {
	case err == nil:
		s.current = cur.Config
		s.versionID = cur.VersionID
		// Resumed sessions re-derive dirty state from the snapshot itself.
		s.dirty = reconcile.UpdateDirty(reconcile.DirtyState{}, cur.Config)
	case errors.Is(err, sql.ErrNoRows):
		seeded, err := st.SeedVersion(plan.Default(time.Now().UTC()))
		if err != nil {
			return nil, err
		}
		s.current = seeded.Config
		s.versionID = seeded.VersionID
	default:
		return nil, err
	}

	s.sched = schedule.New(settings.PreviewDebounce(), settings.SuggestDebounce(), s.runPreview, s.runSuggest, rec)
	return s, nil
}

// Close stops the debounce timers. The store is owned by the caller.
func (s *Session) Close() {
	s.sched.Stop()
}

// #endregion session-struct

// #region seed

// Seed fetches suggestions and applies them unconditionally, establishing
// the suggested baseline. A fetch failure leaves the configuration untouched
// and marks nothing dirty.
func (s *Session) Seed(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.mu.Lock()
	cfg := s.current
	s.mu.Unlock()

	resp, err := s.svc.FetchSuggestions(ctx, cfg)
	if err != nil {
		s.rec.IncFetchFailure(schedule.KindSuggest)
		return err
	}

	s.mu.Lock()
	res := reconcile.Merge(s.current, resp, s.dirty, reconcile.ModeSeed, time.Now().UTC())
	s.applyMergeLocked("seed", res)
	s.mu.Unlock()

	s.sched.TouchConfig()
	return nil
}

// #endregion seed

// #region edits

// HandleConfigChange replaces the configuration with a new snapshot from the
// UI, recomputes dirty flags, and schedules recomputes. High-impact changes
// additionally arm the suggestion debounce.
func (s *Session) HandleConfigChange(next plan.Config) {
	next = next.Clone()

	s.mu.Lock()
	s.dirty = reconcile.UpdateDirty(s.dirty, next)
	high := plan.HighImpactChanged(s.current, next)
	changed := !reflect.DeepEqual(s.current, next)
	if changed {
		s.commitLocked("edit", next, nil)
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	s.sched.TouchConfig()
	if high {
		s.sched.TouchHighImpact()
	}
}

// SetWeight applies a user edit to one optimization weight, rebalancing the
// rest of the vector around the locked keys.
func (s *Session) SetWeight(key weights.Key, value float64) {
	s.mu.Lock()
	next := s.current.Clone()
	next.Optimization.Weights = weights.Rebalance(
		next.Optimization.Weights, next.Locks.Weights, key, value)
	s.mu.Unlock()

	s.HandleConfigChange(next)
}

// SetGroupLock toggles the lock on one reconcilable group.
func (s *Session) SetGroupLock(group string, locked bool) bool {
	s.mu.Lock()
	next := s.current.Clone()
	l := plan.Lock{Locked: locked}
	if locked {
		l.LockedBy = "user"
	}
	switch group {
	case reconcile.GroupAvailability:
		next.Locks.Availability = l
	case reconcile.GroupRecentInfluence:
		next.Locks.RecentInfluence = l
	case reconcile.GroupConstraints:
		next.Locks.Constraints = l
	default:
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	s.HandleConfigChange(next)
	return true
}

// SetWeightLock toggles the lock on one weight key.
func (s *Session) SetWeightLock(key weights.Key, locked bool) bool {
	i, ok := weights.Index(key)
	if !ok {
		return false
	}
	s.mu.Lock()
	next := s.current.Clone()
	next.Locks.Weights[i] = locked
	s.mu.Unlock()

	s.HandleConfigChange(next)
	return true
}

// ApplyQuickFix resolves one conflict code deterministically. Returns false
// when the code has no quick fix.
func (s *Session) ApplyQuickFix(code string) bool {
	s.mu.Lock()
	cfg := s.current
	s.mu.Unlock()

	next, ok := quickfix.Apply(code, cfg, s.limits)
	if !ok {
		return false
	}
	log.Printf("[SESS] quick fix %s applied", code)
	s.HandleConfigChange(next)
	return true
}

// ResetForm discards all edits, dirty flags, and derived state.
func (s *Session) ResetForm() {
	s.mu.Lock()
	s.dirty = reconcile.Reset()
	s.issues = nil
	s.informational = nil
	s.contextSummary = nil
	s.previewToken = ""
	s.commitLocked("reset", plan.Default(time.Now().UTC()), nil)
	s.mu.Unlock()

	s.sched.TouchConfig()
	s.sched.TouchHighImpact()
}

// #endregion edits

// #region recompute

// runPreview recomputes the feasibility preview. Fires on the preview
// debounce timer. A failed fetch keeps the last-good conflict list and
// configuration, clearing only the preview snapshot token.
func (s *Session) runPreview() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.mu.Lock()
	cfg := s.current
	s.mu.Unlock()

	resp, err := s.svc.ComputePreview(ctx, cfg)
	if err != nil {
		s.rec.IncFetchFailure(schedule.KindPreview)
		log.Printf("[SESS] preview fetch failed: %v", err)
		s.mu.Lock()
		s.previewToken = ""
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.issues = conflict.Consolidate(resp.Conflicts.Items, resp.FeasibilitySafety.Blockers, s.displayLimit)
	if resp.PreviewSnapshot != nil {
		s.previewToken = resp.PreviewSnapshot.Token
	} else {
		s.previewToken = ""
	}
	s.mu.Unlock()
}

// runSuggest fetches fresh suggestions and merges them in recompute mode.
// Fires on the suggestion debounce timer with a guarded nonce. The merge
// runs against the configuration as of merge time, so edits made while the
// fetch was in flight keep their dirty/lock protection.
func (s *Session) runSuggest(nonce uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.mu.Lock()
	cfg := s.current
	s.mu.Unlock()

	resp, err := s.svc.FetchSuggestions(ctx, cfg)
	if err != nil {
		s.rec.IncFetchFailure(schedule.KindSuggest)
		log.Printf("[SESS] suggestion fetch failed (nonce=%d): %v", nonce, err)
		return
	}

	s.mu.Lock()
	res := reconcile.Merge(s.current, resp, s.dirty, reconcile.ModeRecompute, time.Now().UTC())
	changed := !reflect.DeepEqual(s.current, res.Next)
	if changed {
		s.applyMergeLocked("recompute", res)
	} else {
		// Nothing applied: refresh derived state without minting a version.
		s.informational = res.InformationalConflicts
		if len(res.ContextSummary) > 0 {
			s.contextSummary = res.ContextSummary
		}
	}
	s.mu.Unlock()

	if changed {
		s.sched.TouchConfig()
	}
}

// applyMergeLocked commits a merge result and records its group decisions.
// Caller holds s.mu.
func (s *Session) applyMergeLocked(trigger string, res reconcile.Result) {
	s.commitLocked(trigger, res.Next, res.Decisions)
	s.informational = res.InformationalConflicts
	if len(res.ContextSummary) > 0 {
		s.contextSummary = res.ContextSummary
	}
}

// commitLocked persists a new snapshot and adopts it. Caller holds s.mu.
// Persistence failures are logged, not fatal: the in-memory snapshot is the
// source of truth for the session.
func (s *Session) commitLocked(trigger string, next plan.Config, decisions []reconcile.GroupDecision) {
	rec, err := s.store.Commit(s.versionID, next)
	if err != nil {
		log.Printf("[SESS] commit failed: %v", err)
	} else {
		s.versionID = rec.VersionID
		for _, d := range decisions {
			outcome := "suppressed"
			if d.Applied {
				outcome = "applied"
			}
			if d.Reason == reconcile.ReasonNoSuggestion {
				outcome = "noop"
			}
			s.rec.IncMergeDecision(d.Group, outcome)
			if err := logging.LogMerge(s.store.DB(), logging.MergeEntry{
				VersionID:   rec.VersionID,
				TriggerType: trigger,
				Group:       d.Group,
				Decision:    outcome,
				Reason:      d.Reason,
			}); err != nil {
				log.Printf("[SESS] merge log failed: %v", err)
			}
		}
	}
	s.current = next
}

// #endregion recompute
