// Package schedule owns the debounce timers and nonce guard that gate
// network-triggered recomputes.
package schedule

import (
	"log"
	"sync"
	"time"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/metrics"
)

// Recompute kinds, used for logging and metrics labels.
const (
	KindPreview = "preview"
	KindSuggest = "suggest"
)

// #region scheduler

// Scheduler debounces preview and suggestion recomputes. Both timers are
// rearmed on every qualifying change, so only the final state of an edit
// burst is dispatched. Suggestion dispatch is additionally guarded by a
// monotonically increasing nonce: a timer firing for a superseded or already
// dispatched nonce is dropped, not retried.
type Scheduler struct {
	mu sync.Mutex

	previewDelay time.Duration
	suggestDelay time.Duration

	previewTimer *time.Timer
	suggestTimer *time.Timer

	nonce          uint64 // latest high-impact change
	lastDispatched uint64 // last nonce handed to the suggest callback

	onPreview func()
	onSuggest func(nonce uint64)

	rec     metrics.Recorder
	stopped bool
}

// New builds a scheduler. onPreview and onSuggest run on timer goroutines;
// they must read current state themselves rather than capture it.
func New(previewDelay, suggestDelay time.Duration, onPreview func(), onSuggest func(uint64), rec metrics.Recorder) *Scheduler {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &Scheduler{
		previewDelay: previewDelay,
		suggestDelay: suggestDelay,
		onPreview:    onPreview,
		onSuggest:    onSuggest,
		rec:          rec,
	}
}

// #endregion scheduler

// #region touch

// TouchConfig rearms the preview debounce after any configuration change.
func (s *Scheduler) TouchConfig() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.rec.IncRecomputeScheduled(KindPreview)
	if s.previewTimer != nil {
		s.previewTimer.Stop()
	}
	s.previewTimer = time.AfterFunc(s.previewDelay, s.firePreview)
}

// TouchHighImpact bumps the recompute nonce and rearms the suggestion
// debounce. It returns the nonce assigned to this change.
func (s *Scheduler) TouchHighImpact() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return s.nonce
	}
	s.nonce++
	n := s.nonce
	s.rec.IncRecomputeScheduled(KindSuggest)
	if s.suggestTimer != nil {
		s.suggestTimer.Stop()
	}
	s.suggestTimer = time.AfterFunc(s.suggestDelay, func() { s.fireSuggest(n) })
	return n
}

// #endregion touch

// #region fire

func (s *Scheduler) firePreview() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.rec.IncRecomputeDispatched(KindPreview)
	s.mu.Unlock()
	s.onPreview()
}

func (s *Scheduler) fireSuggest(n uint64) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if n != s.nonce {
		// A newer change rearmed the timer; this firing is stale.
		s.rec.IncRecomputeDropped(KindSuggest, "superseded")
		s.mu.Unlock()
		return
	}
	if n == s.lastDispatched {
		// Late or duplicate firing for an already handled change.
		s.rec.IncRecomputeDropped(KindSuggest, "duplicate")
		s.mu.Unlock()
		return
	}
	s.lastDispatched = n
	s.rec.IncRecomputeDispatched(KindSuggest)
	s.mu.Unlock()

	log.Printf("[SCHED] dispatch suggest recompute nonce=%d", n)
	s.onSuggest(n)
}

// #endregion fire

// #region stop

// Stop cancels pending timers. Callbacks already past the guard may still be
// running; new firings are dropped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.previewTimer != nil {
		s.previewTimer.Stop()
	}
	if s.suggestTimer != nil {
		s.suggestTimer.Stop()
	}
}

// #endregion stop
