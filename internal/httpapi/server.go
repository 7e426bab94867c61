// Package httpapi exposes the session over a small JSON REST surface.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/plan"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/session"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/weights"
)

// #region server

// Server routes HTTP requests to one session.
type Server struct {
	sess    *session.Session
	metrics http.Handler
}

// NewServer builds the API server. metrics may be nil to disable the
// /metrics endpoint.
func NewServer(sess *session.Session, metrics http.Handler) *Server {
	return &Server{sess: sess, metrics: metrics}
}

// Router builds the route table.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handlePutConfig)
		r.Post("/weights/{key}", s.handleSetWeight)
		r.Post("/locks/{field}", s.handleSetLock)
		r.Post("/quickfix/{code}", s.handleQuickFix)
		r.Post("/reset", s.handleReset)
		r.Post("/create", s.handleCreate)
	})
	return r
}

// #endregion server

// #region handlers

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetConfig returns the full session view.
// GET /api/v1/config
func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

// handlePutConfig replaces the configuration snapshot with the request body.
// PUT /api/v1/config
func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var next plan.Config
	if !readJSON(w, r, &next) {
		return
	}
	s.sess.HandleConfigChange(next)
	writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

// handleSetWeight applies one weight edit with lock-aware rebalancing.
// POST /api/v1/weights/{key}  body: {"value": 0.7}
func (s *Server) handleSetWeight(w http.ResponseWriter, r *http.Request) {
	key := weights.Key(chi.URLParam(r, "key"))
	if _, ok := weights.Index(key); !ok {
		writeError(w, http.StatusNotFound, "unknown weight key "+strconv.Quote(string(key)))
		return
	}
	var body struct {
		Value float64 `json:"value"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	s.sess.SetWeight(key, body.Value)
	writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

// handleSetLock toggles a group lock ("availability", "recent_influence",
// "constraints") or a per-key weight lock ("weights.fitness").
// POST /api/v1/locks/{field}  body: {"locked": true}
func (s *Server) handleSetLock(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")
	var body struct {
		Locked bool `json:"locked"`
	}
	if !readJSON(w, r, &body) {
		return
	}

	var ok bool
	if key, found := strings.CutPrefix(field, "weights."); found {
		ok = s.sess.SetWeightLock(weights.Key(key), body.Locked)
	} else {
		ok = s.sess.SetGroupLock(field, body.Locked)
	}
	if !ok {
		writeError(w, http.StatusNotFound, "unknown lock field "+strconv.Quote(field))
		return
	}
	writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

// handleQuickFix applies the deterministic fix for one conflict code.
// POST /api/v1/quickfix/{code}
func (s *Server) handleQuickFix(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !s.sess.ApplyQuickFix(code) {
		writeError(w, http.StatusNotFound, "no quick fix for "+strconv.Quote(code))
		return
	}
	writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

// handleReset discards the session back to defaults.
// POST /api/v1/reset
func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.sess.ResetForm()
	writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

// handleCreate submits the plan. Local refusals (validation problems or
// blocking conflicts) come back as 422 with structured detail.
// POST /api/v1/create
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	resp, err := s.sess.Create(r.Context())
	if err != nil {
		var blocked *session.BlockedError
		if errors.As(err, &blocked) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":  blocked.Error(),
				"fields": blocked.Fields,
				"reason": blocked.Reason,
			})
			return
		}
		log.Printf("[API] create failed: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// #endregion handlers

// #region json

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodes the request body into v, answering 400 on failure.
func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// #endregion json
