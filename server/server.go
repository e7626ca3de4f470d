package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zeu5/safe-policy-iteration/core"
	"github.com/zeu5/safe-policy-iteration/envs/gridworld"
	"github.com/zeu5/safe-policy-iteration/planner"
	"github.com/zeu5/safe-policy-iteration/util"
)

const maxPlanBody = 64 * 1024

// PlanRequest asks for a grid world to be planned. Fields left out of the
// request keep the server defaults.
type PlanRequest struct {
	Grid    *gridworld.Config `json:"grid,omitempty"`
	Planner *planner.Config   `json:"planner,omitempty"`
}

// Server wires HTTP handlers to a plan store.
type Server struct {
	store    PlanStore
	defaults planner.Config
	timeout  time.Duration
	logger   zerolog.Logger
}

func NewServer(store PlanStore, defaults planner.Config, timeout time.Duration, logger zerolog.Logger) *Server {
	return &Server{
		store:    store,
		defaults: defaults,
		timeout:  timeout,
		logger:   logger.With().Str("component", "server").Logger(),
	}
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(s.logger))
	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/plans", s.handleCreatePlan)
		r.Get("/plans", s.handleListPlans)
		r.Get("/plans/{planID}", s.handleGetPlan)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPlanBody)
	defer r.Body.Close()
	gridCfg := gridworld.DefaultConfig()
	plannerCfg := s.defaults
	req := PlanRequest{Grid: &gridCfg, Planner: &plannerCfg}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid plan request")
		return
	}

	grid, err := gridworld.New(gridCfg)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	solution, err := planner.New(plannerCfg, s.logger).Solve(ctx, grid, nil)
	if err != nil {
		s.respondError(w, err)
		return
	}

	plan := Plan{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Grid:      grid.Config(),
		Planner:   plannerCfg,
		Solution:  solution,
		Actions:   util.ReshapeInts(solution.Policy.Actions(), gridCfg.Cols),
	}
	if err := s.store.SavePlan(ctx, plan); err != nil {
		s.respondError(w, err)
		return
	}
	s.logger.Info().
		Str("plan_id", plan.ID).
		Int("iterations", solution.Iterations).
		Bool("stable", solution.Stable).
		Msg("plan created")
	s.writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.store.GetPlan(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.ListPlans(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"plans": ids})
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	var vErr *core.ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, planner.ErrInvalidConfig):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &vErr), errors.Is(err, core.ErrEmptyModel):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		s.logger.Error().Err(err).Msg("request failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}
