// Package server is the drill server: a JSON API over one project and a
// WebSocket stream of per-tick agent frames.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Jancidakis/nasa-pathfinding/internal/logger"
	"github.com/Jancidakis/nasa-pathfinding/internal/metrics"
	"github.com/Jancidakis/nasa-pathfinding/internal/project"
	"github.com/Jancidakis/nasa-pathfinding/internal/store"
	"github.com/Jancidakis/nasa-pathfinding/pkg/sim"
)

// Server serves one project and owns its drill.
type Server struct {
	project *project.Project
	sim     *sim.Simulation
	hub     *hub
	metrics *metrics.Registry
	store   *store.DB
	log     *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex // serializes drill start against loop exit
	looping   bool
	lastBatch sim.BatchResult
	wg        sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records HTTP, stream and drill metrics on r.
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Server) { s.metrics = r }
}

// WithStore records every finished drill in db.
func WithStore(db *store.DB) Option {
	return func(s *Server) { s.store = db }
}

// New creates a server over a loaded project.
func New(p *project.Project, opts ...Option) (*Server, error) {
	s := &Server{
		project: p,
		log:     logger.Component("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewRegistry()
	}

	simulation, err := p.NewSimulation(sim.WithMetrics(s.metrics))
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}
	s.sim = simulation
	s.hub = newHub(s.metrics)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s, nil
}

// Simulation returns the drill the server drives.
func (s *Server) Simulation() *sim.Simulation {
	return s.sim
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.route(mux, "GET /api/building", s.handleBuilding)
	s.route(mux, "GET /api/scene", s.handleScene)
	s.route(mux, "GET /api/validation", s.handleValidation)
	s.route(mux, "GET /api/egress", s.handleEgress)
	s.route(mux, "GET /api/plan/{level}", s.handlePlan)
	s.route(mux, "GET /api/profiles", s.handleProfiles)
	s.route(mux, "GET /api/agents", s.handleAgents)
	s.route(mux, "POST /api/agents", s.handleSpawn)
	s.route(mux, "GET /api/route", s.handleRoute)
	s.route(mux, "POST /api/evacuate", s.handleEvacuate)
	s.route(mux, "POST /api/pause", s.handlePause)
	s.route(mux, "POST /api/resume", s.handleResume)
	s.route(mux, "GET /api/results", s.handleResults)
	s.route(mux, "GET /api/runs", s.handleRuns)
	s.route(mux, "GET /api/runs/{id}", s.handleRun)
	s.route(mux, "GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.instrument(pattern, enableCORS(h)))
}

// Start serves on port until ctx is cancelled, then stops the drill loop and
// shuts the listener down.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithFields(logrus.Fields{
			"addr":    "http://localhost" + srv.Addr,
			"project": s.project.Dir,
		}).Info("drill server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops the drill loop and waits for it to exit.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

// startDrill assigns routes to every pending agent and makes sure the
// stepping loop runs.
func (s *Server) startDrill() sim.BatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.sim.StartEvacuation()
	s.lastBatch = res
	if s.looping || s.sim.Done() {
		return res
	}
	s.looping = true
	s.wg.Add(1)
	go s.loop()
	return res
}

func (s *Server) loop() {
	defer s.wg.Done()
	interval := s.project.Config.TickInterval

	for {
		err := s.sim.Run(s.ctx, interval, s.hub.broadcast)

		s.mu.Lock()
		if err == nil && !s.sim.Done() {
			// A new batch started between the last tick and the lock.
			s.mu.Unlock()
			continue
		}
		s.looping = false
		batch := s.lastBatch
		s.mu.Unlock()

		switch {
		case errors.Is(err, context.Canceled):
			return
		case errors.Is(err, sim.ErrTickLimit):
			s.log.WithError(err).Warn("drill stopped")
		case err != nil:
			s.log.WithError(err).Error("drill loop failed")
			return
		}
		s.record(batch)
		return
	}
}

// record stores the finished drill when a store is configured.
func (s *Server) record(batch sim.BatchResult) {
	if s.store == nil {
		return
	}
	results := s.sim.Results()
	run := store.RunRecord{
		Building:   s.project.Building.Name,
		Seed:       s.project.Config.Seed,
		ExitTarget: s.project.Config.ExitTarget,
		Ticks:      s.sim.Tick(),
		Elapsed:    s.sim.Elapsed(),
		Agents:     len(results),
		NoExit:     batch.NoExit,
	}
	for _, r := range results {
		if r.Evacuated {
			run.Evacuated++
		}
	}
	for _, n := range batch.Fallbacks {
		run.Fallbacks += n
	}
	id, err := s.store.SaveRun(run, results)
	if err != nil {
		s.log.WithError(err).Error("failed to record drill")
		return
	}
	s.log.WithField("run_id", id).Info("drill recorded")
}
