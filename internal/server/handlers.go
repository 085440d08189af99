package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/Jancidakis/nasa-pathfinding/internal/project"
	"github.com/Jancidakis/nasa-pathfinding/internal/store"
	"github.com/Jancidakis/nasa-pathfinding/pkg/geo"
	"github.com/Jancidakis/nasa-pathfinding/pkg/pathfind"
	"github.com/Jancidakis/nasa-pathfinding/pkg/scene2d"
	"github.com/Jancidakis/nasa-pathfinding/pkg/sim"
)

var validate = validator.New()

// maxSpawn bounds one spawn request.
const maxSpawn = 1000

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, sim.ErrLevelOutOfRange),
		errors.Is(err, sim.ErrUnknownProfile),
		errors.Is(err, sim.ErrNotOnLevel):
		return http.StatusBadRequest
	case errors.Is(err, sim.ErrNoPositionedArea),
		errors.Is(err, project.ErrUnpositioned):
		return http.StatusUnprocessableEntity
	case errors.Is(err, project.ErrLevelNotFound),
		errors.Is(err, project.ErrAreaNotFound),
		errors.Is(err, project.ErrNoExit),
		errors.Is(err, store.ErrRunNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) handleBuilding(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.project.Building)
}

func (s *Server) handleScene(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.project.Scene)
}

func (s *Server) handleValidation(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.project.Report)
}

func (s *Server) handleEgress(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.project.Egress)
}

// handlePlan serves the floor plan of one level with the current agents on it.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	li, err := strconv.Atoi(r.PathValue("level"))
	if err != nil || li < 0 || li >= len(s.project.Building.Levels) {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", project.ErrLevelNotFound, r.PathValue("level")))
		return
	}
	plan, err := scene2d.Assemble2D(s.project.Building, li, s.project.Graphs[li], s.project.Egress[li])
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	plan.PlaceAgents(s.sim.Frame().Agents)
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleProfiles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.project.Profiles)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": s.hub.count(),
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.Agents())
}

type spawnRequest struct {
	Level    int       `json:"level" validate:"gte=0"`
	Profile  string    `json:"profile" validate:"required"`
	Count    int       `json:"count" validate:"gte=0"`
	Position *geo.Vec3 `json:"position,omitempty"`
}

func (s *Server) handleSpawn(w http.ResponseWriter, r *http.Request) {
	var req spawnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}
	if req.Count > maxSpawn {
		writeError(w, http.StatusBadRequest, fmt.Errorf("count %d exceeds %d", req.Count, maxSpawn))
		return
	}

	if req.Position != nil {
		if req.Count != 1 {
			writeError(w, http.StatusBadRequest, errors.New("a position places exactly one agent"))
			return
		}
		a, err := s.sim.PlaceAgent(req.Level, req.Profile, *req.Position)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, []sim.Agent{a})
		return
	}

	added := make([]sim.Agent, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		a, err := s.sim.AddAgent(req.Level, req.Profile)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		added = append(added, a)
	}
	writeJSON(w, http.StatusCreated, added)
}

type routeResponse struct {
	Exit  pathfind.Exit  `json:"exit"`
	Route pathfind.Route `json:"route"`
}

// handleRoute answers the nearest exit and path from the center of the area
// named by ?area= on ?level=.
func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	li, err := strconv.Atoi(r.URL.Query().Get("level"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("level: %w", err))
		return
	}
	exit, route, err := s.project.RouteFromArea(li, r.URL.Query().Get("area"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, routeResponse{Exit: exit, Route: route})
}

func (s *Server) handleEvacuate(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusAccepted, s.startDrill())
}

func (s *Server) handlePause(w http.ResponseWriter, _ *http.Request) {
	s.sim.Pause()
	writeJSON(w, http.StatusOK, s.sim.Frame())
}

func (s *Server) handleResume(w http.ResponseWriter, _ *http.Request) {
	s.sim.Resume()
	writeJSON(w, http.StatusOK, s.sim.Frame())
}

func (s *Server) handleResults(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.Results())
}

var errNoStore = errors.New("run history is disabled")

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, errNoStore)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("limit: %w", err))
			return
		}
		limit = n
	}
	runs, err := s.store.ListRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

type runResponse struct {
	store.RunRecord
	Results []sim.AgentResult `json:"results"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, errNoStore)
		return
	}
	id := r.PathValue("id")
	run, err := s.store.GetRun(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	results, err := s.store.AgentResults(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, runResponse{RunRecord: run, Results: results})
}
