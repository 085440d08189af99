// Package sim owns a set of agents in a building, assigns them evacuation
// routes and advances them on a fixed tick.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Jancidakis/nasa-pathfinding/internal/logger"
	"github.com/Jancidakis/nasa-pathfinding/internal/metrics"
	"github.com/Jancidakis/nasa-pathfinding/pkg/building"
	"github.com/Jancidakis/nasa-pathfinding/pkg/geo"
	"github.com/Jancidakis/nasa-pathfinding/pkg/navgraph"
	"github.com/Jancidakis/nasa-pathfinding/pkg/pathfind"
	"github.com/Jancidakis/nasa-pathfinding/pkg/profile"
	"github.com/Jancidakis/nasa-pathfinding/pkg/scene"
)

const (
	// DefaultTickInterval is the stepping cadence of Run (20 Hz).
	DefaultTickInterval = 50 * time.Millisecond
	// DefaultSpawnMargin keeps spawned agents this far inside an area's edges.
	DefaultSpawnMargin = 0.25
)

var (
	ErrLevelOutOfRange  = errors.New("level index out of range")
	ErrNoPositionedArea = errors.New("level has no positioned area")
	ErrUnknownProfile   = errors.New("unknown profile")
	ErrNotOnLevel       = errors.New("position is not on the level")
	ErrTickLimit        = errors.New("tick limit reached before every agent evacuated")
	ErrInvalidStep      = errors.New("step must be positive and finite")
)

// Simulation is an evacuation drill over one building. All methods are safe
// for concurrent use; route assignment and stepping never interleave.
type Simulation struct {
	mu sync.Mutex

	building *building.Building
	profiles profile.Catalog
	agents   []Agent

	active   bool // an evacuation batch has agents still moving
	paused   bool
	tick     int
	elapsed  float64
	maxTicks int

	rng        *rand.Rand
	margin     float64
	exitTarget pathfind.ExitTarget
	workers    int

	log     *logrus.Entry
	metrics *metrics.Registry

	routeFn func(Agent, []*navgraph.Graph) outcome
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithLogger sets the log entry used by the simulation.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Simulation) { s.log = log }
}

// WithMetrics records graph, routing and tick metrics into r.
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Simulation) { s.metrics = r }
}

// WithWorkers resolves routes on n goroutines. Values below 2 keep route
// assignment sequential.
func WithWorkers(n int) Option {
	return func(s *Simulation) { s.workers = n }
}

// WithSeed makes spawn placement reproducible. Zero keeps the time-based seed.
func WithSeed(seed int64) Option {
	return func(s *Simulation) {
		if seed != 0 {
			s.rng = rand.New(rand.NewSource(seed))
		}
	}
}

// WithSpawnMargin sets the inward spawn margin in meters.
func WithSpawnMargin(m float64) Option {
	return func(s *Simulation) { s.margin = m }
}

// WithExitTarget selects whether agents head for the exit's area center or
// the exit door itself.
func WithExitTarget(t pathfind.ExitTarget) Option {
	return func(s *Simulation) { s.exitTarget = t }
}

// WithMaxTicks bounds Run and Simulate. Zero means no bound.
func WithMaxTicks(n int) Option {
	return func(s *Simulation) { s.maxTicks = n }
}

// New creates an empty simulation over b using the given profile catalog.
func New(b *building.Building, profiles profile.Catalog, opts ...Option) *Simulation {
	s := &Simulation{
		building:   b,
		profiles:   profiles,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		margin:     DefaultSpawnMargin,
		exitTarget: pathfind.ExitTargetArea,
		workers:    1,
		log:        logger.Component("sim"),
	}
	s.routeFn = s.route
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Building returns the building the simulation runs over.
func (s *Simulation) Building() *building.Building {
	return s.building
}

// Profiles returns the profile catalog.
func (s *Simulation) Profiles() profile.Catalog {
	return s.profiles
}

func (s *Simulation) checkAgent(levelIndex int, profileID string) error {
	if levelIndex < 0 || levelIndex >= len(s.building.Levels) {
		return fmt.Errorf("%w: %d (building has %d levels)", ErrLevelOutOfRange, levelIndex, len(s.building.Levels))
	}
	if _, ok := s.profiles.Lookup(profileID); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProfile, profileID)
	}
	return nil
}

// AddAgent spawns an idle agent at a random point inside a random positioned
// area of the given level.
func (s *Simulation) AddAgent(levelIndex int, profileID string) (Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAgent(levelIndex, profileID); err != nil {
		return Agent{}, err
	}
	lvl := s.building.Levels[levelIndex]
	var candidates []int
	for i, a := range lvl.Areas {
		if a.Positioned() {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return Agent{}, fmt.Errorf("%w: %q", ErrNoPositionedArea, lvl.Name)
	}

	area := lvl.Areas[candidates[s.rng.Intn(len(candidates))]]
	lo, hi := area.Footprint().Inset(s.margin)
	pt := geo.Pt(
		lo.X+s.rng.Float64()*(hi.X-lo.X),
		lo.Z+s.rng.Float64()*(hi.Z-lo.Z),
	)
	return s.insert(levelIndex, profileID, pt.At(lvl.NavHeight())), nil
}

// PlaceAgent adds an idle agent at an explicit position on the given level.
func (s *Simulation) PlaceAgent(levelIndex int, profileID string, pos geo.Vec3) (Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAgent(levelIndex, profileID); err != nil {
		return Agent{}, err
	}
	if pathfind.LevelAt(s.building, pos.Y) != levelIndex {
		return Agent{}, fmt.Errorf("%w: %v on level %d", ErrNotOnLevel, pos, levelIndex)
	}
	return s.insert(levelIndex, profileID, pos), nil
}

func (s *Simulation) insert(levelIndex int, profileID string, pos geo.Vec3) Agent {
	a := Agent{
		ID:         uuid.NewString(),
		ProfileID:  profileID,
		Position:   pos,
		LevelIndex: levelIndex,
	}
	s.agents = append(s.agents, a)
	s.log.WithFields(logrus.Fields{
		"agent_id": a.ID,
		"level":    levelIndex,
		"profile":  profileID,
	}).Debug("agent added")
	s.publishCounts()
	return a.Clone()
}

// BatchResult summarizes one route assignment pass.
type BatchResult struct {
	Assigned  int                       `json:"assigned"`
	NoExit    int                       `json:"no_exit"`
	Failed    int                       `json:"failed"` // route computation panicked
	Skipped   int                       `json:"skipped"` // already evacuated
	Graphs    int                       `json:"graphs"`
	Fallbacks map[pathfind.Fallback]int `json:"fallbacks"`
}

// outcome is the routing result of one agent. resolved stays false when the
// computation did not return.
type outcome struct {
	agent    Agent
	resolved bool
	assigned bool
	fallback pathfind.Fallback
}

// StartEvacuation computes an exit and a route for every agent that has not
// evacuated yet and starts the drill. Graphs are built once per level for the
// whole batch and only read while routes are computed. Agents on a level
// without exit are left untouched.
func (s *Simulation) StartEvacuation() BatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := BatchResult{Fallbacks: map[pathfind.Fallback]int{}}
	graphs := s.buildGraphs()
	for _, g := range graphs {
		if g != nil {
			res.Graphs++
		}
	}

	outcomes := make([]outcome, len(s.agents))
	resolve := func(i int) {
		defer func() {
			if r := recover(); r != nil {
				s.log.WithFields(logrus.Fields{
					"agent_id": s.agents[i].ID,
					"panic":    r,
				}).Error("route computation panicked")
			}
		}()
		outcomes[i] = s.routeFn(s.agents[i], graphs)
	}

	if s.workers > 1 {
		pool := newWorkerPool(s.workers, s.log)
		for i := range s.agents {
			if s.agents[i].Evacuated {
				continue
			}
			pool.submit(func() { resolve(i) })
		}
		pool.wait()
	} else {
		for i := range s.agents {
			if !s.agents[i].Evacuated {
				resolve(i)
			}
		}
	}

	for i, o := range outcomes {
		a := s.agents[i]
		switch {
		case a.Evacuated:
			res.Skipped++
		case !o.resolved:
			res.Failed++
		case !o.assigned:
			res.NoExit++
			s.metrics.RecordNoExit()
			s.log.WithFields(logrus.Fields{
				"agent_id": a.ID,
				"level":    a.LevelIndex,
				"reason":   "no_exit",
			}).Warn("agent has no reachable exit; left in place")
		default:
			s.agents[i] = o.agent
			res.Assigned++
			if o.fallback != pathfind.FallbackNone {
				res.Fallbacks[o.fallback]++
				s.log.WithFields(logrus.Fields{
					"agent_id": a.ID,
					"level":    a.LevelIndex,
					"reason":   string(o.fallback),
				}).Warn("route degraded to straight line")
			}
		}
	}

	s.active = s.anyMoving()
	s.paused = false
	s.publishCounts()
	s.log.WithFields(logrus.Fields{
		"assigned": res.Assigned,
		"no_exit":  res.NoExit,
		"failed":   res.Failed,
		"skipped":  res.Skipped,
		"graphs":   res.Graphs,
	}).Info("evacuation started")
	return res
}

// buildGraphs builds the graph of every level that holds a pending agent.
func (s *Simulation) buildGraphs() []*navgraph.Graph {
	graphs := make([]*navgraph.Graph, len(s.building.Levels))
	for _, a := range s.agents {
		li := a.LevelIndex
		if a.Evacuated || graphs[li] != nil {
			continue
		}
		start := time.Now()
		g, report := navgraph.Build(s.building.Levels[li],
			navgraph.WithPath(fmt.Sprintf("levels[%d]", li)),
			navgraph.WithAmbiguityHook(func(d navgraph.DoorRef, candidates []string) {
				s.log.WithFields(logrus.Fields{
					"level":       li,
					"area":        d.Area,
					"door":        d.Door,
					"connects_to": d.ConnectsTo,
					"candidates":  candidates,
				}).Warn("ambiguous door connection; using first match")
			}),
		)
		s.metrics.RecordGraphBuild(g, time.Since(start))
		for _, w := range report.Warnings {
			s.log.WithFields(logrus.Fields{"level": li, "path": w.Path}).Debug(w.Message)
		}
		graphs[li] = g
	}
	return graphs
}

// route resolves exit and path for one agent. It only reads shared state.
func (s *Simulation) route(a Agent, graphs []*navgraph.Graph) outcome {
	exit, ok := pathfind.NearestExit(a.Position, a.LevelIndex, s.building, s.exitTarget)
	if !ok {
		return outcome{resolved: true}
	}
	start := time.Now()
	r := pathfind.Search(a.Position, exit.Position, s.building, graphs[a.LevelIndex])
	s.metrics.RecordPathSearch(string(r.Fallback), time.Since(start))

	a = a.Clone()
	target := exit.Position
	a.TargetPosition = &target
	a.Path = append([]geo.Vec3(nil), r.Waypoints...)
	a.IsEvacuating = true
	a.StartedAt = s.elapsed
	return outcome{agent: a, resolved: true, assigned: true, fallback: r.Fallback}
}

// Step advances every agent by dt seconds. All agents move from the same
// pre-tick state. The drill stops running once no agent is still moving.
func (s *Simulation) Step(dt float64) scene.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	unresolved := 0
	next := make([]Agent, len(s.agents))
	for i, a := range s.agents {
		if !a.Evacuated && len(a.Path) > 0 {
			if _, ok := s.profiles.Lookup(a.ProfileID); !ok {
				unresolved++
			}
		}
		next[i] = Advance(a, dt, s.profiles)
	}

	s.tick++
	if validStep(dt) {
		s.elapsed += dt
	}
	for i := range next {
		if next[i].Evacuated && !s.agents[i].Evacuated {
			next[i].EvacuatedAt = s.elapsed
			s.metrics.RecordEvacuated(next[i].EvacuatedAt - next[i].StartedAt)
			s.log.WithFields(logrus.Fields{
				"agent_id": next[i].ID,
				"elapsed":  s.elapsed,
			}).Debug("agent evacuated")
		}
	}
	s.agents = next

	if s.active && !s.anyMoving() {
		s.active = false
		s.log.WithFields(logrus.Fields{
			"tick":      s.tick,
			"elapsed":   s.elapsed,
			"evacuated": s.countEvacuated(),
			"agents":    len(s.agents),
		}).Info("evacuation finished")
	}
	s.metrics.RecordTick(time.Since(start), unresolved)
	s.publishCounts()
	return s.frame()
}

// anyMoving reports whether some agent still has waypoints to walk.
func (s *Simulation) anyMoving() bool {
	for _, a := range s.agents {
		if !a.Evacuated && len(a.Path) > 0 {
			return true
		}
	}
	return false
}

func (s *Simulation) countEvacuated() int {
	n := 0
	for _, a := range s.agents {
		if a.Evacuated {
			n++
		}
	}
	return n
}

func (s *Simulation) publishCounts() {
	if s.metrics == nil {
		return
	}
	var idle, evacuating, evacuated int
	for _, a := range s.agents {
		switch a.State() {
		case StateIdle:
			idle++
		case StateEvacuating:
			evacuating++
		case StateEvacuated:
			evacuated++
		}
	}
	s.metrics.SetAgentCounts(idle, evacuating, evacuated)
}

// Pause stops automatic stepping after the current tick.
func (s *Simulation) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume continues automatic stepping.
func (s *Simulation) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

// Running reports whether Run would advance agents on its next tick.
func (s *Simulation) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active && !s.paused
}

// Paused reports whether Pause is in effect.
func (s *Simulation) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Done reports whether no agent is left moving.
func (s *Simulation) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.active
}

// Tick returns the number of steps taken.
func (s *Simulation) Tick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Elapsed returns the simulated seconds stepped so far.
func (s *Simulation) Elapsed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// Agents returns a copy of every agent.
func (s *Simulation) Agents() []Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Agent, len(s.agents))
	for i, a := range s.agents {
		out[i] = a.Clone()
	}
	return out
}

// Agent returns a copy of the agent with the given id.
func (s *Simulation) Agent(id string) (Agent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.agents {
		if a.ID == id {
			return a.Clone(), true
		}
	}
	return Agent{}, false
}

// Frame returns the current agent snapshot without stepping.
func (s *Simulation) Frame() scene.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame()
}

func (s *Simulation) frame() scene.Frame {
	f := scene.Frame{
		Tick:    s.tick,
		Elapsed: s.elapsed,
		Running: s.active && !s.paused,
		Agents:  make([]scene.AgentState, len(s.agents)),
	}
	for i, a := range s.agents {
		st := scene.AgentState{
			ID:        a.ID,
			ProfileID: a.ProfileID,
			Level:     a.LevelIndex,
			Position:  a.Position,
			Remaining: len(a.Path),
			State:     string(a.State()),
		}
		if a.TargetPosition != nil {
			t := *a.TargetPosition
			st.Target = &t
		}
		if p, ok := s.profiles.Lookup(a.ProfileID); ok {
			st.Color = p.Color
		}
		if a.Evacuated {
			f.Evacuated++
		}
		f.Agents[i] = st
	}
	return f
}

// Run steps the simulation every interval until no agent is left moving,
// ctx is cancelled, or the tick limit is hit. Each step advances agents by
// interval of simulated time. While paused, ticks pass without stepping.
// onFrame, when non-nil, receives every frame.
func (s *Simulation) Run(ctx context.Context, interval time.Duration, onFrame func(scene.Frame)) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if s.Done() {
		return nil
	}
	s.log.WithField("interval", interval).Info("simulation loop started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.WithField("tick", s.Tick()).Info("simulation loop cancelled")
			return ctx.Err()
		case <-ticker.C:
		}

		if s.Done() {
			return nil
		}
		if s.Paused() {
			continue
		}
		f := s.Step(interval.Seconds())
		if onFrame != nil {
			onFrame(f)
		}
		if err := s.checkTickLimit(f.Tick); err != nil {
			return err
		}
	}
}

// Simulate steps with a fixed dt as fast as possible, ignoring pause, until
// no agent is left moving or the tick limit is hit. It returns the number of
// steps taken.
func (s *Simulation) Simulate(dt float64, onFrame func(scene.Frame)) (int, error) {
	if !validStep(dt) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidStep, dt)
	}
	steps := 0
	for !s.Done() {
		f := s.Step(dt)
		steps++
		if onFrame != nil {
			onFrame(f)
		}
		if err := s.checkTickLimit(f.Tick); err != nil {
			return steps, err
		}
	}
	return steps, nil
}

func (s *Simulation) checkTickLimit(tick int) error {
	if s.maxTicks > 0 && tick >= s.maxTicks && !s.Done() {
		s.log.WithField("tick", tick).Warn("tick limit reached")
		return fmt.Errorf("%w (%d ticks)", ErrTickLimit, s.maxTicks)
	}
	return nil
}

// AgentResult is the outcome of one agent in a drill.
type AgentResult struct {
	AgentID        string  `json:"agent_id"`
	ProfileID      string  `json:"profile_id"`
	LevelIndex     int     `json:"level_index"`
	Evacuated      bool    `json:"evacuated"`
	EvacuationTime float64 `json:"evacuation_time"` // simulated seconds, 0 unless evacuated
	Distance       float64 `json:"distance"`        // walked so far
}

// Results reports per-agent outcomes so far.
func (s *Simulation) Results() []AgentResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AgentResult, len(s.agents))
	for i, a := range s.agents {
		r := AgentResult{
			AgentID:    a.ID,
			ProfileID:  a.ProfileID,
			LevelIndex: a.LevelIndex,
			Evacuated:  a.Evacuated,
		}
		if a.Evacuated {
			r.EvacuationTime = a.EvacuatedAt - a.StartedAt
		}
		r.Distance = geo.PathLength(a.PathHistory)
		out[i] = r
	}
	return out
}
