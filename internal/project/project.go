// Package project loads an evacuation project directory: the building, the
// profile catalog and the drill settings, plus everything derived from them.
package project

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Jancidakis/nasa-pathfinding/internal/config"
	"github.com/Jancidakis/nasa-pathfinding/internal/metrics"
	"github.com/Jancidakis/nasa-pathfinding/pkg/building"
	"github.com/Jancidakis/nasa-pathfinding/pkg/navgraph"
	"github.com/Jancidakis/nasa-pathfinding/pkg/pathfind"
	"github.com/Jancidakis/nasa-pathfinding/pkg/profile"
	"github.com/Jancidakis/nasa-pathfinding/pkg/routing"
	"github.com/Jancidakis/nasa-pathfinding/pkg/scene"
	"github.com/Jancidakis/nasa-pathfinding/pkg/sim"
	"github.com/Jancidakis/nasa-pathfinding/pkg/validation"
)

var (
	ErrLevelNotFound = errors.New("level not found")
	ErrAreaNotFound  = errors.New("area not found")
	ErrUnpositioned  = errors.New("area has no position")
	ErrNoExit        = errors.New("level has no exit")
)

// Project is a loaded project directory.
type Project struct {
	Dir      string
	Config   config.Config
	Building *building.Building
	Profiles profile.Catalog
	Graphs   []*navgraph.Graph
	Egress   []*routing.Analysis
	Scene    *scene.Graph
	Report   *validation.Report
}

type options struct {
	cfg     *config.Config
	metrics *metrics.Registry
}

// Option configures Load.
type Option func(*options)

// WithConfig uses cfg instead of reading the project's config file.
func WithConfig(cfg config.Config) Option {
	return func(o *options) { o.cfg = &cfg }
}

// WithMetrics records graph builds on r.
func WithMetrics(r *metrics.Registry) Option {
	return func(o *options) { o.metrics = r }
}

// Load reads the project in dir, builds every level graph, the egress
// analysis and the scene, and collects every finding into one report. Only I/O and
// parse failures are returned as errors.
func Load(dir string, opts ...Option) (*Project, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Project{Dir: dir}
	if o.cfg != nil {
		p.Config = *o.cfg
	} else {
		cfg, err := config.Load(dir)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		p.Config = cfg
	}

	b, err := building.LoadProject(dir)
	if err != nil {
		return nil, fmt.Errorf("loading building: %w", err)
	}
	p.Building = b

	p.Report = validation.ValidateBuilding(b)

	p.Profiles, err = profile.Load(p.Config.ProfilesPath(dir))
	switch {
	case errors.Is(err, os.ErrNotExist):
		p.Profiles = profile.Default()
		p.Report.AddInfo(validation.Result{
			Level:   validation.LevelSchema,
			Message: "no profile catalog found; using built-in profiles",
			Path:    profile.FileName,
		})
	case err != nil:
		return nil, fmt.Errorf("loading profiles: %w", err)
	}

	p.Graphs = make([]*navgraph.Graph, len(b.Levels))
	for i, lvl := range b.Levels {
		start := time.Now()
		g, r := navgraph.Build(lvl, navgraph.WithPath(fmt.Sprintf("levels[%d]", i)))
		o.metrics.RecordGraphBuild(g, time.Since(start))
		p.Graphs[i] = g
		mergeUnseen(p.Report, r)
	}

	egress, egressReport := routing.AnalyzeAll(b, p.Graphs)
	p.Egress = egress
	p.Report.Merge(egressReport)

	p.Scene = scene.Assemble(b, p.Graphs)
	p.Report.Merge(scene.ValidateGraph(p.Scene))
	return p, nil
}

// SimulationOptions translates the drill settings into simulation options.
func (p *Project) SimulationOptions() ([]sim.Option, error) {
	target, err := pathfind.ParseExitTarget(p.Config.ExitTarget)
	if err != nil {
		return nil, err
	}
	return []sim.Option{
		sim.WithSeed(p.Config.Seed),
		sim.WithSpawnMargin(p.Config.SpawnMargin),
		sim.WithExitTarget(target),
		sim.WithWorkers(p.Config.Workers),
		sim.WithMaxTicks(p.Config.MaxTicks),
	}, nil
}

// NewSimulation creates an empty drill over the project's building. extra
// options are applied after the configured ones.
func (p *Project) NewSimulation(extra ...sim.Option) (*sim.Simulation, error) {
	opts, err := p.SimulationOptions()
	if err != nil {
		return nil, err
	}
	return sim.New(p.Building, p.Profiles, append(opts, extra...)...), nil
}

// RouteFromArea finds the nearest exit from the center of the named area and
// the route to it over the project's graph for that level.
func (p *Project) RouteFromArea(levelIndex int, areaName string) (pathfind.Exit, pathfind.Route, error) {
	if levelIndex < 0 || levelIndex >= len(p.Building.Levels) {
		return pathfind.Exit{}, pathfind.Route{}, fmt.Errorf("%w: %d", ErrLevelNotFound, levelIndex)
	}
	lvl := p.Building.Levels[levelIndex]
	ai := lvl.AreaByName(areaName)
	if ai < 0 {
		return pathfind.Exit{}, pathfind.Route{}, fmt.Errorf("%w: %q on level %q", ErrAreaNotFound, areaName, lvl.Name)
	}
	area := lvl.Areas[ai]
	if !area.Positioned() {
		return pathfind.Exit{}, pathfind.Route{}, fmt.Errorf("%w: %q", ErrUnpositioned, area.Name)
	}

	target, err := pathfind.ParseExitTarget(p.Config.ExitTarget)
	if err != nil {
		return pathfind.Exit{}, pathfind.Route{}, err
	}
	start := area.Position.Point().At(lvl.NavHeight())
	exit, ok := pathfind.NearestExit(start, levelIndex, p.Building, target)
	if !ok {
		return pathfind.Exit{}, pathfind.Route{}, fmt.Errorf("%w: %q", ErrNoExit, lvl.Name)
	}
	return exit, pathfind.Search(start, exit.Position, p.Building, p.Graphs[levelIndex]), nil
}

// mergeUnseen merges the findings of src whose path dst has not reported yet.
// Schema validation already covers most graph-build warnings.
func mergeUnseen(dst, src *validation.Report) {
	add := func(results []validation.Result, fn func(validation.Result)) {
		for _, res := range results {
			if len(dst.Find(res.Path)) == 0 {
				fn(res)
			}
		}
	}
	add(src.Errors, dst.AddError)
	add(src.Warnings, dst.AddWarning)
	add(src.Info, dst.AddInfo)
}
