package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/Jancidakis/nasa-pathfinding/internal/logger"
	"github.com/Jancidakis/nasa-pathfinding/internal/metrics"
	"github.com/Jancidakis/nasa-pathfinding/internal/project"
	"github.com/Jancidakis/nasa-pathfinding/internal/server"
	"github.com/Jancidakis/nasa-pathfinding/internal/store"
	"github.com/Jancidakis/nasa-pathfinding/pkg/scene2d"
	"github.com/Jancidakis/nasa-pathfinding/pkg/sim"
)

var errInvalid = errors.New("building has validation errors")

// loadAndValidate loads the project and fails when schema validation found
// errors. Warnings are left for the caller to print.
func loadAndValidate(projectPath string, opts ...project.Option) (*project.Project, error) {
	p, err := project.Load(projectPath, opts...)
	if err != nil {
		return nil, err
	}
	if !p.Report.Valid {
		printValidationReport(p.Report)
		return nil, errInvalid
	}
	return p, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runValidate(projectPath string) error {
	p, err := project.Load(projectPath)
	if err != nil {
		return err
	}
	printValidationReport(p.Report)
	if !p.Report.Valid {
		return errInvalid
	}
	fmt.Println()
	printEgress(p.Egress)
	return nil
}

func runGraph(projectPath string) error {
	p, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"building":   p.Building.Name,
		"levels":     p.Graphs,
		"egress":     p.Egress,
		"validation": p.Report,
	})
}

func runPlan(projectPath string, level int) error {
	p, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	if level < 0 || level >= len(p.Building.Levels) {
		return fmt.Errorf("%w: %d", project.ErrLevelNotFound, level)
	}
	plan, err := scene2d.Assemble2D(p.Building, level, p.Graphs[level], p.Egress[level])
	if err != nil {
		return err
	}
	return printJSON(plan)
}

func runRoute(projectPath string, level int, area string, asJSON bool) error {
	p, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	exit, route, err := p.RouteFromArea(level, area)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(map[string]any{"exit": exit, "route": route})
	}
	printRoute(p.Building.Levels[level].Name, area, exit, route)
	return nil
}

type simulateOptions struct {
	mix    map[string]int
	level  int
	dt     float64
	seed   int64
	db     string
	asJSON bool
}

func runSimulate(projectPath string, opts simulateOptions) error {
	p, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	if opts.seed != 0 {
		p.Config.Seed = opts.seed
	}
	if opts.db != "" {
		p.Config.DBPath = opts.db
	}

	s, err := p.NewSimulation()
	if err != nil {
		return err
	}
	if err := spawn(s, p, opts); err != nil {
		return err
	}

	batch := s.StartEvacuation()
	dt := opts.dt
	if dt <= 0 {
		dt = p.Config.TickInterval.Seconds()
	}
	steps, simErr := s.Simulate(dt, nil)
	if simErr != nil && !errors.Is(simErr, sim.ErrTickLimit) {
		return simErr
	}

	results := s.Results()
	if opts.asJSON {
		if err := printJSON(map[string]any{"batch": batch, "steps": steps, "results": results}); err != nil {
			return err
		}
	} else {
		printDrillSummary(p.Building.Name, batch, steps, s.Elapsed(), results)
	}

	if p.Config.DBPath != "" {
		id, err := recordDrill(p, s, batch, results)
		if err != nil {
			return err
		}
		logger.Log.WithField("run_id", id).Info("drill recorded")
	}
	return simErr
}

// spawn places the requested agents, spreading them round-robin over the
// candidate levels in profile id order.
func spawn(s *sim.Simulation, p *project.Project, opts simulateOptions) error {
	var levels []int
	if opts.level >= 0 {
		levels = []int{opts.level}
	} else {
		for i, lvl := range p.Building.Levels {
			for _, a := range lvl.Areas {
				if a.Positioned() {
					levels = append(levels, i)
					break
				}
			}
		}
	}
	if len(levels) == 0 {
		return sim.ErrNoPositionedArea
	}

	ids := make([]string, 0, len(opts.mix))
	for id := range opts.mix {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	k := 0
	for _, id := range ids {
		for i := 0; i < opts.mix[id]; i++ {
			if _, err := s.AddAgent(levels[k%len(levels)], id); err != nil {
				return fmt.Errorf("spawning %s: %w", id, err)
			}
			k++
		}
	}
	return nil
}

func recordDrill(p *project.Project, s *sim.Simulation, batch sim.BatchResult, results []sim.AgentResult) (string, error) {
	db, err := store.Open(p.Config.DBPath)
	if err != nil {
		return "", err
	}
	defer db.Close()

	run := store.RunRecord{
		Building:   p.Building.Name,
		Seed:       p.Config.Seed,
		ExitTarget: p.Config.ExitTarget,
		Ticks:      s.Tick(),
		Elapsed:    s.Elapsed(),
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
	return db.SaveRun(run, results)
}

func runRuns(dbPath string, limit int, runID string) error {
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if runID != "" {
		run, err := db.GetRun(runID)
		if err != nil {
			return err
		}
		results, err := db.AgentResults(runID)
		if err != nil {
			return err
		}
		printRun(run, results)
		return nil
	}

	runs, err := db.ListRuns(limit)
	if err != nil {
		return err
	}
	printRuns(runs)
	return nil
}

func runServe(projectPath string, port int, dbPath string) error {
	reg := metrics.DefaultRegistry()
	p, err := loadAndValidate(projectPath, project.WithMetrics(reg))
	if err != nil {
		return err
	}
	if port != 0 {
		p.Config.Port = port
	}
	if dbPath != "" {
		p.Config.DBPath = dbPath
	}
	if len(p.Report.Warnings) > 0 {
		printValidationReport(p.Report)
	}

	opts := []server.Option{server.WithMetrics(reg)}
	if p.Config.DBPath != "" {
		db, err := store.Open(p.Config.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, server.WithStore(db))
	}

	srv, err := server.New(p, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Start(ctx, p.Config.Port)
}
