package main

import (
	"fmt"
	"sort"

	"github.com/Jancidakis/nasa-pathfinding/internal/store"
	"github.com/Jancidakis/nasa-pathfinding/pkg/pathfind"
	"github.com/Jancidakis/nasa-pathfinding/pkg/routing"
	"github.com/Jancidakis/nasa-pathfinding/pkg/sim"
	"github.com/Jancidakis/nasa-pathfinding/pkg/validation"
)

func printValidationReport(r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Printf("ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Printf("  [%s] %s\n", e.Level, e.Message)
			if e.Path != "" {
				fmt.Printf("    -> %s = %v\n", e.Path, e.ActualValue)
			}
			if e.Expected != "" {
				fmt.Printf("    expected: %s\n", e.Expected)
			}
			for _, s := range e.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Warnings) > 0 {
		fmt.Printf("WARNINGS (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Printf("  [%s] %s\n", w.Level, w.Message)
			if w.Path != "" {
				fmt.Printf("    -> %s\n", w.Path)
			}
			for _, s := range w.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Info) > 0 {
		fmt.Printf("INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Printf("  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Println()
	}

	if r.Valid {
		fmt.Printf("Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Printf("Result: INVALID (%s)\n", r.Summary)
	}
}

func printRoute(level, area string, exit pathfind.Exit, route pathfind.Route) {
	fmt.Printf("From %s on %s\n", area, level)
	fmt.Printf("  nearest exit: %s via %q at %v (%.2fm straight)\n", exit.Area, exit.Door, exit.Position, exit.Distance)
	if route.Fallback != pathfind.FallbackNone {
		fmt.Printf("  WARNING: no graph path (%s); straight line used\n", route.Fallback)
	}
	fmt.Printf("  path length: %.2fm over %d waypoints\n", route.Length, len(route.Waypoints))
	for i, w := range route.Waypoints {
		fmt.Printf("  %3d  %v\n", i, w)
	}
}

func printEgress(analyses []*routing.Analysis) {
	fmt.Println("Egress")
	fmt.Println("------")
	for _, a := range analyses {
		fmt.Printf("  %s: %d exits, %d parts, longest walk %.1fm\n", a.Level, a.Exits, a.Components, a.MaxDistance)
		for _, e := range a.Areas {
			if !e.Reachable {
				fmt.Printf("    %-24s NO EXIT\n", e.Area)
				continue
			}
			fmt.Printf("    %-24s %6.1fm via %s (%d hops)\n", e.Area, e.Distance, e.Exit, e.Hops)
		}
	}
}

// profileStats aggregates drill results for one profile.
type profileStats struct {
	Profile   string
	Agents    int
	Evacuated int
	MeanTime  float64
	MaxTime   float64
	MeanDist  float64
}

func summarizeByProfile(results []sim.AgentResult) []profileStats {
	byID := map[string]*profileStats{}
	for _, r := range results {
		st, ok := byID[r.ProfileID]
		if !ok {
			st = &profileStats{Profile: r.ProfileID}
			byID[r.ProfileID] = st
		}
		st.Agents++
		st.MeanDist += r.Distance
		if r.Evacuated {
			st.Evacuated++
			st.MeanTime += r.EvacuationTime
			if r.EvacuationTime > st.MaxTime {
				st.MaxTime = r.EvacuationTime
			}
		}
	}

	out := make([]profileStats, 0, len(byID))
	for _, st := range byID {
		if st.Evacuated > 0 {
			st.MeanTime /= float64(st.Evacuated)
		}
		st.MeanDist /= float64(st.Agents)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Profile < out[j].Profile })
	return out
}

func printDrillSummary(building string, batch sim.BatchResult, steps int, elapsed float64, results []sim.AgentResult) {
	evacuated := 0
	for _, r := range results {
		if r.Evacuated {
			evacuated++
		}
	}

	fmt.Printf("Drill: %s\n", building)
	fmt.Println("======")
	fmt.Printf("  Agents:      %d (%d routed, %d without exit)\n", len(results), batch.Assigned, batch.NoExit)
	if batch.Failed > 0 {
		fmt.Printf("  Failed:      %d (route computation error)\n", batch.Failed)
	}
	fmt.Printf("  Evacuated:   %d\n", evacuated)
	fmt.Printf("  Steps:       %d\n", steps)
	fmt.Printf("  Simulated:   %s\n", formatSeconds(elapsed))
	for reason, n := range batch.Fallbacks {
		fmt.Printf("  Fallback %-12s %d\n", string(reason)+":", n)
	}
	fmt.Println()

	fmt.Printf("%-12s %7s %9s %10s %10s %10s\n", "Profile", "Agents", "Out", "Mean", "Max", "Walked")
	fmt.Printf("%-12s %7s %9s %10s %10s %10s\n", "------------", "-------", "---------", "----------", "----------", "----------")
	for _, st := range summarizeByProfile(results) {
		fmt.Printf("%-12s %7d %9d %10s %10s %9.1fm\n",
			st.Profile, st.Agents, st.Evacuated, formatSeconds(st.MeanTime), formatSeconds(st.MaxTime), st.MeanDist)
	}
}

func printRuns(runs []store.RunRecord) {
	if len(runs) == 0 {
		fmt.Println("No drills recorded.")
		return
	}
	fmt.Printf("%-36s  %-20s  %-24s %7s %9s %10s\n", "Run", "Recorded", "Building", "Agents", "Out", "Simulated")
	for _, r := range runs {
		fmt.Printf("%-36s  %-20s  %-24s %7d %9d %10s\n",
			r.ID, r.RecordedAt.Format("2006-01-02 15:04:05"), r.Building, r.Agents, r.Evacuated, formatSeconds(r.Elapsed))
	}
}

func printRun(run store.RunRecord, results []sim.AgentResult) {
	fmt.Printf("Run %s (%s)\n", run.ID, run.Building)
	fmt.Printf("  seed %d, exit target %s, %d ticks, %s simulated\n", run.Seed, run.ExitTarget, run.Ticks, formatSeconds(run.Elapsed))
	fmt.Printf("  %d/%d evacuated, %d without exit, %d straight-line routes\n\n", run.Evacuated, run.Agents, run.NoExit, run.Fallbacks)
	for _, r := range results {
		status := "inside"
		if r.Evacuated {
			status = formatSeconds(r.EvacuationTime)
		}
		fmt.Printf("  %-36s %-10s level %d %10s %8.1fm\n", r.AgentID, r.ProfileID, r.LevelIndex, status, r.Distance)
	}
}

func formatSeconds(s float64) string {
	if s >= 60 {
		return fmt.Sprintf("%dm%04.1fs", int(s)/60, s-float64(int(s)/60*60))
	}
	return fmt.Sprintf("%.1fs", s)
}
