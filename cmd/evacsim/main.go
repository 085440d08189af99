package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Jancidakis/nasa-pathfinding/internal/logger"
)

func main() {
	var logLevel, logFormat string

	rootCmd := &cobra.Command{
		Use:           "evacsim",
		Short:         "Evacuation route planner and drill simulator for building floor plans",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.Init()
			if cmd.Flags().Changed("log-level") || cmd.Flags().Changed("log-format") {
				logger.Configure(logLevel, logFormat, os.Stderr)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text or json)")

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(graphCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(routeCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(runsCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Validate a building description and report graph findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}

func graphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph [project-path]",
		Short: "Print the navigation graph of every level as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runGraph(args[0])
		},
	}
}

func planCmd() *cobra.Command {
	var level int
	cmd := &cobra.Command{
		Use:   "plan [project-path]",
		Short: "Print the top-down floor plan of a level as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runPlan(args[0], level)
		},
	}
	cmd.Flags().IntVarP(&level, "level", "l", 0, "level index")
	return cmd
}

func routeCmd() *cobra.Command {
	var (
		level  int
		area   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "route [project-path]",
		Short: "Find the nearest exit and the path to it from an area",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runRoute(args[0], level, area, asJSON)
		},
	}
	cmd.Flags().IntVarP(&level, "level", "l", 0, "level index")
	cmd.Flags().StringVarP(&area, "area", "a", "", "area name (case-insensitive)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the route as JSON")
	cmd.MarkFlagRequired("area")
	return cmd
}

func simulateCmd() *cobra.Command {
	var opts simulateOptions
	cmd := &cobra.Command{
		Use:   "simulate [project-path]",
		Short: "Spawn agents, run an evacuation drill and print the outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSimulate(args[0], opts)
		},
	}
	cmd.Flags().StringToIntVar(&opts.mix, "agents", map[string]int{"adult": 10}, "agents to spawn per profile, e.g. adult=5,elderly=2")
	cmd.Flags().IntVarP(&opts.level, "level", "l", -1, "level to spawn on (-1 spreads agents over every level)")
	cmd.Flags().Float64Var(&opts.dt, "dt", 0, "simulated seconds per step (default: tick interval)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "spawn seed (overrides the config file)")
	cmd.Flags().StringVar(&opts.db, "db", "", "record the drill in this SQLite database (overrides db_path)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print per-agent results as JSON")
	return cmd
}

func runsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs [db-path]",
		Short: "List recorded drills, or one drill's agents with --run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, _ := cmd.Flags().GetString("run")
			return runRuns(args[0], limit, runID)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum drills to list (0 for all)")
	cmd.Flags().String("run", "", "show the agent results of this run id")
	return cmd
}

func serveCmd() *cobra.Command {
	var (
		port int
		db   string
	)
	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Start the drill server with the JSON API and frame stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				port = 0
			}
			return runServe(args[0], port, db)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 3000, "HTTP server port (overrides the config file)")
	cmd.Flags().StringVar(&db, "db", "", "record drills in this SQLite database (overrides db_path)")
	return cmd
}
