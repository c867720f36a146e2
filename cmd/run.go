// Package cmd provides CLI commands for the nested sampling engine.
// This file implements the run command.
package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/adalundhe/nestor/core/nestedsampling"
	"github.com/adalundhe/nestor/core/problems"
	"github.com/spf13/cobra"
)

var (
	runConfigPath string
	runOutDir     string
	runProblem    string
	runSeed       int64
	runVerbose    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a nested sampling inference",
	Long: fmt.Sprintf(`Run nested sampling evidence computation and posterior sampling
against one of the registered demo problems.

Registered problems:
  %s`, strings.Join(problems.Names(), ", ")),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runConfigPath, "config", "", "path to a YAML run configuration (defaults applied if omitted)")
	runCmd.Flags().StringVar(&runOutDir, "out", "results", "directory to write the posterior and evidence files to")
	runCmd.Flags().StringVar(&runProblem, "problem", "gaussian1d", "registered problem name")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "RNG seed (0 selects a wall-clock seed)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "log clustering and iteration progress")
}

func runRun(cmd *cobra.Command, args []string) error {
	problem, err := problems.Lookup(runProblem)
	if err != nil {
		return err
	}

	var cfg nestedsampling.Config
	if runConfigPath != "" {
		cfg, err = nestedsampling.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = nestedsampling.DefaultConfig(500)
	}
	if runSeed != 0 {
		cfg.Seed = runSeed
	}
	cfg.Verbose = cfg.Verbose || runVerbose

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(cmd.OutOrStderr(), &slog.HandlerOptions{Level: level}))

	sampler, err := nestedsampling.NewNestedSampler(cfg, problem, logger)
	if err != nil {
		return fmt.Errorf("constructing sampler: %w", err)
	}

	results, err := sampler.Run(cmd.Context())
	if results == nil {
		if err != nil {
			return fmt.Errorf("run failed: %w", err)
		}
		return fmt.Errorf("run produced no results")
	}

	if writeErr := results.WriteText(runOutDir); writeErr != nil {
		return fmt.Errorf("writing results: %w", writeErr)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s: logZ = %.6f +/- %.6f, H = %.6f, iterations = %d, termination = %s\n",
		results.RunID, results.LogEvidence(), results.LogEvidenceError(), results.InformationGain, results.NIterations, results.TerminationKind)
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d posterior samples to %s\n", len(results.Posterior), runOutDir)

	if err != nil {
		fmt.Fprintf(cmd.OutOrStderr(), "warning: %v\n", err)
	}
	return nil
}
