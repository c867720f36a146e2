// Standalone demo binary reproducing the eggbox scenario: a uniform
// prior over a 2D box and a periodic, many-modal likelihood surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/adalundhe/nestor/core/nestedsampling"
	"github.com/adalundhe/nestor/core/problems"
)

func main() {
	var nLive int
	var outDir string
	var seed int64
	var verbose bool

	flag.IntVar(&nLive, "nlive", 1000, "number of live points")
	flag.StringVar(&outDir, "out", "results-eggbox", "directory to write the posterior and evidence files to")
	flag.Int64Var(&seed, "seed", 0, "RNG seed (0 selects a wall-clock seed)")
	flag.BoolVar(&verbose, "verbose", false, "log clustering and iteration progress")
	flag.Parse()

	problem, err := problems.Eggbox()
	if err != nil {
		fmt.Fprintf(os.Stderr, "building eggbox problem: %v\n", err)
		os.Exit(1)
	}

	cfg := nestedsampling.DefaultConfig(nLive)
	cfg.Seed = seed
	cfg.Verbose = verbose

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	sampler, err := nestedsampling.NewNestedSampler(cfg, problem, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "constructing sampler: %v\n", err)
		os.Exit(1)
	}

	results, runErr := sampler.Run(context.Background())
	if results == nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", runErr)
		os.Exit(1)
	}

	if err := results.WriteText(outDir); err != nil {
		fmt.Fprintf(os.Stderr, "writing results: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("logZ = %.6f +/- %.6f, H = %.6f, iterations = %d, termination = %s\n",
		results.LogEvidence(), results.LogEvidenceError(), results.InformationGain, results.NIterations, results.TerminationKind)
	fmt.Printf("wrote %d posterior samples to %s\n", len(results.Posterior), outDir)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", runErr)
	}
}
