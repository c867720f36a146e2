package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nestor",
	Short: "Nestor - a multi-ellipsoidal nested sampler",
	Long: `Nestor runs Bayesian evidence computation and posterior sampling via
nested sampling with multi-ellipsoidal constrained prior sampling and
k-means live-point clustering.

Use "nestor run" to start an inference against a registered problem.`,
}

func Execute() error {
	return rootCmd.Execute()
}
