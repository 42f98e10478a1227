package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "odos",
		Short:         "Workout tracker with catalog browsing and generated plans",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (defaults only when empty)")

	root.AddCommand(
		newServeCmd(&configPath),
		newMCPCmd(&configPath),
		newExercisesCmd(&configPath),
		newPlanCmd(&configPath),
	)
	return root
}
