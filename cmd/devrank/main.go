// Package main provides the entry point for the devrank CLI tool.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/devrank/cmd/devrank/commands"
	"github.com/Sumatoshi-tech/devrank/pkg/version"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: load .env: %v\n", err)
		os.Exit(1)
	}

	version.Resolve()

	rootCmd := &cobra.Command{
		Use:   "devrank",
		Short: "Developer productivity analysis from git history",
		Long: `Devrank rates developer usefulness from a repository's history.

Commands:
  analyze   Classify changes, aggregate per-developer stats and rate them
  weights   Show the effective rating weights
  classify  Evaluate a single diff
  version   Print version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewWeightsCommand())
	rootCmd.AddCommand(commands.NewClassifyCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
