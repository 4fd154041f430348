// Package main provides the entry point for the tracker CLI application.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"

	globalDir      string
	globalLogLevel string
	globalLogJSON  bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tracker",
		Short:         "Discover and review metric updates for tracked startups",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalDir, "dir", "d", "", "Project directory containing .tracker (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&globalLogLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().BoolVar(&globalLogJSON, "log-json", false, "Emit logs as JSON")

	rootCmd.AddCommand(
		newInitCmd(),
		newStartupsCmd(),
		newStatsCmd(),
		newHistoryCmd(),
		newRefreshCmd(),
		newScheduleCmd(),
		newReviewCmd(),
		newExportCmd(),
	)

	return rootCmd
}

// printError writes the error message and any hints attached to it.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
	if hint := errors.FlattenHints(err); hint != "" {
		fmt.Fprintf(w, "hint: %s\n", hint)
	}
}

// basePath returns the project directory.
func basePath() (string, error) {
	if globalDir != "" {
		return globalDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return cwd, nil
}
