// Package cli implements the Cobra command hierarchy for the worktreectl
// CLI tool. The root command defined here is the entry point for all
// subcommands and handles cross-cutting concerns like logging
// initialization and error handling.
package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/worktreekit/worktree/internal/config"
	"github.com/worktreekit/worktree/internal/worktree"
)

var (
	verboseFlag bool
	quietFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "worktreectl",
	Short: "Inspect and watch a live worktree index.",
	Long: `worktreectl scans a directory tree into a live, queryable index,
continuously synced with filesystem events and classified against
gitignore rules, the way an editor keeps its file tree in sync with disk.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := config.ResolveLogLevel(verboseFlag, quietFlag)
		format := config.ResolveLogFormat()
		config.SetupLogging(level, format)

		slog.Debug("logging initialized", "level", level, "format", format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "only log errors")
}

// Execute runs the root command and returns a process exit code: 0 on
// success; 2, 3, 4 or 5 for a worktree ErrScan, ErrInvariant, ErrIgnore or
// ErrIO error respectively; 1 for any other error.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		return exitCodeFor(err)
	}
	return 0
}

// exitCodeFor maps a *worktree.Error's Kind to a distinct exit code so
// scripts driving worktreectl can distinguish a scan failure from an
// invariant violation without parsing stderr; any other error is a plain
// failure (1).
func exitCodeFor(err error) int {
	var werr *worktree.Error
	if errors.As(err, &werr) {
		switch werr.Kind {
		case worktree.ErrInvariant:
			return 3
		case worktree.ErrIgnore:
			return 4
		case worktree.ErrIO:
			return 5
		default:
			return 2
		}
	}
	return 1
}

// RootCmd returns the root cobra.Command for use in testing and subcommand
// registration.
func RootCmd() *cobra.Command {
	return rootCmd
}
