package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/worktreekit/worktree/internal/config"
	"github.com/worktreekit/worktree/internal/worktree"
)

var scanWorkers int

var scanCmd = &cobra.Command{
	Use:   "scan <path>",
	Short: "Run one scan of a directory and report entry counts",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "scanner worker-pool size (0 selects the default)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	root := args[0]

	cliFlags := map[string]any{"root": root}
	if scanWorkers > 0 {
		cliFlags["workers"] = scanWorkers
	}
	cfg, err := config.Resolve(config.ResolveOptions{CLIFlags: cliFlags})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionSetWriter(cmd.OutOrStdout()),
		progressbar.OptionSpinnerType(14),
	)
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	wt, err := worktree.Open(ctx, worktree.Config{
		RootAbsPath:  root,
		Workers:      cfg.Workers,
		PollInterval: cfg.PollInterval,
	})
	if err != nil {
		close(stop)
		return worktree.NewScanError(root, err)
	}
	defer wt.Close()

	err = wt.ScanComplete(ctx)
	close(stop)
	_ = bar.Finish()
	if err != nil {
		return err
	}

	snap := wt.Snapshot()
	fmt.Fprintf(cmd.OutOrStdout(), "%d files (%d visible)\n", snap.FileCount(), snap.VisibleFileCount())
	return nil
}
