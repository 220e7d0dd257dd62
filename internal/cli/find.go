package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/worktreekit/worktree/internal/charbag"
	"github.com/worktreekit/worktree/internal/fuzzy"
	"github.com/worktreekit/worktree/internal/worktree"
)

var findVisibleOnly bool

var findCmd = &cobra.Command{
	Use:   "find <path> <query>",
	Short: "Fuzzy-search file paths in a worktree",
	Args:  cobra.ExactArgs(2),
	RunE:  runFind,
}

func init() {
	findCmd.Flags().BoolVar(&findVisibleOnly, "visible-only", true, "exclude ignored files from the search")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	root, query := args[0], args[1]
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	wt, err := worktree.Open(ctx, worktree.Config{RootAbsPath: root})
	if err != nil {
		return worktree.NewScanError(root, err)
	}
	defer wt.Close()

	if err := wt.ScanComplete(ctx); err != nil {
		return err
	}

	snap := wt.Snapshot()
	rootBag := snap.RootCharBag()

	var candidates []fuzzy.Candidate
	iter := snap.Files(0)
	if findVisibleOnly {
		iter = snap.VisibleFiles(0)
	}
	for {
		e, ok := iter.Next()
		if !ok {
			break
		}
		candidates = append(candidates, fuzzy.Candidate{
			Path:    e.Path,
			CharBag: rootBag.Combined(charbag.FromString(e.Path)),
		})
	}

	for _, m := range fuzzy.MatchPaths(query, candidates) {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", m.Score, m.Path)
	}
	return nil
}
