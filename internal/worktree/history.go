package worktree

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// historyCap bounds the on-disk history file size, matching the 10KiB cap
// original_source/zed/src/worktree.rs's save()/load_history() enforce.
const historyCap = 10 * 1024

// LoadHistory reads the worktree's persisted history file (e.g. recently
// opened relative paths, one per line), capped at historyCap bytes read
// from the end of the file so a history file that grew unbounded over a
// long-lived worktree never blocks startup.
func (w *Worktree) LoadHistory(ctx context.Context) ([]byte, error) {
	path := w.historyPath()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size > historyCap {
		if _, err := f.Seek(size-historyCap, io.SeekStart); err != nil {
			return nil, err
		}
	}
	return io.ReadAll(f)
}

// Save persists contents (truncated to the trailing historyCap bytes if
// larger) to the worktree's history file. The write runs as an errgroup
// task and Save waits for it, returning once the file is written or the
// write has failed.
func (w *Worktree) Save(ctx context.Context, contents []byte) error {
	if len(contents) > historyCap {
		contents = contents[len(contents)-historyCap:]
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		path := w.historyPath()
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("worktree: saving history: %w", err)
		}
		defer f.Close()

		bw := bufio.NewWriterSize(f, historyCap)
		if _, err := bw.Write(contents); err != nil {
			return err
		}
		return bw.Flush()
	})
	return g.Wait()
}

func (w *Worktree) historyPath() string {
	return filepath.Join(w.cfg.RootAbsPath, ".git", "worktree_history")
}
