package worktree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/worktreekit/worktree/internal/entry"
)

// FileHandle is a live reference to one entry in the worktree, re-resolved
// against the current Snapshot on every call rather than caching staleness
// a caller could read through — an open FileHandle always answers with
// whatever the most recent scan knows about its path.
type FileHandle struct {
	wt   *Worktree
	path string
}

// File returns a FileHandle for path (worktree-relative); it does not
// require the path to currently exist in the snapshot.
func (w *Worktree) File(path string) *FileHandle {
	return &FileHandle{wt: w, path: path}
}

// Path returns the handle's worktree-relative path.
func (h *FileHandle) Path() string { return h.path }

// Entry returns the current entry.Entry for the handle's path, if it
// exists in the latest snapshot.
func (h *FileHandle) Entry() (entry.Entry, bool) {
	return h.wt.Snapshot().EntryForPath(h.path)
}

// Exists reports whether the handle's path currently has an entry.
func (h *FileHandle) Exists() bool {
	_, ok := h.Entry()
	return ok
}

// IsIgnored reports the entry's last-known ignore classification,
// recomputing live against the snapshot's ignore rules if no entry exists
// yet (e.g. a path about to be created).
func (h *FileHandle) IsIgnored() bool {
	snap := h.wt.Snapshot()
	if e, ok := snap.EntryForPath(h.path); ok && e.IsIgnored != nil {
		return *e.IsIgnored
	}
	return snap.IsPathIgnored(h.path, false)
}

// Identity returns the worktree id and path that together identify this
// handle's target, standing in for the original's (usize, Arc<Path>) pair.
func (h *FileHandle) Identity() (string, string) {
	return h.wt.ID(), h.path
}

// LoadHistory delegates to the owning Worktree's persisted history file;
// FileHandle has no history of its own, only the worktree-wide log.
func (h *FileHandle) LoadHistory(ctx context.Context) ([]byte, error) {
	return h.wt.LoadHistory(ctx)
}

// Save delegates to the owning Worktree's history persistence.
func (h *FileHandle) Save(ctx context.Context, content []byte) error {
	return h.wt.Save(ctx, content)
}

// Load reads the file's contents from disk as of now; it does not go
// through the Snapshot at all, since entry index never carries file
// contents, only metadata.
func (h *FileHandle) Load(ctx context.Context) ([]byte, error) {
	abs := filepath.Join(h.wt.cfg.RootAbsPath, filepath.FromSlash(h.path))
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("worktree: loading %s: %w", h.path, err)
	}
	return data, nil
}
