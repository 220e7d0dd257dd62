// Package scanner implements BackgroundScanner (spec.md §4.8): the
// goroutine-pool-driven walk that populates a snapshot.Snapshot from the
// filesystem and keeps it converged as filesystem events arrive.
//
// The scanner owns one mutable Snapshot (guarded by a mutex) that it edits
// in place as jobs complete; internal/worktree periodically clones it to
// republish a consistent, unchanging Snapshot to readers, the same
// foreground/background split original_source/zed/src/worktree.rs uses.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/worktreekit/worktree/internal/charbag"
	"github.com/worktreekit/worktree/internal/entry"
	"github.com/worktreekit/worktree/internal/fsevents"
	"github.com/worktreekit/worktree/internal/ignorerules"
	"github.com/worktreekit/worktree/internal/mounts"
	"github.com/worktreekit/worktree/internal/snapshot"
	"github.com/worktreekit/worktree/internal/workerpool"
)

// Config controls a Scanner's concurrency and its view of the filesystem.
type Config struct {
	RootAbsPath string
	Workers     int
	Logger      *slog.Logger
	Events      fsevents.Source
}

// Scanner walks and re-walks RootAbsPath, maintaining a Snapshot.
type Scanner struct {
	cfg         Config
	logger      *slog.Logger
	otherMounts []string

	mu       sync.Mutex
	snapshot snapshot.Snapshot
	scanID   uint64

	scanCount atomic.Int64
}

// New constructs a Scanner with an empty initial Snapshot rooted at
// cfg.RootAbsPath. Mount points nested under the root are recorded so
// scanDir can refuse to cross into them.
func New(cfg Config) (*Scanner, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = workerpool.DefaultWorkers
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "scanner")

	all, err := mounts.List()
	if err != nil {
		return nil, fmt.Errorf("scanner: listing mounts: %w", err)
	}

	return &Scanner{
		cfg:         cfg,
		logger:      logger,
		otherMounts: mounts.OtherMountPaths(cfg.RootAbsPath, all),
		snapshot:    snapshot.New(cfg.RootAbsPath),
	}, nil
}

// Snapshot returns a cheap clone of the scanner's current mutable state,
// safe to hand to a reader while the scanner keeps mutating its own copy.
func (s *Scanner) Snapshot() snapshot.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone()
}

// InitialScan walks the entire tree once, synchronously from the caller's
// perspective (it still fans the walk itself out across the worker pool),
// and returns once every directory has been scanned.
func (s *Scanner) InitialScan(ctx context.Context) error {
	return s.scanDirs(ctx, []string{""})
}

// ProcessEvents reacts to one batch of filesystem events: every changed
// directory is rescanned, and ignore-status recomputation runs afterward so
// a change to a .gitignore file's own ancestry is reflected immediately.
func (s *Scanner) ProcessEvents(ctx context.Context, batch []fsevents.Event) error {
	dirs := make(map[string]struct{})
	for _, ev := range batch {
		rel, err := filepath.Rel(s.cfg.RootAbsPath, ev.Path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			rel = ""
		}
		dir := parentRel(rel)
		dirs[dir] = struct{}{}
	}
	paths := make([]string, 0, len(dirs))
	for d := range dirs {
		paths = append(paths, d)
	}
	if len(paths) == 0 {
		return nil
	}
	return s.scanDirs(ctx, paths)
}

func parentRel(rel string) string {
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "." {
		return ""
	}
	return dir
}

// scanDirs walks every path in paths (and everything discovered beneath
// them) to completion, bounded by the configured worker pool, and finishes
// with a two-pass ignore-status recompute over the whole tree.
func (s *Scanner) scanDirs(ctx context.Context, paths []string) error {
	s.mu.Lock()
	s.scanID++
	scanID := s.scanID
	s.snapshot = s.snapshot.WithScanID(scanID)
	s.mu.Unlock()

	pool := workerpool.New(ctx, "worktree-scanner", s.cfg.Workers)
	// Submissions happen from their own goroutines so a job that discovers
	// subdirectories never blocks waiting for a slot while holding one;
	// pending counts every scheduled directory until its job has finished.
	var pending sync.WaitGroup
	var schedule func(string)
	schedule = func(dirPath string) {
		pending.Add(1)
		go pool.Submit(func(ctx context.Context) error {
			defer pending.Done()
			children, err := s.scanDir(ctx, dirPath, scanID)
			if err != nil {
				s.logger.Warn("scan dir failed", "path", dirPath, "err", err)
				return nil
			}
			for _, child := range children {
				schedule(child)
			}
			return nil
		})
	}
	for _, p := range paths {
		schedule(p)
	}
	pending.Wait()
	if err := pool.Wait(); err != nil {
		return err
	}

	s.recomputeIgnoreStatuses()
	s.scanCount.Add(1)
	return nil
}

// scanDir lists one directory, updates the snapshot with its children (and
// any ignore file found there), and returns the relative paths of
// subdirectories discovered, for the caller to schedule recursively.
func (s *Scanner) scanDir(ctx context.Context, dirPath string, scanID uint64) ([]string, error) {
	absDir := filepath.Join(s.cfg.RootAbsPath, filepath.FromSlash(dirPath))
	if s.isOtherMount(absDir) {
		return nil, nil
	}

	listing, err := os.ReadDir(absDir)
	if err != nil {
		return nil, err
	}

	rootCharBag := s.Snapshot().RootCharBag()

	children := make([]entry.Entry, 0, len(listing))
	var subdirs []string
	var ignoreRules *ignorerules.Rules
	var ignoreChildPath string

	for _, de := range listing {
		childRel := joinRel(dirPath, de.Name())
		info, err := de.Info()
		if err != nil {
			continue
		}

		if entry.IsGitDir(childRel) {
			children = append(children, entry.Entry{
				Path: childRel, Kind: dirKind(de), IsIgnored: entry.Bool(true),
			})
			continue
		}

		if !de.IsDir() && de.Name() == ".gitignore" {
			contents, err := os.ReadFile(filepath.Join(absDir, de.Name()))
			if err != nil {
				s.logger.Warn("reading ignore file failed; using an empty rule set", "path", childRel, "err", err)
				contents = nil
			}
			rules := ignorerules.Parse(string(contents))
			ignoreRules = &rules
			ignoreChildPath = dirPath
		}

		e := entry.Entry{
			Path:      childRel,
			Kind:      entryKind(de),
			Inode:     inodeOf(info),
			IsSymlink: info.Mode()&os.ModeSymlink != 0,
		}
		if de.IsDir() {
			subdirs = append(subdirs, childRel)
		} else {
			e.CharBag = rootCharBag.Combined(charbag.FromString(childRel))
		}
		children = append(children, e)
	}

	s.mu.Lock()
	oldChildren := s.snapshot.DirectChildren(dirPath)
	snap, err := s.snapshot.PopulateDir(dirPath, children)
	if err == nil {
		s.snapshot = snap
		s.snapshot = removeVanishedChildren(s.snapshot, oldChildren, children)
	}
	if ignoreRules != nil {
		s.snapshot = s.snapshot.InsertIgnoreFile(ignoreChildPath, *ignoreRules, scanID)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return subdirs, nil
}

// removeVanishedChildren drops every entry in oldChildren whose name is no
// longer present among freshChildren, so a file or subdirectory deleted
// between scans disappears from the index instead of lingering as a stale
// entry — a rescan must converge to exactly what's on disk, not just add to
// what was there before.
func removeVanishedChildren(snap snapshot.Snapshot, oldChildren []string, freshChildren []entry.Entry) snapshot.Snapshot {
	if len(oldChildren) == 0 {
		return snap
	}
	fresh := make(map[string]struct{}, len(freshChildren))
	for _, c := range freshChildren {
		fresh[c.Path] = struct{}{}
	}
	for _, old := range oldChildren {
		if _, ok := fresh[old]; !ok {
			snap = snap.RemovePath(old)
		}
	}
	return snap
}

func (s *Scanner) isOtherMount(absDir string) bool {
	for _, m := range s.otherMounts {
		if absDir == m {
			return true
		}
	}
	return false
}

// recomputeIgnoreStatuses is the pass 2 sweep of spec.md §4.5: every entry
// still awaiting classification (IsIgnored == nil) gets a fresh verdict
// from the ancestor-walk rules. Pass 1 (clearing entries under a changed
// ignore file) already happened inside InsertIgnoreFile during scanDir.
func (s *Scanner) recomputeIgnoreStatuses() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var resolved []entry.Entry
	s.snapshot.PendingIgnoreEntries(func(e entry.Entry) bool {
		ignored := s.snapshot.IsPathIgnored(e.Path, e.IsDir())
		e.IsIgnored = entry.Bool(ignored)
		resolved = append(resolved, e)
		return true
	})
	for _, e := range resolved {
		s.snapshot = s.snapshot.InsertEntry(e)
	}
}

func entryKind(de os.DirEntry) entry.Kind {
	if de.IsDir() {
		return entry.PendingDir
	}
	return entry.File
}

func dirKind(de os.DirEntry) entry.Kind {
	if de.IsDir() {
		return entry.Dir
	}
	return entry.File
}

func joinRel(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
