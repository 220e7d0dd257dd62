// Package snapshot implements Snapshot, the consistent, point-in-time view
// of a worktree's entries described in spec.md §4.2. A Snapshot value is
// cheap to copy: entryindex.Tree and ignorestore.Store are both persistent,
// so cloning a Snapshot to republish it to readers while a background scan
// keeps mutating its own copy is an O(1) struct copy, not a deep copy.
package snapshot

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/worktreekit/worktree/internal/charbag"
	"github.com/worktreekit/worktree/internal/entry"
	"github.com/worktreekit/worktree/internal/entryindex"
	"github.com/worktreekit/worktree/internal/ignorerules"
	"github.com/worktreekit/worktree/internal/ignorestore"
)

// ErrInvalidTransition is returned by PopulateDir when the entry already at
// the given path is a File rather than a directory.
var ErrInvalidTransition = errors.New("snapshot: path is not a pending directory")

// Snapshot is an immutable view of one worktree root at a point in time.
type Snapshot struct {
	RootAbsPath string
	rootName    string
	rootCharBag charbag.CharBag
	entries     entryindex.Tree
	ignores     ignorestore.Store
	scanID      uint64
}

// New returns the initial Snapshot for a worktree rooted at absPath,
// containing only the root directory entry itself.
func New(absPath string) Snapshot {
	name := filepath.Base(absPath)
	s := Snapshot{
		RootAbsPath: absPath,
		rootName:    name,
		rootCharBag: charbag.FromString(name),
	}
	s.entries = s.entries.Insert(entry.Entry{Path: "", Kind: entry.Dir, IsIgnored: entry.Bool(false)})
	return s
}

// Clone returns an independent Snapshot sharing the immutable tree/store
// nodes of s — cheap, and safe for the clone and s to diverge afterward.
func (s Snapshot) Clone() Snapshot { return s }

// RootName returns the worktree root directory's own name (not a path).
func (s Snapshot) RootName() string { return s.rootName }

// RootCharBag returns the CharBag of the root directory's name, which every
// file's own CharBag is combined with before a fuzzy match (spec.md §4.6).
func (s Snapshot) RootCharBag() charbag.CharBag { return s.rootCharBag }

// ScanID returns the generation counter of the scan that last mutated this
// snapshot (monotonically increasing across rescans).
func (s Snapshot) ScanID() uint64 { return s.scanID }

// WithScanID returns a copy of s stamped with the given scan generation.
func (s Snapshot) WithScanID(id uint64) Snapshot {
	s.scanID = id
	return s
}

// FileCount returns the total number of file entries, ignored or not.
func (s Snapshot) FileCount() int { return s.entries.Summary().FileCount }

// VisibleFileCount returns the number of non-ignored file entries.
func (s Snapshot) VisibleFileCount() int { return s.entries.Summary().VisibleFileCount }

// RootEntry returns the entry for the worktree root itself (path "").
func (s Snapshot) RootEntry() (entry.Entry, bool) { return s.entries.Lookup("") }

// EntryForPath returns the entry at the given worktree-relative path.
func (s Snapshot) EntryForPath(path string) (entry.Entry, bool) { return s.entries.Lookup(path) }

// InodeForPath returns the inode number recorded for path, if present.
func (s Snapshot) InodeForPath(path string) (uint64, bool) {
	e, ok := s.entries.Lookup(path)
	if !ok {
		return 0, false
	}
	return e.Inode, true
}

// Paths returns every entry's path in index order (component-wise sorted),
// including the root's own empty-string path.
func (s Snapshot) Paths() []string {
	paths := make([]string, 0, s.entries.Len())
	s.entries.Iterate(func(e entry.Entry) bool {
		paths = append(paths, e.Path)
		return true
	})
	return paths
}

// Files returns an iterator over every file entry (ignored or not), path
// order, starting at the start-th file.
func (s Snapshot) Files(start int) *FileIter {
	return &FileIter{snapshot: s, visible: false, nextIndex: start}
}

// VisibleFiles returns an iterator over non-ignored file entries only,
// starting at the start-th visible file.
func (s Snapshot) VisibleFiles(start int) *FileIter {
	return &FileIter{snapshot: s, visible: true, nextIndex: start}
}

// InsertEntry returns a Snapshot with e inserted (or replacing the existing
// entry at e.Path).
func (s Snapshot) InsertEntry(e entry.Entry) Snapshot {
	s.entries = s.entries.Insert(e)
	return s
}

// RemovePath returns a Snapshot with path and its entire subtree removed.
func (s Snapshot) RemovePath(path string) Snapshot {
	s.entries = s.entries.RemoveSubtree(path)
	return s
}

// PopulateDir materializes the directory at dirPath as a Dir and inserts
// its children in one edit. The entry at dirPath may be absent (it is then
// inserted as a Dir), a PendingDir, or an already materialized Dir (a
// rescan); a File entry at dirPath returns ErrInvalidTransition.
func (s Snapshot) PopulateDir(dirPath string, children []entry.Entry) (Snapshot, error) {
	existing, ok := s.entries.Lookup(dirPath)
	if ok && !existing.IsDir() {
		return s, ErrInvalidTransition
	}
	dir := entry.Entry{Path: dirPath, Kind: entry.Dir, IsIgnored: existing.IsIgnored}
	if !ok {
		dir.IsIgnored = entry.Bool(false)
	}
	inserts := make([]entry.Entry, 0, len(children)+1)
	inserts = append(inserts, dir)
	inserts = append(inserts, children...)
	s.entries = s.entries.Edit(inserts, nil)
	return s, nil
}

// DirectChildren returns the path of every entry currently indexed one
// level below dirPath (not deeper descendants), the set a rescan must diff
// its fresh directory listing against to find children that vanished from
// disk since the previous scan.
func (s Snapshot) DirectChildren(dirPath string) []string {
	var children []string
	s.entries.IteratePrefix(dirPath, func(e entry.Entry) bool {
		rel := relativeTo(dirPath, e.Path)
		if !strings.Contains(rel, "/") {
			children = append(children, e.Path)
		}
		return true
	})
	return children
}

// InsertIgnoreFile records dir's compiled ignore rules and marks every
// entry under dir as pending ignore-status recomputation, via
// RecomputeIgnoreStatus in the aggregate summary (spec.md §4.5 pass 1).
func (s Snapshot) InsertIgnoreFile(dir string, rules ignorerules.Rules, scanID uint64) Snapshot {
	s.ignores = s.ignores.Put(dir, rules, scanID)
	s.markPendingUnder(dir)
	return s
}

// RemoveIgnoreFile drops dir's ignore rules (the ignore file itself was
// deleted) and marks dir's subtree pending recomputation.
func (s Snapshot) RemoveIgnoreFile(dir string) Snapshot {
	s.ignores = s.ignores.Remove(dir)
	s.markPendingUnder(dir)
	return s
}

func (s *Snapshot) markPendingUnder(dir string) {
	var pending []entry.Entry
	s.entries.IteratePrefix(dir, func(e entry.Entry) bool {
		e.IsIgnored = nil
		pending = append(pending, e)
		return true
	})
	if len(pending) > 0 {
		s.entries = s.entries.Edit(pending, nil)
	}
}

// MarkIgnorePending clears the cached ignore classification for path,
// without touching children — used when a single entry's own status needs
// recomputation (e.g. it just became the root of a newly discovered
// subtree).
func (s Snapshot) MarkIgnorePending(path string) Snapshot {
	e, ok := s.entries.Lookup(path)
	if !ok {
		return s
	}
	e.IsIgnored = nil
	s.entries = s.entries.Insert(e)
	return s
}

// PendingIgnoreEntries calls visit for every entry still awaiting ignore
// classification, pruning any subtree whose aggregate summary reports none
// pending — the pass 2 sweep of spec.md §4.5.
func (s Snapshot) PendingIgnoreEntries(visit func(entry.Entry) bool) {
	s.entries.IterateFiltered(func(sum entry.Summary) bool {
		return sum.RecomputeIgnoreStatus
	}, func(e entry.Entry) bool {
		if e.IsIgnored != nil {
			return true
		}
		return visit(e)
	})
}

// IsPathIgnored classifies path against the ignore rules of path's own
// directory and every ancestor, nearest first: the first Whitelist or
// Ignore verdict wins and stops the walk. A path inside (or equal to) a
// ".git" directory is always ignored, per the data model invariant, and
// never consults any ignore file.
func (s Snapshot) IsPathIgnored(path string, isDir bool) bool {
	if entry.IsGitDir(path) {
		return true
	}
	ignored := false
	s.ignores.Ancestors(path, func(e ignorestore.Entry) bool {
		rel := relativeTo(e.Dir, path)
		switch e.Rules.Match(rel, isDir) {
		case ignorerules.Whitelist:
			ignored = false
			return false
		case ignorerules.Ignore:
			ignored = true
			return false
		default:
			return true
		}
	})
	return ignored
}

func relativeTo(dir, path string) string {
	if dir == "" {
		return path
	}
	if len(path) > len(dir) && path[len(dir)] == '/' {
		return path[len(dir)+1:]
	}
	return path
}
