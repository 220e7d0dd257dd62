// Package entry defines the per-path record stored in the worktree's entry
// index and the monoidal summary the index aggregates over subtrees.
package entry

import (
	"strings"

	"github.com/worktreekit/worktree/internal/charbag"
)

// Kind distinguishes the three entry states. PendingDir marks a directory
// known to exist whose children have not yet been materialized into the
// index; the only legal transition is PendingDir -> Dir.
type Kind int

const (
	PendingDir Kind = iota
	Dir
	File
)

// Entry is the per-path record held in the index. Path is canonical and
// relative to the worktree root ("" for the root itself). CharBag is only
// meaningful when Kind == File. IsIgnored is nil while classification is
// pending (reported to the index as Summary.RecomputeIgnoreStatus).
type Entry struct {
	Path      string
	Kind      Kind
	CharBag   charbag.CharBag
	Inode     uint64
	IsSymlink bool
	IsIgnored *bool
}

// IsDir reports whether the entry is a directory, pending or materialized.
func (e Entry) IsDir() bool {
	return e.Kind == Dir || e.Kind == PendingDir
}

// Bool returns a pointer to a bool value, a small convenience for building
// Entry.IsIgnored literals.
func Bool(v bool) *bool { return &v }

// IsGitDir reports whether path is, or is inside, a ".git" directory. Per
// the data model invariant, every such entry is always ignored.
func IsGitDir(path string) bool {
	if path == ".git" {
		return true
	}
	return strings.HasPrefix(path, ".git/")
}

// Summary is the monoid EntryIndex aggregates bottom-up over subtrees.
type Summary struct {
	MaxPath               string
	FileCount             int
	VisibleFileCount      int
	RecomputeIgnoreStatus bool
}

// Identity returns the EntrySummary monoid identity.
func Identity() Summary {
	return Summary{}
}

// Combine implements the monoid's associative operation: MaxPath takes the
// right operand's (so the fold of a left-to-right sequence ends up carrying
// the path of its rightmost/maximum entry), counts add, and
// RecomputeIgnoreStatus ORs.
func Combine(a, b Summary) Summary {
	return Summary{
		MaxPath:               b.MaxPath,
		FileCount:             a.FileCount + b.FileCount,
		VisibleFileCount:      a.VisibleFileCount + b.VisibleFileCount,
		RecomputeIgnoreStatus: a.RecomputeIgnoreStatus || b.RecomputeIgnoreStatus,
	}
}

// SummaryOf computes the single-entry summary contribution of e, as folded
// into the aggregate by EntryIndex.
func SummaryOf(e Entry) Summary {
	var fileCount, visibleCount int
	if e.Kind == File {
		fileCount = 1
		if e.IsIgnored != nil && !*e.IsIgnored {
			visibleCount = 1
		}
	}
	return Summary{
		MaxPath:               e.Path,
		FileCount:             fileCount,
		VisibleFileCount:      visibleCount,
		RecomputeIgnoreStatus: e.IsIgnored == nil,
	}
}
