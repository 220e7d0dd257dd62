package snapshot

import "github.com/worktreekit/worktree/internal/entry"

// FileIter walks file entries in path order via repeated order-statistics
// seeks (Snapshot.entries.SelectFile), rather than holding a traversal
// stack: each Next() asks the index "what is file number nextIndex", which
// is what lets an iterator keep working correctly across edits to the
// Snapshot it was not handed (spec.md §4.7 re-seeks, not cursors).
type FileIter struct {
	snapshot  Snapshot
	visible   bool
	nextIndex int
}

// Next returns the next file entry, if any, and advances the iterator.
func (it *FileIter) Next() (entry.Entry, bool) {
	e, ok := it.snapshot.entries.SelectFile(it.nextIndex, it.visible)
	if !ok {
		return entry.Entry{}, false
	}
	it.nextIndex++
	return e, true
}
