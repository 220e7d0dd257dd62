// Package ignorestore tracks the compiled ignorerules.Rules for every
// directory in a worktree that holds an ignore file, keyed by that
// directory's path, in the order spec.md §4.4 needs: nearest ancestor
// first, when walking up from a candidate path toward the root.
package ignorestore

import (
	"sort"

	"github.com/worktreekit/worktree/internal/ignorerules"
	"github.com/worktreekit/worktree/internal/pathkey"
)

// Entry binds one directory's compiled rules to the scan generation that
// produced them, so the scanner can tell a freshly (re)compiled entry apart
// from one carried over unchanged from the previous scan.
type Entry struct {
	Dir    string
	Rules  ignorerules.Rules
	ScanID uint64
}

// Store is an immutable, path-sorted collection of Entry. The zero value is
// an empty store.
type Store struct {
	entries []Entry
}

// Put returns a new Store with dir's rules set (inserted or replaced).
// Cloning the backing slice keeps Store cheap to hand to a new Snapshot
// without the caller worrying about aliasing into a mutating background
// store.
func (s Store) Put(dir string, rules ignorerules.Rules, scanID uint64) Store {
	entries := make([]Entry, len(s.entries))
	copy(entries, s.entries)

	i := sort.Search(len(entries), func(i int) bool {
		return pathkey.Compare(entries[i].Dir, dir) >= 0
	})
	if i < len(entries) && entries[i].Dir == dir {
		entries[i] = Entry{Dir: dir, Rules: rules, ScanID: scanID}
		return Store{entries: entries}
	}
	entries = append(entries, Entry{})
	copy(entries[i+1:], entries[i:])
	entries[i] = Entry{Dir: dir, Rules: rules, ScanID: scanID}
	return Store{entries: entries}
}

// Remove returns a new Store with dir's entry dropped, if present.
func (s Store) Remove(dir string) Store {
	i := sort.Search(len(s.entries), func(i int) bool {
		return pathkey.Compare(s.entries[i].Dir, dir) >= 0
	})
	if i >= len(s.entries) || s.entries[i].Dir != dir {
		return s
	}
	entries := make([]Entry, 0, len(s.entries)-1)
	entries = append(entries, s.entries[:i]...)
	entries = append(entries, s.entries[i+1:]...)
	return Store{entries: entries}
}

// Lookup returns dir's entry, if any.
func (s Store) Lookup(dir string) (Entry, bool) {
	i := sort.Search(len(s.entries), func(i int) bool {
		return pathkey.Compare(s.entries[i].Dir, dir) >= 0
	})
	if i < len(s.entries) && s.entries[i].Dir == dir {
		return s.entries[i], true
	}
	return Entry{}, false
}

// Len reports the number of directories holding ignore rules.
func (s Store) Len() int { return len(s.entries) }

// Ancestors calls visit for every ignore-bearing directory that is an
// ancestor of path, from path's parent up to the root "", nearest first
// (path itself is not visited), stopping early if visit
// returns false. This is the walk IsPathIgnored performs: the nearest
// ancestor's rules are consulted first, and a Whitelist/Ignore verdict from
// it short-circuits before any coarser ancestor rule is considered.
func (s Store) Ancestors(path string, visit func(Entry) bool) {
	dir := path
	for {
		dir = parentOf(dir)
		if e, ok := s.Lookup(dir); ok {
			if !visit(e) {
				return
			}
		}
		if dir == "" {
			return
		}
	}
}

func parentOf(path string) string {
	i := lastSlash(path)
	if i < 0 {
		return ""
	}
	return path[:i]
}

func lastSlash(path string) int {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return i
		}
	}
	return -1
}
