// Package entryindex implements EntryIndex: the ordered, summarized entry
// index described in spec.md §4.1 — a balanced tree of entry.Entry keyed by
// path, augmented with entry.Summary over every subtree.
//
// The tree is a persistent treap (a randomized balanced BST with the heap
// property on node priority). Treap split/merge map directly onto the
// index's required operations: Slice is a split, bulk Edit is a sequence of
// split-insert-merge or split-merge deletes, and every operation that
// doesn't mutate a node's subtree produces only new nodes along the edited
// path while sharing the rest — so a Tree value is just a root pointer and
// cloning it is O(1), which is what lets Snapshot be cheap to clone per
// spec.md §4.2/§9.
//
// Node priority is xxh3(path) rather than a random number: the shape of the
// tree is then a deterministic function of its contents, which keeps the
// randomized convergence test (spec.md §8 S6) and the worked examples (S1-S5)
// reproducible without needing to seed or thread a PRNG through the index
// itself.
package entryindex

import (
	"github.com/worktreekit/worktree/internal/entry"
	"github.com/worktreekit/worktree/internal/pathkey"
	"github.com/zeebo/xxh3"
)

type node struct {
	entry    entry.Entry
	priority uint64
	left     *node
	right    *node
	summary  entry.Summary
}

// Tree is an immutable snapshot of the index. The zero value is the empty
// tree.
type Tree struct {
	root *node
}

// Len returns the number of entries in the tree. O(log n) is not available
// without an extra counter dimension in Summary, so this walks; it exists
// for tests and diagnostics, not hot paths.
func (t Tree) Len() int {
	n := 0
	t.Iterate(func(entry.Entry) bool {
		n++
		return true
	})
	return n
}

// Summary returns the aggregate summary over the whole tree.
func (t Tree) Summary() entry.Summary {
	if t.root == nil {
		return entry.Identity()
	}
	return t.root.summary
}

func priorityOf(path string) uint64 {
	return xxh3.HashString(path)
}

func newNode(e entry.Entry, priority uint64, left, right *node) *node {
	s := entry.Identity()
	if left != nil {
		s = entry.Combine(s, left.summary)
	}
	s = entry.Combine(s, entry.SummaryOf(e))
	if right != nil {
		s = entry.Combine(s, right.summary)
	}
	return &node{entry: e, priority: priority, left: left, right: right, summary: s}
}

// Lookup performs an O(log n) point lookup by exact path.
func (t Tree) Lookup(path string) (entry.Entry, bool) {
	n := t.root
	for n != nil {
		c := pathkey.Compare(path, n.entry.Path)
		switch {
		case c == 0:
			return n.entry, true
		case c < 0:
			n = n.left
		default:
			n = n.right
		}
	}
	return entry.Entry{}, false
}

// Seek positions at the first element satisfying the query under bias and
// returns it, if any.
func (t Tree) Seek(q pathkey.Query, bias pathkey.Bias) (entry.Entry, bool) {
	var result *entry.Entry
	n := t.root
	for n != nil {
		cmp := pathkey.CompareEntryToQuery(n.entry.Path, q)
		if pathkey.Included(cmp, bias) {
			n = n.right
		} else {
			e := n.entry
			result = &e
			n = n.left
		}
	}
	if result == nil {
		return entry.Entry{}, false
	}
	return *result, true
}

// split partitions the tree into (left, right) where left holds every entry
// for which pathkey.Included(cmp, bias) is true (the "before the seek
// position" side) and right holds the rest. This is the standard recursive
// treap split algorithm, reusing existing subtrees verbatim so the heap
// property and sharing with the original tree are preserved.
func split(n *node, q pathkey.Query, bias pathkey.Bias) (left, right *node) {
	if n == nil {
		return nil, nil
	}
	cmp := pathkey.CompareEntryToQuery(n.entry.Path, q)
	if pathkey.Included(cmp, bias) {
		l, r := split(n.right, q, bias)
		return newNode(n.entry, n.priority, n.left, l), r
	}
	l, r := split(n.left, q, bias)
	return l, newNode(n.entry, n.priority, r, n.right)
}

// merge concatenates a and b, which must satisfy: every key in a orders
// before every key in b. Standard treap merge by priority.
func merge(a, b *node) *node {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.priority > b.priority {
		return newNode(a.entry, a.priority, a.left, merge(a.right, b))
	}
	return newNode(b.entry, b.priority, merge(a, b.left), b.right)
}

// Slice splits the tree at the seek position addressed by (q, bias),
// returning the prefix as a new Tree and the suffix as a new Tree.
func (t Tree) Slice(q pathkey.Query, bias pathkey.Bias) (prefix, suffix Tree) {
	l, r := split(t.root, q, bias)
	return Tree{root: l}, Tree{root: r}
}

// Insert returns a new tree with e inserted, replacing any existing entry at
// the same path.
func (t Tree) Insert(e entry.Entry) Tree {
	left, rest := split(t.root, pathkey.Exact(e.Path), pathkey.Left)
	_, right := split(rest, pathkey.Exact(e.Path), pathkey.Right)
	single := newNode(e, priorityOf(e.Path), nil, nil)
	return Tree{root: merge(merge(left, single), right)}
}

// Delete returns a new tree with the entry at path removed, if present.
func (t Tree) Delete(path string) Tree {
	left, rest := split(t.root, pathkey.Exact(path), pathkey.Left)
	_, right := split(rest, pathkey.Exact(path), pathkey.Right)
	return Tree{root: merge(left, right)}
}

// RemoveSubtree returns a new tree with path and every descendant of path
// (any key with prefix path+"/") removed — the "slice + seek_forward
// (Successor) + splice" operation spec.md §4.2 describes for remove_path.
func (t Tree) RemoveSubtree(path string) Tree {
	left, rest := split(t.root, pathkey.Exact(path), pathkey.Left)
	_, right := split(rest, pathkey.Successor(path), pathkey.Left)
	return Tree{root: merge(left, right)}
}

// Edit performs a bulk insert/delete; inserts replace existing keys. Order
// within the slices does not matter — each operation is independent.
func (t Tree) Edit(inserts []entry.Entry, deletes []string) Tree {
	for _, path := range deletes {
		t = t.Delete(path)
	}
	for _, e := range inserts {
		t = t.Insert(e)
	}
	return t
}

// Iterate performs an in-order traversal, calling visit for every entry.
// Traversal stops early if visit returns false.
func (t Tree) Iterate(visit func(entry.Entry) bool) bool {
	return iterateNode(t.root, visit)
}

func iterateNode(n *node, visit func(entry.Entry) bool) bool {
	if n == nil {
		return true
	}
	if !iterateNode(n.left, visit) {
		return false
	}
	if !visit(n.entry) {
		return false
	}
	return iterateNode(n.right, visit)
}

// IterateFiltered performs an in-order traversal, pruning any subtree whose
// aggregate summary fails pred — used to skip over subtrees with no
// pending ignore-status classification in O(log n) per skip (spec.md §4.5
// pass 2).
func (t Tree) IterateFiltered(pred func(entry.Summary) bool, visit func(entry.Entry) bool) bool {
	return iterateFilteredNode(t.root, pred, visit)
}

func iterateFilteredNode(n *node, pred func(entry.Summary) bool, visit func(entry.Entry) bool) bool {
	if n == nil {
		return true
	}
	if !pred(n.summary) {
		return true
	}
	if !iterateFilteredNode(n.left, pred, visit) {
		return false
	}
	if !visit(n.entry) {
		return false
	}
	return iterateFilteredNode(n.right, pred, visit)
}

// IteratePrefix streams every entry whose path is a strict descendant of
// prefix (prefix itself is excluded, matching the original's
// SeekBias::Right seek at Exact(ignore_parent_path)).
func (t Tree) IteratePrefix(prefix string, visit func(entry.Entry) bool) bool {
	_, rest := split(t.root, pathkey.Exact(prefix), pathkey.Right)
	return iterateNode(rest, func(e entry.Entry) bool {
		if !pathkey.StartsWith(e.Path, prefix) {
			return false
		}
		return visit(e)
	})
}

// SelectFile returns the k-th (0-indexed) entry in path order counted along
// the FileCount dimension (visible=false) or the VisibleFileCount dimension
// (visible=true) — an order-statistics select over the augmented tree,
// backing FileIter's "re-seek to count+1" stepping.
func (t Tree) SelectFile(k int, visible bool) (entry.Entry, bool) {
	dim := func(s entry.Summary) int {
		if visible {
			return s.VisibleFileCount
		}
		return s.FileCount
	}
	remaining := k
	n := t.root
	for n != nil {
		leftCount := 0
		if n.left != nil {
			leftCount = dim(n.left.summary)
		}
		if remaining < leftCount {
			n = n.left
			continue
		}
		remaining -= leftCount
		own := dim(entry.SummaryOf(n.entry))
		if remaining < own {
			return n.entry, true
		}
		remaining -= own
		n = n.right
	}
	return entry.Entry{}, false
}
