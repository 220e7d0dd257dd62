package snapshot

import (
	"testing"

	"github.com/worktreekit/worktree/internal/entry"
	"github.com/worktreekit/worktree/internal/ignorerules"
)

// populate builds the S1 worked example from spec.md §8: a root directory
// with apple, banana/carrot/{date,endive}, fennel/grape.
func populate(t *testing.T) Snapshot {
	t.Helper()
	s := New("/work/root")

	s, err := s.PopulateDir("", []entry.Entry{
		{Path: "apple", Kind: entry.File},
		{Path: "banana", Kind: entry.PendingDir},
		{Path: "fennel", Kind: entry.PendingDir},
	})
	if err != nil {
		t.Fatalf("PopulateDir root: %v", err)
	}
	s, err = s.PopulateDir("banana", []entry.Entry{
		{Path: "banana/carrot", Kind: entry.PendingDir},
	})
	if err != nil {
		t.Fatalf("PopulateDir banana: %v", err)
	}
	s, err = s.PopulateDir("banana/carrot", []entry.Entry{
		{Path: "banana/carrot/date", Kind: entry.File},
		{Path: "banana/carrot/endive", Kind: entry.File},
	})
	if err != nil {
		t.Fatalf("PopulateDir banana/carrot: %v", err)
	}
	s, err = s.PopulateDir("fennel", []entry.Entry{
		{Path: "fennel/grape", Kind: entry.File},
	})
	if err != nil {
		t.Fatalf("PopulateDir fennel: %v", err)
	}

	// Resolve pending ignore status the way the scanner's pass 2 would.
	var resolved []entry.Entry
	s.PendingIgnoreEntries(func(e entry.Entry) bool {
		e.IsIgnored = entry.Bool(s.IsPathIgnored(e.Path, e.IsDir()))
		resolved = append(resolved, e)
		return true
	})
	for _, e := range resolved {
		s = s.InsertEntry(e)
	}
	return s
}

func TestPopulateAndSearch(t *testing.T) {
	s := populate(t)

	if got := s.FileCount(); got != 4 {
		t.Fatalf("expected 4 files, got %d", got)
	}
	if got := s.VisibleFileCount(); got != 4 {
		t.Fatalf("expected 4 visible files (nothing ignored), got %d", got)
	}

	if _, ok := s.EntryForPath("banana/carrot/date"); !ok {
		t.Fatalf("expected banana/carrot/date to be indexed")
	}
	if _, ok := s.EntryForPath("missing"); ok {
		t.Fatalf("expected missing path to be absent")
	}

	paths := s.Paths()
	want := []string{"", "apple", "banana", "banana/carrot", "banana/carrot/date", "banana/carrot/endive", "fennel", "fennel/grape"}
	if len(paths) != len(want) {
		t.Fatalf("got %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("got %v, want %v", paths, want)
		}
	}
}

func TestRescanSimpleRename(t *testing.T) {
	// Mirrors renaming banana/carrot -> dessert: remove the old subtree,
	// insert the new one.
	s := populate(t)

	s = s.RemovePath("banana/carrot")
	if _, ok := s.EntryForPath("banana/carrot/date"); ok {
		t.Fatalf("expected banana/carrot/date removed along with its parent")
	}

	s, err := s.PopulateDir("dessert", []entry.Entry{
		{Path: "dessert/date", Kind: entry.File, IsIgnored: entry.Bool(false)},
		{Path: "dessert/endive", Kind: entry.File, IsIgnored: entry.Bool(false)},
	})
	if err != nil {
		t.Fatalf("PopulateDir dessert: %v", err)
	}

	if _, ok := s.EntryForPath("dessert/date"); !ok {
		t.Fatalf("expected dessert/date present after rename")
	}
	if got := s.FileCount(); got != 4 {
		t.Fatalf("expected file count unchanged by a rename, got %d", got)
	}
}

func TestGitignoreReclassification(t *testing.T) {
	s := populate(t)

	rules := ignorerules.Parse("fennel\n")
	s = s.InsertIgnoreFile("", rules, 1)

	var resolved []entry.Entry
	s.PendingIgnoreEntries(func(e entry.Entry) bool {
		e.IsIgnored = entry.Bool(s.IsPathIgnored(e.Path, e.IsDir()))
		resolved = append(resolved, e)
		return true
	})
	for _, e := range resolved {
		s = s.InsertEntry(e)
	}

	if got := s.VisibleFileCount(); got != 3 {
		t.Fatalf("expected fennel/grape to drop out of visible count, got %d", got)
	}
	e, _ := s.EntryForPath("fennel/grape")
	if e.IsIgnored == nil || !*e.IsIgnored {
		t.Fatalf("expected fennel/grape to be classified ignored")
	}
	apple, _ := s.EntryForPath("apple")
	if apple.IsIgnored == nil || *apple.IsIgnored {
		t.Fatalf("expected apple to remain visible")
	}
}

func TestGitDirAlwaysIgnored(t *testing.T) {
	s := New("/work/root")
	if !s.IsPathIgnored(".git", true) {
		t.Fatalf("expected .git to always be ignored")
	}
	if !s.IsPathIgnored(".git/HEAD", false) {
		t.Fatalf("expected paths under .git to always be ignored")
	}
}

func TestFileIterOrderAndVisibility(t *testing.T) {
	s := populate(t)

	var all []string
	it := s.Files(0)
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		all = append(all, e.Path)
	}
	want := []string{"apple", "banana/carrot/date", "banana/carrot/endive", "fennel/grape"}
	if len(all) != len(want) {
		t.Fatalf("got %v, want %v", all, want)
	}
	for i := range want {
		if all[i] != want[i] {
			t.Fatalf("got %v, want %v", all, want)
		}
	}

	rules := ignorerules.Parse("fennel\n")
	s = s.InsertIgnoreFile("", rules, 1)
	var resolved []entry.Entry
	s.PendingIgnoreEntries(func(e entry.Entry) bool {
		e.IsIgnored = entry.Bool(s.IsPathIgnored(e.Path, e.IsDir()))
		resolved = append(resolved, e)
		return true
	})
	for _, e := range resolved {
		s = s.InsertEntry(e)
	}

	var visible []string
	vit := s.VisibleFiles(0)
	for {
		e, ok := vit.Next()
		if !ok {
			break
		}
		visible = append(visible, e.Path)
	}
	for _, p := range visible {
		if p == "fennel/grape" {
			t.Fatalf("fennel/grape must not appear in VisibleFiles after being ignored")
		}
	}
	if len(visible) != 3 {
		t.Fatalf("expected 3 visible files, got %v", visible)
	}
}
