package scanner

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/worktreekit/worktree/internal/config"
)

// TestRandomizedConvergence mirrors original_source/zed/src/worktree.rs's
// test_random: randomly mutate a directory tree, rescan, and assert the
// scanner's Snapshot always converges to what's actually on disk. Parameters
// come from config.Resolve so the SEED/ITERATIONS/OPERATIONS/INITIAL_ENTRIES
// env vars spec.md §6 names can narrow the search without editing the test
// (each value is capped below, so they cannot widen it).
func TestRandomizedConvergence(t *testing.T) {
	cfg, err := config.Resolve(config.ResolveOptions{})
	if err != nil {
		t.Fatalf("config.Resolve: %v", err)
	}
	stress := cfg.Stress
	// Keep CI-friendly sizes modest: env overrides are capped at 30
	// iterations, 10 operations and 20 initial entries.
	iterations := stress.Iterations
	if iterations > 30 {
		iterations = 30
	}
	operations := stress.Operations
	if operations > 10 {
		operations = 10
	}
	initialEntries := stress.InitialEntries
	if initialEntries > 20 {
		initialEntries = 20
	}

	rng := rand.New(rand.NewSource(stress.Seed))
	root := t.TempDir()

	var liveFiles []string
	nextID := 0
	newFileName := func() string {
		nextID++
		return randomComponent(rng, nextID)
	}

	for i := 0; i < initialEntries; i++ {
		liveFiles = appendRandomFile(t, rng, root, liveFiles, newFileName())
	}

	s, err := New(Config{RootAbsPath: root, Workers: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.InitialScan(context.Background()); err != nil {
		t.Fatalf("InitialScan: %v", err)
	}
	assertConverged(t, s, root)

	for iter := 0; iter < iterations; iter++ {
		for op := 0; op < operations; op++ {
			switch rng.Intn(3) {
			case 0: // create a new file
				liveFiles = appendRandomFile(t, rng, root, liveFiles, newFileName())
			case 1: // remove a random existing file
				if len(liveFiles) == 0 {
					continue
				}
				idx := rng.Intn(len(liveFiles))
				full := filepath.Join(root, filepath.FromSlash(liveFiles[idx]))
				if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
					t.Fatalf("Remove(%q): %v", liveFiles[idx], err)
				}
				liveFiles = append(liveFiles[:idx], liveFiles[idx+1:]...)
			case 2: // modify a random existing file's contents (no structural change)
				if len(liveFiles) == 0 {
					continue
				}
				idx := rng.Intn(len(liveFiles))
				full := filepath.Join(root, filepath.FromSlash(liveFiles[idx]))
				if err := os.WriteFile(full, []byte("mutated\n"), 0o644); err != nil {
					t.Fatalf("WriteFile(%q): %v", liveFiles[idx], err)
				}
			}
		}

		if err := s.InitialScan(context.Background()); err != nil {
			t.Fatalf("rescan %d: %v", iter, err)
		}
		assertConverged(t, s, root)
	}
}

// assertConverged checks the scanner's Snapshot file count matches a direct
// walk of root, the ground truth the scanner's incremental bookkeeping must
// always agree with once a rescan has completed.
func assertConverged(t *testing.T, s *Scanner, root string) {
	t.Helper()

	var diskCount int
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			diskCount++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WalkDir: %v", err)
	}

	snap := s.Snapshot()
	if got := snap.FileCount(); got != diskCount {
		t.Fatalf("snapshot file count %d does not match disk file count %d after rescan", got, diskCount)
	}
	if got := snap.VisibleFileCount(); got != diskCount {
		t.Fatalf("snapshot visible file count %d does not match disk file count %d (no ignore rules in play)", got, diskCount)
	}
}

func appendRandomFile(t *testing.T, rng *rand.Rand, root string, live []string, name string) []string {
	t.Helper()
	// Occasionally nest the new file under an existing file's directory (or a
	// fresh subdirectory when that file sits at the root) to exercise
	// multi-level rescans, not just flat root-level churn.
	rel := name
	if len(live) > 0 && rng.Intn(2) == 0 {
		parent := filepath.ToSlash(filepath.Dir(live[rng.Intn(len(live))]))
		if parent == "." {
			parent = "dir-" + name
		}
		rel = parent + "/" + name
	}
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte("data\n"), 0o644); err != nil {
		t.Fatalf("WriteFile(%q): %v", rel, err)
	}
	return append(live, rel)
}

func randomComponent(rng *rand.Rand, id int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	n := 3 + rng.Intn(4)
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rng.Intn(len(letters))]
	}
	return string(b) + "-" + itoa(id)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
