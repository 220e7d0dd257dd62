// Package worktree provides the public facade over a scanned directory
// tree: Worktree ties together a scanner.Scanner, a filesystem event
// source, and the ScanState stream callers observe while a scan is in
// flight (spec.md §5).
package worktree

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/worktreekit/worktree/internal/fsevents"
	"github.com/worktreekit/worktree/internal/scanner"
	"github.com/worktreekit/worktree/internal/snapshot"
)

// ScanState mirrors the three states a Worktree's background scan can be
// in at any moment.
type ScanState int

const (
	Idle ScanState = iota
	Scanning
	ScanErr
)

func (s ScanState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case ScanErr:
		return "error"
	default:
		return "unknown"
	}
}

// DefaultPollInterval is how often NextScanComplete re-checks scan
// progress, matching original_source/zed's 100ms poll_entries timer.
const DefaultPollInterval = 100 * time.Millisecond

// Config configures a Worktree.
type Config struct {
	RootAbsPath  string
	Workers      int
	PollInterval time.Duration
	Logger       *slog.Logger
	Events       fsevents.Source // nil selects a real fsevents.Watcher
}

// Worktree is a live, queryable view of a directory tree.
type Worktree struct {
	id      string
	cfg     Config
	logger  *slog.Logger
	scanner *scanner.Scanner
	events  fsevents.Source
	ownsFS  bool

	cancel context.CancelFunc
	done   chan struct{}

	mu         sync.Mutex
	foreground snapshot.Snapshot
	state      ScanState
	scanErr    error
	generation uint64
	scanDone   chan struct{}
}

// Open starts scanning cfg.RootAbsPath in the background and returns once
// the Worktree is constructed; callers wishing to block for the first
// completed scan should call ScanComplete afterward.
func Open(ctx context.Context, cfg Config) (*Worktree, error) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "worktree", "root", cfg.RootAbsPath)

	ownsFS := cfg.Events == nil
	events := cfg.Events
	if ownsFS {
		w, err := fsevents.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("worktree: starting filesystem watcher: %w", err)
		}
		if err := w.Add(cfg.RootAbsPath); err != nil {
			return nil, fmt.Errorf("worktree: watching root: %w", err)
		}
		events = w
	}

	sc, err := scanner.New(scanner.Config{
		RootAbsPath: cfg.RootAbsPath,
		Workers:     cfg.Workers,
		Logger:      logger,
		Events:      events,
	})
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	wt := &Worktree{
		id:         cfg.RootAbsPath,
		cfg:        cfg,
		logger:     logger,
		scanner:    sc,
		events:     events,
		ownsFS:     ownsFS,
		cancel:     cancel,
		done:       make(chan struct{}),
		foreground: sc.Snapshot(),
		state:      Scanning,
		scanDone:   make(chan struct{}),
	}
	go wt.run(runCtx)
	return wt, nil
}

func (w *Worktree) run(ctx context.Context) {
	defer close(w.done)

	w.beginScan()
	err := w.scanner.InitialScan(ctx)
	w.endScan(err)

	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-w.events.Events():
			if !ok {
				return
			}
			w.beginScan()
			err := w.scanner.ProcessEvents(ctx, batch)
			w.endScan(err)
		case err, ok := <-w.events.Errors():
			if !ok {
				continue
			}
			w.logger.Warn("filesystem watcher error", "err", err)
		}
	}
}

func (w *Worktree) beginScan() {
	w.mu.Lock()
	w.state = Scanning
	w.mu.Unlock()
}

func (w *Worktree) endScan(err error) {
	w.mu.Lock()
	w.foreground = w.scanner.Snapshot()
	w.generation++
	if err != nil {
		w.state = ScanErr
		w.scanErr = err
	} else {
		w.state = Idle
		w.scanErr = nil
	}
	done := w.scanDone
	w.scanDone = make(chan struct{})
	w.mu.Unlock()
	close(done)
}

// ID returns this worktree's stable identity, standing in for the
// original's (usize) worktree id: a FileHandle pairs this with its own
// path to answer Identity().
func (w *Worktree) ID() string {
	return w.id
}

// Snapshot returns the most recently published, consistent Snapshot.
func (w *Worktree) Snapshot() snapshot.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.foreground
}

// State returns the current scan state and, if ScanErr, the triggering error.
func (w *Worktree) State() (ScanState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state, w.scanErr
}

// ScanComplete blocks until whatever scan is currently in flight (if any)
// finishes, or ctx is done. It returns immediately if no scan is running
// (the worktree is idle or its last scan failed).
func (w *Worktree) ScanComplete(ctx context.Context) error {
	w.mu.Lock()
	if w.state != Scanning {
		w.mu.Unlock()
		return nil
	}
	ch := w.scanDone
	w.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NextScanComplete blocks until the next scan completion after this call
// (a scan already in flight counts) and no scan is running, polling at
// cfg.PollInterval the way
// original_source/zed/src/worktree.rs's poll_entries does.
func (w *Worktree) NextScanComplete(ctx context.Context) error {
	w.mu.Lock()
	startGen := w.generation
	w.mu.Unlock()

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.mu.Lock()
			gen, state := w.generation, w.state
			w.mu.Unlock()
			if gen > startGen && state != Scanning {
				return nil
			}
		}
	}
}

// Close stops the background scan loop and, if Open started its own
// filesystem watcher, releases it.
func (w *Worktree) Close() error {
	w.cancel()
	<-w.done
	if w.ownsFS {
		return w.events.Close()
	}
	return nil
}
