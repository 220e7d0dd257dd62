// Package fsevents abstracts the filesystem change notifications the
// background scanner reacts to, so internal/scanner can be driven either by
// real OS events or by a scripted, in-memory event batch in tests (spec.md
// §8's rescan scenarios and the randomized convergence harness both need
// deterministic, replayable event delivery).
package fsevents

import (
	"github.com/fsnotify/fsnotify"
)

// Kind classifies one filesystem change.
type Kind int

const (
	Created Kind = iota
	Removed
	Modified
	Renamed
)

// Event is one filesystem change, reported with an absolute path.
type Event struct {
	Path string
	Kind Kind
}

// Source delivers batches of filesystem events. Events is closed when the
// source is done (Close called, or the underlying watcher failed).
type Source interface {
	Events() <-chan []Event
	Errors() <-chan error
	Add(path string) error
	Close() error
}

// Watcher is a Source backed by fsnotify, coalescing events delivered
// within a single receive into one batch the same way the background
// scanner's process_events step expects (spec.md §4.8: a scan iteration
// processes whatever events arrived since the last one, not one at a time).
type Watcher struct {
	inner  *fsnotify.Watcher
	events chan []Event
	errors chan error
	done   chan struct{}
}

// NewWatcher starts a Watcher with no paths registered; call Add for every
// directory the scanner discovers.
func NewWatcher() (*Watcher, error) {
	inner, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		inner:  inner,
		events: make(chan []Event, 1),
		errors: make(chan error, 1),
		done:   make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.events)
	defer close(w.errors)
	for {
		select {
		case ev, ok := <-w.inner.Events:
			if !ok {
				return
			}
			batch := []Event{translate(ev)}
			drain := true
			for drain {
				select {
				case ev2, ok := <-w.inner.Events:
					if !ok {
						drain = false
						break
					}
					batch = append(batch, translate(ev2))
				default:
					drain = false
				}
			}
			select {
			case w.events <- batch:
			case <-w.done:
				return
			}
		case err, ok := <-w.inner.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		case <-w.done:
			return
		}
	}
}

func translate(ev fsnotify.Event) Event {
	var kind Kind
	switch {
	case ev.Has(fsnotify.Create):
		kind = Created
	case ev.Has(fsnotify.Remove):
		kind = Removed
	case ev.Has(fsnotify.Rename):
		kind = Renamed
	default:
		kind = Modified
	}
	return Event{Path: ev.Name, Kind: kind}
}

// Events returns the channel of delivered event batches.
func (w *Watcher) Events() <-chan []Event { return w.events }

// Errors returns the channel of watcher errors.
func (w *Watcher) Errors() <-chan error { return w.errors }

// Add registers path (a directory) for notifications.
func (w *Watcher) Add(path string) error { return w.inner.Add(path) }

// Close stops the watcher and releases its OS resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.inner.Close()
}

// Manual is an in-memory Source for tests: callers push scripted event
// batches with Push and the scanner consumes them exactly like a real
// Watcher's output, which is what lets the worktree tests drive event
// delivery deterministically instead of racing a real filesystem watcher.
type Manual struct {
	events chan []Event
	errors chan error
	added  []string
}

// NewManual returns a Manual source with no events queued.
func NewManual() *Manual {
	return &Manual{
		events: make(chan []Event, 64),
		errors: make(chan error, 1),
	}
}

// Push enqueues a batch of events for the scanner to consume.
func (m *Manual) Push(batch []Event) {
	m.events <- batch
}

// Events returns the channel of pushed event batches.
func (m *Manual) Events() <-chan []Event { return m.events }

// Errors returns the (normally empty) error channel.
func (m *Manual) Errors() <-chan error { return m.errors }

// Add records path as watched, for tests that assert on watch membership;
// it has no effect on delivery.
func (m *Manual) Add(path string) error {
	m.added = append(m.added, path)
	return nil
}

// Added returns every path passed to Add, in call order.
func (m *Manual) Added() []string { return m.added }

// Close stops delivery by closing the events channel.
func (m *Manual) Close() error {
	close(m.events)
	return nil
}
