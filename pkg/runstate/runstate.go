// Package runstate tracks which items are currently executing. The set
// lives in memory only and starts empty on every process start.
package runstate

import (
	"sort"
	"sync"
)

// Event is one change to the running set.
type Event struct {
	ID      string
	Running bool
}

// Tracker is a mutable set of running item ids. SetRunning is the sole
// mutator, driven by dispatcher start and stop events. Renderers read it
// from other goroutines.
type Tracker struct {
	mu  sync.RWMutex
	ids map[string]bool

	subsMu sync.RWMutex
	subs   []chan Event
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{ids: make(map[string]bool)}
}

// SetRunning marks an item as running or stopped. A call that does not
// change the set emits no event.
func (t *Tracker) SetRunning(id string, running bool) {
	if id == "" {
		return
	}

	t.mu.Lock()
	prev := t.ids[id]
	if running {
		t.ids[id] = true
	} else {
		delete(t.ids, id)
	}
	t.mu.Unlock()

	if prev != running {
		t.broadcast(Event{ID: id, Running: running})
	}
}

// IsRunning reports whether an item is in the running set.
func (t *Tracker) IsRunning(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ids[id]
}

// RunningIDs returns the members of the running set, sorted.
func (t *Tracker) RunningIDs() []string {
	t.mu.RLock()
	ids := make([]string, 0, len(t.ids))
	for id := range t.ids {
		ids = append(ids, id)
	}
	t.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Len returns the size of the running set.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.ids)
}

// Subscribe returns a channel receiving change events. Slow subscribers
// miss events rather than blocking the tracker.
func (t *Tracker) Subscribe() chan Event {
	ch := make(chan Event, 16)
	t.subsMu.Lock()
	t.subs = append(t.subs, ch)
	t.subsMu.Unlock()
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (t *Tracker) Unsubscribe(ch chan Event) {
	t.subsMu.Lock()
	defer t.subsMu.Unlock()

	for i, sub := range t.subs {
		if sub == ch {
			t.subs = append(t.subs[:i], t.subs[i+1:]...)
			close(ch)
			break
		}
	}
}

func (t *Tracker) broadcast(ev Event) {
	t.subsMu.RLock()
	defer t.subsMu.RUnlock()

	for _, ch := range t.subs {
		select {
		case ch <- ev:
		default:
			// Channel full, skip
		}
	}
}
