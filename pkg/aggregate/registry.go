package aggregate

import "sync"

// Registry owns the current snapshot. Refreshes replace it wholesale;
// concurrent refreshes may race and the last replacement wins. Readers
// always see a complete snapshot, never a partially built one.
type Registry struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// NewRegistry returns a registry holding an empty snapshot.
func NewRegistry() *Registry {
	return &Registry{snap: &Snapshot{byKey: make(map[string]*WorkspaceAggregate)}}
}

// Replace swaps in a newly built snapshot.
func (r *Registry) Replace(snap *Snapshot) {
	if snap == nil {
		return
	}
	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()
}

// Current returns the latest snapshot.
func (r *Registry) Current() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}
