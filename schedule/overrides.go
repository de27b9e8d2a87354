package schedule

import "sync"

// Position is the optimistic placement of a match: which table column and
// which slot it is shown at ahead of server confirmation.
type Position struct {
	TableID string
	Slot    string
}

// OverrideSnapshot captures the full override state at a point in time so a
// failed mutation can restore it exactly, including unrelated entries that
// were pending when the snapshot was taken.
type OverrideSnapshot struct {
	entries map[int]Position
}

// Overrides is the pending-position store. The coordinator is the only
// writer and mutates it exclusively through Apply and Restore; the index
// builder reads it. The version counter feeds the index memoization.
type Overrides struct {
	mu      sync.RWMutex
	entries map[int]Position
	version int64
}

func NewOverrides() *Overrides {
	return &Overrides{entries: make(map[int]Position)}
}

// Get returns the pending position for a match, if any. Safe on a nil store.
func (o *Overrides) Get(matchID int) (Position, bool) {
	if o == nil {
		return Position{}, false
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	p, ok := o.entries[matchID]
	return p, ok
}

// Version increments on every write. Safe on a nil store.
func (o *Overrides) Version() int64 {
	if o == nil {
		return 0
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.version
}

func (o *Overrides) Len() int {
	if o == nil {
		return 0
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.entries)
}

// Apply records the optimistic positions for one edit set.
func (o *Overrides) Apply(edits []Edit) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range edits {
		o.entries[e.MatchID] = Position{TableID: e.TableID, Slot: e.Slot}
	}
	o.version++
}

// Snapshot deep-copies the current state.
func (o *Overrides) Snapshot() OverrideSnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	entries := make(map[int]Position, len(o.entries))
	for id, p := range o.entries {
		entries[id] = p
	}
	return OverrideSnapshot{entries: entries}
}

// Restore replaces the state with a previously taken snapshot. This is a full
// replacement, not a removal of newer entries, so rollback is exact.
func (o *Overrides) Restore(s OverrideSnapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	entries := make(map[int]Position, len(s.entries))
	for id, p := range s.entries {
		entries[id] = p
	}
	o.entries = entries
	o.version++
}

// Clear drops every pending entry; called after an authoritative refetch has
// superseded the optimistic state.
func (o *Overrides) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.entries) == 0 {
		return
	}
	o.entries = make(map[int]Position)
	o.version++
}
