package orchestrator

import (
	"sort"
	"sync"
)

// Barrier tracks which participants still owe a response for the current
// delegation round of each chat. The round is complete exactly when the
// pending set becomes empty.
type Barrier struct {
	mu      sync.Mutex
	pending map[string]map[string]struct{}
}

// NewBarrier creates an empty Barrier.
func NewBarrier() *Barrier {
	return &Barrier{pending: make(map[string]map[string]struct{})}
}

// Register adds participants to the chat's pending set. Called by the
// router with the set of participants it just spawned.
func (b *Barrier) Register(chatID string, names ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.pending[chatID]
	if !ok {
		set = make(map[string]struct{})
		b.pending[chatID] = set
	}
	for _, name := range names {
		set[name] = struct{}{}
	}
}

// MarkResponded removes name from the chat's pending set and reports
// whether that made the set empty. Returns false when the name was not
// pending or no round is registered, so a stray or duplicate exit event
// can never look like the last one.
func (b *Barrier) MarkResponded(chatID, name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.pending[chatID]
	if !ok {
		return false
	}
	if _, pending := set[name]; !pending {
		return false
	}
	delete(set, name)
	if len(set) == 0 {
		delete(b.pending, chatID)
		return true
	}
	return false
}

// Pending returns the sorted names still owed for the chat's current round.
func (b *Barrier) Pending(chatID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.pending[chatID]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear drops the chat's pending set entirely.
func (b *Barrier) Clear(chatID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, chatID)
}
