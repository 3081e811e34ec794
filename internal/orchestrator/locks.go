package orchestrator

import (
	"sync"
	"time"
)

// LockStaleness is how old a chat lock may get before it is treated as
// absent. A crashed operation's lock is silently replaced after this window
// rather than blocking the chat forever.
const LockStaleness = 5 * time.Minute

// lockEntry records a live per-chat operation.
type lockEntry struct {
	label string
	start time.Time
}

// LockManager provides per-chat mutual exclusion with staleness recovery,
// plus the one-shot synthesis guard. State is process-local and in-memory;
// a fresh manager starts empty.
type LockManager struct {
	mu        sync.Mutex
	locks     map[string]lockEntry
	synthesis map[string]struct{}

	// now is swappable in tests to simulate the staleness window.
	now func() time.Time
}

// NewLockManager creates an empty LockManager.
func NewLockManager() *LockManager {
	return &LockManager{
		locks:     make(map[string]lockEntry),
		synthesis: make(map[string]struct{}),
		now:       time.Now,
	}
}

// SetNow overrides the clock, used by tests.
func (m *LockManager) SetNow(fn func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = fn
}

// Acquire takes the chat lock for the labeled operation. Returns false,
// without blocking, when a live non-stale entry already exists. A stale
// entry is silently replaced.
func (m *LockManager) Acquire(chatID, label string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.locks[chatID]; ok {
		if m.now().Sub(entry.start) < LockStaleness {
			return false
		}
	}
	m.locks[chatID] = lockEntry{label: label, start: m.now()}
	return true
}

// Release removes the chat's lock entry unconditionally.
func (m *LockManager) Release(chatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, chatID)
}

// ForceRelease removes the chat's lock entry unconditionally. It exists as
// a distinct name for operator-triggered cleanup paths.
func (m *LockManager) ForceRelease(chatID string) {
	m.Release(chatID)
}

// IsLocked reports whether a live lock exists for the chat. A stale entry
// is self-healed: it is released and reported as absent.
func (m *LockManager) IsLocked(chatID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[chatID]
	if !ok {
		return false
	}
	if m.now().Sub(entry.start) >= LockStaleness {
		delete(m.locks, chatID)
		return false
	}
	return true
}

// Holder returns the label of the operation holding the chat lock.
func (m *LockManager) Holder(chatID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.locks[chatID]
	return entry.label, ok
}

// MarkSynthesisStarted records that a synthesis round is in flight for the
// chat. Combined with the completion barrier this ensures synthesis fires
// at most once even when participant-exit events race.
func (m *LockManager) MarkSynthesisStarted(chatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.synthesis[chatID] = struct{}{}
}

// IsSynthesisInProgress reports whether a synthesis round is in flight.
func (m *LockManager) IsSynthesisInProgress(chatID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.synthesis[chatID]
	return ok
}

// ClearSynthesisInProgress clears the synthesis flag, called when the
// synthesis subprocess exits or on explicit reset.
func (m *LockManager) ClearSynthesisInProgress(chatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.synthesis, chatID)
}
