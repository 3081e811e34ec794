package orchestrator

import (
	"testing"
	"time"
)

func TestLockAcquireRelease(t *testing.T) {
	m := NewLockManager()

	if !m.Acquire("chat1", "op-a") {
		t.Fatal("first acquire should succeed")
	}
	if m.Acquire("chat1", "op-b") {
		t.Error("second acquire should fail while lock is live")
	}
	if !m.Acquire("chat2", "op-c") {
		t.Error("locks are per chat; other chats stay free")
	}

	label, held := m.Holder("chat1")
	if !held || label != "op-a" {
		t.Errorf("Holder = %q, %v", label, held)
	}

	m.Release("chat1")
	if !m.Acquire("chat1", "op-b") {
		t.Error("acquire after release should succeed")
	}
}

func TestLockStaleReplacement(t *testing.T) {
	m := NewLockManager()
	now := time.Now()
	m.SetNow(func() time.Time { return now })

	if !m.Acquire("chat1", "crashed-op") {
		t.Fatal("acquire failed")
	}

	// Just under the staleness window the lock still holds.
	now = now.Add(LockStaleness - time.Second)
	if m.Acquire("chat1", "op-b") {
		t.Error("lock should still be live just under the window")
	}

	// At the window the entry is treated as absent and silently replaced.
	now = now.Add(2 * time.Second)
	if !m.Acquire("chat1", "op-b") {
		t.Error("stale lock should be silently replaced")
	}
	label, _ := m.Holder("chat1")
	if label != "op-b" {
		t.Errorf("holder = %q, want op-b", label)
	}
}

func TestIsLockedSelfHealsStale(t *testing.T) {
	m := NewLockManager()
	now := time.Now()
	m.SetNow(func() time.Time { return now })

	m.Acquire("chat1", "op")
	if !m.IsLocked("chat1") {
		t.Error("fresh lock should report locked")
	}

	now = now.Add(LockStaleness)
	if m.IsLocked("chat1") {
		t.Error("stale lock should report unlocked")
	}
	if _, held := m.Holder("chat1"); held {
		t.Error("stale entry should have been removed")
	}
}

func TestForceRelease(t *testing.T) {
	m := NewLockManager()
	m.Acquire("chat1", "op")
	m.ForceRelease("chat1")
	if m.IsLocked("chat1") {
		t.Error("force release should drop the lock")
	}
}

func TestSynthesisGuard(t *testing.T) {
	m := NewLockManager()

	if m.IsSynthesisInProgress("chat1") {
		t.Error("guard should start clear")
	}
	m.MarkSynthesisStarted("chat1")
	if !m.IsSynthesisInProgress("chat1") {
		t.Error("guard should be set")
	}
	if m.IsSynthesisInProgress("chat2") {
		t.Error("guard is per chat")
	}
	m.ClearSynthesisInProgress("chat1")
	if m.IsSynthesisInProgress("chat1") {
		t.Error("guard should clear")
	}
}
