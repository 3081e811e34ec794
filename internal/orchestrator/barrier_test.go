package orchestrator

import (
	"reflect"
	"testing"
)

func TestBarrierLastResponder(t *testing.T) {
	b := NewBarrier()
	b.Register("chat1", "Alice", "Bob")

	if b.MarkResponded("chat1", "Alice") {
		t.Error("Alice is not last; Bob still pending")
	}
	if !b.MarkResponded("chat1", "Bob") {
		t.Error("Bob's response completes the round")
	}
	if len(b.Pending("chat1")) != 0 {
		t.Error("pending set should be empty after the round")
	}
}

func TestBarrierUnknownNameNeverLast(t *testing.T) {
	b := NewBarrier()
	b.Register("chat1", "Alice")

	if b.MarkResponded("chat1", "Ghost") {
		t.Error("unknown name must not complete the round")
	}
	if b.MarkResponded("nochat", "Alice") {
		t.Error("unregistered chat must not complete a round")
	}
	if !b.MarkResponded("chat1", "Alice") {
		t.Error("Alice should still complete the round")
	}
}

func TestBarrierDuplicateResponse(t *testing.T) {
	b := NewBarrier()
	b.Register("chat1", "Alice", "Bob")

	if b.MarkResponded("chat1", "Alice") {
		t.Error("not last yet")
	}
	if b.MarkResponded("chat1", "Alice") {
		t.Error("a duplicate response must never look like the last one")
	}
	if !b.MarkResponded("chat1", "Bob") {
		t.Error("Bob completes the round")
	}
}

func TestBarrierRegisterMerges(t *testing.T) {
	b := NewBarrier()
	b.Register("chat1", "Alice")
	b.Register("chat1", "Bob")

	got := b.Pending("chat1")
	if !reflect.DeepEqual(got, []string{"Alice", "Bob"}) {
		t.Errorf("Pending = %v", got)
	}
}

func TestBarrierClear(t *testing.T) {
	b := NewBarrier()
	b.Register("chat1", "Alice")
	b.Clear("chat1")
	if b.MarkResponded("chat1", "Alice") {
		t.Error("cleared round must not complete")
	}
}
