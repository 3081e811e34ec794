package proc

import (
	"strings"
	"sync"
)

// OutputBuffer accumulates streaming subprocess output keyed by routing
// session id. Data is appended on every stream chunk but consumed exactly
// once, at the process-exit event. Routing never sees partial output, which
// is what makes re-delivery of stream chunks harmless: at-most-once delivery
// to the router is a guarantee, not an optimization.
type OutputBuffer struct {
	mu   sync.Mutex
	bufs map[string]*strings.Builder
}

// NewOutputBuffer creates an empty OutputBuffer.
func NewOutputBuffer() *OutputBuffer {
	return &OutputBuffer{bufs: make(map[string]*strings.Builder)}
}

// Append adds a chunk of streamed output for a session.
func (b *OutputBuffer) Append(sessionID, chunk string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sb, ok := b.bufs[sessionID]
	if !ok {
		sb = &strings.Builder{}
		b.bufs[sessionID] = sb
	}
	sb.WriteString(chunk)
}

// Consume returns the accumulated output for a session and clears it.
// A second Consume for the same session returns the empty string.
func (b *OutputBuffer) Consume(sessionID string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	sb, ok := b.bufs[sessionID]
	if !ok {
		return ""
	}
	delete(b.bufs, sessionID)
	return sb.String()
}

// Len returns the number of bytes buffered for a session without consuming.
func (b *OutputBuffer) Len(sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sb, ok := b.bufs[sessionID]; ok {
		return sb.Len()
	}
	return 0
}
