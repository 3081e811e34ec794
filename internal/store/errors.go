package store

import "errors"

// Sentinel errors surfaced by store operations. Callers distinguish them
// with errors.Is.
var (
	// ErrChatNotFound is returned when an operation targets an unknown chat id.
	ErrChatNotFound = errors.New("chat not found")
	// ErrParticipantNotFound is returned when a participant-keyed operation
	// targets a name not present in the chat.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrDuplicateParticipant is returned when adding a participant whose
	// name is already taken in the chat.
	ErrDuplicateParticipant = errors.New("participant already exists")
)
