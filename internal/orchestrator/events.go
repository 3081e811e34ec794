package orchestrator

import "time"

// EventType represents the type of orchestrator event.
type EventType string

const (
	// EventMessageLogged indicates an entry was appended to a chat log.
	EventMessageLogged EventType = "message_logged"
	// EventModeratorSpawned indicates a moderator turn subprocess started.
	EventModeratorSpawned EventType = "moderator_spawned"
	// EventParticipantSpawned indicates a participant subprocess started.
	EventParticipantSpawned EventType = "participant_spawned"
	// EventParticipantAdded indicates delegation added a new participant.
	EventParticipantAdded EventType = "participant_added"
	// EventRoundComplete indicates every delegated participant has answered.
	EventRoundComplete EventType = "round_complete"
	// EventSynthesisStarted indicates the synthesis turn was spawned.
	EventSynthesisStarted EventType = "synthesis_started"
	// EventSessionRecovered indicates a lost agent session was detected and
	// cleared so the next spawn starts fresh.
	EventSessionRecovered EventType = "session_recovered"
)

// Event is emitted by the orchestrator for observers such as the CLI.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// ChatID is the affected chat.
	ChatID string
	// Participant is the related participant name, if applicable.
	Participant string
	// AgentID is the related agent type id, if applicable.
	AgentID string
	// Message provides additional context.
	Message string
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Events returns the orchestrator's event channel.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

// emitEvent sends an event without blocking; observers that fall behind
// lose events rather than stalling routing.
func (o *Orchestrator) emitEvent(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	select {
	case o.events <- ev:
	default:
	}
}
