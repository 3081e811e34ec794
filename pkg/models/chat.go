// Package models defines the core data types shared across Maestro.
package models

import "time"

// Sender constants for ChatLogEntry. Any other sender value is a
// participant display name.
const (
	SenderUser      = "user"
	SenderModerator = "moderator"
)

// GroupChat is the persisted metadata document for one group chat.
// It is owned by the store; orchestration code mutates it only through
// store operations.
type GroupChat struct {
	// ID uniquely identifies the chat.
	ID string `json:"id"`
	// Name is the human-readable chat name.
	Name string `json:"name"`
	// ModeratorAgentID is the agent type id of the moderator (e.g. "claude-code").
	ModeratorAgentID string `json:"moderator_agent_id"`
	// SessionID is the routing prefix used to tag subprocess invocations.
	// It is internal to Maestro and unrelated to any agent's own session id.
	SessionID string `json:"session_id"`
	// ModeratorSessionID is the agent-session id the moderator reported
	// after its first turn. Empty until then; enables resume.
	ModeratorSessionID string `json:"moderator_session_id,omitempty"`
	// Participants are the worker agents added to this chat.
	Participants []Participant `json:"participants"`
	// LogPath is the path of the append-only chat log (JSONL).
	LogPath string `json:"log_path"`
	// ImagesDir holds images shared into the chat.
	ImagesDir string `json:"images_dir,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Participant is a worker agent in a group chat, addressable by a unique,
// case-sensitive display name.
type Participant struct {
	// Name is unique within the chat and case-sensitive.
	Name string `json:"name"`
	// AgentID is the agent type id (e.g. "claude-code", "codex").
	AgentID string `json:"agent_id"`
	// SessionID is the internal routing session id. Always present; used
	// only to demultiplex subprocess output.
	SessionID string `json:"session_id"`
	// AgentSessionID is the session id the external agent reported after
	// its first turn. Empty until then. Cleared by session recovery.
	AgentSessionID string `json:"agent_session_id,omitempty"`
	// WorkDir is the directory the participant's subprocess runs in.
	WorkDir string `json:"work_dir,omitempty"`

	TokensUsed int     `json:"tokens_used"`
	Cost       float64 `json:"cost"`

	LastActive time.Time `json:"last_active"`
}

// ChatLogEntry is one record in the append-only chat log. Entries are
// never mutated or reordered once written.
type ChatLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	// Sender is SenderUser, SenderModerator, or a participant name.
	Sender  string `json:"sender"`
	Content string `json:"content"`
	// ReadOnly marks entries produced during a read-only routing pass.
	ReadOnly bool `json:"read_only,omitempty"`
}

// HistoryEntry is a richer annotated record stored in the per-chat history
// JSONL file alongside the raw log.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	// AgentID records which agent family produced the entry, when known.
	AgentID string `json:"agent_id,omitempty"`
	// AgentSessionID records the external session the entry came from.
	AgentSessionID string `json:"agent_session_id,omitempty"`
	TokensUsed     int    `json:"tokens_used,omitempty"`
	Cost           float64 `json:"cost,omitempty"`
}

// FindParticipant returns the participant with the given name, or nil.
// Matching is exact and case-sensitive.
func (c *GroupChat) FindParticipant(name string) *Participant {
	for i := range c.Participants {
		if c.Participants[i].Name == name {
			return &c.Participants[i]
		}
	}
	return nil
}

// ParticipantNames returns the display names of all participants in order.
func (c *GroupChat) ParticipantNames() []string {
	names := make([]string, 0, len(c.Participants))
	for i := range c.Participants {
		names = append(names, c.Participants[i].Name)
	}
	return names
}
