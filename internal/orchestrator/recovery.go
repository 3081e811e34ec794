package orchestrator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pedramamini/Maestro-sub005/internal/agents"
	"github.com/pedramamini/Maestro-sub005/pkg/models"
)

// DefaultRecoveryMessages is how many trailing log entries a recovery
// context includes when no override is configured.
const DefaultRecoveryMessages = 30

// Truncation limits for recovery context sections.
const (
	ownStatementLimit   = 1000
	historyMessageLimit = 500
)

// fallbackSessionPatterns are the raw session-loss patterns evaluated
// case-insensitively against the whole output when the structured matcher
// produced no classification at all.
var fallbackSessionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)no conversation found with session id`),
	regexp.MustCompile(`(?i)session not found`),
	regexp.MustCompile(`(?i)session was not found`),
	regexp.MustCompile(`(?i)invalid session id`),
}

// DetectSessionNotFoundError reports whether raw agent output indicates the
// agent's stored session no longer exists. The agent's structured error
// patterns are consulted line by line first; a session_not_found
// classification returns true immediately, and any other structured match
// suppresses the fallback patterns. Only when no line classifies at all are
// the raw patterns tried against the whole output.
func (o *Orchestrator) DetectSessionNotFoundError(rawOutput, agentID string) bool {
	if rawOutput == "" {
		return false
	}
	if agentID == "" {
		agentID = "claude-code"
	}

	if profile, ok := o.agents.Get(agentID); ok {
		structured := false
		for _, line := range strings.Split(rawOutput, "\n") {
			switch profile.ClassifyLine(line) {
			case agents.ErrKindSessionNotFound:
				return true
			case "":
			default:
				structured = true
			}
		}
		if structured {
			return false
		}
	}

	for _, re := range fallbackSessionPatterns {
		if re.MatchString(rawOutput) {
			return true
		}
	}
	return false
}

// NeedsSessionRecovery is a thin alias for DetectSessionNotFoundError.
func (o *Orchestrator) NeedsSessionRecovery(rawOutput, agentID string) bool {
	return o.DetectSessionNotFoundError(rawOutput, agentID)
}

// BuildRecoveryContext assembles the continuity context injected into a
// participant's fresh session after its previous one was lost. Returns the
// empty string when the chat or its log has no entries.
func (o *Orchestrator) BuildRecoveryContext(chatID, participantName string, lastMessages int) string {
	if lastMessages <= 0 {
		lastMessages = DefaultRecoveryMessages
	}

	chat, err := o.store.LoadChat(chatID)
	if err != nil || chat == nil {
		return ""
	}
	entries, err := o.store.ReadLog(chatID)
	if err != nil || len(entries) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("## Session Recovery Context\n\n")
	fmt.Fprintf(&sb, "Group chat: %s\n", chat.Name)

	var own []models.ChatLogEntry
	for _, e := range entries {
		if e.Sender == participantName {
			own = append(own, e)
		}
	}
	if len(own) > 0 {
		fmt.Fprintf(&sb, "\n### Your Previous Statements (as %s)\n\n", participantName)
		for _, e := range own {
			fmt.Fprintf(&sb, "- %s\n", truncate(e.Content, ownStatementLimit))
		}
	}

	recent := entries
	if len(recent) > lastMessages {
		recent = recent[len(recent)-lastMessages:]
	}
	sb.WriteString("\n### Recent Conversation History\n\n")
	for _, e := range recent {
		if e.Sender == participantName {
			fmt.Fprintf(&sb, "**YOU (%s):** %s\n", participantName, e.Content)
		} else {
			fmt.Fprintf(&sb, "[%s]: %s\n", e.Sender, truncate(e.Content, historyMessageLimit))
		}
	}

	sb.WriteString("\nYour previous session was unavailable, so you have been " +
		"given a fresh session. Continue from where you left off and stay " +
		"consistent with your previous statements above.\n")
	return sb.String()
}

// InitiateSessionRecovery clears the participant's stored agent-session id
// so the next spawn takes the full-prompt path with a fresh session.
// Returns false, never an error, when the update fails for any reason,
// including the chat not existing.
func (o *Orchestrator) InitiateSessionRecovery(chatID, participantName string) bool {
	err := o.store.UpdateParticipant(chatID, participantName, func(p *models.Participant) {
		p.AgentSessionID = ""
	})
	if err != nil {
		o.logger.Log("session recovery for %s/%s failed: %v", chatID, participantName, err)
		return false
	}
	o.emitEvent(Event{
		Type:        EventSessionRecovered,
		ChatID:      chatID,
		Participant: participantName,
		Message:     "cleared stale agent session id",
	})
	return true
}

// truncate limits s to max bytes, cutting on a rune boundary so a multibyte
// character at the limit is never split, and appends an ellipsis when cut.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
