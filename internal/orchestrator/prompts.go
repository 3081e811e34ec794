package orchestrator

import (
	"fmt"
	"strings"

	"github.com/pedramamini/Maestro-sub005/pkg/models"
)

// Boundary tags wrap untrusted content in prompts. Even if a user message
// contains strings like "## User Request:", it stays inert content inside
// the tagged region rather than becoming a new instruction header.
const (
	tagChatHistory = "chat-history"
	tagUserMessage = "user-message"
	tagDelegation  = "moderator-delegation"
)

// Resume-turn headings. The full history is deliberately omitted on resume
// because the external agent already retains it.
const (
	headingNewUserMessage = "## New User Message"
	headingNewTask        = "## New Task in Group Chat"
	headingSynthesisTask  = "## Your Task:"
	headingRoundResponses = "## Recent Participant Responses:"
	headingRecentHistory  = "## Recent Chat History"
)

// readOnlyDirective is injected into whichever prompt variant is used when
// read-only mode is requested.
const readOnlyDirective = `READ-ONLY MODE: You must not create, modify, or delete any files. ` +
	`Answer from analysis only.`

// delegationReadOnlyNote propagates the read-only constraint into
// participant delegations.
const delegationReadOnlyNote = `This task is running in read-only mode. Do not modify files.`

// wrap encloses content in an XML-style boundary tag.
func wrap(tag, content string) string {
	return fmt.Sprintf("<%s>\n%s\n</%s>", tag, content, tag)
}

// formatHistory renders chat log entries one per line, sender-prefixed.
func formatHistory(entries []models.ChatLogEntry) string {
	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "[%s]: %s", e.Sender, e.Content)
	}
	return sb.String()
}

// moderatorFraming is the system framing for a moderator's first turn.
func moderatorFraming(chat *models.GroupChat) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are the moderator of the group chat %q.\n", chat.Name)
	sb.WriteString("You coordinate a team of AI participants. Delegate work by " +
		"mentioning participants with @Name in your response; every mentioned " +
		"participant receives your message as a task. When all delegated " +
		"participants have answered, you will be asked to synthesize their responses.\n")
	if names := chat.ParticipantNames(); len(names) > 0 {
		fmt.Fprintf(&sb, "Current participants: %s\n", strings.Join(names, ", "))
	}
	return sb.String()
}

// participantFraming is the system framing for a participant's first turn.
func participantFraming(chat *models.GroupChat, name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %q, a participant in the group chat %q.\n", name, chat.Name)
	sb.WriteString("The moderator has delegated a task to you. Complete it and " +
		"reply with your result; your reply is appended to the shared chat log.\n")
	return sb.String()
}

// ModeratorPrompt builds the moderator prompt for a user message turn.
// resume selects the short continuation variant; otherwise the full prompt
// carries the complete chat history.
func ModeratorPrompt(chat *models.GroupChat, history []models.ChatLogEntry, userText string, readOnly, resume bool) string {
	var parts []string
	if resume {
		parts = append(parts, headingNewUserMessage)
	} else {
		parts = append(parts, moderatorFraming(chat))
		parts = append(parts, wrap(tagChatHistory, formatHistory(history)))
	}
	if readOnly {
		parts = append(parts, readOnlyDirective)
	}
	parts = append(parts, wrap(tagUserMessage, userText))
	return strings.Join(parts, "\n\n")
}

// DelegationPrompt builds a participant's prompt for a delegated task.
// recoveryContext, when non-empty, precedes the task so a freshly respawned
// agent can reestablish continuity.
func DelegationPrompt(chat *models.GroupChat, history []models.ChatLogEntry, name, instruction string, readOnly, resume bool, recoveryContext string) string {
	var parts []string
	if recoveryContext != "" {
		parts = append(parts, recoveryContext)
	}
	if resume {
		parts = append(parts, headingNewTask)
	} else {
		parts = append(parts, participantFraming(chat, name))
		parts = append(parts, wrap(tagChatHistory, formatHistory(history)))
	}
	if readOnly {
		parts = append(parts, readOnlyDirective)
		parts = append(parts, delegationReadOnlyNote)
	}
	parts = append(parts, wrap(tagDelegation, instruction))
	return strings.Join(parts, "\n\n")
}

// SynthesisPrompt builds the moderator's synthesis turn after a delegation
// round completes. On resume the context section carries only the round's
// participant responses; the full variant carries recent chat history.
func SynthesisPrompt(chat *models.GroupChat, history []models.ChatLogEntry, roundResponses []models.ChatLogEntry, readOnly, resume bool) string {
	var parts []string
	if !resume {
		parts = append(parts, moderatorFraming(chat))
	}
	if resume {
		parts = append(parts, headingRoundResponses+"\n\n"+formatHistory(roundResponses))
	} else {
		parts = append(parts, headingRecentHistory+"\n\n"+formatHistory(history))
	}
	if readOnly {
		parts = append(parts, readOnlyDirective)
	}
	parts = append(parts, headingSynthesisTask+"\n\n"+
		"All delegated participants have responded. Synthesize their responses "+
		"into a single answer for the user. Mention participants again only if "+
		"further work is required.")
	return strings.Join(parts, "\n\n")
}
