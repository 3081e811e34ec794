package orchestrator

import (
	"errors"
	"fmt"
	"time"

	"github.com/pedramamini/Maestro-sub005/internal/mentions"
	"github.com/pedramamini/Maestro-sub005/internal/proc"
	"github.com/pedramamini/Maestro-sub005/internal/store"
	"github.com/pedramamini/Maestro-sub005/pkg/models"
)

// RouteUserMessage routes a user's message to the chat's moderator. The
// message is appended to the log; with a process manager present the
// moderator is spawned as a one-shot batch subprocess. A nil manager means
// log-only mode.
func (o *Orchestrator) RouteUserMessage(chatID, text string, pm proc.Manager, readOnly bool) error {
	chat, err := o.loadChat(chatID)
	if err != nil {
		return err
	}
	if chat.ModeratorAgentID == "" {
		return fmt.Errorf("chat %s: %w", chatID, ErrModeratorNotActive)
	}

	if !o.locks.Acquire(chatID, "route-user-message") {
		return fmt.Errorf("chat %s: %w", chatID, ErrLockContention)
	}
	defer o.locks.Release(chatID)

	if err := o.appendLog(chatID, models.ChatLogEntry{
		Sender:   models.SenderUser,
		Content:  text,
		ReadOnly: readOnly,
	}); err != nil {
		return err
	}

	if pm == nil {
		return nil
	}

	history, err := o.store.ReadLog(chatID)
	if err != nil {
		return fmt.Errorf("read chat log: %w", err)
	}
	return o.spawnModerator(chat, pm, moderatorTurn{
		Role:        roleModerator,
		Instruction: text,
		History:     trimTrailing(history, models.SenderUser, text),
		ReadOnly:    readOnly,
	})
}

// RouteModeratorResponse appends a moderator response to the log, resolves
// its @mentions, and fans delegation out to every resolved participant.
// Each spawned participant is registered as owed in the completion barrier.
func (o *Orchestrator) RouteModeratorResponse(chatID, text string, pm proc.Manager, readOnly bool) error {
	chat, err := o.loadChat(chatID)
	if err != nil {
		return err
	}

	if !o.locks.Acquire(chatID, "route-moderator-response") {
		return fmt.Errorf("chat %s: %w", chatID, ErrLockContention)
	}
	defer o.locks.Release(chatID)

	if err := o.appendLog(chatID, models.ChatLogEntry{
		Sender:   models.SenderModerator,
		Content:  text,
		ReadOnly: readOnly,
	}); err != nil {
		return err
	}

	if pm == nil {
		return nil
	}

	targets, err := o.resolveDelegationTargets(chat, mentions.Tokens(text))
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return nil
	}

	// Reload: resolution may have added participants.
	chat, err = o.loadChat(chatID)
	if err != nil {
		return err
	}
	history, err := o.store.ReadLog(chatID)
	if err != nil {
		return fmt.Errorf("read chat log: %w", err)
	}
	history = trimTrailing(history, models.SenderModerator, text)

	var spawned []string
	for _, target := range targets {
		if err := o.spawnParticipant(chat, pm, target, text, history, readOnly, ""); err != nil {
			o.logger.Log("delegation to %s failed: %v", target.Name, err)
			continue
		}
		spawned = append(spawned, target.Name)
	}
	if len(spawned) > 0 {
		o.barrier.Register(chatID, spawned...)
	}
	return nil
}

// RouteAgentResponse appends a participant's finished response to the log
// and advances the completion barrier. Responses are surfaced purely
// through the log; nothing is written back into a live subprocess channel.
// When the last outstanding participant of the round responds, a synthesis
// turn of the moderator is spawned exactly once.
func (o *Orchestrator) RouteAgentResponse(chatID, participantName, text string, pm proc.Manager) error {
	chat, err := o.loadChat(chatID)
	if err != nil {
		return err
	}
	participant := chat.FindParticipant(participantName)
	if participant == nil {
		return fmt.Errorf("chat %s participant %q: %w", chatID, participantName, store.ErrParticipantNotFound)
	}

	if !o.locks.Acquire(chatID, "route-agent-response") {
		return fmt.Errorf("chat %s: %w", chatID, ErrLockContention)
	}
	defer o.locks.Release(chatID)

	if err := o.appendLog(chatID, models.ChatLogEntry{
		Sender:  participantName,
		Content: text,
	}); err != nil {
		return err
	}
	if err := o.store.AppendHistory(chatID, models.HistoryEntry{
		Sender:         participantName,
		Content:        text,
		AgentID:        participant.AgentID,
		AgentSessionID: participant.AgentSessionID,
	}); err != nil {
		o.logger.Log("append history for %s: %v", chatID, err)
	}
	if err := o.store.UpdateParticipant(chatID, participantName, func(p *models.Participant) {
		p.LastActive = time.Now()
	}); err != nil {
		o.logger.Log("touch participant %s: %v", participantName, err)
	}

	isLast := o.barrier.MarkResponded(chatID, participantName)
	if !isLast {
		return nil
	}
	o.emitEvent(Event{Type: EventRoundComplete, ChatID: chatID})

	if pm == nil {
		return nil
	}
	// The guard must be checked and set before spawning so two late exits
	// can never both believe they were last.
	if o.locks.IsSynthesisInProgress(chatID) {
		return nil
	}
	o.locks.MarkSynthesisStarted(chatID)
	if err := o.spawnSynthesis(chatID, pm); err != nil {
		o.locks.ClearSynthesisInProgress(chatID)
		return err
	}
	return nil
}

// HandleProcessExit demultiplexes a finished subprocess back into the
// router. The output argument is the complete buffered output, delivered
// exactly once by the process manager at exit. Exit events from different
// processes are serialized here, and routing waits out chat-lock contention
// instead of failing fast: the exit is the only delivery of the response.
func (o *Orchestrator) HandleProcessExit(sessionID, output string, exitCode int) {
	o.exitMu.Lock()
	defer o.exitMu.Unlock()

	ref, ok := o.takeSpawn(sessionID)
	if !ok {
		o.logger.Log("exit for unknown session %s ignored", sessionID)
		return
	}
	o.logger.Log("session %s exited with code %d (%d bytes)", sessionID, exitCode, len(output))

	if o.DetectSessionNotFoundError(output, ref.AgentID) && !ref.Retried {
		o.recoverAndRespawn(sessionID, ref)
		return
	}

	parsed := o.parser.Parse(output)
	o.persistTurnResult(ref, parsed)

	if ref.Role == roleSynthesis {
		o.locks.ClearSynthesisInProgress(ref.ChatID)
	}
	if parsed.Text == "" {
		o.logger.Log("session %s produced no response text", sessionID)
		return
	}

	route := func() error {
		switch ref.Role {
		case roleModerator, roleSynthesis:
			return o.RouteModeratorResponse(ref.ChatID, parsed.Text, ref.Manager, ref.ReadOnly)
		case roleParticipant:
			return o.RouteAgentResponse(ref.ChatID, ref.Participant, parsed.Text, ref.Manager)
		}
		return nil
	}
	err := route()
	for errors.Is(err, ErrLockContention) {
		time.Sleep(o.lockRetryDelay)
		err = route()
	}
	if err != nil {
		o.logger.Log("routing response for session %s: %v", sessionID, err)
	}
}

// persistTurnResult stores the agent-session id and usage counters an
// agent reported for a finished turn.
func (o *Orchestrator) persistTurnResult(ref spawnRef, parsed proc.ParsedOutput) {
	switch ref.Role {
	case roleModerator, roleSynthesis:
		if parsed.AgentSessionID == "" {
			return
		}
		if _, err := o.store.UpdateChat(ref.ChatID, func(chat *models.GroupChat) {
			chat.ModeratorSessionID = parsed.AgentSessionID
		}); err != nil {
			o.logger.Log("store moderator session id: %v", err)
		}
	case roleParticipant:
		if err := o.store.UpdateParticipant(ref.ChatID, ref.Participant, func(p *models.Participant) {
			if parsed.AgentSessionID != "" {
				p.AgentSessionID = parsed.AgentSessionID
			}
			p.TokensUsed += parsed.TokensUsed
			p.Cost += parsed.Cost
			p.LastActive = time.Now()
		}); err != nil {
			o.logger.Log("store participant turn result: %v", err)
		}
	}
}

// recoverAndRespawn handles a session-not-found failure: the stale session
// id is cleared, a continuity context is rebuilt from the log, and the turn
// is retried once on the full-prompt path with a fresh session.
func (o *Orchestrator) recoverAndRespawn(sessionID string, ref spawnRef) {
	chat, err := o.loadChat(ref.ChatID)
	if err != nil {
		o.logger.Log("recovery load chat %s: %v", ref.ChatID, err)
		return
	}
	history, err := o.store.ReadLog(ref.ChatID)
	if err != nil {
		o.logger.Log("recovery read log %s: %v", ref.ChatID, err)
		return
	}

	switch ref.Role {
	case roleParticipant:
		if !o.InitiateSessionRecovery(ref.ChatID, ref.Participant) {
			return
		}
		history = trimTrailing(history, models.SenderModerator, ref.Instruction)
		chat, err = o.loadChat(ref.ChatID)
		if err != nil {
			return
		}
		recoveryCtx := o.BuildRecoveryContext(ref.ChatID, ref.Participant, o.recoveryMessages)
		target := delegationTarget{Name: ref.Participant, AgentID: ref.AgentID}
		if p := chat.FindParticipant(ref.Participant); p != nil {
			target.WorkDir = p.WorkDir
		}
		ref.Retried = true
		if err := o.respawnParticipant(chat, ref, target, history, recoveryCtx); err != nil {
			o.logger.Log("recovery respawn %s: %v", ref.Participant, err)
		}
	case roleModerator, roleSynthesis:
		if _, err := o.store.UpdateChat(ref.ChatID, func(c *models.GroupChat) {
			c.ModeratorSessionID = ""
		}); err != nil {
			o.logger.Log("clear moderator session id: %v", err)
			return
		}
		o.emitEvent(Event{
			Type:    EventSessionRecovered,
			ChatID:  ref.ChatID,
			Message: "cleared stale moderator session id",
		})
		chat.ModeratorSessionID = ""
		ref.Retried = true
		if err := o.spawnModerator(chat, ref.Manager, moderatorTurn{
			Role:        ref.Role,
			Instruction: ref.Instruction,
			History:     trimTrailing(history, models.SenderUser, ref.Instruction),
			ReadOnly:    ref.ReadOnly,
			Retried:     true,
		}); err != nil {
			o.logger.Log("recovery respawn moderator: %v", err)
		}
	}
}

// trimTrailing drops the final log entry when it is exactly the message a
// prompt already carries in its own section, so the instruction is not
// repeated inside the history block.
func trimTrailing(entries []models.ChatLogEntry, sender, content string) []models.ChatLogEntry {
	n := len(entries)
	if content != "" && n > 0 && entries[n-1].Sender == sender && entries[n-1].Content == content {
		return entries[:n-1]
	}
	return entries
}

// loadChat loads a chat and converts absence into ErrChatNotFound.
func (o *Orchestrator) loadChat(chatID string) (*models.GroupChat, error) {
	chat, err := o.store.LoadChat(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, fmt.Errorf("chat %s: %w", chatID, store.ErrChatNotFound)
	}
	return chat, nil
}

// appendLog appends a log entry and emits the logged event.
func (o *Orchestrator) appendLog(chatID string, entry models.ChatLogEntry) error {
	if err := o.store.AppendLogEntry(chatID, entry); err != nil {
		return fmt.Errorf("append log entry: %w", err)
	}
	o.emitEvent(Event{
		Type:        EventMessageLogged,
		ChatID:      chatID,
		Participant: entry.Sender,
	})
	return nil
}
