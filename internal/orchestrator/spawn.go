package orchestrator

import (
	"fmt"

	"github.com/pedramamini/Maestro-sub005/internal/agents"
	"github.com/pedramamini/Maestro-sub005/internal/mentions"
	"github.com/pedramamini/Maestro-sub005/internal/proc"
	"github.com/pedramamini/Maestro-sub005/internal/store"
	"github.com/pedramamini/Maestro-sub005/pkg/models"
)

// moderatorTurn carries everything needed to spawn one moderator turn.
type moderatorTurn struct {
	Role        spawnRole // roleModerator or roleSynthesis
	Instruction string
	History     []models.ChatLogEntry
	ReadOnly    bool
	Retried     bool
}

// delegationTarget is one resolved recipient of a moderator delegation.
type delegationTarget struct {
	Name    string
	AgentID string
	WorkDir string
	Remote  *proc.RemoteConfig
}

// spawnModerator starts a one-shot batch moderator subprocess for a user
// turn or a synthesis turn. Resume is used when a moderator agent-session
// id is stored and the agent supports it.
func (o *Orchestrator) spawnModerator(chat *models.GroupChat, pm proc.Manager, turn moderatorTurn) error {
	profile, ok := o.agents.Get(chat.ModeratorAgentID)
	if !ok {
		return fmt.Errorf("unknown moderator agent %q", chat.ModeratorAgentID)
	}

	resume := chat.ModeratorSessionID != "" && profile.SupportsResume()
	resumeID := ""
	if resume {
		resumeID = chat.ModeratorSessionID
	}

	var prompt string
	sessionID := chat.SessionID + "-moderator"
	eventType := EventModeratorSpawned
	if turn.Role == roleSynthesis {
		sessionID = chat.SessionID + "-synthesis"
		eventType = EventSynthesisStarted
		prompt = SynthesisPrompt(chat, turn.History, roundResponses(turn.History), turn.ReadOnly, resume)
	} else {
		prompt = ModeratorPrompt(chat, turn.History, turn.Instruction, turn.ReadOnly, resume)
	}

	cfg := proc.SpawnConfig{
		SessionID:      sessionID,
		Command:        profile.Command,
		Args:           buildArgs(profile, turn.ReadOnly, resumeID),
		Prompt:         prompt,
		ReadOnlyMode:   turn.ReadOnly,
		AgentSessionID: resumeID,
	}

	o.trackSpawn(sessionID, spawnRef{
		ChatID:      chat.ID,
		Role:        turn.Role,
		AgentID:     chat.ModeratorAgentID,
		Manager:     pm,
		ReadOnly:    turn.ReadOnly,
		Instruction: turn.Instruction,
		Retried:     turn.Retried,
	})
	if _, err := pm.Spawn(cfg); err != nil {
		o.takeSpawn(sessionID)
		return fmt.Errorf("spawn moderator: %w", err)
	}

	o.emitEvent(Event{
		Type:    eventType,
		ChatID:  chat.ID,
		AgentID: chat.ModeratorAgentID,
	})
	return nil
}

// spawnSynthesis starts the moderator's synthesis turn for a completed
// delegation round. The synthesis guard must already be set by the caller.
func (o *Orchestrator) spawnSynthesis(chatID string, pm proc.Manager) error {
	chat, err := o.loadChat(chatID)
	if err != nil {
		return err
	}
	history, err := o.store.ReadLog(chatID)
	if err != nil {
		return fmt.Errorf("read chat log: %w", err)
	}
	return o.spawnModerator(chat, pm, moderatorTurn{
		Role:    roleSynthesis,
		History: history,
	})
}

// resolveDelegationTargets maps mention tokens to spawnable participants in
// priority order: an existing participant of the chat, an external session
// known to the host, then a recognized-and-available agent type spawned
// fresh. Unavailable agent type mentions and unknown tokens are silently
// ignored. Resolution may add new participants to the chat.
func (o *Orchestrator) resolveDelegationTargets(chat *models.GroupChat, tokens []string) ([]delegationTarget, error) {
	var targets []delegationTarget
	seen := make(map[string]bool)
	add := func(t delegationTarget) {
		if !seen[t.Name] {
			seen[t.Name] = true
			targets = append(targets, t)
		}
	}

	var external []ExternalSession
	if o.externalSessions != nil {
		external = o.externalSessions()
	}

	for _, tok := range tokens {
		if target, ok := matchParticipant(chat, tok); ok {
			add(target)
			continue
		}

		if target, ok := o.matchExternalSession(chat, tok, external); ok {
			add(target)
			continue
		}

		profile := o.agents.Detect(tok)
		if profile == nil {
			continue
		}
		if !o.agents.Available(profile.ID) {
			// Mentioning an uninstalled agent type never adds a participant.
			o.logger.Log("agent type %s mentioned but not available", profile.ID)
			continue
		}
		name := profile.DisplayName
		if chat.FindParticipant(name) == nil {
			if err := o.addParticipant(chat.ID, models.Participant{
				Name:    name,
				AgentID: profile.ID,
				WorkDir: o.defaultWorkDir,
			}); err != nil {
				return nil, err
			}
		}
		add(delegationTarget{Name: name, AgentID: profile.ID, WorkDir: o.defaultWorkDir})
	}
	return targets, nil
}

// matchParticipant resolves a token against the chat's existing participants.
func matchParticipant(chat *models.GroupChat, tok string) (delegationTarget, bool) {
	for i := range chat.Participants {
		p := &chat.Participants[i]
		if mentions.MatchesName(tok, p.Name) {
			return delegationTarget{Name: p.Name, AgentID: p.AgentID, WorkDir: p.WorkDir}, true
		}
	}
	return delegationTarget{}, false
}

// matchExternalSession resolves a token against the host's known sessions,
// adding a matched session as a chat participant. The session carries its
// own working directory and optional remote-execution configuration.
func (o *Orchestrator) matchExternalSession(chat *models.GroupChat, tok string, external []ExternalSession) (delegationTarget, bool) {
	for _, es := range external {
		if !mentions.MatchesName(tok, es.Name) {
			continue
		}
		if chat.FindParticipant(es.Name) == nil {
			if err := o.addParticipant(chat.ID, models.Participant{
				Name:    es.Name,
				AgentID: es.AgentID,
				WorkDir: es.WorkDir,
			}); err != nil {
				o.logger.Log("add external participant %s: %v", es.Name, err)
				continue
			}
		}
		return delegationTarget{
			Name:    es.Name,
			AgentID: es.AgentID,
			WorkDir: es.WorkDir,
			Remote:  es.Remote,
		}, true
	}
	return delegationTarget{}, false
}

// addParticipant adds a participant and emits the added event.
func (o *Orchestrator) addParticipant(chatID string, p models.Participant) error {
	if err := o.store.AddParticipant(chatID, p); err != nil {
		return fmt.Errorf("add participant %q: %w", p.Name, err)
	}
	o.emitEvent(Event{
		Type:        EventParticipantAdded,
		ChatID:      chatID,
		Participant: p.Name,
		AgentID:     p.AgentID,
	})
	return nil
}

// spawnParticipant starts a one-shot batch subprocess delivering a
// delegated instruction to one participant.
func (o *Orchestrator) spawnParticipant(chat *models.GroupChat, pm proc.Manager, target delegationTarget, instruction string, history []models.ChatLogEntry, readOnly bool, recoveryContext string) error {
	participant := chat.FindParticipant(target.Name)
	if participant == nil {
		return fmt.Errorf("participant %q: %w", target.Name, store.ErrParticipantNotFound)
	}
	profile, ok := o.agents.Get(participant.AgentID)
	if !ok {
		return fmt.Errorf("unknown agent %q for participant %q", participant.AgentID, target.Name)
	}

	resume := participant.AgentSessionID != "" && profile.SupportsResume() && recoveryContext == ""
	resumeID := ""
	if resume {
		resumeID = participant.AgentSessionID
	}

	prompt := DelegationPrompt(chat, history, target.Name, instruction, readOnly, resume, recoveryContext)
	cfg := proc.SpawnConfig{
		SessionID:      participant.SessionID,
		Command:        profile.Command,
		Args:           buildArgs(profile, readOnly, resumeID),
		Prompt:         prompt,
		WorkDir:        target.WorkDir,
		ReadOnlyMode:   readOnly,
		AgentSessionID: resumeID,
	}
	if target.Remote != nil && o.wrapRemote != nil {
		cfg = o.wrapRemote(cfg, *target.Remote)
	}

	o.trackSpawn(participant.SessionID, spawnRef{
		ChatID:      chat.ID,
		Role:        roleParticipant,
		Participant: target.Name,
		AgentID:     participant.AgentID,
		Manager:     pm,
		ReadOnly:    readOnly,
		Instruction: instruction,
		Retried:     recoveryContext != "",
	})
	if _, err := pm.Spawn(cfg); err != nil {
		o.takeSpawn(participant.SessionID)
		return fmt.Errorf("spawn participant %q: %w", target.Name, err)
	}

	o.emitEvent(Event{
		Type:        EventParticipantSpawned,
		ChatID:      chat.ID,
		Participant: target.Name,
		AgentID:     participant.AgentID,
	})
	return nil
}

// respawnParticipant retries a participant turn after session recovery,
// always on the full-prompt path with the recovery context injected.
func (o *Orchestrator) respawnParticipant(chat *models.GroupChat, ref spawnRef, target delegationTarget, history []models.ChatLogEntry, recoveryContext string) error {
	if recoveryContext == "" {
		// Still force the fresh-session path even when the log held nothing
		// to rebuild from.
		recoveryContext = "Your previous session was unavailable; you have been given a fresh session.\n"
	}
	return o.spawnParticipant(chat, ref.Manager, target, ref.Instruction, history, ref.ReadOnly, recoveryContext)
}

// buildArgs assembles subprocess arguments from a capability profile. The
// resume-argument shape is entirely the profile's concern.
func buildArgs(profile *agents.Profile, readOnly bool, resumeSessionID string) []string {
	args := append([]string(nil), profile.BatchArgs...)
	args = append(args, profile.OutputArgs...)
	if readOnly {
		args = append(args, profile.ReadOnlyArgs...)
	}
	if resumeSessionID != "" {
		args = append(args, profile.BuildResumeArgs(resumeSessionID)...)
	}
	return args
}

// roundResponses returns the trailing participant responses of the current
// round: every entry after the last moderator or user entry.
func roundResponses(entries []models.ChatLogEntry) []models.ChatLogEntry {
	for i := len(entries) - 1; i >= 0; i-- {
		sender := entries[i].Sender
		if sender == models.SenderModerator || sender == models.SenderUser {
			return entries[i+1:]
		}
	}
	return entries
}
