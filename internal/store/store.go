// Package store persists group chats as JSON metadata documents plus
// append-only JSONL log and history files.
//
// All mutations for a single chat are serialized through a per-chat lock so
// concurrent updates never interleave partial writes. Metadata writes go
// through a write-temp-then-rename sequence; log and history files are
// append-only and single-writer per chat under the same serialization.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pedramamini/Maestro-sub005/pkg/models"
)

// Store manages group chat persistence under a base directory.
type Store struct {
	baseDir string

	// mu guards chatLocks. Each chat gets its own lock so writes for one
	// chat serialize without blocking writes for another. A delete takes
	// the same lock, so it waits for any write already queued for the chat.
	mu        sync.Mutex
	chatLocks map[string]*sync.Mutex
}

// New creates a Store rooted at baseDir, creating the directory tree if
// needed.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, "chats"), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{
		baseDir:   baseDir,
		chatLocks: make(map[string]*sync.Mutex),
	}, nil
}

// BaseDir returns the store's root directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// chatLock returns the per-chat write lock, creating it on first use.
func (s *Store) chatLock(chatID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.chatLocks[chatID]
	if !ok {
		l = &sync.Mutex{}
		s.chatLocks[chatID] = l
	}
	return l
}

func (s *Store) metaPath(chatID string) string {
	return filepath.Join(s.baseDir, "chats", chatID+".json")
}

func (s *Store) logPath(chatID string) string {
	return filepath.Join(s.baseDir, "chats", chatID+".log.jsonl")
}

func (s *Store) historyPath(chatID string) string {
	return filepath.Join(s.baseDir, "chats", chatID+".history.jsonl")
}

// CreateChat creates and persists a new group chat. The chat id and routing
// session prefix are generated here; the moderator agent-session id starts
// empty and is filled in after the moderator's first turn.
func (s *Store) CreateChat(name, moderatorAgentID string) (*models.GroupChat, error) {
	id := uuid.New().String()
	now := time.Now()

	chat := &models.GroupChat{
		ID:               id,
		Name:             name,
		ModeratorAgentID: moderatorAgentID,
		SessionID:        "groupchat-" + shortID(id),
		Participants:     []models.Participant{},
		LogPath:          s.logPath(id),
		ImagesDir:        filepath.Join(s.baseDir, "chats", id+"-images"),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	l := s.chatLock(id)
	l.Lock()
	defer l.Unlock()

	if err := s.writeChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// LoadChat loads a chat by id. Returns (nil, nil) if the chat does not exist.
func (s *Store) LoadChat(id string) (*models.GroupChat, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read chat %s: %w", id, err)
	}

	var chat models.GroupChat
	if err := json.Unmarshal(data, &chat); err != nil {
		return nil, fmt.Errorf("parse chat %s: %w", id, err)
	}
	return &chat, nil
}

// UpdateChat applies mutate to the stored chat and persists the result.
// Returns ErrChatNotFound if the chat does not exist. The mutation runs
// under the chat's write lock, so concurrent updates serialize.
func (s *Store) UpdateChat(id string, mutate func(*models.GroupChat)) (*models.GroupChat, error) {
	l := s.chatLock(id)
	l.Lock()
	defer l.Unlock()

	chat, err := s.LoadChat(id)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, fmt.Errorf("update chat %s: %w", id, ErrChatNotFound)
	}

	mutate(chat)
	chat.UpdatedAt = time.Now()

	if err := s.writeChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// AddParticipant adds a participant to the chat. The name must be unique
// within the chat (case-sensitive); ErrDuplicateParticipant otherwise.
func (s *Store) AddParticipant(chatID string, p models.Participant) error {
	var dup bool
	_, err := s.UpdateChat(chatID, func(chat *models.GroupChat) {
		if chat.FindParticipant(p.Name) != nil {
			dup = true
			return
		}
		if p.SessionID == "" {
			p.SessionID = chat.SessionID + "-" + shortID(uuid.New().String())
		}
		if p.LastActive.IsZero() {
			p.LastActive = time.Now()
		}
		chat.Participants = append(chat.Participants, p)
	})
	if err != nil {
		return err
	}
	if dup {
		return fmt.Errorf("add participant %q: %w", p.Name, ErrDuplicateParticipant)
	}
	return nil
}

// UpdateParticipant applies mutate to the named participant and persists the
// chat. Returns ErrParticipantNotFound if the name is absent.
func (s *Store) UpdateParticipant(chatID, name string, mutate func(*models.Participant)) error {
	var found bool
	_, err := s.UpdateChat(chatID, func(chat *models.GroupChat) {
		if p := chat.FindParticipant(name); p != nil {
			found = true
			mutate(p)
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("update participant %q: %w", name, ErrParticipantNotFound)
	}
	return nil
}

// RemoveParticipant removes the named participant from the chat.
// Returns ErrParticipantNotFound if the name is absent.
func (s *Store) RemoveParticipant(chatID, name string) error {
	var found bool
	_, err := s.UpdateChat(chatID, func(chat *models.GroupChat) {
		for i := range chat.Participants {
			if chat.Participants[i].Name == name {
				chat.Participants = append(chat.Participants[:i], chat.Participants[i+1:]...)
				found = true
				return
			}
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("remove participant %q: %w", name, ErrParticipantNotFound)
	}
	return nil
}

// DeleteChat removes a chat's metadata, log, history and images directory.
// Deleting a nonexistent chat is a no-op. The delete waits for any write
// already queued for the chat before removing its storage.
func (s *Store) DeleteChat(id string) error {
	l := s.chatLock(id)
	l.Lock()
	defer l.Unlock()

	for _, path := range []string{s.metaPath(id), s.logPath(id), s.historyPath(id)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete chat %s: %w", id, err)
		}
	}
	if err := os.RemoveAll(filepath.Join(s.baseDir, "chats", id+"-images")); err != nil {
		return fmt.Errorf("delete chat images %s: %w", id, err)
	}

	s.mu.Lock()
	delete(s.chatLocks, id)
	s.mu.Unlock()
	return nil
}

// ListChats returns all persisted chats ordered by creation time.
func (s *Store) ListChats() ([]*models.GroupChat, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, "chats"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list chats: %w", err)
	}

	var chats []*models.GroupChat
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		chat, err := s.LoadChat(strings.TrimSuffix(name, ".json"))
		if err != nil || chat == nil {
			// Skip unreadable entries rather than failing the whole listing.
			continue
		}
		chats = append(chats, chat)
	}

	for i := 1; i < len(chats); i++ {
		for j := i; j > 0 && chats[j].CreatedAt.Before(chats[j-1].CreatedAt); j-- {
			chats[j], chats[j-1] = chats[j-1], chats[j]
		}
	}
	return chats, nil
}

// writeChat persists chat metadata atomically. Caller must hold the chat lock.
func (s *Store) writeChat(chat *models.GroupChat) error {
	data, err := json.MarshalIndent(chat, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chat %s: %w", chat.ID, err)
	}
	if err := writeFileAtomic(s.metaPath(chat.ID), data); err != nil {
		return fmt.Errorf("write chat %s: %w", chat.ID, err)
	}
	return nil
}

// shortID returns the first uuid segment, used for readable routing prefixes.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
