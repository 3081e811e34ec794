package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pedramamini/Maestro-sub005/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestCreateAndLoadChat(t *testing.T) {
	s := newTestStore(t)

	chat, err := s.CreateChat("refactor planning", "claude-code")
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if chat.ID == "" {
		t.Error("chat id should be generated")
	}
	if chat.SessionID == "" {
		t.Error("routing session id should be generated")
	}
	if chat.ModeratorSessionID != "" {
		t.Error("moderator agent session id should start empty")
	}

	loaded, err := s.LoadChat(chat.ID)
	if err != nil {
		t.Fatalf("LoadChat: %v", err)
	}
	if loaded == nil {
		t.Fatal("LoadChat returned nil for existing chat")
	}
	if loaded.Name != "refactor planning" || loaded.ModeratorAgentID != "claude-code" {
		t.Errorf("loaded chat = %+v", loaded)
	}
}

func TestLoadChatMissing(t *testing.T) {
	s := newTestStore(t)
	chat, err := s.LoadChat("no-such-chat")
	if err != nil {
		t.Fatalf("LoadChat: %v", err)
	}
	if chat != nil {
		t.Error("missing chat should load as nil without error")
	}
}

func TestUpdateChatNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpdateChat("no-such-chat", func(c *models.GroupChat) {})
	if !errors.Is(err, ErrChatNotFound) {
		t.Errorf("err = %v, want ErrChatNotFound", err)
	}
}

func TestAddParticipant(t *testing.T) {
	s := newTestStore(t)
	chat, _ := s.CreateChat("c", "claude-code")

	if err := s.AddParticipant(chat.ID, models.Participant{Name: "Worker", AgentID: "codex"}); err != nil {
		t.Fatalf("AddParticipant: %v", err)
	}

	loaded, _ := s.LoadChat(chat.ID)
	p := loaded.FindParticipant("Worker")
	if p == nil {
		t.Fatal("participant not persisted")
	}
	if p.SessionID == "" {
		t.Error("routing session id should be assigned")
	}
	if p.AgentSessionID != "" {
		t.Error("agent session id should start empty")
	}

	err := s.AddParticipant(chat.ID, models.Participant{Name: "Worker", AgentID: "gemini"})
	if !errors.Is(err, ErrDuplicateParticipant) {
		t.Errorf("duplicate add err = %v, want ErrDuplicateParticipant", err)
	}
}

func TestRemoveParticipant(t *testing.T) {
	s := newTestStore(t)
	chat, _ := s.CreateChat("c", "claude-code")
	s.AddParticipant(chat.ID, models.Participant{Name: "Worker", AgentID: "codex"})

	if err := s.RemoveParticipant(chat.ID, "Worker"); err != nil {
		t.Fatalf("RemoveParticipant: %v", err)
	}
	err := s.RemoveParticipant(chat.ID, "Worker")
	if !errors.Is(err, ErrParticipantNotFound) {
		t.Errorf("err = %v, want ErrParticipantNotFound", err)
	}
}

func TestUpdateParticipant(t *testing.T) {
	s := newTestStore(t)
	chat, _ := s.CreateChat("c", "claude-code")
	s.AddParticipant(chat.ID, models.Participant{Name: "Worker", AgentID: "codex"})

	if err := s.UpdateParticipant(chat.ID, "Worker", func(p *models.Participant) {
		p.AgentSessionID = "sess-1"
		p.TokensUsed = 42
	}); err != nil {
		t.Fatalf("UpdateParticipant: %v", err)
	}

	loaded, _ := s.LoadChat(chat.ID)
	p := loaded.FindParticipant("Worker")
	if p.AgentSessionID != "sess-1" || p.TokensUsed != 42 {
		t.Errorf("participant = %+v", p)
	}

	err := s.UpdateParticipant(chat.ID, "Ghost", func(p *models.Participant) {})
	if !errors.Is(err, ErrParticipantNotFound) {
		t.Errorf("err = %v, want ErrParticipantNotFound", err)
	}
}

func TestDeleteChatIdempotent(t *testing.T) {
	s := newTestStore(t)
	chat, _ := s.CreateChat("c", "claude-code")
	s.AppendLogEntry(chat.ID, models.ChatLogEntry{Sender: models.SenderUser, Content: "hi"})

	if err := s.DeleteChat(chat.ID); err != nil {
		t.Fatalf("DeleteChat: %v", err)
	}
	loaded, _ := s.LoadChat(chat.ID)
	if loaded != nil {
		t.Error("chat should be gone after delete")
	}
	if err := s.DeleteChat(chat.ID); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
}

func TestListChats(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.CreateChat("first", "claude-code")
	b, _ := s.CreateChat("second", "claude-code")

	chats, err := s.ListChats()
	if err != nil {
		t.Fatalf("ListChats: %v", err)
	}
	if len(chats) != 2 {
		t.Fatalf("len = %d, want 2", len(chats))
	}
	ids := map[string]bool{chats[0].ID: true, chats[1].ID: true}
	if !ids[a.ID] || !ids[b.ID] {
		t.Errorf("listed ids = %v", ids)
	}
	if chats[0].CreatedAt.After(chats[1].CreatedAt) {
		t.Error("chats should be sorted by creation time")
	}
}

func TestListChatsSkipsUnreadable(t *testing.T) {
	s := newTestStore(t)
	chat, _ := s.CreateChat("good", "claude-code")

	bad := filepath.Join(s.BaseDir(), "chats", "bad.json")
	if err := os.WriteFile(bad, []byte("{{not json"), 0o644); err != nil {
		t.Fatalf("write bad meta: %v", err)
	}

	chats, err := s.ListChats()
	if err != nil {
		t.Fatalf("ListChats: %v", err)
	}
	if len(chats) != 1 || chats[0].ID != chat.ID {
		t.Errorf("chats = %v", chats)
	}
}
