package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pedramamini/Maestro-sub005/pkg/models"
)

// AppendLogEntry appends one entry to the chat's append-only log. The write
// is serialized through the chat's write lock. A zero timestamp is filled
// with the current time.
func (s *Store) AppendLogEntry(chatID string, entry models.ChatLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	l := s.chatLock(chatID)
	l.Lock()
	defer l.Unlock()

	return appendJSONL(s.logPath(chatID), entry)
}

// ReadLog returns the chat's log entries in append order. A missing log file
// yields an empty slice. Malformed lines are skipped, never aborting the read.
func (s *Store) ReadLog(chatID string) ([]models.ChatLogEntry, error) {
	return ReadLogFile(s.logPath(chatID))
}

// ReadLogFile reads a chat log from an explicit path. Used by the store and
// by log followers that only know the chat's LogPath.
func ReadLogFile(path string) ([]models.ChatLogEntry, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	var entries []models.ChatLogEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry models.ChatLogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			// Skip malformed lines rather than aborting the read.
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("read log: %w", err)
	}
	return entries, nil
}

// AppendHistory appends one annotated entry to the chat's history file.
func (s *Store) AppendHistory(chatID string, entry models.HistoryEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	l := s.chatLock(chatID)
	l.Lock()
	defer l.Unlock()

	return appendJSONL(s.historyPath(chatID), entry)
}

// ReadHistory returns the chat's annotated history entries in append order,
// skipping malformed lines.
func (s *Store) ReadHistory(chatID string) ([]models.HistoryEntry, error) {
	f, err := os.Open(s.historyPath(chatID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	var entries []models.HistoryEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry models.HistoryEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

// appendJSONL marshals v and appends it as one line to path.
func appendJSONL(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open for append: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}
