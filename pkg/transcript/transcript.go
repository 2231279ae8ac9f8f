// Package transcript persists conversation turns as per-user JSONL
// files. The transcript is an append-only audit record, separate from
// the in-memory window a session reasons over.
package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/pacifico/agora/pkg/brain"
)

// Entry is one logged turn with its owning user.
type Entry struct {
	UserID  string        `json:"user_id"`
	Message brain.Message `json:"message"`
}

// Store manages transcript persistence using JSONL format.
type Store struct {
	dir        string
	writeLocks map[string]*sync.Mutex
	locksMu    sync.RWMutex
}

// NewStore creates a transcript store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".agora", "transcripts")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create transcripts directory: %w", err)
	}

	s := &Store{
		dir:        dir,
		writeLocks: make(map[string]*sync.Mutex),
	}

	log.Info().Str("dir", dir).Msg("Transcript store initialized")
	return s, nil
}

// validateUserID rejects identifiers that could escape the store
// directory.
func (s *Store) validateUserID(userID string) error {
	if userID == "" {
		return fmt.Errorf("user id cannot be empty")
	}
	if strings.Contains(userID, "..") {
		return fmt.Errorf("user id cannot contain '..'")
	}
	if strings.ContainsAny(userID, "/\\") {
		return fmt.Errorf("user id cannot contain path separators")
	}
	if strings.Contains(userID, "\x00") {
		return fmt.Errorf("user id cannot contain null bytes")
	}
	return nil
}

func (s *Store) transcriptPath(userID string) string {
	return filepath.Join(s.dir, userID+".jsonl")
}

func (s *Store) getWriteLock(userID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	if lock, exists := s.writeLocks[userID]; exists {
		return lock
	}

	lock := &sync.Mutex{}
	s.writeLocks[userID] = lock
	return lock
}

func (s *Store) releaseWriteLock(userID string) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	delete(s.writeLocks, userID)
}

// RecordTurn appends the user utterance and the assistant answer of one
// completed turn. It satisfies brain.TurnRecorder.
func (s *Store) RecordTurn(userID string, user, assistant brain.Message) error {
	return s.Append(userID, user, assistant)
}

// Append writes messages to a user's transcript as JSON lines. The file
// is created on first write with restricted permissions.
func (s *Store) Append(userID string, messages ...brain.Message) error {
	if err := s.validateUserID(userID); err != nil {
		return err
	}

	for _, msg := range messages {
		if msg.Role == "" {
			return fmt.Errorf("message role cannot be empty")
		}
		if msg.Content == "" {
			return fmt.Errorf("message content cannot be empty")
		}
	}

	lock := s.getWriteLock(userID)
	lock.Lock()
	defer lock.Unlock()

	file, err := os.OpenFile(s.transcriptPath(userID), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open transcript file: %w", err)
	}
	defer file.Close()

	for _, msg := range messages {
		data, err := json.Marshal(Entry{UserID: userID, Message: msg})
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		if _, err := file.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write message: %w", err)
		}
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}

	log.Debug().Str("user_id", userID).Int("messages", len(messages)).Msg("Turn recorded")
	return nil
}

// Load reads a user's transcript, oldest first. Corrupted lines are
// skipped, not fatal; a missing transcript is an empty one.
func (s *Store) Load(userID string) ([]Entry, error) {
	if err := s.validateUserID(userID); err != nil {
		return nil, err
	}

	path := s.transcriptPath(userID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return []Entry{}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript file: %w", err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}

		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			log.Warn().Str("user_id", userID).Int("line", lineNum).Err(err).Msg("Failed to parse line, skipping")
			continue
		}
		if entry.Message.Role == "" || entry.Message.Content == "" {
			log.Warn().Str("user_id", userID).Int("line", lineNum).Msg("Invalid entry, skipping")
			continue
		}

		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transcript file: %w", err)
	}
	return entries, nil
}

// Delete removes a user's transcript. Deleting a missing transcript is
// not an error.
func (s *Store) Delete(userID string) error {
	if err := s.validateUserID(userID); err != nil {
		return err
	}

	lock := s.getWriteLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(s.transcriptPath(userID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete transcript file: %w", err)
	}

	s.releaseWriteLock(userID)
	log.Info().Str("user_id", userID).Msg("Transcript deleted")
	return nil
}

// List returns the user ids that have a transcript on disk.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read transcripts directory: %w", err)
	}

	var users []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		users = append(users, strings.TrimSuffix(name, ".jsonl"))
	}
	return users, nil
}

// Repair rewrites a transcript keeping only its parseable lines. The
// replacement is atomic: a temp file swapped in by rename.
func (s *Store) Repair(userID string) error {
	entries, err := s.Load(userID)
	if err != nil {
		return err
	}

	lock := s.getWriteLock(userID)
	lock.Lock()
	defer lock.Unlock()

	path := s.transcriptPath(userID)
	tempPath := path + ".tmp"

	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			file.Close()
			os.Remove(tempPath)
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
		if _, err := file.Write(append(data, '\n')); err != nil {
			file.Close()
			os.Remove(tempPath)
			return fmt.Errorf("failed to write entry: %w", err)
		}
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}
	file.Close()

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace transcript file: %w", err)
	}

	log.Info().Str("user_id", userID).Int("entries", len(entries)).Msg("Transcript repaired")
	return nil
}

// Close releases the per-user write locks.
func (s *Store) Close() error {
	s.locksMu.Lock()
	s.writeLocks = make(map[string]*sync.Mutex)
	s.locksMu.Unlock()
	return nil
}
