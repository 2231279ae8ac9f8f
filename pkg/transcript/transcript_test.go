package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacifico/agora/pkg/brain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func msg(role, content string) brain.Message {
	return brain.Message{Role: role, Content: content, Timestamp: time.Now()}
}

func TestRecordTurnAndLoad(t *testing.T) {
	s := newTestStore(t)

	err := s.RecordTurn("user-1", msg(brain.RoleUser, "hola"), msg(brain.RoleAssistant, "¡Hola!"))
	require.NoError(t, err)
	err = s.RecordTurn("user-1", msg(brain.RoleUser, "adiós"), msg(brain.RoleAssistant, "Hasta pronto."))
	require.NoError(t, err)

	entries, err := s.Load("user-1")
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "user-1", entries[0].UserID)
	assert.Equal(t, brain.RoleUser, entries[0].Message.Role)
	assert.Equal(t, "hola", entries[0].Message.Content)
	assert.Equal(t, "Hasta pronto.", entries[3].Message.Content)
}

func TestLoadMissingTranscriptIsEmpty(t *testing.T) {
	s := newTestStore(t)

	entries, err := s.Load("nadie")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAppendRejectsInvalidMessages(t *testing.T) {
	s := newTestStore(t)

	err := s.Append("user-1", brain.Message{Role: "", Content: "x"})
	assert.Error(t, err)

	err = s.Append("user-1", brain.Message{Role: brain.RoleUser, Content: ""})
	assert.Error(t, err)
}

func TestValidateUserID(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name   string
		userID string
	}{
		{"empty", ""},
		{"dotdot", "../etc/passwd"},
		{"slash", "a/b"},
		{"backslash", "a\\b"},
		{"null byte", "a\x00b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Append(tt.userID, msg(brain.RoleUser, "hola"))
			assert.Error(t, err)
		})
	}
}

func TestLoadSkipsCorruptedLines(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Append("user-1", msg(brain.RoleUser, "primera")))

	path := filepath.Join(dir, "user-1.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	require.NoError(t, err)
	_, err = f.WriteString("{esto no es json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, s.Append("user-1", msg(brain.RoleAssistant, "segunda")))

	entries, err := s.Load("user-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "primera", entries[0].Message.Content)
	assert.Equal(t, "segunda", entries[1].Message.Content)
}

func TestRepairDropsCorruptedLines(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Append("user-1", msg(brain.RoleUser, "válida")))

	path := filepath.Join(dir, "user-1.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	require.NoError(t, err)
	_, err = f.WriteString("basura\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, s.Repair("user-1"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "basura")
	assert.Equal(t, 1, strings.Count(string(raw), "\n"))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteAndList(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Append("ana", msg(brain.RoleUser, "hola")))
	require.NoError(t, s.Append("luis", msg(brain.RoleUser, "hola")))

	users, err := s.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ana", "luis"}, users)

	require.NoError(t, s.Delete("ana"))
	require.NoError(t, s.Delete("ana"))

	users, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"luis"}, users)
}
