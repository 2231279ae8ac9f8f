package brain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBufferEvictsOldestFirst(t *testing.T) {
	m := NewMemoryBuffer(3)

	for i := 0; i < 5; i++ {
		m.Append(RoleUser, fmt.Sprintf("mensaje %d", i))
	}

	turns := m.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, "mensaje 2", turns[0].Content)
	assert.Equal(t, "mensaje 4", turns[2].Content)
}

func TestMemoryBufferClampsWindow(t *testing.T) {
	m := NewMemoryBuffer(0)
	assert.Equal(t, 1, m.Window())

	m.Append(RoleUser, "primero")
	m.Append(RoleUser, "segundo")
	turns := m.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, "segundo", turns[0].Content)
}

func TestMemoryBufferTurnsReturnsCopy(t *testing.T) {
	m := NewMemoryBuffer(5)
	m.Append(RoleUser, "original")

	turns := m.Turns()
	turns[0].Content = "mutado"

	assert.Equal(t, "original", m.Turns()[0].Content)
}

func TestMemoryBufferEmpty(t *testing.T) {
	m := NewMemoryBuffer(10)
	assert.Zero(t, m.Len())
	assert.Empty(t, m.Turns())
}
