package brain

import "time"

// MemoryBuffer is the bounded conversation window a session reasons
// over. It keeps at most `window` turns; appending beyond capacity
// evicts the oldest turn first.
type MemoryBuffer struct {
	window int
	turns  []Message
}

// NewMemoryBuffer creates a buffer holding up to window turns. A window
// below 1 is clamped to 1.
func NewMemoryBuffer(window int) *MemoryBuffer {
	if window < 1 {
		window = 1
	}
	return &MemoryBuffer{
		window: window,
		turns:  make([]Message, 0, window),
	}
}

// Append records one turn, evicting the oldest when the window is full.
func (m *MemoryBuffer) Append(role, content string) {
	msg := Message{Role: role, Content: content, Timestamp: time.Now()}
	if len(m.turns) == m.window {
		copy(m.turns, m.turns[1:])
		m.turns[len(m.turns)-1] = msg
		return
	}
	m.turns = append(m.turns, msg)
}

// Turns returns a copy of the buffered turns, oldest first.
func (m *MemoryBuffer) Turns() []Message {
	out := make([]Message, len(m.turns))
	copy(out, m.turns)
	return out
}

// Len returns the number of buffered turns.
func (m *MemoryBuffer) Len() int {
	return len(m.turns)
}

// Window returns the configured capacity.
func (m *MemoryBuffer) Window() int {
	return m.window
}
