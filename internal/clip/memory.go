package clip

import "sync"

// Memory is an in-process Pasteboard. It records every mutation so callers
// can assert on what happened to it.
type Memory struct {
	mu     sync.Mutex
	text   string
	writes int
	clears int
}

// NewMemory returns a Memory pasteboard holding text.
func NewMemory(text string) *Memory {
	return &Memory{text: text}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Clear() error {
	m.mu.Lock()
	m.text = ""
	m.clears++
	m.mu.Unlock()
	return nil
}

func (m *Memory) WriteText(s string) error {
	m.mu.Lock()
	m.text = s
	m.writes++
	m.mu.Unlock()
	return nil
}

func (m *Memory) ReadText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

// Mutations returns the number of Clear and WriteText calls so far.
func (m *Memory) Mutations() (clears, writes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears, m.writes
}
