package server

import "sync"

// CommandHistory is the bounded buffer of recently executed commands.
// Once a checkpoint has captured the world the buffer has served its
// purpose, so the dumper resets it after every hand-off.
type CommandHistory struct {
	mu      sync.Mutex
	max     int
	entries []string
}

// NewCommandHistory creates a history holding at most max entries
func NewCommandHistory(max int) *CommandHistory {
	return &CommandHistory{max: max}
}

// Add records a command, evicting the oldest entry when full
func (h *CommandHistory) Add(cmd string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.max > 0 && len(h.entries) >= h.max {
		h.entries = h.entries[1:]
	}
	h.entries = append(h.entries, cmd)
}

// Entries returns a copy of the buffered commands, oldest first
func (h *CommandHistory) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}

// Reset drops everything in the buffer
func (h *CommandHistory) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}
