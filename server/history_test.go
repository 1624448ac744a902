package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandHistoryBounds(t *testing.T) {
	h := NewCommandHistory(3)
	for _, cmd := range []string{"look", "go north", "say hi", "inventory"} {
		h.Add(cmd)
	}
	assert.Equal(t, []string{"go north", "say hi", "inventory"}, h.Entries())
}

func TestCommandHistoryReset(t *testing.T) {
	h := NewCommandHistory(10)
	h.Add("look")
	h.Reset()
	assert.Empty(t, h.Entries())

	h.Add("again")
	assert.Equal(t, []string{"again"}, h.Entries())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Positive(t, cfg.CheckpointInterval)
	assert.False(t, cfg.UnforkedCheckpoints)
	assert.NotEmpty(t, cfg.ExecBinRoot)
}
