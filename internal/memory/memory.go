// Package memory keeps the bounded conversation transcript for a session.
// The window holds the most recent turns in arrival order and evicts the
// oldest beyond its capacity. Process-lifetime only, no persistence.
package memory

import (
	"fmt"
	"sync"

	"github.com/ayamoughit/Tp4testMoughit/internal/llm"
)

// ErrInvalidConfig indicates invalid memory configuration.
var ErrInvalidConfig = fmt.Errorf("invalid memory configuration")

// Turn is one message of the transcript. Seq increases monotonically over
// the session, surviving eviction, so callers can tell how much history
// has scrolled away.
type Turn struct {
	Role llm.Role
	Text string
	Seq  uint64
}

// Window is a FIFO-bounded transcript. Safe for concurrent use.
type Window struct {
	mu    sync.Mutex
	max   int
	seq   uint64
	turns []Turn
}

// NewWindow creates a Window holding at most max turns.
func NewWindow(max int) (*Window, error) {
	if max <= 0 {
		return nil, fmt.Errorf("%w: window size must be positive, got %d", ErrInvalidConfig, max)
	}
	return &Window{max: max}, nil
}

// Append records a turn, evicting the oldest when the window is full.
func (w *Window) Append(role llm.Role, text string) Turn {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.seq++
	turn := Turn{Role: role, Text: text, Seq: w.seq}
	w.turns = append(w.turns, turn)
	if len(w.turns) > w.max {
		w.turns = w.turns[len(w.turns)-w.max:]
	}
	return turn
}

// Snapshot returns the retained turns oldest first. The slice is a copy;
// later appends do not affect it.
func (w *Window) Snapshot() []Turn {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Turn, len(w.turns))
	copy(out, w.turns)
	return out
}

// Len reports the number of retained turns.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.turns)
}

// Clear discards all retained turns. Seq keeps counting from where it was.
func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.turns = nil
}
