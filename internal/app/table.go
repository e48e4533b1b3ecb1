package app

import (
	"sync"

	"github.com/bft-labs/viscactl/internal/domain"
	"github.com/bft-labs/viscactl/pkg/visca"
)

// Table is the ordered command list the scheduler cycles through.
// The cursor always indexes a valid entry when the table is non-empty.
type Table struct {
	mu       sync.RWMutex
	commands []visca.Command
	cursor   int
	// gen counts Replace calls.
	gen uint64
}

// NewTable copies commands into a new table with the cursor at 0.
func NewTable(commands []visca.Command) *Table {
	return &Table{commands: append([]visca.Command(nil), commands...)}
}

// Len returns the number of commands.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.commands)
}

// Cursor returns the index of the next scheduled command.
func (t *Table) Cursor() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cursor
}

// Current returns the command under the cursor and its index.
func (t *Table) Current() (visca.Command, int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.commands) == 0 {
		return visca.Command{}, 0, domain.ErrEmptyTable
	}
	return t.commands[t.cursor], t.cursor, nil
}

// Next is Current plus the table generation, for a later AdvanceFrom.
func (t *Table) Next() (visca.Command, int, uint64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.commands) == 0 {
		return visca.Command{}, 0, t.gen, domain.ErrEmptyTable
	}
	return t.commands[t.cursor], t.cursor, t.gen, nil
}

// Advance moves the cursor forward by one, wrapping to 0 after the last entry.
func (t *Table) Advance() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.advance()
}

// AdvanceFrom advances the cursor only if the table has not been replaced
// since gen was read. It reports whether the cursor moved.
func (t *Table) AdvanceFrom(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen || len(t.commands) == 0 {
		return false
	}
	t.advance()
	return true
}

func (t *Table) advance() {
	if len(t.commands) == 0 {
		return
	}
	t.cursor = (t.cursor + 1) % len(t.commands)
}

// Get returns the command at index without moving the cursor.
func (t *Table) Get(index int) (visca.Command, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if index < 0 || index >= len(t.commands) {
		return visca.Command{}, &domain.IndexError{Index: index, Len: len(t.commands)}
	}
	return t.commands[index], nil
}

// Commands returns a snapshot of the table.
func (t *Table) Commands() []visca.Command {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]visca.Command(nil), t.commands...)
}

// Replace swaps in a new command list and resets the cursor to 0.
func (t *Table) Replace(commands []visca.Command) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.commands = append([]visca.Command(nil), commands...)
	t.cursor = 0
	t.gen++
}
