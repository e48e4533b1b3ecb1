package app

import (
	"errors"
	"testing"

	"github.com/bft-labs/viscactl/internal/domain"
	"github.com/bft-labs/viscactl/pkg/visca"
)

func TestTable_AdvanceWrapsAfterLen(t *testing.T) {
	table := NewTable(visca.DefaultTable(1))

	for start := 0; start < table.Len(); start++ {
		seen := make(map[int]bool)
		for i := 0; i < table.Len(); i++ {
			_, index, err := table.Current()
			if err != nil {
				t.Fatalf("Current() error = %v", err)
			}
			seen[index] = true
			table.Advance()
		}
		if table.Cursor() != start {
			t.Errorf("cursor = %d after %d advances from %d", table.Cursor(), table.Len(), start)
		}
		if len(seen) != table.Len() {
			t.Errorf("visited %d distinct entries, want %d", len(seen), table.Len())
		}
		table.Advance()
	}
}

func TestTable_Get(t *testing.T) {
	table := NewTable(visca.DefaultTable(1))

	tests := []struct {
		index int
		label string
		ok    bool
	}{
		{0, "Pan Left", true},
		{2, "Pan Right", true},
		{3, "Stop Pan/Tilt", true},
		{-1, "", false},
		{4, "", false},
	}

	for _, tt := range tests {
		cmd, err := table.Get(tt.index)
		if tt.ok {
			if err != nil || cmd.Label() != tt.label {
				t.Errorf("Get(%d) = %s, %v; want %s", tt.index, cmd.Label(), err, tt.label)
			}
			continue
		}
		if !errors.Is(err, domain.ErrIndexOutOfRange) {
			t.Errorf("Get(%d) error = %v, want ErrIndexOutOfRange", tt.index, err)
		}
	}
}

func TestTable_EmptyCurrent(t *testing.T) {
	table := NewTable(nil)
	if _, _, err := table.Current(); !errors.Is(err, domain.ErrEmptyTable) {
		t.Errorf("Current() error = %v, want ErrEmptyTable", err)
	}
	table.Advance()
	if table.Cursor() != 0 {
		t.Errorf("cursor = %d on empty table", table.Cursor())
	}
}

func TestTable_ReplaceResetsCursor(t *testing.T) {
	table := NewTable(visca.DefaultTable(1))
	table.Advance()
	table.Advance()

	table.Replace([]visca.Command{visca.Home(1)})

	if table.Cursor() != 0 || table.Len() != 1 {
		t.Errorf("after Replace cursor = %d, len = %d", table.Cursor(), table.Len())
	}
}

func TestTable_AdvanceFromStaleGeneration(t *testing.T) {
	table := NewTable(visca.DefaultTable(1))

	_, _, gen, err := table.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	table.Replace([]visca.Command{visca.Home(1), visca.PanTiltStop(1)})

	if table.AdvanceFrom(gen) {
		t.Error("AdvanceFrom moved the cursor of a replaced table")
	}
	if table.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0", table.Cursor())
	}

	_, _, gen, _ = table.Next()
	if !table.AdvanceFrom(gen) || table.Cursor() != 1 {
		t.Errorf("AdvanceFrom(current) cursor = %d, want 1", table.Cursor())
	}
}
