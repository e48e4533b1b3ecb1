package fs

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bft-labs/viscactl/pkg/visca"
)

// ErrNoCommands is returned when a table file lists no commands.
var ErrNoCommands = errors.New("table file has no commands")

// tableDocument is the on-disk layout of a command table:
//
//	commands:
//	  - label: Pan Left
//	    frame: "81 01 06 01 08 08 01 03 FF"
type tableDocument struct {
	Commands []tableEntry `yaml:"commands"`
}

type tableEntry struct {
	Label string `yaml:"label"`
	Frame string `yaml:"frame"`
}

// TableFile implements ports.CommandSource using a YAML file.
type TableFile struct {
	path string
}

// NewTableFile creates a command source for path.
func NewTableFile(path string) *TableFile {
	return &TableFile{path: path}
}

// Path returns the file path.
func (f *TableFile) Path() string {
	return f.path
}

// Load parses and validates the table. Every frame must be a valid command.
func (f *TableFile) Load(ctx context.Context) ([]visca.Command, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	return ParseTable(data)
}

// ParseTable decodes a YAML command table.
func ParseTable(data []byte) ([]visca.Command, error) {
	var doc tableDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse table: %w", err)
	}
	if len(doc.Commands) == 0 {
		return nil, ErrNoCommands
	}

	cmds := make([]visca.Command, 0, len(doc.Commands))
	for i, e := range doc.Commands {
		frame, err := visca.ParseHex(e.Frame)
		if err != nil {
			return nil, fmt.Errorf("command %d (%s): %w", i, e.Label, err)
		}
		label := e.Label
		if label == "" {
			label = visca.Hex(frame)
		}
		cmd, err := visca.NewCommand(label, frame)
		if err != nil {
			return nil, fmt.Errorf("command %d (%s): %w", i, label, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// MarshalTable encodes commands in the table file layout.
func MarshalTable(cmds []visca.Command) ([]byte, error) {
	doc := tableDocument{Commands: make([]tableEntry, len(cmds))}
	for i, c := range cmds {
		doc.Commands[i] = tableEntry{Label: c.Label(), Frame: c.Hex()}
	}
	return yaml.Marshal(doc)
}
