package ports

import (
	"context"

	"github.com/bft-labs/viscactl/pkg/visca"
)

// CommandSource loads a command table.
type CommandSource interface {
	// Load returns the commands in table order. Every command is validated.
	Load(ctx context.Context) ([]visca.Command, error)
}
