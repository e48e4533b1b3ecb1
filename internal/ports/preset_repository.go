package ports

import (
	"context"

	"github.com/bft-labs/viscactl/internal/domain"
)

// PresetRepository persists captured preset positions.
type PresetRepository interface {
	// Load returns the saved presets. A missing store is an error: restore
	// has nothing to work from.
	Load(ctx context.Context) (domain.PresetSet, error)

	// Save writes presets atomically.
	Save(ctx context.Context, presets domain.PresetSet) error
}
