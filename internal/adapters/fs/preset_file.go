package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/bft-labs/viscactl/internal/domain"
)

// DefaultPresetFile is the file name used when none is given.
const DefaultPresetFile = "preset_positions.json"

// PresetFile implements ports.PresetRepository using a JSON file.
type PresetFile struct {
	path string
}

// NewPresetFile creates a preset repository at path.
func NewPresetFile(path string) *PresetFile {
	if path == "" {
		path = DefaultPresetFile
	}
	return &PresetFile{path: path}
}

// Load reads saved presets.
func (r *PresetFile) Load(ctx context.Context) (domain.PresetSet, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}

	var presets domain.PresetSet
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, err
	}
	if presets == nil {
		presets = domain.PresetSet{}
	}
	return presets, nil
}

// Save writes presets atomically (temp file, then rename).
func (r *PresetFile) Save(ctx context.Context, presets domain.PresetSet) error {
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(presets, "", "    ")
	if err != nil {
		return err
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

// Path returns the full path to the preset file.
func (r *PresetFile) Path() string {
	return r.path
}
