package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is a captured camera position. Values are 16-bit hex strings,
// the format used by preset_positions.json.
type Position struct {
	Pan   string `json:"pan,omitempty"`
	Tilt  string `json:"tilt,omitempty"`
	Zoom  string `json:"zoom,omitempty"`
	Focus string `json:"focus,omitempty"`
}

// Complete reports whether pan, tilt and zoom were all captured.
func (p Position) Complete() bool {
	return p.Pan != "" && p.Tilt != "" && p.Zoom != ""
}

// HexWord formats v as four upper-case hex digits.
func HexWord(v uint16) string {
	return fmt.Sprintf("%04X", v)
}

// ParseWord parses a four-digit hex position.
func ParseWord(s string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("parse position %q: %w", s, err)
	}
	return uint16(v), nil
}

// PresetSet maps preset keys ("preset_N") to positions.
type PresetSet map[string]Position

// PresetKey returns the key used for preset n.
func PresetKey(n int) string {
	return fmt.Sprintf("preset_%d", n)
}

// ParsePresetKey extracts N from "preset_N".
func ParsePresetKey(key string) (int, error) {
	rest, ok := strings.CutPrefix(key, "preset_")
	if !ok {
		return 0, fmt.Errorf("preset key %q: missing preset_ prefix", key)
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("preset key %q: %w", key, err)
	}
	return n, nil
}

// AssignablePreset reports whether n may be captured or restored.
// 90-99 call home, toggle OSD or are reserved; 150/151 toggle tracking.
func AssignablePreset(n int) bool {
	return (n >= 1 && n <= 89) || (n >= 100 && n <= 149) || (n >= 152 && n <= 254)
}
