package fireplace

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidPowerCount = errors.New("invalid power count")
	ErrDuplicatePreset   = errors.New("duplicate preset mode")
	ErrEmptyPreset       = errors.New("empty preset mode name")
)

// Traits describes what a fireplace can do. A Traits value never changes
// after construction; the preset list is kept sorted so preset indexes are stable.
type Traits struct {
	supportsPower bool
	powerCount    int
	presets       []string
}

// NewTraits validates and builds a capability set.
func NewTraits(supportsPower bool, powerCount int, presets []string) (Traits, error) {
	if powerCount < 0 {
		return Traits{}, fmt.Errorf("%w: %d", ErrInvalidPowerCount, powerCount)
	}
	if supportsPower && powerCount < 1 {
		return Traits{}, fmt.Errorf("%w: power levels enabled with count %d", ErrInvalidPowerCount, powerCount)
	}

	sorted := make([]string, 0, len(presets))
	seen := make(map[string]struct{}, len(presets))
	for _, p := range presets {
		name := strings.TrimSpace(p)
		if name == "" {
			return Traits{}, ErrEmptyPreset
		}
		if _, dup := seen[name]; dup {
			return Traits{}, fmt.Errorf("%w: %q", ErrDuplicatePreset, name)
		}
		seen[name] = struct{}{}
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	if !supportsPower {
		powerCount = 0
	}
	return Traits{supportsPower: supportsPower, powerCount: powerCount, presets: sorted}, nil
}

func (t Traits) SupportsPower() bool { return t.supportsPower }

func (t Traits) PowerCount() int { return t.powerCount }

func (t Traits) SupportsPresets() bool { return len(t.presets) > 0 }

// PresetModes returns a copy of the supported presets in index order.
func (t Traits) PresetModes() []string {
	out := make([]string, len(t.presets))
	copy(out, t.presets)
	return out
}

func (t Traits) HasPreset(name string) bool {
	return t.PresetIndex(name) >= 0
}

// PresetIndex returns the ordinal of name, or -1.
func (t Traits) PresetIndex(name string) int {
	i := sort.SearchStrings(t.presets, name)
	if i < len(t.presets) && t.presets[i] == name {
		return i
	}
	return -1
}

// PresetAt returns the preset stored at ordinal i.
func (t Traits) PresetAt(i int) (string, bool) {
	if i < 0 || i >= len(t.presets) {
		return "", false
	}
	return t.presets[i], true
}
