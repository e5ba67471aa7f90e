package service

import "time"

// CallParams stages a fireplace call. Nil fields are left unchanged.
type CallParams struct {
	State      *bool
	Power      *int
	PresetMode string
}

// Empty reports whether nothing is staged.
func (p CallParams) Empty() bool {
	return p.State == nil && p.Power == nil && p.PresetMode == ""
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "TURN_ON", "TURN_OFF", "POWER_SET", "PRESET_SET", "COMMAND", "UNKNOWN_CODE"
}
