package fireplace

import "fmt"

// State is the observable state of the fireplace.
type State struct {
	On         bool   `json:"on"`
	Power      int    `json:"power"`
	PresetMode string `json:"preset_mode,omitempty"`
}

func (s State) String() string {
	return fmt.Sprintf("state=%s power=%d preset=%q", onOff(s.On), s.Power, s.PresetMode)
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
