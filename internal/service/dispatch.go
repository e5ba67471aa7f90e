package service

import (
	"fmt"
	"strings"

	"fireplace_rf/internal/decoder"
)

// Command actions understood by the dispatch table.
const (
	ActionCall       = "call"
	ActionToggle     = "toggle"
	ActionCyclePower = "cycle_power"
	ActionIgnore     = "ignore"
)

// CommandAction is what a decoded command does to the fireplace.
type CommandAction struct {
	Action   string `mapstructure:"action" json:"action,omitempty"`
	State    string `mapstructure:"state" json:"state,omitempty"`
	Power    int    `mapstructure:"power" json:"power,omitempty"`
	Preset   string `mapstructure:"preset" json:"preset,omitempty"`
	OffCycle bool   `mapstructure:"off_cycle" json:"off_cycle,omitempty"`
}

// Params converts a call action into call parameters.
func (a CommandAction) Params() CallParams {
	var p CallParams
	switch strings.ToLower(a.State) {
	case "on":
		on := true
		p.State = &on
	case "off":
		off := false
		p.State = &off
	}
	if a.Power > 0 {
		power := a.Power
		p.Power = &power
	}
	p.PresetMode = a.Preset
	return p
}

func (a CommandAction) validate() error {
	switch a.Action {
	case ActionToggle, ActionCyclePower, ActionIgnore:
		return nil
	case "", ActionCall:
	default:
		return fmt.Errorf("unknown action %q", a.Action)
	}
	switch strings.ToLower(a.State) {
	case "", "on", "off":
	default:
		return fmt.Errorf("unknown state %q", a.State)
	}
	if a.Power < 0 {
		return fmt.Errorf("negative power %d", a.Power)
	}
	if a.Params().Empty() {
		return fmt.Errorf("call action changes nothing")
	}
	return nil
}

// DispatchTable maps decoded commands to fireplace actions.
type DispatchTable map[decoder.CommandCode]CommandAction

// DefaultDispatchTable turns the fireplace off for Off and on at level N for CmdN.
func DefaultDispatchTable() DispatchTable {
	t := DispatchTable{decoder.Off: {Action: ActionCall, State: "off"}}
	for _, c := range decoder.AllCommands {
		if c == decoder.Off {
			continue
		}
		t[c] = CommandAction{Action: ActionCall, State: "on", Power: int(c)}
	}
	return t
}

// ParseDispatchTable overlays configured entries, keyed by command name, on the default table.
func ParseDispatchTable(raw map[string]CommandAction) (DispatchTable, error) {
	t := DefaultDispatchTable()
	for name, action := range raw {
		code, err := decoder.ParseCommandCode(name)
		if err != nil {
			return nil, err
		}
		if code == decoder.Unknown {
			return nil, fmt.Errorf("command %q cannot be dispatched", name)
		}
		action.Action = strings.ToLower(strings.TrimSpace(action.Action))
		if err := action.validate(); err != nil {
			return nil, fmt.Errorf("command %s: %w", code, err)
		}
		t[code] = action
	}
	return t, nil
}
