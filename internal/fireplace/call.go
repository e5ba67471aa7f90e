package fireplace

import (
	"context"
	"errors"
)

// ErrCallInProgress is returned when a call is performed while another call
// on the same fireplace, including its notifications, has not finished.
var ErrCallInProgress = errors.New("fireplace call already in progress")

// Call stages changes to a fireplace. Nothing happens until Perform.
type Call struct {
	parent     *Fireplace
	state      *bool
	power      *int
	presetMode string
}

func (c *Call) SetState(on bool) *Call {
	c.state = &on
	return c
}

func (c *Call) SetPower(level int) *Call {
	c.power = &level
	return c
}

func (c *Call) SetPresetMode(mode string) *Call {
	c.presetMode = mode
	return c
}

// State returns the staged on/off target.
func (c *Call) State() (bool, bool) {
	if c.state == nil {
		return false, false
	}
	return *c.state, true
}

// Power returns the staged power level.
func (c *Call) Power() (int, bool) {
	if c.power == nil {
		return 0, false
	}
	return *c.power, true
}

// PresetMode returns the staged preset, empty when none.
func (c *Call) PresetMode() string { return c.presetMode }

// Perform validates the call and hands it to the driver. Validation never
// rejects a call; offending fields are dropped with a warning.
func (c *Call) Perform(ctx context.Context) error {
	f := c.parent
	if !f.enter() {
		f.log.Warnw("call_in_progress", "name", f.name)
		return ErrCallInProgress
	}
	defer f.leave()

	c.validate()
	c.logSetting()
	return f.driver.Control(ctx, f, c)
}

func (c *Call) validate() {
	f := c.parent
	traits := f.traits
	cur := f.State()

	if c.power != nil {
		p := *c.power
		if p > traits.PowerCount() {
			p = traits.PowerCount()
		}
		if p < 1 {
			p = 1
		}
		c.power = &p
	}

	// turning on from off with no power level goes to full power
	if on, ok := c.State(); ok && on && c.power == nil &&
		traits.SupportsPower() && !cur.On && cur.Power == 0 {
		full := traits.PowerCount()
		c.power = &full
	}

	if c.power != nil && !traits.SupportsPower() {
		f.log.Warnw("call_power_unsupported", "name", f.name, "power", *c.power)
		c.power = nil
	}

	if c.presetMode != "" && !traits.HasPreset(c.presetMode) {
		f.log.Warnw("call_preset_unsupported", "name", f.name, "preset_mode", c.presetMode)
		c.presetMode = ""
	}
}

func (c *Call) logSetting() {
	fields := []any{"name", c.parent.name}
	if on, ok := c.State(); ok {
		fields = append(fields, "state", onOff(on))
	}
	if p, ok := c.Power(); ok {
		fields = append(fields, "power", p)
	}
	if c.presetMode != "" {
		fields = append(fields, "preset_mode", c.presetMode)
	}
	c.parent.log.Debugw("call_setting", fields...)
}
