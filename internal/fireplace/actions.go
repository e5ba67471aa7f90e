package fireplace

import "context"

func IsOn(f *Fireplace) bool { return f.State().On }

func IsOff(f *Fireplace) bool { return !f.State().On }

// CyclePower steps to the next power level. Past the last level the
// fireplace either turns off (offCycle) or wraps to level 1. A fireplace
// that is off turns on at level 1; one without power levels toggles.
func CyclePower(ctx context.Context, f *Fireplace, offCycle bool) error {
	traits := f.Traits()
	if !traits.SupportsPower() {
		return f.Toggle().Perform(ctx)
	}

	cur := f.State()
	if !cur.On {
		return f.TurnOn().SetPower(1).Perform(ctx)
	}
	if cur.Power < traits.PowerCount() {
		return f.TurnOn().SetPower(cur.Power + 1).Perform(ctx)
	}
	if offCycle {
		return f.TurnOff().SetPower(1).Perform(ctx)
	}
	return f.TurnOn().SetPower(1).Perform(ctx)
}
