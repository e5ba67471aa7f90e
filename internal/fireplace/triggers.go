package fireplace

// Trigger runs an action on one kind of state edge until stopped.
type Trigger struct {
	f  *Fireplace
	id SubscriptionID
}

// Stop detaches the trigger from the fireplace.
func (t *Trigger) Stop() {
	if t == nil || t.f == nil {
		return
	}
	t.f.Unsubscribe(t.id)
	t.f = nil
}

// onEdge remembers the last value of a field, starting from the state at
// registration, and fires when fires(last, current) holds.
func onEdge[T comparable](f *Fireplace, pick func(State) T, fires func(last, cur T) bool, action func(State)) *Trigger {
	last := pick(f.State())
	id := f.Subscribe(func(s State) {
		cur := pick(s)
		fire := fires(last, cur)
		last = cur
		if fire {
			action(s)
		}
	})
	return &Trigger{f: f, id: id}
}

func isOn(s State) bool { return s.On }

// OnTurnOn fires on every off to on transition.
func OnTurnOn(f *Fireplace, action func(State)) *Trigger {
	return onEdge(f, isOn, func(last, cur bool) bool { return !last && cur }, action)
}

// OnTurnOff fires on every on to off transition.
func OnTurnOff(f *Fireplace, action func(State)) *Trigger {
	return onEdge(f, isOn, func(last, cur bool) bool { return last && !cur }, action)
}

// OnPowerSet fires whenever the power level changes.
func OnPowerSet(f *Fireplace, action func(State)) *Trigger {
	return onEdge(f, func(s State) int { return s.Power }, func(last, cur int) bool { return last != cur }, action)
}

// OnPresetSet fires whenever the preset mode changes.
func OnPresetSet(f *Fireplace, action func(State)) *Trigger {
	return onEdge(f, func(s State) string { return s.PresetMode }, func(last, cur string) bool { return last != cur }, action)
}
