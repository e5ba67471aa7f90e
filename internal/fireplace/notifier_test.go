package fireplace

import (
	"context"
	"reflect"
	"testing"
)

func TestNotifierOrderAndUnsubscribe(t *testing.T) {
	var n Notifier
	var order []int
	n.Subscribe(func(State) { order = append(order, 1) })
	id := n.Subscribe(func(State) { order = append(order, 2) })
	n.Subscribe(func(State) { order = append(order, 3) })

	n.Notify(State{})
	if !reflect.DeepEqual(order, []int{1, 2, 3}) {
		t.Fatalf("order = %v", order)
	}
	if !n.Unsubscribe(id) || n.Unsubscribe(id) {
		t.Fatal("unsubscribe must succeed exactly once")
	}
	order = nil
	n.Notify(State{})
	if !reflect.DeepEqual(order, []int{1, 3}) {
		t.Fatalf("order after unsubscribe = %v", order)
	}
}

func TestEdgeTriggers(t *testing.T) {
	ctx := context.Background()
	f := newTestFireplace(t, mustTraits(t, true, 3, "eco", "wood"), NoRestore, nil)

	var on, off, power, preset int
	OnTurnOn(f, func(State) { on++ })
	OnTurnOff(f, func(State) { off++ })
	OnPowerSet(f, func(State) { power++ })
	presetTrigger := OnPresetSet(f, func(State) { preset++ })

	steps := []func() *Call{
		func() *Call { return f.TurnOn() },                        // on, power 0->3
		func() *Call { return f.TurnOn() },                        // nothing
		func() *Call { return f.TurnOn().SetPower(3) },            // nothing
		func() *Call { return f.TurnOn().SetPower(1) },            // power
		func() *Call { return f.MakeCall().SetPresetMode("eco") }, // preset
		func() *Call { return f.MakeCall().SetPresetMode("eco") }, // nothing
		func() *Call { return f.TurnOff() },                       // off
		func() *Call { return f.TurnOff() },                       // nothing
	}
	for i, step := range steps {
		if err := step().Perform(ctx); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if on != 1 || off != 1 || power != 2 || preset != 1 {
		t.Fatalf("on=%d off=%d power=%d preset=%d", on, off, power, preset)
	}

	presetTrigger.Stop()
	presetTrigger.Stop()
	if err := f.MakeCall().SetPresetMode("wood").Perform(ctx); err != nil {
		t.Fatal(err)
	}
	if preset != 1 {
		t.Fatal("stopped trigger fired")
	}
}

func TestTriggerStartsFromCurrentState(t *testing.T) {
	f := newTestFireplace(t, mustTraits(t, false, 0), NoRestore, nil)
	f.state.On = true
	fired := 0
	OnTurnOn(f, func(State) { fired++ })
	// republishing an already-on state is not an edge
	f.Publish(context.Background())
	if fired != 0 {
		t.Fatal("trigger fired without a transition")
	}
}

func TestCyclePower(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name     string
		traits   Traits
		initial  State
		offCycle bool
		want     State
	}{
		{"off turns on at level one", mustTraits(t, true, 3), State{Power: 3}, false, State{On: true, Power: 1}},
		{"steps up", mustTraits(t, true, 3), State{On: true, Power: 1}, false, State{On: true, Power: 2}},
		{"wraps", mustTraits(t, true, 3), State{On: true, Power: 3}, false, State{On: true, Power: 1}},
		{"turns off past top", mustTraits(t, true, 3), State{On: true, Power: 3}, true, State{Power: 1}},
		{"toggles without power", mustTraits(t, false, 0), State{On: true}, false, State{}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			f := newTestFireplace(t, tc.traits, NoRestore, nil)
			f.state = tc.initial
			if err := CyclePower(ctx, f, tc.offCycle); err != nil {
				t.Fatalf("CyclePower: %v", err)
			}
			if got := f.State(); got != tc.want {
				t.Fatalf("state = %+v, want %+v", got, tc.want)
			}
			if IsOn(f) == IsOff(f) {
				t.Fatal("IsOn and IsOff must disagree")
			}
		})
	}
}
