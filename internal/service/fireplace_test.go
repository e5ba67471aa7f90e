package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fireplace_rf/internal/fireplace"
)

func TestFireplaceService_Operations(t *testing.T) {
	ctx := context.Background()
	fp := newTestFireplace(t, true, 4, "eco")
	svc := NewFireplaceService(fp, nil, nil)

	steps := []struct {
		name string
		run  func() error
		want fireplace.State
	}{
		{"turn on", func() error { return svc.TurnOn(ctx) }, fireplace.State{On: true, Power: 4}},
		{"call power and preset", func() error {
			return svc.Perform(ctx, CallParams{Power: intPtr(2), PresetMode: "eco"})
		}, fireplace.State{On: true, Power: 2, PresetMode: "eco"}},
		{"cycle", func() error { return svc.CyclePower(ctx, false) }, fireplace.State{On: true, Power: 3, PresetMode: "eco"}},
		{"toggle", func() error { return svc.Toggle(ctx) }, fireplace.State{Power: 3, PresetMode: "eco"}},
		{"turn off again", func() error { return svc.TurnOff(ctx) }, fireplace.State{Power: 3, PresetMode: "eco"}},
		{"call state", func() error { return svc.Perform(ctx, CallParams{State: boolPtr(true)}) }, fireplace.State{On: true, Power: 3, PresetMode: "eco"}},
	}
	for _, st := range steps {
		if err := st.run(); err != nil {
			t.Fatalf("%s: %v", st.name, err)
		}
		if got := fp.State(); got != st.want {
			t.Fatalf("%s: state = %+v, want %+v", st.name, got, st.want)
		}
	}
}

func TestFireplaceService_EmptyCall(t *testing.T) {
	svc := NewFireplaceService(newTestFireplace(t, false, 0), nil, nil)
	if err := svc.Perform(context.Background(), CallParams{}); !errors.Is(err, ErrEmptyCall) {
		t.Fatalf("err = %v, want ErrEmptyCall", err)
	}
}

func TestFireplaceService_ConcurrentTogglesAreSerialised(t *testing.T) {
	fp := newTestFireplace(t, false, 0)
	svc := NewFireplaceService(fp, nil, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.Toggle(context.Background())
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Toggle: %v", err)
		}
	}
	// an even number of toggles lands back on off
	if fp.State().On {
		t.Fatal("expected fireplace to be off after 50 toggles")
	}
}

func TestFireplaceService_DriverErrorPropagates(t *testing.T) {
	traits, _ := fireplace.NewTraits(false, 0, nil)
	boom := errors.New("relay fault")
	fp := fireplace.New(fireplace.Config{Name: "x", Traits: traits},
		fireplace.DriverFunc(func(context.Context, *fireplace.Fireplace, *fireplace.Call) error { return boom }),
		nil, nil)
	svc := NewFireplaceService(fp, nil, nil)
	if err := svc.TurnOn(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}
