package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"fireplace_rf/internal/fireplace"
	"fireplace_rf/internal/models"
)

func newTestFireplace(t *testing.T, supportsPower bool, count int, presets ...string) *fireplace.Fireplace {
	t.Helper()
	traits, err := fireplace.NewTraits(supportsPower, count, presets)
	if err != nil {
		t.Fatalf("NewTraits: %v", err)
	}
	return fireplace.New(fireplace.Config{ID: "test_fire", Name: "Test Fire", Traits: traits}, nil, nil, nil)
}

// recordingEventRepo keeps appended events in memory.
type recordingEventRepo struct {
	mu        sync.Mutex
	events    []models.FireplaceEvent
	appendErr error
}

func (r *recordingEventRepo) Append(_ context.Context, e models.FireplaceEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.appendErr
}

func (r *recordingEventRepo) List(context.Context, time.Time, time.Time, string) ([]models.FireplaceEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.FireplaceEvent(nil), r.events...), nil
}

func (r *recordingEventRepo) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// fakeControl records what the receiver asked the fireplace to do.
type fakeControl struct {
	ops    []string
	params []CallParams
	err    error
}

func (f *fakeControl) TurnOn(context.Context) error {
	f.ops = append(f.ops, "turn_on")
	return f.err
}

func (f *fakeControl) TurnOff(context.Context) error {
	f.ops = append(f.ops, "turn_off")
	return f.err
}

func (f *fakeControl) Toggle(context.Context) error {
	f.ops = append(f.ops, "toggle")
	return f.err
}

func (f *fakeControl) Perform(_ context.Context, p CallParams) error {
	f.ops = append(f.ops, "call")
	f.params = append(f.params, p)
	return f.err
}

func (f *fakeControl) CyclePower(_ context.Context, offCycle bool) error {
	if offCycle {
		f.ops = append(f.ops, "cycle_power_off")
	} else {
		f.ops = append(f.ops, "cycle_power")
	}
	return f.err
}

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }
