package service

import (
	"context"
	"reflect"
	"testing"

	"fireplace_rf/internal/models"
)

func TestEventRecorder_WritesOneEventPerEdge(t *testing.T) {
	ctx := context.Background()
	fp := newTestFireplace(t, true, 3, "eco")
	repo := &recordingEventRepo{}
	rec := NewEventRecorder(fp, repo, nil)
	svc := NewFireplaceService(fp, nil, nil)

	if err := svc.TurnOn(ctx); err != nil { // on + power 0->3
		t.Fatal(err)
	}
	if err := svc.TurnOn(ctx); err != nil { // no edge
		t.Fatal(err)
	}
	if err := svc.Perform(ctx, CallParams{PresetMode: "eco"}); err != nil {
		t.Fatal(err)
	}
	if err := svc.TurnOff(ctx); err != nil {
		t.Fatal(err)
	}

	want := []string{models.EventTurnOn, models.EventPowerSet, models.EventPresetSet, models.EventTurnOff}
	if got := repo.types(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}

	rec.Stop()
	if err := svc.TurnOn(ctx); err != nil {
		t.Fatal(err)
	}
	if n := len(repo.types()); n != len(want) {
		t.Fatalf("stopped recorder still wrote events: %d", n)
	}
}
