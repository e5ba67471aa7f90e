package service

import (
	"context"
	"fmt"
	"time"

	"fireplace_rf/internal/fireplace"
	"fireplace_rf/internal/logger"
	"fireplace_rf/internal/models"
	"fireplace_rf/internal/repository"
)

// EventRecorder writes a log entry for every state edge of the fireplace.
type EventRecorder struct {
	repo     repository.EventRepo
	log      *logger.Logger
	triggers []*fireplace.Trigger
}

// NewEventRecorder attaches edge triggers to fp. Stop detaches them.
func NewEventRecorder(fp *fireplace.Fireplace, repo repository.EventRepo, log *logger.Logger) *EventRecorder {
	r := &EventRecorder{repo: repo, log: logger.OrNop(log)}
	r.triggers = []*fireplace.Trigger{
		fireplace.OnTurnOn(fp, func(s fireplace.State) {
			r.append(models.EventTurnOn, "fireplace turned on", s)
		}),
		fireplace.OnTurnOff(fp, func(s fireplace.State) {
			r.append(models.EventTurnOff, "fireplace turned off", s)
		}),
		fireplace.OnPowerSet(fp, func(s fireplace.State) {
			r.append(models.EventPowerSet, fmt.Sprintf("power set to %d", s.Power), s)
		}),
		fireplace.OnPresetSet(fp, func(s fireplace.State) {
			r.append(models.EventPresetSet, fmt.Sprintf("preset set to %q", s.PresetMode), s)
		}),
	}
	return r
}

func (r *EventRecorder) Stop() {
	for _, t := range r.triggers {
		t.Stop()
	}
}

func (r *EventRecorder) append(typ, desc string, s fireplace.State) {
	ctx, cancel := context.WithTimeout(context.Background(), eventWriteTimeout)
	defer cancel()
	err := r.repo.Append(ctx, models.FireplaceEvent{
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: desc,
		Metadata: map[string]any{
			"on":          s.On,
			"power":       s.Power,
			"preset_mode": s.PresetMode,
		},
	})
	if err != nil {
		r.log.Errorw("event_append_failed", "type", typ, "err", err)
	}
}
