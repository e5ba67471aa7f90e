package service

import (
	"context"
	"sync"
	"time"

	"fireplace_rf/internal/fireplace"
	"fireplace_rf/internal/models"
)

type MonitoringService struct {
	fp *fireplace.Fireplace

	mu        sync.RWMutex
	updatedAt time.Time
}

// NewMonitoringService starts tracking when the fireplace last published.
func NewMonitoringService(fp *fireplace.Fireplace) *MonitoringService {
	s := &MonitoringService{fp: fp, updatedAt: time.Now().UTC()}
	fp.Subscribe(func(fireplace.State) {
		s.mu.Lock()
		s.updatedAt = time.Now().UTC()
		s.mu.Unlock()
	})
	return s
}

// GetState returns the current state together with the fireplace traits.
func (s *MonitoringService) GetState(ctx context.Context) (models.FireplaceSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.FireplaceSnapshot{}, err
	}
	s.mu.RLock()
	at := s.updatedAt
	s.mu.RUnlock()
	return s.snapshot(s.fp.State(), at), nil
}

func (s *MonitoringService) Subscribe(fn func(models.FireplaceSnapshot)) func() {
	id := s.fp.Subscribe(func(st fireplace.State) {
		fn(s.snapshot(st, time.Now().UTC()))
	})
	return func() { s.fp.Unsubscribe(id) }
}

func (s *MonitoringService) snapshot(st fireplace.State, at time.Time) models.FireplaceSnapshot {
	traits := s.fp.Traits()
	return models.FireplaceSnapshot{
		ID:            s.fp.ID(),
		Name:          s.fp.Name(),
		On:            st.On,
		Power:         st.Power,
		PresetMode:    st.PresetMode,
		SupportsPower: traits.SupportsPower(),
		PowerCount:    traits.PowerCount(),
		PresetModes:   traits.PresetModes(),
		RestoreMode:   s.fp.RestoreMode().String(),
		UpdatedAt:     toUTC(at),
	}
}
