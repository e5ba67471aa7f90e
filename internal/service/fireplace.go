package service

import (
	"context"
	"errors"
	"sync"

	"fireplace_rf/internal/fireplace"
	"fireplace_rf/internal/logger"
)

var ErrEmptyCall = errors.New("call does not change anything")

// FireplaceService serialises every call on the entity. Subscribers must not
// call back into it from a notification.
type FireplaceService struct {
	fp  *fireplace.Fireplace
	mu  *sync.Mutex
	log *logger.Logger
}

func NewFireplaceService(fp *fireplace.Fireplace, mu *sync.Mutex, log *logger.Logger) *FireplaceService {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &FireplaceService{fp: fp, mu: mu, log: logger.OrNop(log)}
}

func (s *FireplaceService) TurnOn(ctx context.Context) error {
	return s.perform(ctx, "turn_on", s.fp.TurnOn)
}

func (s *FireplaceService) TurnOff(ctx context.Context) error {
	return s.perform(ctx, "turn_off", s.fp.TurnOff)
}

func (s *FireplaceService) Toggle(ctx context.Context) error {
	return s.perform(ctx, "toggle", s.fp.Toggle)
}

// Perform stages p on a fresh call. Unsupported fields are dropped by the
// fireplace, so only an empty call is an error.
func (s *FireplaceService) Perform(ctx context.Context, p CallParams) error {
	if p.Empty() {
		return ErrEmptyCall
	}
	return s.perform(ctx, "call", func() *fireplace.Call {
		call := s.fp.MakeCall()
		if p.State != nil {
			call.SetState(*p.State)
		}
		if p.Power != nil {
			call.SetPower(*p.Power)
		}
		if p.PresetMode != "" {
			call.SetPresetMode(p.PresetMode)
		}
		return call
	})
}

func (s *FireplaceService) CyclePower(ctx context.Context, offCycle bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fireplace.CyclePower(ctx, s.fp, offCycle); err != nil {
		s.log.Errorw("fireplace_call_failed", "op", "cycle_power", "err", err)
		return err
	}
	return nil
}

// build runs under the lock so calls like Toggle read the state they act on.
func (s *FireplaceService) perform(ctx context.Context, op string, build func() *fireplace.Call) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := build().Perform(ctx); err != nil {
		s.log.Errorw("fireplace_call_failed", "op", op, "err", err)
		return err
	}
	return nil
}
