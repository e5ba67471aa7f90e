package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fireplace_rf/internal/decoder"
	"fireplace_rf/internal/logger"
	"fireplace_rf/internal/models"
	"fireplace_rf/internal/repository"
)

const eventWriteTimeout = 2 * time.Second

type ReceiverService struct {
	mu  sync.Mutex
	dec *decoder.Decoder

	table   DispatchTable
	control Fireplace
	events  repository.EventRepo
	log     *logger.Logger
}

func NewReceiverService(dec *decoder.Decoder, table DispatchTable, control Fireplace, events repository.EventRepo, log *logger.Logger) *ReceiverService {
	if table == nil {
		table = DefaultDispatchTable()
	}
	return &ReceiverService{
		dec:     dec,
		table:   table,
		control: control,
		events:  events,
		log:     logger.OrNop(log),
	}
}

// HandleCapture decodes one burst, records it and dispatches the command.
// An unknown burst is not an error.
func (s *ReceiverService) HandleCapture(ctx context.Context, durations []int) (decoder.Result, error) {
	s.mu.Lock()
	res := s.dec.Decode(durations)
	s.mu.Unlock()

	s.record(ctx, res)
	if res.Command == decoder.Unknown {
		return res, nil
	}

	action, ok := s.table[res.Command]
	if !ok {
		s.log.Warnw("receiver_command_unmapped", "command", res.Command.String())
		return res, nil
	}
	if err := s.execute(ctx, action); err != nil {
		return res, fmt.Errorf("dispatch %s: %w", res.Command, err)
	}
	return res, nil
}

func (s *ReceiverService) execute(ctx context.Context, a CommandAction) error {
	switch a.Action {
	case ActionIgnore:
		return nil
	case ActionToggle:
		return s.control.Toggle(ctx)
	case ActionCyclePower:
		return s.control.CyclePower(ctx, a.OffCycle)
	default:
		return s.control.Perform(ctx, a.Params())
	}
}

func (s *ReceiverService) record(ctx context.Context, res decoder.Result) {
	if s.events == nil {
		return
	}
	ev := models.FireplaceEvent{
		OccurredAt:  time.Now().UTC(),
		Type:        models.EventCommand,
		Description: "received " + res.Command.String(),
		Metadata: map[string]any{
			"protocol": s.Protocol(),
			"command":  res.Command.String(),
			"packet":   res.Packet.String(),
		},
	}
	if res.Command == decoder.Unknown {
		ev.Type = models.EventUnknown
		ev.Description = "undecodable transmission"
	}

	wctx, cancel := context.WithTimeout(ctx, eventWriteTimeout)
	defer cancel()
	if err := s.events.Append(wctx, ev); err != nil {
		s.log.Errorw("receiver_event_append_failed", "err", err)
	}
}

// Stats returns a copy of the decoder counters.
func (s *ReceiverService) Stats() decoder.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dec.Statistics().Snapshot()
}

// ResetStats zeroes the decoder counters and restarts their clock.
func (s *ReceiverService) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dec.Statistics().Reset()
	s.log.Infow("receiver_stats_reset")
}

func (s *ReceiverService) Protocol() string {
	return s.dec.Protocol().Name
}
