package capture

import (
	"context"
	"fmt"
	"time"

	"fireplace_rf/internal/logger"

	"github.com/warthog618/go-gpiocdev"
)

const (
	DefaultIdleTimeout = 10 * time.Millisecond
	edgeBuffer         = 4096
)

// GPIOConfig describes a demodulating receiver wired to a GPIO input.
type GPIOConfig struct {
	Chip        string
	Line        int
	IdleTimeout time.Duration
	// ActiveLow is set for receivers that pull the line low during a mark.
	ActiveLow bool
}

type edge struct {
	at     time.Duration
	rising bool
}

// GPIOSource turns line edges into bursts. A burst ends once the line has been
// quiet for the idle timeout.
type GPIOSource struct {
	line      *gpiocdev.Line
	events    chan edge
	idle      time.Duration
	activeLow bool
	log       *logger.Logger
}

func OpenGPIO(cfg GPIOConfig, log *logger.Logger) (*GPIOSource, error) {
	s := newGPIOSource(cfg, log)
	line, err := gpiocdev.RequestLine(cfg.Chip, cfg.Line,
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(s.handle),
	)
	if err != nil {
		return nil, fmt.Errorf("request %s line %d: %w", cfg.Chip, cfg.Line, err)
	}
	s.line = line
	return s, nil
}

func newGPIOSource(cfg GPIOConfig, log *logger.Logger) *GPIOSource {
	idle := cfg.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &GPIOSource{
		events:    make(chan edge, edgeBuffer),
		idle:      idle,
		activeLow: cfg.ActiveLow,
		log:       logger.OrNop(log),
	}
}

func (s *GPIOSource) handle(evt gpiocdev.LineEvent) {
	e := edge{at: evt.Timestamp, rising: evt.Type == gpiocdev.LineEventRisingEdge}
	select {
	case s.events <- e:
	default:
		s.log.Warnw("capture_edge_dropped", "offset", evt.Offset)
	}
}

// Next blocks for the first edge and then collects until the line goes idle.
func (s *GPIOSource) Next(ctx context.Context) ([]int, error) {
	var edges []edge
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case e := <-s.events:
		edges = append(edges, e)
	}

	timer := time.NewTimer(s.idle)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case e := <-s.events:
			edges = append(edges, e)
			timer.Reset(s.idle)
		case <-timer.C:
			return edgeDurations(edges, s.idle, s.activeLow), nil
		}
	}
}

func (s *GPIOSource) Close() error {
	if s.line == nil {
		return nil
	}
	return s.line.Close()
}

// edgeDurations converts edge timestamps into signed level durations in µs.
// A trailing space of idle length closes the last frame.
func edgeDurations(edges []edge, idle time.Duration, activeLow bool) []int {
	if len(edges) == 0 {
		return nil
	}
	out := make([]int, 0, len(edges))
	for i := 0; i+1 < len(edges); i++ {
		us := int((edges[i+1].at - edges[i].at) / time.Microsecond)
		if us <= 0 {
			continue
		}
		if edges[i].rising == activeLow {
			us = -us
		}
		out = append(out, us)
	}
	if last := edges[len(edges)-1]; last.rising == activeLow {
		out = append(out, -int(idle/time.Microsecond))
	}
	return out
}
