package capture

import (
	"context"
	"errors"
	"fmt"
	"io"

	"fireplace_rf/internal/decoder"
	"fireplace_rf/internal/logger"
)

// Source yields one burst of signed pulse durations (µs) at a time.
type Source interface {
	Next(ctx context.Context) ([]int, error)
	Close() error
}

// Handler consumes decoded bursts.
type Handler interface {
	HandleCapture(ctx context.Context, durations []int) (decoder.Result, error)
}

// Run feeds every burst from src to h until ctx ends or the source is exhausted.
// Handler failures are logged and do not stop the loop.
func Run(ctx context.Context, src Source, h Handler, log *logger.Logger) error {
	log = logger.OrNop(log)
	for {
		burst, err := src.Next(ctx)
		switch {
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, io.EOF):
			log.Infow("capture_source_exhausted")
			return nil
		case err != nil:
			return fmt.Errorf("capture: %w", err)
		}
		if len(burst) == 0 {
			continue
		}

		res, err := h.HandleCapture(ctx, burst)
		if err != nil {
			log.Warnw("capture_handle_failed", "command", res.Command.String(), "err", err)
			continue
		}
		log.Infow("capture_decoded", "durations", len(burst), "command", res.Command.String())
	}
}
