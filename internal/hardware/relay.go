package hardware

import (
	"context"
	"errors"
	"fmt"

	"fireplace_rf/internal/fireplace"
	"fireplace_rf/internal/logger"

	"github.com/warthog618/go-gpiocdev"
)

// RelayConfig names the output lines that drive the appliance: one relay for
// the burner and optionally one line per power level.
type RelayConfig struct {
	Chip       string
	PowerLine  int
	LevelLines []int
	ActiveLow  bool
}

type outputLine interface {
	SetValue(value int) error
	Close() error
}

// RelayDriver actuates GPIO lines before committing a call. If a line cannot
// be driven the call is not committed.
type RelayDriver struct {
	power     outputLine
	levels    []outputLine
	activeLow bool
	log       *logger.Logger
}

func OpenRelay(cfg RelayConfig, log *logger.Logger) (*RelayDriver, error) {
	d := &RelayDriver{activeLow: cfg.ActiveLow, log: logger.OrNop(log)}
	inactive := d.level(false)

	power, err := gpiocdev.RequestLine(cfg.Chip, cfg.PowerLine, gpiocdev.AsOutput(inactive))
	if err != nil {
		return nil, fmt.Errorf("request power line %d: %w", cfg.PowerLine, err)
	}
	d.power = power
	for _, offset := range cfg.LevelLines {
		l, err := gpiocdev.RequestLine(cfg.Chip, offset, gpiocdev.AsOutput(inactive))
		if err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("request level line %d: %w", offset, err)
		}
		d.levels = append(d.levels, l)
	}
	return d, nil
}

func (d *RelayDriver) level(active bool) int {
	if active != d.activeLow {
		return 1
	}
	return 0
}

func (d *RelayDriver) Control(ctx context.Context, f *fireplace.Fireplace, c *fireplace.Call) error {
	target := f.State()
	if on, ok := c.State(); ok {
		target.On = on
	}
	if p, ok := c.Power(); ok {
		target.Power = p
	}

	if err := d.drive(target); err != nil {
		d.log.Errorw("relay_drive_failed", "state", target.String(), "err", err)
		return err
	}
	f.Apply(c)
	f.Publish(ctx)
	return nil
}

// drive switches the level lines before the burner so the appliance never
// runs at a stale level.
func (d *RelayDriver) drive(s fireplace.State) error {
	for i, l := range d.levels {
		if err := l.SetValue(d.level(s.On && s.Power == i+1)); err != nil {
			return fmt.Errorf("set level line %d: %w", i+1, err)
		}
	}
	if err := d.power.SetValue(d.level(s.On)); err != nil {
		return fmt.Errorf("set power line: %w", err)
	}
	return nil
}

// Close releases the lines, leaving them inactive.
func (d *RelayDriver) Close() error {
	var errs []error
	for _, l := range append([]outputLine{d.power}, d.levels...) {
		if l == nil {
			continue
		}
		if err := l.SetValue(d.level(false)); err != nil {
			errs = append(errs, err)
		}
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
