package fireplace

import (
	"context"
	"strings"
	"sync"

	"fireplace_rf/internal/logger"
)

// Config describes one fireplace entity.
type Config struct {
	ID          string
	Name        string
	Traits      Traits
	RestoreMode RestoreMode
}

// Fireplace is the single controllable appliance of the process. Calls are
// expected to be serialised by the caller; concurrent readers may use State.
type Fireplace struct {
	id          string
	name        string
	key         uint32
	traits      Traits
	restoreMode RestoreMode

	driver   Driver
	prefs    Preferences
	log      *logger.Logger
	notifier Notifier

	mu    sync.RWMutex
	state State
	busy  bool
}

// New builds a fireplace. A nil driver commits calls without hardware,
// a nil prefs disables persistence.
func New(cfg Config, driver Driver, prefs Preferences, log *logger.Logger) *Fireplace {
	if driver == nil {
		driver = StateDriver{}
	}
	id := cfg.ID
	if id == "" {
		id = objectID(cfg.Name)
	}
	return &Fireplace{
		id:          id,
		name:        cfg.Name,
		key:         RestoreKey(id),
		traits:      cfg.Traits,
		restoreMode: cfg.RestoreMode,
		driver:      driver,
		prefs:       prefs,
		log:         logger.OrNop(log),
	}
}

// objectID mirrors how entity ids are derived from display names.
func objectID(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (f *Fireplace) ID() string               { return f.id }
func (f *Fireplace) Name() string             { return f.name }
func (f *Fireplace) Traits() Traits           { return f.traits }
func (f *Fireplace) RestoreMode() RestoreMode { return f.restoreMode }

// State returns a snapshot of the current state.
func (f *Fireplace) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

func (f *Fireplace) MakeCall() *Call { return &Call{parent: f} }

func (f *Fireplace) TurnOn() *Call { return f.MakeCall().SetState(true) }

func (f *Fireplace) TurnOff() *Call { return f.MakeCall().SetState(false) }

func (f *Fireplace) Toggle() *Call { return f.MakeCall().SetState(!f.State().On) }

// Subscribe registers fn to run after every committed state change.
func (f *Fireplace) Subscribe(fn func(State)) SubscriptionID {
	return f.notifier.Subscribe(fn)
}

func (f *Fireplace) Unsubscribe(id SubscriptionID) bool {
	return f.notifier.Unsubscribe(id)
}

// Apply commits the validated fields of c to the state.
func (f *Fireplace) Apply(c *Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if on, ok := c.State(); ok {
		f.state.On = on
	}
	if p, ok := c.Power(); ok {
		f.state.Power = p
	}
	if m := c.PresetMode(); m != "" {
		f.state.PresetMode = m
	}
}

// Publish reports the current state: it is logged, persisted and then
// delivered to subscribers. Storage failures are logged only.
func (f *Fireplace) Publish(ctx context.Context) {
	s := f.State()

	fields := []any{"name", f.name, "state", onOff(s.On)}
	if f.traits.SupportsPower() {
		fields = append(fields, "power", s.Power)
	}
	if f.traits.SupportsPresets() && s.PresetMode != "" {
		fields = append(fields, "preset_mode", s.PresetMode)
	}
	f.log.Debugw("publish_state", fields...)

	f.saveState(ctx, s)
	f.notifier.Notify(s)
}

// Setup restores the startup state according to the restore mode and
// publishes it exactly once.
func (f *Fireplace) Setup(ctx context.Context) error {
	stored, found := f.loadRecord(ctx)
	rec, ok := f.restoreMode.Resolve(stored, found)
	if !ok {
		if !f.enter() {
			return ErrCallInProgress
		}
		defer f.leave()
		f.Publish(ctx)
		return nil
	}
	f.log.Debugw("restore_state",
		"name", f.name,
		"mode", f.restoreMode.String(),
		"found", found,
		"state", onOff(rec.On),
		"power", rec.Power,
		"preset_index", rec.PresetIndex,
	)
	return f.toCall(rec).Perform(ctx)
}

// LogConfig writes the entity configuration and traits at startup.
func (f *Fireplace) LogConfig() {
	f.log.Infow("fireplace_config",
		"name", f.name,
		"id", f.id,
		"restore_mode", f.restoreMode.String(),
	)
	if f.traits.SupportsPower() {
		f.log.Infow("fireplace_traits", "power", "YES", "power_count", f.traits.PowerCount())
	}
	if f.traits.SupportsPresets() {
		f.log.Infow("fireplace_traits", "supported_presets", f.traits.PresetModes())
	}
}

func (f *Fireplace) enter() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return false
	}
	f.busy = true
	return true
}

func (f *Fireplace) leave() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}
