package fireplace

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// RestoreStateVersion changes whenever the RestoreRecord layout changes.
const RestoreStateVersion uint32 = 0x71700ABA

// NoPreset marks a record without an active preset.
const NoPreset = -1

var ErrRecordVersion = errors.New("restore record version mismatch")

// RestoreMode decides the state applied at startup.
type RestoreMode int

const (
	NoRestore RestoreMode = iota
	AlwaysOff
	AlwaysOn
	RestoreDefaultOff
	RestoreDefaultOn
	RestoreInvertedDefaultOff
	RestoreInvertedDefaultOn
)

var restoreModeNames = []string{
	NoRestore:                 "NO_RESTORE",
	AlwaysOff:                 "ALWAYS_OFF",
	AlwaysOn:                  "ALWAYS_ON",
	RestoreDefaultOff:         "RESTORE_DEFAULT_OFF",
	RestoreDefaultOn:          "RESTORE_DEFAULT_ON",
	RestoreInvertedDefaultOff: "RESTORE_INVERTED_DEFAULT_OFF",
	RestoreInvertedDefaultOn:  "RESTORE_INVERTED_DEFAULT_ON",
}

func (m RestoreMode) String() string {
	if m < 0 || int(m) >= len(restoreModeNames) {
		return fmt.Sprintf("RestoreMode(%d)", int(m))
	}
	return restoreModeNames[m]
}

// ParseRestoreMode accepts the upper-case names, case-insensitively.
func ParseRestoreMode(s string) (RestoreMode, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range restoreModeNames {
		if n == name {
			return RestoreMode(i), nil
		}
	}
	return NoRestore, fmt.Errorf("unknown restore mode %q", s)
}

// Resolve picks the record to apply at startup. ok is false when nothing should be applied.
func (m RestoreMode) Resolve(stored RestoreRecord, found bool) (rec RestoreRecord, ok bool) {
	if !found {
		stored = RestoreRecord{Version: RestoreStateVersion, PresetIndex: NoPreset}
	}
	switch m {
	case AlwaysOff:
		stored.On = false
	case AlwaysOn:
		stored.On = true
	case RestoreDefaultOff:
		stored.On = found && stored.On
	case RestoreDefaultOn:
		stored.On = !found || stored.On
	case RestoreInvertedDefaultOff:
		stored.On = found && !stored.On
	case RestoreInvertedDefaultOn:
		stored.On = !found || !stored.On
	default:
		return RestoreRecord{}, false
	}
	return stored, true
}

// RestoreRecord is the persisted form of the fireplace state.
type RestoreRecord struct {
	_           struct{} `cbor:",toarray"`
	Version     uint32
	On          bool
	Power       int
	PresetIndex int
}

// MarshalRecord encodes r with the current version.
func MarshalRecord(r RestoreRecord) ([]byte, error) {
	r.Version = RestoreStateVersion
	return cbor.Marshal(r)
}

// UnmarshalRecord decodes data and rejects records of another version.
func UnmarshalRecord(data []byte) (RestoreRecord, error) {
	var r RestoreRecord
	if err := cbor.Unmarshal(data, &r); err != nil {
		return RestoreRecord{}, fmt.Errorf("decode restore record: %w", err)
	}
	if r.Version != RestoreStateVersion {
		return RestoreRecord{}, fmt.Errorf("%w: got %#x", ErrRecordVersion, r.Version)
	}
	return r, nil
}

// RestoreKey derives the storage key for an entity.
func RestoreKey(objectID string) uint32 {
	h := fnv.New32()
	_, _ = h.Write([]byte(objectID))
	return h.Sum32() ^ RestoreStateVersion
}

// Preferences is the key/value backend the fireplace persists into.
// Load returns nil data and a nil error when the key is absent.
type Preferences interface {
	Load(ctx context.Context, key uint32) ([]byte, error)
	Save(ctx context.Context, key uint32, data []byte) error
}

func (f *Fireplace) recordOf(s State) RestoreRecord {
	return RestoreRecord{
		Version:     RestoreStateVersion,
		On:          s.On,
		Power:       s.Power,
		PresetIndex: f.traits.PresetIndex(s.PresetMode),
	}
}

// toCall turns a record into a call that reproduces it.
func (f *Fireplace) toCall(r RestoreRecord) *Call {
	call := f.MakeCall().SetState(r.On)
	if f.traits.SupportsPower() && r.Power > 0 {
		call.SetPower(r.Power)
	}
	if preset, ok := f.traits.PresetAt(r.PresetIndex); ok {
		call.SetPresetMode(preset)
	}
	return call
}

func (f *Fireplace) loadRecord(ctx context.Context) (RestoreRecord, bool) {
	if f.prefs == nil {
		return RestoreRecord{}, false
	}
	data, err := f.prefs.Load(ctx, f.key)
	if err != nil {
		f.log.Errorw("restore_load_failed", "name", f.name, "err", err)
		return RestoreRecord{}, false
	}
	if data == nil {
		f.log.Debugw("restore_no_record", "name", f.name)
		return RestoreRecord{}, false
	}
	rec, err := UnmarshalRecord(data)
	if err != nil {
		f.log.Warnw("restore_record_discarded", "name", f.name, "err", err)
		return RestoreRecord{}, false
	}
	return rec, true
}

func (f *Fireplace) saveState(ctx context.Context, s State) {
	if f.prefs == nil {
		return
	}
	data, err := MarshalRecord(f.recordOf(s))
	if err != nil {
		f.log.Errorw("restore_encode_failed", "name", f.name, "err", err)
		return
	}
	if err := f.prefs.Save(ctx, f.key, data); err != nil {
		f.log.Errorw("restore_save_failed", "name", f.name, "err", err)
	}
}
