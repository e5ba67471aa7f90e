package models

import "time"

// Event types written to the fireplace log.
const (
	EventTurnOn    = "TURN_ON"
	EventTurnOff   = "TURN_OFF"
	EventPowerSet  = "POWER_SET"
	EventPresetSet = "PRESET_SET"
	EventCommand   = "COMMAND"
	EventUnknown   = "UNKNOWN_CODE"
)

// FireplaceEvent is a single log entry.
type FireplaceEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
