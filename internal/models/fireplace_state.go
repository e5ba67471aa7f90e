package models

import "time"

// FireplaceSnapshot is the API view of the fireplace: its state plus what it supports.
type FireplaceSnapshot struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	On            bool      `json:"on"`
	Power         int       `json:"power"`
	PresetMode    string    `json:"preset_mode,omitempty"`
	SupportsPower bool      `json:"supports_power"`
	PowerCount    int       `json:"power_count"`
	PresetModes   []string  `json:"preset_modes,omitempty"`
	RestoreMode   string    `json:"restore_mode"`
	UpdatedAt     time.Time `json:"updated_at"`
}
