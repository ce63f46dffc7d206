package activity

import (
	"encoding/json"

	"pocketchat/pkg/config"
	"pocketchat/pkg/logger"
	"pocketchat/pkg/store"
)

const settingsKey = "settings:activity"

// Settings is the persisted activity-monitor record. Interval is in
// seconds, matching the stored representation.
type Settings struct {
	Enabled  bool `json:"enabled"`
	Interval int  `json:"interval"`
}

// DefaultSettings returns the documented fallback: disabled, 300s.
func DefaultSettings() Settings {
	return Settings{Enabled: false, Interval: config.DefaultActivityInterval}
}

// Normalize replaces out-of-range values with defaults.
func (s Settings) Normalize() Settings {
	if s.Interval <= 0 {
		s.Interval = config.DefaultActivityInterval
	}
	return s
}

// LoadSettings reads the stored record. Missing or malformed entries fall
// back to defaults; this never fails the caller.
func LoadSettings() Settings {
	return LoadSettingsOr(DefaultSettings())
}

// LoadSettingsOr is LoadSettings with a caller-supplied fallback for a
// missing record. A persisted record always wins over the fallback.
func LoadSettingsOr(fallback Settings) Settings {
	raw, err := store.GetKey(settingsKey)
	if err != nil {
		return fallback.Normalize()
	}
	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		logger.Warn("activity_settings_corrupt", "error", err)
		return DefaultSettings()
	}
	return s.Normalize()
}

// SaveSettings persists the record. Called on explicit save actions only.
func SaveSettings(s Settings) error {
	b, err := json.Marshal(s.Normalize())
	if err != nil {
		return err
	}
	return store.SaveKey(settingsKey, b)
}
