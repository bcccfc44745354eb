// Package settings persists the handful of user-tunable defaults the
// demo player remembers across restarts: initial playback speed and
// preferred sync mode. Adapted from the teacher's pkg/settings, same
// resilience policy (missing/malformed file -> defaults, never an
// error the caller has to handle).
package settings

import (
	"encoding/json"
	"os"
)

// Settings is the persisted subset of player configuration.
type Settings struct {
	PlaybackSpeed float64 `json:"playbackSpeed"`
	SyncType      string  `json:"syncType"` // "audio", "video", or "external"
}

var defaultSettings = Settings{
	PlaybackSpeed: 1.0,
	SyncType:      "audio",
}

const filename = "avplay-settings.json"

// Load reads the settings file from disk. When the file is missing or
// cannot be parsed, sane defaults are returned instead so the demo
// binary can always start.
func Load() Settings {
	f, err := os.Open(filename)
	if err != nil {
		return defaultSettings
	}
	defer f.Close()

	var s Settings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return defaultSettings
	}

	if s.PlaybackSpeed <= 0 {
		s.PlaybackSpeed = defaultSettings.PlaybackSpeed
	}
	if s.SyncType == "" {
		s.SyncType = defaultSettings.SyncType
	}
	return s
}

// Save writes the provided settings to disk, creating the file when
// necessary.
func Save(s Settings) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
