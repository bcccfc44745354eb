// Package avsync implements the audio/video synchronization engine: the
// part of a media player that decides when each decoded video frame is
// presented relative to a chosen master clock.
package avsync

// SyncConfig carries every tunable threshold the engine uses. Passing it
// as a value (rather than reaching for package-level constants) keeps the
// engine free of process-wide state, so multiple players in the same
// process can run with independent tuning.
type SyncConfig struct {
	// RefreshRate is the nominal period, in seconds, between refresh
	// ticks when no frame is due sooner.
	RefreshRate float64

	// AVSyncThresholdMin/Max clamp the delay used to compute the
	// correction window in calculateDelay.
	AVSyncThresholdMin float64
	AVSyncThresholdMax float64

	// AVSyncFrameDupThreshold gates the "linear add" correction branch:
	// only frames already this long get stretched instead of doubled.
	AVSyncFrameDupThreshold float64

	// NoSyncThreshold is the hysteresis band below which SyncToSlave is
	// a no-op.
	NoSyncThreshold float64

	// ExternalClockMinFrames/MaxFrames and the speed bounds/step govern
	// checkExternalClockSpeed.
	ExternalClockMinFrames int
	ExternalClockMaxFrames int
	ExternalClockSpeedMin  float64
	ExternalClockSpeedMax  float64
	ExternalClockSpeedStep float64

	// MaxFrameDuration bounds what counts as a credible inter-frame
	// delta; larger deltas are treated as a discontinuity (seek,
	// wraparound) rather than real playback timing.
	MaxFrameDuration float64

	// MinSpeed/MaxSpeed clamp Clock.SetSpeed.
	MinSpeed float64
	MaxSpeed float64
}

// DefaultSyncConfig returns the constants recommended by the spec,
// bit-compatible with common media-player behavior (ffplay-derived
// tuning).
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		RefreshRate:             0.01,
		AVSyncThresholdMin:      0.04,
		AVSyncThresholdMax:      0.1,
		AVSyncFrameDupThreshold: 0.1,
		NoSyncThreshold:         10.0,
		ExternalClockMinFrames:  2,
		ExternalClockMaxFrames:  10,
		ExternalClockSpeedMin:   0.9,
		ExternalClockSpeedMax:   1.1,
		ExternalClockSpeedStep:  0.001,
		MaxFrameDuration:        10.0,
		MinSpeed:                0.0,
		MaxSpeed:                100.0,
	}
}

// WithLiveMaxFrameDuration returns a copy of cfg tuned for a realtime/live
// source, where long stalls between frames (buffering) are still
// considered credible and should not trigger discontinuity handling.
func (c SyncConfig) WithLiveMaxFrameDuration() SyncConfig {
	c.MaxFrameDuration = 3600.0
	return c
}
