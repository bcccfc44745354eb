package avsync

// SyncType selects which of the three clocks is the master that other
// streams are resynchronized against.
type SyncType int

const (
	SyncAudio SyncType = iota
	SyncVideo
	SyncExternal
)

func (t SyncType) String() string {
	switch t {
	case SyncAudio:
		return "audio"
	case SyncVideo:
		return "video"
	case SyncExternal:
		return "external"
	default:
		return "unknown"
	}
}

// PlayerState is the read-only (from the engine's perspective) set of
// flags a surrounding player publishes to the sync loop. It is owned and
// mutated by a single controller goroutine; the refresh loop only reads
// it, and tolerates the same mild staleness the spec allows for
// audio-clock reads.
type PlayerState struct {
	SyncType       SyncType
	PauseRequest   bool
	AbortRequest   bool
	FrameDrop      bool
	DisplayDisable bool
	RealTime       bool
}
