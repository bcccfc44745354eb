package avsync

// Frame is a decoded picture plus the metadata the sync engine needs to
// schedule its presentation. The frame queue that produces Frames owns
// them; the engine only borrows the Frames it reads through
// FrameQueueView. Its one mutation happens when it renders a frame that
// is not yet Uploaded: it replaces Pix and Stride with the Scaler's RGBA
// output and sets Uploaded. The engine keeps no RGBA buffer of its own.
type Frame struct {
	PTS      float64 // presentation timestamp, seconds (NaN if unknown)
	Duration float64 // fallback duration, seconds, used when PTS deltas are pathological
	Serial   int     // generation counter, bumped on flush/seek

	Uploaded bool // true once ConvertToRGBA has run for this frame

	// Pix/Stride/Width/Height describe the raw pixel buffer as handed to
	// the Scaler. Width/Height are in pixels; Stride is in bytes.
	Pix    []byte
	Width  int
	Height int
	Stride int
}

// FrameQueueView is a read-only view over an externally owned, bounded
// queue of decoded frames. The engine never constructs or frees frames;
// it only peeks and pops through this interface.
type FrameQueueView interface {
	// Size returns the number of frames currently queued (not yet
	// popped) available for inspection via LastFrame/CurrentFrame/
	// NextFrame.
	Size() int

	// LastFrame returns the most recently displayed frame (the frame
	// popped just before CurrentFrame became current).
	LastFrame() *Frame

	// CurrentFrame returns the frame that is a candidate for display on
	// this tick.
	CurrentFrame() *Frame

	// NextFrame returns the frame after CurrentFrame. Only valid to call
	// when Size() >= 2.
	NextFrame() *Frame

	// PopFrame advances the queue, retiring CurrentFrame and promoting
	// NextFrame (if any) to CurrentFrame.
	PopFrame()

	// GetShowIndex returns the number of frames ever popped from this
	// queue (0 before the first pop). The engine uses this only to
	// gate the very first render: "has at least one frame ever been
	// shown".
	GetShowIndex() int
}

// PacketQueueView is a read-only size query over a demuxer queue, used
// only to regulate external-clock speed.
type PacketQueueView interface {
	// PacketSize returns the number of queued, not-yet-decoded packets.
	PacketSize() int
}

// CodecContext describes the geometry/format of a decoded video stream,
// as exposed by a VideoDecoder for use by a Scaler/DisplaySink.
type CodecContext struct {
	Width     int
	Height    int
	PixFormat string
}
