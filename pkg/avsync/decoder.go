package avsync

// MediaDecoder is the capability set shared by video and audio decoders.
// The engine holds decoders only as these interfaces — it never reaches
// back into a decoder beyond them, and a decoder never reaches into the
// engine except through the explicit UpdateAudioClock/UpdateExternalClock
// entry points.
type MediaDecoder interface {
	PacketQueueView
	CodecContext() CodecContext
	Start()
	Stop()
	Flush()
}

// VideoDecoder additionally exposes the frame queue the engine schedules
// against.
type VideoDecoder interface {
	MediaDecoder
	FrameQueue() FrameQueueView
}

// AudioDecoder is the audio-side capability set. The engine never reads
// frames from it directly; the audio decoder instead calls
// SyncEngine.UpdateAudioClock after each buffer it renders.
type AudioDecoder interface {
	MediaDecoder
}
