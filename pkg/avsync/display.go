package avsync

// DisplaySink is the abstract surface the engine presents converted RGBA
// frames to. It hides windowing entirely: callers provide an
// implementation (the reference one, in package display, wraps an SDL2
// renderer/texture pair the way the teacher's player does).
type DisplaySink interface {
	// Present uploads pix (already in RGBA8888 layout, with the given
	// stride in bytes) sized width x height and draws it to the
	// surface. Implementations handle stride mismatch between the
	// source buffer and the destination surface via row-by-row copy.
	Present(pix []byte, stride int, width, height int) error

	// Close releases any resources (texture, renderer handle) the sink
	// owns.
	Close() error
}

// NopDisplaySink discards every frame. It is useful for headless runs
// and as the zero-value sink before SetSurface is first called.
type NopDisplaySink struct{}

func (NopDisplaySink) Present([]byte, int, int, int) error { return nil }
func (NopDisplaySink) Close() error                         { return nil }
