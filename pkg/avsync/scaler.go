package avsync

import "fmt"

// Scaler converts a decoded Frame's pixel buffer into a tightly packed
// RGBA buffer ready for DisplaySink.Present. It is injected into the
// engine so tests can substitute an identity implementation and so
// real players can swap in whatever conversion library fits their
// decoder's native pixel format.
type Scaler interface {
	ConvertToRGBA(src *Frame) (pix []byte, stride int, err error)
}

// IdentityScaler passes a frame's pixel buffer through unchanged. It is
// correct whenever the decoder already delivers RGBA8888 data, and is
// what the engine's tests use.
type IdentityScaler struct{}

func (IdentityScaler) ConvertToRGBA(src *Frame) ([]byte, int, error) {
	if src == nil {
		return nil, 0, fmt.Errorf("avsync: IdentityScaler: nil frame")
	}
	return src.Pix, src.Stride, nil
}

// BoxScaler performs a dependency-free nearest-neighbor resample from a
// source RGBA buffer of one geometry into a destination buffer of
// another. It exists for sources whose frames don't already match the
// configured display geometry (the demo harness's synthetic frames do
// match, and it uses IdentityScaler); it is not a substitute for a real
// swscale-grade filter.
type BoxScaler struct {
	DstWidth, DstHeight int
}

func (s BoxScaler) ConvertToRGBA(src *Frame) ([]byte, int, error) {
	if src == nil {
		return nil, 0, fmt.Errorf("avsync: BoxScaler: nil frame")
	}
	if s.DstWidth <= 0 || s.DstHeight <= 0 || (s.DstWidth == src.Width && s.DstHeight == src.Height) {
		return src.Pix, src.Stride, nil
	}

	dstStride := s.DstWidth * 4
	dst := make([]byte, dstStride*s.DstHeight)
	for y := 0; y < s.DstHeight; y++ {
		srcY := y * src.Height / s.DstHeight
		for x := 0; x < s.DstWidth; x++ {
			srcX := x * src.Width / s.DstWidth
			srcOff := srcY*src.Stride + srcX*4
			dstOff := y*dstStride + x*4
			if srcOff+4 > len(src.Pix) || dstOff+4 > len(dst) {
				continue
			}
			copy(dst[dstOff:dstOff+4], src.Pix[srcOff:srcOff+4])
		}
	}
	return dst, dstStride, nil
}
