// Package display provides the reference DisplaySink implementation:
// an SDL2-backed surface, ported from the teacher's pkg/mpeg player
// (texture creation, Lock/Unlock pixel upload, letterboxed Copy).
package display

import (
	"fmt"
	"sync"

	"github.com/veandco/go-sdl2/sdl"
)

// SDLSink presents RGBA frames through an SDL2 renderer/texture pair,
// letterboxed to fit the renderer's output.
type SDLSink struct {
	mu sync.Mutex

	renderer *sdl.Renderer
	texture  *sdl.Texture

	texWidth, texHeight int32
}

// NewSDLSink wraps an already-created renderer. The texture itself is
// created lazily on the first Present, once the source frame's geometry
// is known.
func NewSDLSink(renderer *sdl.Renderer) *SDLSink {
	return &SDLSink{renderer: renderer}
}

// Present uploads pix to the texture (recreating it if the geometry
// changed) and draws it letterboxed into the renderer's current output
// size.
func (s *SDLSink) Present(pix []byte, stride int, width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.renderer == nil {
		return fmt.Errorf("avsync/display: no renderer attached")
	}

	if s.texture == nil || s.texWidth != int32(width) || s.texHeight != int32(height) {
		if s.texture != nil {
			s.texture.Destroy()
		}
		tex, err := s.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_RGBA32), sdl.TEXTUREACCESS_STREAMING, int32(width), int32(height))
		if err != nil {
			return fmt.Errorf("avsync/display: create texture: %w", err)
		}
		s.texture = tex
		s.texWidth, s.texHeight = int32(width), int32(height)
	}

	dstPixels, dstPitch, err := s.texture.Lock(nil)
	if err != nil {
		return fmt.Errorf("avsync/display: lock texture: %w", err)
	}
	defer s.texture.Unlock()

	// Stride mismatch between the source buffer and the destination
	// surface is handled here with a row-by-row copy, as the spec
	// requires.
	if stride == dstPitch {
		copy(dstPixels, pix)
	} else {
		rowBytes := stride
		if dstPitch < rowBytes {
			rowBytes = dstPitch
		}
		for y := 0; y < height; y++ {
			srcOff := y * stride
			dstOff := y * dstPitch
			if srcOff+rowBytes > len(pix) || dstOff+rowBytes > len(dstPixels) {
				break
			}
			copy(dstPixels[dstOff:dstOff+rowBytes], pix[srcOff:srcOff+rowBytes])
		}
	}

	outW, outH, err := s.renderer.GetOutputSize()
	if err != nil {
		return s.renderer.Copy(s.texture, nil, nil)
	}
	dst := letterbox(int32(width), int32(height), outW, outH)
	return s.renderer.Copy(s.texture, nil, &dst)
}

// Close destroys the texture. The renderer itself is owned by the
// caller, not this sink.
func (s *SDLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.texture != nil {
		s.texture.Destroy()
		s.texture = nil
	}
	return nil
}

func letterbox(srcW, srcH, dstW, dstH int32) sdl.Rect {
	if srcW == 0 || srcH == 0 {
		return sdl.Rect{W: dstW, H: dstH}
	}
	scaleW := float64(dstW) / float64(srcW)
	scaleH := float64(dstH) / float64(srcH)
	scale := scaleW
	if scaleH < scaleW {
		scale = scaleH
	}
	w := int32(float64(srcW) * scale)
	h := int32(float64(srcH) * scale)
	return sdl.Rect{
		X: (dstW - w) / 2,
		Y: (dstH - h) / 2,
		W: w,
		H: h,
	}
}
