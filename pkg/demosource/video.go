package demosource

import (
	"sync"
	"time"

	"avsync/pkg/avsync"
)

// VideoSource is a synthetic VideoDecoder: it generates a moving-gradient
// RGBA test pattern at a fixed frame rate instead of decoding a real
// stream, so that demos and tests can drive the sync engine without a
// codec dependency.
type VideoSource struct {
	width, height int
	fps           float64

	queue *FrameQueue

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewVideoSource creates a synthetic source producing width x height
// frames at fps.
func NewVideoSource(width, height int, fps float64) *VideoSource {
	return &VideoSource{
		width:  width,
		height: height,
		fps:    fps,
		queue:  NewFrameQueue(),
	}
}

func (v *VideoSource) FrameQueue() avsync.FrameQueueView { return v.queue }

// PacketSize reports how many frames are queued awaiting display, used
// as a stand-in for a demuxer's compressed-packet backlog.
func (v *VideoSource) PacketSize() int {
	return v.queue.Size()
}

func (v *VideoSource) CodecContext() avsync.CodecContext {
	return avsync.CodecContext{Width: v.width, Height: v.height, PixFormat: "rgba"}
}

// Start launches the frame-generation goroutine.
func (v *VideoSource) Start() {
	v.mu.Lock()
	if v.running {
		v.mu.Unlock()
		return
	}
	v.running = true
	v.stopCh = make(chan struct{})
	v.mu.Unlock()

	v.wg.Add(1)
	go v.generate()
}

// Stop halts frame generation.
func (v *VideoSource) Stop() {
	v.mu.Lock()
	if !v.running {
		v.mu.Unlock()
		return
	}
	v.running = false
	close(v.stopCh)
	v.mu.Unlock()
	v.wg.Wait()
}

// Flush discards pending frames, as after a seek.
func (v *VideoSource) Flush() {
	v.queue.Reset()
}

func (v *VideoSource) generate() {
	defer v.wg.Done()

	period := time.Duration(float64(time.Second) / v.fps)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	var frameIdx int64
	for {
		select {
		case <-v.stopCh:
			return
		case <-ticker.C:
			pts := float64(frameIdx) / v.fps
			v.queue.Push(&avsync.Frame{
				PTS:      pts,
				Duration: 1.0 / v.fps,
				Pix:      testPattern(v.width, v.height, frameIdx),
				Width:    v.width,
				Height:   v.height,
				Stride:   v.width * 4,
			})
			frameIdx++
		}
	}
}

// testPattern renders a simple animated RGBA gradient so a DisplaySink
// has something visibly changing to present.
func testPattern(width, height int, frame int64) []byte {
	pix := make([]byte, width*height*4)
	shift := byte(frame % 256)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := (y*width + x) * 4
			pix[off+0] = byte(x) + shift
			pix[off+1] = byte(y) + shift
			pix[off+2] = shift
			pix[off+3] = 0xFF
		}
	}
	return pix
}
