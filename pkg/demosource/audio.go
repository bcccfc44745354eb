package demosource

import (
	"sync"
	"time"

	"avsync/pkg/avsync"
)

// AudioSource is a synthetic AudioDecoder: it calls back into a
// SyncEngine's UpdateAudioClock at a fixed buffer cadence, standing in
// for a real audio render path without any resampling/mixing (out of
// this module's scope).
type AudioSource struct {
	bufferDuration time.Duration
	update         func(pts float64, at time.Time)

	backlog int

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewAudioSource creates a synthetic source that invokes update every
// bufferDuration, as if that much audio had just finished rendering.
func NewAudioSource(bufferDuration time.Duration, update func(pts float64, at time.Time)) *AudioSource {
	return &AudioSource{bufferDuration: bufferDuration, update: update}
}

func (a *AudioSource) PacketSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.backlog
}

func (a *AudioSource) CodecContext() avsync.CodecContext {
	return avsync.CodecContext{} // audio has no video geometry
}

func (a *AudioSource) Start() {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return
	}
	a.running = true
	a.stopCh = make(chan struct{})
	a.mu.Unlock()

	a.wg.Add(1)
	go a.generate()
}

func (a *AudioSource) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	close(a.stopCh)
	a.mu.Unlock()
	a.wg.Wait()
}

func (a *AudioSource) Flush() {
	a.mu.Lock()
	a.backlog = 0
	a.mu.Unlock()
}

func (a *AudioSource) generate() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.bufferDuration)
	defer ticker.Stop()

	var pts float64
	start := time.Now()
	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			now := time.Now()
			a.mu.Lock()
			a.backlog = 5 // a steady, healthy backlog in "buffers queued"
			a.mu.Unlock()
			pts = now.Sub(start).Seconds()
			a.update(pts, now)
		}
	}
}
