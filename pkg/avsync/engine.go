package avsync

import (
	"math"
	"sync"
	"time"
)

// DiagnosticsSink receives observability-only signals from the refresh
// loop. Nothing it records feeds back into a scheduling decision; see
// package diagnostics for the reference implementation.
type DiagnosticsSink interface {
	RecordTick(latency time.Duration)
	RecordDrop()
	RecordDuplicate()
}

// engineState is the coarse lifecycle state machine described in the
// spec: Idle -> Running -> Stopped, with Playing/Paused as a sub-state
// of Running driven by PlayerState.
type engineState int

const (
	stateIdle engineState = iota
	stateRunning
	stateStopped
)

// SyncEngine owns the three logical clocks (audio, video, external), runs
// the periodic refresh loop that times video presentation, and drives a
// DisplaySink. The video-clock update in refreshVideo, together with the
// extClock slaving that follows it, and every surface swap happen under
// mu so that observers taking the same lock see consistent pairs.
// UpdateAudioClock, UpdateExternalClock and checkExternalClockSpeed write
// extClock without taking mu; Clock's own mutex guards those writes.
type SyncEngine struct {
	cfg   SyncConfig
	state *PlayerState
	diag  DiagnosticsSink

	mu    sync.Mutex
	sink  DisplaySink
	scaler Scaler

	audioClock *Clock
	videoClock *Clock
	extClock   *Clock

	video VideoDecoder
	audio AudioDecoder

	frameTimer        float64
	frameTimerRefresh bool
	maxFrameDuration  float64
	forceRefresh      bool

	lifecycle engineState
	abort     bool
	done      chan struct{}
	wakeup    chan struct{}
	wg        sync.WaitGroup

	clockSerial int
}

// NewSyncEngine constructs an engine in the Idle state. sink and scaler
// may be nil; sink defaults to NopDisplaySink and scaler to
// IdentityScaler until SetSurface/SetScaler are called. diag may be nil.
func NewSyncEngine(cfg SyncConfig, state *PlayerState, sink DisplaySink, scaler Scaler, diag DiagnosticsSink) *SyncEngine {
	if sink == nil {
		sink = NopDisplaySink{}
	}
	if scaler == nil {
		scaler = IdentityScaler{}
	}
	e := &SyncEngine{
		cfg:              cfg,
		state:            state,
		diag:             diag,
		sink:             sink,
		scaler:           scaler,
		maxFrameDuration: cfg.MaxFrameDuration,
		lifecycle:        stateIdle,
		wakeup:           make(chan struct{}, 1),
	}
	e.audioClock = NewClock(nil, cfg)
	e.videoClock = NewClock(nil, cfg)
	e.extClock = NewClock(nil, cfg)
	return e
}

// Start attaches the decoders and launches the refresh goroutine. It is
// the caller's responsibility to ensure video/audio are fully
// initialized (codec context, frame queue wired up) before calling.
func (e *SyncEngine) Start(video VideoDecoder, audio AudioDecoder) {
	e.mu.Lock()
	e.video = video
	e.audio = audio
	e.abort = false
	already := e.lifecycle == stateRunning
	e.lifecycle = stateRunning
	e.mu.Unlock()

	if already {
		return
	}

	e.done = make(chan struct{})
	e.wg.Add(1)
	go e.run()
}

// Stop raises the abort flag, wakes a pending sleep, and joins the
// refresh goroutine. It is idempotent.
func (e *SyncEngine) Stop() {
	e.mu.Lock()
	if e.lifecycle != stateRunning {
		e.mu.Unlock()
		return
	}
	e.abort = true
	e.lifecycle = stateStopped
	done := e.done
	e.mu.Unlock()

	e.signalWakeup()
	if done != nil {
		<-done
	}
	e.wg.Wait()
}

// SetSurface installs a new DisplaySink, releasing the previous one
// under the engine mutex so no render is ever in flight across the
// swap.
func (e *SyncEngine) SetSurface(sink DisplaySink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if sink == nil {
		sink = NopDisplaySink{}
	}
	if e.sink != nil {
		_ = e.sink.Close()
	}
	e.sink = sink
}

// SetScaler swaps the pixel-conversion strategy.
func (e *SyncEngine) SetScaler(scaler Scaler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if scaler == nil {
		scaler = IdentityScaler{}
	}
	e.scaler = scaler
}

// SetMaxDuration overrides the credible inter-frame delta bound, e.g.
// switching between a VOD and a live source.
func (e *SyncEngine) SetMaxDuration(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxFrameDuration = seconds
}

// RefreshVideoTimer requests that, on the next tick, frameTimer be reset
// to the wall time observed by that tick. Called after a seek completes.
func (e *SyncEngine) RefreshVideoTimer() {
	e.mu.Lock()
	e.frameTimerRefresh = true
	e.mu.Unlock()
	e.signalWakeup()
}

// UpdateAudioClock is called by the audio decoder after each rendered
// buffer. It does not take the engine mutex: it is anchored purely by
// monotonic wall time, and reads of it tolerate mild staleness.
func (e *SyncEngine) UpdateAudioClock(pts float64, at time.Time) {
	e.audioClock.SetAt(pts, e.clockSerial, at)
	e.extClock.SyncToSlave(e.audioClock, e.cfg.NoSyncThreshold)
}

// UpdateExternalClock is called by an external (wall-clock) source.
func (e *SyncEngine) UpdateExternalClock(pts float64) {
	e.extClock.Set(pts, e.clockSerial)
}

// GetAudioDiffClock returns audioClock - masterClock, in seconds.
func (e *SyncEngine) GetAudioDiffClock() float64 {
	return e.audioClock.Get() - e.GetMasterClock()
}

// GetMasterClock returns the clock selected by PlayerState.SyncType.
func (e *SyncEngine) GetMasterClock() float64 {
	switch e.state.SyncType {
	case SyncVideo:
		return e.videoClock.Get()
	case SyncExternal:
		return e.extClock.Get()
	default:
		return e.audioClock.Get()
	}
}

func (e *SyncEngine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

// run is the dedicated refresh-loop goroutine.
func (e *SyncEngine) run() {
	defer e.wg.Done()
	defer close(e.done)

	remaining := 0.0
	for {
		if e.isAborted() {
			return
		}

		if remaining > 0 {
			e.sleep(remaining)
		}
		remaining = e.cfg.RefreshRate

		if e.isAborted() {
			return
		}

		e.mu.Lock()
		shouldRefresh := !e.state.PauseRequest || e.forceRefresh
		e.mu.Unlock()

		if shouldRefresh {
			start := time.Now()
			e.refreshVideo(&remaining)
			if e.diag != nil {
				e.diag.RecordTick(time.Since(start))
			}
		}
	}
}

func (e *SyncEngine) isAborted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.abort || e.state.AbortRequest
}

// sleep waits up to seconds or until Stop()/RefreshVideoTimer() signals
// the wakeup channel, whichever comes first.
func (e *SyncEngine) sleep(seconds float64) {
	timer := time.NewTimer(time.Duration(seconds * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-e.wakeup:
	}
}

// refreshVideo is the single-evaluation decision point described in the
// spec. It is expressed as a Go labeled loop so the "break to skip the
// rest of this tick" / "continue to retry after a drop" control flow of
// the reference implementation's for(;;) block translates directly.
func (e *SyncEngine) refreshVideo(remaining *float64) {
	if e.state.RealTime && e.state.SyncType == SyncExternal {
		e.checkExternalClockSpeed()
	}

decision:
	for {
		if e.isAborted() || e.video == nil {
			break decision
		}

		fq := e.video.FrameQueue()
		if fq.Size() <= 0 {
			break decision
		}

		last := fq.LastFrame()
		current := fq.CurrentFrame()

		e.mu.Lock()
		if e.frameTimerRefresh {
			e.frameTimer = nowSeconds()
			e.frameTimerRefresh = false
		}
		frameTimer := e.frameTimer
		e.mu.Unlock()

		if e.state.AbortRequest || e.state.PauseRequest {
			break decision
		}

		lastDuration := e.calculateDuration(last, current)
		delay := e.calculateDelay(lastDuration)

		now := nowSeconds()
		if now < frameTimer+delay {
			wait := frameTimer + delay - now
			if wait < *remaining {
				*remaining = wait
			}
			break decision
		}

		frameTimer += delay
		if delay > 0 && now-frameTimer > e.cfg.AVSyncThresholdMax {
			frameTimer = now
		}
		if delay > lastDuration && e.diag != nil {
			// The last frame stayed on screen longer than its own
			// duration to slow down relative to the master.
			e.diag.RecordDuplicate()
		}

		e.mu.Lock()
		e.frameTimer = frameTimer
		if !math.IsNaN(current.PTS) {
			e.videoClock.Set(current.PTS, e.clockSerial)
			e.extClock.SyncToSlave(e.videoClock, e.cfg.NoSyncThreshold)
		}
		e.mu.Unlock()

		if fq.Size() > 1 {
			next := fq.NextFrame()
			duration := e.calculateDuration(current, next)
			if now > frameTimer+duration && e.state.FrameDrop && e.state.SyncType != SyncVideo {
				fq.PopFrame()
				if e.diag != nil {
					e.diag.RecordDrop()
				}
				continue decision
			}
		}

		fq.PopFrame()
		e.mu.Lock()
		e.forceRefresh = true
		e.mu.Unlock()
		break decision
	}

	e.mu.Lock()
	forceRefresh := e.forceRefresh
	scaler := e.scaler
	e.mu.Unlock()

	if !e.state.DisplayDisable && forceRefresh && e.video != nil && e.video.FrameQueue().GetShowIndex() != 0 {
		e.renderVideo(scaler)
	}

	e.mu.Lock()
	e.forceRefresh = false
	e.mu.Unlock()
}

func (e *SyncEngine) renderVideo(scaler Scaler) {
	if e.video == nil {
		return
	}
	fq := e.video.FrameQueue()
	vp := fq.LastFrame()
	if vp == nil {
		return
	}

	if !vp.Uploaded {
		pix, stride, err := scaler.ConvertToRGBA(vp)
		if err != nil {
			// Scaler initialization/conversion failure: skip this
			// render, retry on the next tick.
			return
		}
		vp.Pix = pix
		vp.Stride = stride
		vp.Uploaded = true
	}

	cc := e.video.CodecContext()
	e.mu.Lock()
	defer e.mu.Unlock()
	_ = e.sink.Present(vp.Pix, vp.Stride, cc.Width, cc.Height)
}

// checkExternalClockSpeed regulates extClock's speed so buffer occupancy
// stays healthy: slow down when starved, speed up when flush, otherwise
// pull back toward 1.0.
func (e *SyncEngine) checkExternalClockSpeed() {
	videoStarved := e.video != nil && e.video.PacketSize() <= e.cfg.ExternalClockMinFrames
	audioStarved := e.audio != nil && e.audio.PacketSize() <= e.cfg.ExternalClockMinFrames

	videoFlush := e.video == nil || e.video.PacketSize() > e.cfg.ExternalClockMaxFrames
	audioFlush := e.audio == nil || e.audio.PacketSize() > e.cfg.ExternalClockMaxFrames

	speed := e.extClock.Speed()
	switch {
	case videoStarved || audioStarved:
		newSpeed := speed - e.cfg.ExternalClockSpeedStep
		if newSpeed < e.cfg.ExternalClockSpeedMin {
			newSpeed = e.cfg.ExternalClockSpeedMin
		}
		e.extClock.SetSpeed(newSpeed)
	case videoFlush && audioFlush:
		newSpeed := speed + e.cfg.ExternalClockSpeedStep
		if newSpeed > e.cfg.ExternalClockSpeedMax {
			newSpeed = e.cfg.ExternalClockSpeedMax
		}
		e.extClock.SetSpeed(newSpeed)
	default:
		if speed != 1.0 {
			step := e.cfg.ExternalClockSpeedStep * (1.0 - speed) / math.Abs(1.0-speed)
			e.extClock.SetSpeed(speed + step)
		}
	}
}

// calculateDelay is the identity when the master is the video clock
// itself (no point correcting a stream against its own clock). Otherwise
// it applies the asymmetric correction described in the spec: aggressive
// catch-up when video is behind, mild hold when it is ahead.
func (e *SyncEngine) calculateDelay(delay float64) float64 {
	if e.state.SyncType == SyncVideo {
		return delay
	}

	diff := e.videoClock.Get() - e.GetMasterClock()
	syncThreshold := clamp(delay, e.cfg.AVSyncThresholdMin, e.cfg.AVSyncThresholdMax)

	if math.IsNaN(diff) || math.Abs(diff) >= e.maxFrameDuration {
		return delay
	}

	switch {
	case diff <= -syncThreshold:
		return math.Max(0, delay+diff)
	case diff >= syncThreshold && delay > e.cfg.AVSyncFrameDupThreshold:
		return delay + diff
	case diff >= syncThreshold:
		return 2 * delay
	default:
		return delay
	}
}

// calculateDuration guards against PTS discontinuities at seek/
// wraparound by falling back to the frame's own declared duration
// whenever the inter-frame delta isn't credible.
func (e *SyncEngine) calculateDuration(a, b *Frame) float64 {
	if a == nil || b == nil {
		if a != nil {
			return a.Duration
		}
		return 0
	}
	d := b.PTS - a.PTS
	if math.IsNaN(d) || d <= 0 || d > e.maxFrameDuration {
		return a.Duration
	}
	return d
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nowSeconds() float64 {
	return secondsSince(time.Now())
}
