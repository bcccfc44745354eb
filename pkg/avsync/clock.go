package avsync

import (
	"math"
	"sync"
	"time"
)

// Clock is a single monotonic presentation-time estimator. It stores the
// drift between the last anchored PTS and the wall clock at anchor time
// rather than extrapolating from the PTS directly, which makes it robust
// to irregular update cadence (see Clock.Get).
type Clock struct {
	mu sync.Mutex

	pts         float64 // last anchored media timestamp, seconds (NaN = unset)
	ptsDrift    float64 // pts - wallAtAnchor
	lastUpdated time.Time
	speed       float64
	paused      bool
	serial      int

	// queueSerial, when non-nil, is compared against serial on every
	// read: a mismatch means the underlying frame/packet queue has moved
	// on (e.g. after a flush) and this clock's anchor is stale.
	queueSerial *int

	minSpeed, maxSpeed float64
}

// NewClock creates a Clock in the unset (NaN) state with speed 1.0.
// queueSerial may be nil if the clock is not associated with a queue that
// tracks flush generations.
func NewClock(queueSerial *int, cfg SyncConfig) *Clock {
	return &Clock{
		pts:         math.NaN(),
		ptsDrift:    math.NaN(),
		speed:       1.0,
		serial:      -1,
		minSpeed:    cfg.MinSpeed,
		maxSpeed:    cfg.MaxSpeed,
		queueSerial: queueSerial, // nil disables the staleness check
	}
}

// Set anchors the clock at the given pts/serial, with "now" as the wall
// time of the anchor.
func (c *Clock) Set(pts float64, serial int) {
	c.SetAt(pts, serial, time.Now())
}

// SetAt anchors the clock at the given pts/serial at an explicit wall
// time, used by tests and by callers that already captured "now".
func (c *Clock) SetAt(pts float64, serial int, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(pts, serial, at)
}

func (c *Clock) setLocked(pts float64, serial int, at time.Time) {
	c.pts = pts
	c.lastUpdated = at
	c.ptsDrift = pts - secondsSince(at)
	c.serial = serial
}

// SetSpeed changes the playback rate, re-anchoring the clock so that Get
// remains continuous across the change.
func (c *Clock) SetSpeed(speed float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if speed < c.minSpeed {
		speed = c.minSpeed
	}
	if speed > c.maxSpeed {
		speed = c.maxSpeed
	}
	current := c.getLocked()
	c.setLocked(current, c.serial, time.Now())
	c.speed = speed
}

// Speed returns the current playback rate.
func (c *Clock) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// SetPaused freezes (or unfreezes) the clock at its current value.
func (c *Clock) SetPaused(paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = paused
}

// Paused reports whether the clock is currently frozen.
func (c *Clock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Get returns the clock's current estimate of presentation time in
// seconds, or NaN if the clock is unset or its serial is stale relative
// to the associated queue.
func (c *Clock) Get() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked()
}

func (c *Clock) getLocked() float64 {
	if c.queueSerial != nil && *c.queueSerial != c.serial {
		return math.NaN()
	}
	if c.paused {
		return c.pts
	}
	now := secondsSince(time.Now())
	return c.ptsDrift + now - (now-secondsSince(c.lastUpdated))*(1.0-c.speed)
}

// SyncToSlave copies other's state into c when they have drifted apart by
// more than NoSyncThreshold, or when c itself is currently stale. It is a
// no-op whenever |c.Get() - other.Get()| <= threshold and c is already
// valid (grounded on the reference sync_clock_to_slave, which also
// re-syncs an invalid master immediately rather than waiting for drift).
func (c *Clock) SyncToSlave(other *Clock, threshold float64) {
	clockVal := c.Get()
	slaveVal := other.Get()
	if math.IsNaN(slaveVal) {
		return
	}
	if !math.IsNaN(clockVal) && math.Abs(clockVal-slaveVal) <= threshold {
		return
	}

	other.mu.Lock()
	pts, serial, lastUpdated, ptsDrift, speed := other.pts, other.serial, other.lastUpdated, other.ptsDrift, other.speed
	other.mu.Unlock()

	c.mu.Lock()
	c.pts = pts
	c.serial = serial
	c.lastUpdated = lastUpdated
	c.ptsDrift = ptsDrift
	c.speed = speed
	c.mu.Unlock()
}

// clockBase is the process-wide origin of the engine's time base.
var clockBase = time.Now()

// secondsSince is a small helper that turns an absolute time.Time into a
// float64 seconds value measured from clockBase, matching the reference
// implementation's use of a single monotonic double-precision clock
// throughout the arithmetic. time.Time.Sub uses the monotonic reading
// whenever both times carry one, as values from time.Now do.
func secondsSince(t time.Time) float64 {
	return t.Sub(clockBase).Seconds()
}
