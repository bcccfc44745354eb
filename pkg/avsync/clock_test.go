package avsync

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockUnsetReturnsNaN(t *testing.T) {
	c := NewClock(nil, DefaultSyncConfig())
	assert.True(t, math.IsNaN(c.Get()))
}

func TestClockSetAtAnchorsValue(t *testing.T) {
	c := NewClock(nil, DefaultSyncConfig())
	at := time.Now()
	c.SetAt(12.5, 0, at)

	got := c.Get()
	require.False(t, math.IsNaN(got))
	assert.InDelta(t, 12.5, got, 0.01)
}

func TestClockAdvancesWithWallTime(t *testing.T) {
	c := NewClock(nil, DefaultSyncConfig())
	c.SetAt(0, 0, time.Now())

	time.Sleep(20 * time.Millisecond)
	got := c.Get()
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, 1.0)
}

func TestClockPausedFreezesValue(t *testing.T) {
	c := NewClock(nil, DefaultSyncConfig())
	c.SetAt(5.0, 0, time.Now())
	c.SetPaused(true)

	first := c.Get()
	time.Sleep(15 * time.Millisecond)
	second := c.Get()
	assert.Equal(t, first, second)
}

func TestClockStaleWhenSerialDiverges(t *testing.T) {
	serial := 0
	c := NewClock(&serial, DefaultSyncConfig())
	c.Set(1.0, 0)
	assert.False(t, math.IsNaN(c.Get()))

	serial = 1
	assert.True(t, math.IsNaN(c.Get()), "clock should read stale once queueSerial diverges from its anchor serial")
}

func TestClockNilQueueSerialNeverStales(t *testing.T) {
	c := NewClock(nil, DefaultSyncConfig())
	c.Set(1.0, 0)
	c.Set(2.0, 7)
	assert.False(t, math.IsNaN(c.Get()), "a clock with no associated queue must never report stale")
}

func TestClockSetSpeedPreservesContinuity(t *testing.T) {
	c := NewClock(nil, DefaultSyncConfig())
	c.SetAt(10.0, 0, time.Now())

	before := c.Get()
	c.SetSpeed(2.0)
	after := c.Get()

	assert.InDelta(t, before, after, 0.05)
	assert.Equal(t, 2.0, c.Speed())
}

func TestClockSetSpeedClampsToBounds(t *testing.T) {
	cfg := DefaultSyncConfig()
	cfg.MinSpeed = 0.5
	cfg.MaxSpeed = 1.5
	c := NewClock(nil, cfg)
	c.SetAt(0, 0, time.Now())

	c.SetSpeed(10.0)
	assert.Equal(t, 1.5, c.Speed())

	c.SetSpeed(-10.0)
	assert.Equal(t, 0.5, c.Speed())
}

func TestSyncToSlaveNoopWithinThreshold(t *testing.T) {
	master := NewClock(nil, DefaultSyncConfig())
	slave := NewClock(nil, DefaultSyncConfig())

	now := time.Now()
	master.SetAt(10.0, 3, now)
	slave.SetAt(10.02, 3, now)

	master.SyncToSlave(slave, 0.1)
	assert.InDelta(t, 10.0, master.Get(), 0.05, "within-threshold drift must not re-anchor the master")
}

func TestSyncToSlaveCopiesWhenBeyondThreshold(t *testing.T) {
	master := NewClock(nil, DefaultSyncConfig())
	slave := NewClock(nil, DefaultSyncConfig())

	now := time.Now()
	master.SetAt(1.0, 3, now)
	slave.SetAt(50.0, 3, now)

	master.SyncToSlave(slave, 0.1)
	assert.InDelta(t, 50.0, master.Get(), 0.05)
}

func TestSyncToSlaveNoopWhenSlaveUnset(t *testing.T) {
	master := NewClock(nil, DefaultSyncConfig())
	slave := NewClock(nil, DefaultSyncConfig())
	master.SetAt(5.0, 0, time.Now())

	master.SyncToSlave(slave, 0.1)
	assert.InDelta(t, 5.0, master.Get(), 0.05)
}

func TestSyncToSlaveAlwaysResyncsInvalidMaster(t *testing.T) {
	master := NewClock(nil, DefaultSyncConfig())
	slave := NewClock(nil, DefaultSyncConfig())
	slave.SetAt(9.0, 0, time.Now())

	master.SyncToSlave(slave, 100.0)
	assert.InDelta(t, 9.0, master.Get(), 0.05, "an unset master must adopt the slave immediately regardless of threshold")
}
