package diagnostics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRollingAverageEmptyIsZero(t *testing.T) {
	r := NewRollingAverage(4)
	assert.Equal(t, time.Duration(0), r.Average())
	assert.Equal(t, 0, r.Count())
}

func TestRollingAverageBeforeWindowFull(t *testing.T) {
	r := NewRollingAverage(4)
	r.Add(10 * time.Millisecond)
	r.Add(20 * time.Millisecond)

	assert.Equal(t, 2, r.Count())
	assert.Equal(t, 15*time.Millisecond, r.Average())
}

func TestRollingAverageEvictsOldestOnceFull(t *testing.T) {
	r := NewRollingAverage(2)
	r.Add(10 * time.Millisecond)
	r.Add(20 * time.Millisecond)
	r.Add(30 * time.Millisecond) // evicts the 10ms sample

	assert.Equal(t, 2, r.Count())
	assert.Equal(t, 25*time.Millisecond, r.Average())
}

func TestRecorderTracksTicksDropsAndDuplicates(t *testing.T) {
	r := NewRecorder(10)
	r.RecordTick(5 * time.Millisecond)
	r.RecordTick(7 * time.Millisecond)
	r.RecordDrop()
	r.RecordDrop()
	r.RecordDuplicate()

	snap := r.Snapshot()
	assert.Equal(t, 2, snap.Ticks)
	assert.Equal(t, 2, snap.Drops)
	assert.Equal(t, 1, snap.Duplicates)
	assert.Equal(t, 6*time.Millisecond, snap.AvgTickLatency)
	assert.GreaterOrEqual(t, snap.UptimeSeconds, 0.0)
}

func TestRecorderSnapshotIsPointInTime(t *testing.T) {
	r := NewRecorder(10)
	first := r.Snapshot()
	assert.Equal(t, 0, first.Ticks)

	r.RecordTick(time.Millisecond)
	second := r.Snapshot()
	assert.Equal(t, 1, second.Ticks)
	assert.Equal(t, 0, first.Ticks, "a previously taken snapshot must not observe later writes")
}
