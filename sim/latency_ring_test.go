package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatencyRing_AvgAndRecentAvg(t *testing.T) {
	var r LatencyRing
	for _, v := range []float64{1, 2, 3, 4, 5} {
		r.Push(v)
	}
	assert.Equal(t, 5, r.Len())
	assert.InDelta(t, 3.0, r.Avg(), 1e-9)
	assert.InDelta(t, 3.0, r.RecentAvg(), 1e-9) // exactly recentWindow samples
}

func TestLatencyRing_EvictsOldestBeyondCap(t *testing.T) {
	var r LatencyRing
	for i := 0; i < latencyHistoryCap+10; i++ {
		r.Push(float64(i))
	}
	assert.Equal(t, latencyHistoryCap, r.Len())
	assert.InDelta(t, 10.0, r.values[0], 1e-9)
}

func TestLatencyRing_EmptyIsZero(t *testing.T) {
	var r LatencyRing
	assert.Equal(t, 0.0, r.Avg())
	assert.Equal(t, 0.0, r.RecentAvg())
}

func TestCapacity_AcquireClampsToLevel(t *testing.T) {
	c := NewCapacity(10)
	got := c.Acquire(15)
	assert.Equal(t, 10.0, got)
	assert.Equal(t, 0.0, c.Level())
}

func TestCapacity_AcquireNegativeOrZeroIsNoop(t *testing.T) {
	c := NewCapacity(10)
	assert.Equal(t, 0.0, c.Acquire(0))
	assert.Equal(t, 0.0, c.Acquire(-5))
	assert.Equal(t, 10.0, c.Level())
}

func TestCapacity_ReleaseClampsToMax(t *testing.T) {
	c := NewCapacity(10)
	c.Acquire(10)
	c.Release(100)
	assert.Equal(t, 10.0, c.Level())
}

func TestCapacity_ReleaseZeroIsNoop(t *testing.T) {
	c := NewCapacity(10)
	c.Acquire(4)
	c.Release(0)
	assert.Equal(t, 6.0, c.Level())
}
