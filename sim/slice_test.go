package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSlice(t *testing.T, qosClass int) *Slice {
	t.Helper()
	d, err := NewDistributor(DistSpec{Name: "uniform", Params: []float64{1, 2}})
	require.NoError(t, err)
	return NewSlice("gaming", 1, 10.0, qosClass, 1.0, 5.0, 100.0, d)
}

func TestSlice_GetConsumableShare_NoUsersGivesFullCap(t *testing.T) {
	s := newTestSlice(t, 3)
	assert.Equal(t, 5.0, s.GetConsumableShare()) // capped by BandwidthMax
}

func TestSlice_GetConsumableShare_BoostedForLowQoSClass(t *testing.T) {
	s := newTestSlice(t, 2)
	s.ConnectedUsers = 10
	unboosted := min(s.InitCapacity/float64(s.ConnectedUsers), s.BandwidthMax)
	assert.InDelta(t, min(unboosted*1.2, s.BandwidthMax), s.GetConsumableShare(), 1e-9)
}

func TestSlice_IsAvailable_RejectsWhenGuaranteeCannotBeMet(t *testing.T) {
	s := newTestSlice(t, 3)
	s.BandwidthGuaranteed = 1000 // impossible to satisfy
	assert.False(t, s.IsAvailable())
}

func TestSlice_IsAvailable_AdmissionIsMonotoneInConnectedUsers(t *testing.T) {
	s := newTestSlice(t, 3)
	s.BandwidthGuaranteed = 10
	s.InitCapacity = 100
	s.Capacity = NewCapacity(100)
	s.BandwidthMax = 1000

	var sawFalse bool
	for users := 0; users < 20; users++ {
		s.ConnectedUsers = users
		avail := s.IsAvailable()
		if sawFalse {
			assert.False(t, avail, "admission became available again after becoming unavailable at higher connected_users=%d", users)
		}
		if !avail {
			sawFalse = true
		}
	}
}

func TestSlice_IsAvailable_AdmissionIsMonotoneInReservedCapacity(t *testing.T) {
	s := newTestSlice(t, 3)
	s.BandwidthGuaranteed = 5
	s.InitCapacity = 100
	s.BandwidthMax = 1000
	s.ConnectedUsers = 5

	var sawFalse bool
	for _, reserved := range []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90} {
		s.ReservedCapacity = reserved
		avail := s.IsAvailable()
		if sawFalse {
			assert.False(t, avail, "admission became available again after becoming unavailable at reserved_capacity=%.1f", reserved)
		}
		if !avail {
			sawFalse = true
		}
	}
}

func TestSlice_UpdateLatencyStats_RecordsSLAViolation(t *testing.T) {
	s := newTestSlice(t, 3)
	s.UpdateLatencyStats(s.DelayTolerance + 1)
	assert.Equal(t, 1, s.SLAViolations)
}

func TestSlice_UpdateLatencyStats_NoViolationUnderTolerance(t *testing.T) {
	s := newTestSlice(t, 3)
	s.UpdateLatencyStats(s.DelayTolerance - 1)
	assert.Equal(t, 0, s.SLAViolations)
}

func TestSlice_AdaptReservation_RaisesOnSustainedHighLatency(t *testing.T) {
	s := newTestSlice(t, 3)
	s.DelayTolerance = 10
	for i := 0; i < 10; i++ {
		s.UpdateLatencyStats(9.5) // > 0.8 * delay_tolerance, recent == avg so no raise on constant series
	}
	// Feed a rising tail so recent_avg > avg.
	s.UpdateLatencyStats(9.9)
	assert.Greater(t, s.ReservedCapacity, 0.0)
	assert.LessOrEqual(t, s.ReservedCapacity, reservedCapacityMax*s.InitCapacity)
}

func TestSlice_ReservedCapacity_NeverExceedsTenPercent(t *testing.T) {
	s := newTestSlice(t, 3)
	s.DelayTolerance = 10
	for i := 0; i < 200; i++ {
		s.UpdateLatencyStats(9.9)
	}
	assert.LessOrEqual(t, s.ReservedCapacity, reservedCapacityMax*s.InitCapacity+1e-9)
}

func TestSlice_ReservedCapacity_NeverGoesNegative(t *testing.T) {
	s := newTestSlice(t, 3)
	s.DelayTolerance = 10
	for i := 0; i < 200; i++ {
		s.UpdateLatencyStats(0.1)
	}
	assert.GreaterOrEqual(t, s.ReservedCapacity, 0.0)
}

func TestSlice_Boosted(t *testing.T) {
	assert.True(t, newTestSlice(t, 1).boosted())
	assert.True(t, newTestSlice(t, 2).boosted())
	assert.False(t, newTestSlice(t, 3).boosted())
}
