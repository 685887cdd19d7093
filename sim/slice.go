package sim

import "github.com/sirupsen/logrus"

// reservedCapacityMax is the hard ceiling on reserved_capacity as a fraction
// of init_capacity (Invariant 5, Testable Property 4).
const reservedCapacityMax = 0.10

// reservedCapacityRaiseStep and reservedCapacityLowerStep are how much the adaptive rule moves reserved_capacity
// per measurement, as a fraction of init_capacity (§4.3).
const (
	reservedCapacityRaiseStep = 0.02
	reservedCapacityLowerStep = 0.01
)

// priorityQoSBoostClass is the qos_class threshold at or below which a slice
// is treated as high priority: +20% share and more conservative admission.
const priorityQoSBoostClass = 2

// Slice is a per-(base-station) bandwidth partition with its own QoS
// profile, admission rule, and latency tolerance (§3, component C).
type Slice struct {
	Name                string
	BaseStation         BaseStationID
	ConnectedUsers      int
	DelayTolerance      float64
	QoSClass            int
	BandwidthGuaranteed float64
	BandwidthMax        float64
	InitCapacity        float64
	Capacity            *Capacity
	ReservedCapacity    float64
	LatencyHistory      LatencyRing
	SLAViolations       int
	UsagePattern        Distributor
}

// NewSlice constructs a Slice with a freshly-allocated bandwidth container.
func NewSlice(name string, bs BaseStationID, delayTolerance float64, qosClass int, guaranteed, max, initCapacity float64, usagePattern Distributor) *Slice {
	return &Slice{
		Name:                name,
		BaseStation:         bs,
		DelayTolerance:      delayTolerance,
		QoSClass:            qosClass,
		BandwidthGuaranteed: guaranteed,
		BandwidthMax:        max,
		InitCapacity:        initCapacity,
		Capacity:            NewCapacity(initCapacity),
		UsagePattern:        usagePattern,
	}
}

func (s *Slice) boosted() bool { return s.QoSClass <= priorityQoSBoostClass }

// GetConsumableShare returns the per-user bandwidth offered for the next
// consume phase (§4.3).
func (s *Slice) GetConsumableShare() float64 {
	if s.ConnectedUsers <= 0 {
		return min(s.InitCapacity, s.BandwidthMax)
	}
	share := min(s.InitCapacity/float64(s.ConnectedUsers), s.BandwidthMax)
	if s.boosted() {
		share = min(share*1.2, s.BandwidthMax)
	}
	return share
}

// effectivePool is min(init_capacity, bandwidth_max) - reserved_capacity,
// the admission pool used by IsAvailable. The dynamic allocator computes its
// own pool as capacity level - reserved_capacity.
func (s *Slice) effectivePool() float64 {
	return min(s.InitCapacity, s.BandwidthMax) - s.ReservedCapacity
}

// IsAvailable runs admission control for one additional user (§4.3).
// Testable Property 3 (admission monotonicity) depends on this being
// monotone non-increasing in ConnectedUsers and ReservedCapacity for fixed
// AvgLatency — both checks below only get harder to satisfy as either grows.
func (s *Slice) IsAvailable() bool {
	pool := s.effectivePool()
	if pool/float64(s.ConnectedUsers+1) < s.BandwidthGuaranteed {
		return false
	}
	if s.boosted() && s.LatencyHistory.Avg() > 0.7*s.DelayTolerance {
		threshold := pool / (1.5 * s.BandwidthGuaranteed)
		if float64(s.ConnectedUsers) >= threshold {
			return false
		}
	}
	return true
}

// UpdateLatencyStats records a completed latency measurement, updates the
// SLA-violation counter, and adapts reserved_capacity (§4.3).
func (s *Slice) UpdateLatencyStats(latency float64) {
	s.LatencyHistory.Push(latency)
	if latency > s.DelayTolerance {
		s.SLAViolations++
		logrus.Warnf("slice %s at base station %d: SLA violation, latency=%.3f > tolerance=%.3f",
			s.Name, s.BaseStation, latency, s.DelayTolerance)
	}
	s.adaptReservation()
}

func (s *Slice) adaptReservation() {
	recentAvg := s.LatencyHistory.RecentAvg()
	avg := s.LatencyHistory.Avg()
	switch {
	case recentAvg > avg && recentAvg > 0.8*s.DelayTolerance:
		s.ReservedCapacity = min(s.ReservedCapacity+reservedCapacityRaiseStep*s.InitCapacity, reservedCapacityMax*s.InitCapacity)
	case recentAvg < avg && recentAvg < 0.5*s.DelayTolerance:
		s.ReservedCapacity = max(s.ReservedCapacity-reservedCapacityLowerStep*s.InitCapacity, 0)
	}
}

// AvgLatency exposes the slice's rolling average latency (read by stats and admission).
func (s *Slice) AvgLatency() float64 { return s.LatencyHistory.Avg() }
