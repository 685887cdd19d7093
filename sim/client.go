package sim

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// ClientID is a stable integer handle for a client (§9 design notes).
type ClientID int

// ClosestBS is one entry of a client's cached nearest-base-station list,
// written exclusively by the SpatialIndex (Open Question 1, resolved in
// SPEC_FULL.md §9).
type ClosestBS struct {
	Distance    float64
	BaseStation BaseStationID
}

// Client is the per-tick phased state machine described in §4.2 (component F).
type Client struct {
	ID ClientID

	X, Y float64

	MobilityPatternName string
	MobilityPattern     Distributor
	rng                 *rand.Rand // private stream for this client's mobility, usage-pattern and request draws

	UsageFreq          float64
	SubscribedSlice    string
	BaseStation        BaseStationID
	Attached           bool
	Connected          bool
	UsageRemaining     float64
	LastUsage          float64
	RequestStartTime   float64
	AllocatedBandwidth *float64 // written by the Dynamic Allocator, consumed once by Lock

	LatencySamples []float64
	latencySum     float64
	LatencyMin     float64
	LatencyMax     float64
	LatencyLast    float64

	HandoverLatencies []float64
	HandoverCount     int

	ConnectedTime   float64
	UnconnectedTime float64

	TotalRequestCount int
	TotalConsumeTicks int
	TotalUsage        float64

	ClosestBaseStations []ClosestBS
}

// NewClient constructs a client at the given initial position.
func NewClient(id ClientID, x, y float64, mobilityName string, mobility Distributor, rng *rand.Rand, usageFreq float64, subscribedSlice string) *Client {
	return &Client{
		ID:                  id,
		X:                   x,
		Y:                   y,
		MobilityPatternName: mobilityName,
		MobilityPattern:     mobility,
		rng:                 rng,
		UsageFreq:           usageFreq,
		SubscribedSlice:     subscribedSlice,
	}
}

// slice resolves the client's subscribed slice at its current base station,
// returning ok=false if the client is unattached or its base station does
// not carry that slice.
func (c *Client) slice(sim *Simulator) (*Slice, bool) {
	if !c.Attached {
		return nil, false
	}
	bs := sim.baseStation(c.BaseStation)
	if bs == nil {
		return nil, false
	}
	return bs.Slice(c.SubscribedSlice)
}

// Lock is the .00 sub-phase: decide whether to issue a new request, continue
// serving one, or attempt to (re)connect (§4.2).
func (c *Client) Lock(sim *Simulator, now float64) {
	s, hasSlice := c.slice(sim)
	if !c.Attached {
		return
	}

	switch {
	case c.UsageRemaining > 0:
		if c.Connected {
			c.startConsume(s)
		} else {
			c.RequestStartTime = now
			c.connect(sim, now, s, hasSlice)
		}
	default:
		if c.Connected {
			c.disconnect(sim)
			return
		}
		if hasSlice && c.rng.Float64() >= c.UsageFreq {
			c.UsageRemaining = s.UsagePattern.Sample(c.rng)
			c.TotalRequestCount++
			c.RequestStartTime = now
			c.connect(sim, now, s, hasSlice)
		}
	}
}

// lowDelayBoostThreshold is the delay-tolerance threshold under which a consume
// amount is boosted 1.2x (§4.2): tight-latency slices get a larger slug of
// bandwidth per step so they can clear their queue before the next
// handover-inducing move.
const lowDelayBoostThreshold = 10.0

func (c *Client) startConsume(s *Slice) {
	var amount float64
	if c.AllocatedBandwidth != nil {
		amount = min(*c.AllocatedBandwidth, c.UsageRemaining)
		c.AllocatedBandwidth = nil
	} else {
		amount = min(s.GetConsumableShare(), c.UsageRemaining)
		if s.DelayTolerance < lowDelayBoostThreshold {
			amount = min(amount*1.2, c.UsageRemaining)
		}
	}
	granted := s.Capacity.Acquire(amount)
	c.LastUsage = granted
	c.TotalConsumeTicks++
	c.TotalUsage += granted
}

// connect implements §4.2's connect algorithm, including the bounded
// one-step handover (Open Question 2, resolved non-recursively).
func (c *Client) connect(sim *Simulator, now float64, s *Slice, hasSlice bool) {
	if c.Connected {
		return
	}
	sim.Stats.NotifyConnectAttempt()

	if hasSlice && s.IsAvailable() {
		s.ConnectedUsers++
		c.Connected = true
		c.recordLatency(now - c.RequestStartTime)
		return
	}

	// Current slice unavailable (or client somehow has no slice): attempt a
	// single, non-recursive handover to the best eligible base station.
	target, ok := sim.selectBaseStation(c, &c.BaseStation)
	if !ok {
		// No alternate base station at all: the attempt is blocked and the
		// client is left uncovered until a later Move reattaches it.
		c.Attached = false
		sim.Stats.NotifyBlock()
		return
	}
	targetBS := sim.baseStation(target)
	targetSlice, ok := targetBS.Slice(c.SubscribedSlice)
	if ok && targetSlice.IsAvailable() {
		c.BaseStation = target
		c.Attached = true
		targetSlice.ConnectedUsers++
		c.Connected = true
		latency := now - c.RequestStartTime
		c.recordLatency(latency)
		c.HandoverLatencies = append(c.HandoverLatencies, latency)
		c.HandoverCount++
		sim.Stats.NotifyHandover()
		return
	}
	sim.Stats.NotifyBlock()
}

func (c *Client) recordLatency(latency float64) {
	c.LatencySamples = append(c.LatencySamples, latency)
	c.latencySum += latency
	c.LatencyLast = latency
	if len(c.LatencySamples) == 1 || latency < c.LatencyMin {
		c.LatencyMin = latency
	}
	if len(c.LatencySamples) == 1 || latency > c.LatencyMax {
		c.LatencyMax = latency
	}
}

// AvgLatency returns the mean of all recorded per-request latencies, or 0 if none.
func (c *Client) AvgLatency() float64 {
	if len(c.LatencySamples) == 0 {
		return 0
	}
	return c.latencySum / float64(len(c.LatencySamples))
}

func (c *Client) disconnect(sim *Simulator) {
	if s, ok := c.slice(sim); ok {
		s.ConnectedUsers--
	}
	c.Connected = false
}

// Stats is the .25 sub-phase: connected/unconnected time accounting (§4.2).
func (c *Client) Stats(tickLen float64) {
	if c.Connected {
		c.ConnectedTime += tickLen
	} else {
		c.UnconnectedTime += tickLen
	}
}

// Release is the .50 sub-phase: return the last consume's allocation,
// compute latency if the request is now fully served, and detach (§4.2).
func (c *Client) Release(sim *Simulator, now float64) {
	if c.LastUsage <= 0 {
		return
	}
	s, ok := c.slice(sim)
	c.UsageRemaining -= c.LastUsage
	if c.UsageRemaining < 0 {
		c.UsageRemaining = 0
	}
	released := c.LastUsage
	c.LastUsage = 0
	if !ok {
		return
	}
	s.Capacity.Release(released)
	if c.UsageRemaining <= 0 {
		latency := now - c.RequestStartTime
		s.UpdateLatencyStats(latency)
		c.disconnect(sim)
	}
}

// Move is the .75 sub-phase: apply one mobility sample and re-attach on
// coverage loss (§4.2, §4.4).
func (c *Client) Move(sim *Simulator, now float64) {
	dx := c.MobilityPattern.Sample(c.rng)
	dy := c.MobilityPattern.Sample(c.rng)
	c.X += dx
	c.Y += dy

	if c.Attached {
		bs := sim.baseStation(c.BaseStation)
		if bs != nil && bs.Coverage.Contains(c.X, c.Y) {
			return
		}
		left := c.BaseStation
		handoverStart := now
		c.detachForMove(sim)
		target, ok := sim.selectBaseStation(c, &left)
		if ok {
			c.BaseStation = target
			c.Attached = true
			c.HandoverLatencies = append(c.HandoverLatencies, now-handoverStart)
			c.HandoverCount++
			sim.Stats.NotifyHandover()
			return
		}
		if sim.spatialIndexRebuildIfStale(now) {
			// Rebuilt without reassigning, per §4.4; the client stays unattached.
			logrus.Debugf("client %d: no covering base station after rebuild at t=%.2f", c.ID, now)
		}
		c.Attached = false
		return
	}

	// Unattached: try a fresh, non-excluding reattach on every Move step, per
	// §7 (clients accrue unconnected time until a mobility step reaches coverage).
	if target, ok := sim.selectBaseStation(c, nil); ok {
		c.BaseStation = target
		c.Attached = true
	}
}

func (c *Client) detachForMove(sim *Simulator) {
	if c.Connected {
		if s, ok := c.slice(sim); ok {
			s.ConnectedUsers--
		}
		c.Connected = false
	}
	c.Attached = false
}
