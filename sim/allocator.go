package sim

import "sort"

// RunDynamicAllocation re-slices each (base station, slice) pool among its
// currently connected clients by priority when demand exceeds supply
// (§4.5, component I). It takes the base station list as an explicit
// parameter rather than a package-level global (Open Question 3, resolved).
func RunDynamicAllocation(baseStations []*BaseStation, clients []*Client, now float64) {
	groups := groupConnectedClients(baseStations, clients)
	for _, bs := range baseStations {
		for _, name := range bs.SliceNames {
			s := bs.Slices[name]
			group := groups[allocKey{bs.ID, name}]
			if len(group) == 0 {
				continue
			}
			allocateForSlice(s, group, now)
		}
	}
}

type allocKey struct {
	bs   BaseStationID
	name string
}

func groupConnectedClients(baseStations []*BaseStation, clients []*Client) map[allocKey][]*Client {
	groups := make(map[allocKey][]*Client)
	for _, c := range clients {
		if c.Connected && c.Attached {
			k := allocKey{c.BaseStation, c.SubscribedSlice}
			groups[k] = append(groups[k], c)
		}
	}
	return groups
}

// allocateForSlice implements step 2-5 of §4.5 for a single slice's
// currently connected client set.
func allocateForSlice(s *Slice, group []*Client, now float64) {
	// Priority key is (waiting_time, -delay_tolerance, -qos_class) descending
	// (§4.5). delay_tolerance and qos_class are properties of the slice, so
	// within one slice's group every client shares them: waiting_time alone
	// decides order here.
	sort.SliceStable(group, func(i, j int) bool {
		wi := now - group[i].RequestStartTime
		wj := now - group[j].RequestStartTime
		return wi > wj
	})

	pool := s.Capacity.Level() - s.ReservedCapacity
	demand := 0.0
	for _, c := range group {
		demand += c.UsageRemaining
	}

	amounts := make([]float64, len(group))

	if demand <= pool {
		for i, c := range group {
			amounts[i] = c.UsageRemaining
			c.AllocatedBandwidth = &amounts[i]
		}
		return
	}

	// Guarantee pass: every connected client gets at least its guaranteed
	// share (capped by remaining demand) before priority ordering matters.
	for i, c := range group {
		g := min(s.BandwidthGuaranteed, c.UsageRemaining)
		amounts[i] = g
		pool -= g
	}

	// Priority pass: spend what's left on the highest-priority waiters first.
	for i, c := range group {
		if pool <= 0 {
			break
		}
		waitingTime := now - c.RequestStartTime
		timeFactor := 0.5
		if s.DelayTolerance > 0 {
			timeFactor = clamp01(waitingTime / s.DelayTolerance)
		}
		qosWeight := (5 - float64(s.QoSClass)) / 5
		p := timeFactor * qosWeight
		remaining := c.UsageRemaining - amounts[i]
		grant := min(pool*p, remaining)
		if grant < 0 {
			grant = 0
		}
		amounts[i] += grant
		pool -= grant
	}

	for i, c := range group {
		c.AllocatedBandwidth = &amounts[i]
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
