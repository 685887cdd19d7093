package sim

// TickStats is one integer tick's worth of aggregate measurements (§4.6,
// component H).
type TickStats struct {
	Tick float64

	ConnectedRatio      float64
	TotalUsedBandwidth  float64
	AvgSliceLoadRatio   float64
	AvgSliceClientCount float64
	CoverageRatio       float64
	BlockRatio          float64
	HandoverRatio       float64

	HasLatencySamples bool
	AvgLatency        float64
	MaxLatency        float64
	MinLatency        float64
	SLAViolationRate  float64
	PerSliceLatency   map[string]float64
}

// StatsCollector accumulates per-tick connect-attempt/block/handover
// counters and produces the aggregate time series (§4.6).
type StatsCollector struct {
	connectAttempts int
	blocks          int
	handovers       int

	History []TickStats
}

// NewStatsCollector returns an empty StatsCollector.
func NewStatsCollector() *StatsCollector {
	return &StatsCollector{}
}

// NotifyConnectAttempt records one connect attempt in the current tick window.
func (sc *StatsCollector) NotifyConnectAttempt() { sc.connectAttempts++ }

// NotifyBlock records one blocked connect attempt in the current tick window.
func (sc *StatsCollector) NotifyBlock() { sc.blocks++ }

// NotifyHandover records one successful handover in the current tick window.
func (sc *StatsCollector) NotifyHandover() { sc.handovers++ }

// Collect aggregates the current state into a TickStats entry, appends it to
// History, and resets the per-tick counters (§4.6, §5 ordering guarantee 2).
func (sc *StatsCollector) Collect(sim *Simulator, now float64) TickStats {
	var inArea, connectedInArea, coveredInArea int
	var usedBandwidth, capacitySum float64
	var sliceClientCount, sliceCount int
	var slaViolations int
	perSliceLatencySum := map[string]float64{}
	perSliceLatencyCount := map[string]int{}
	var latencySum, latencyMax, latencyMin float64
	var latencyCount int

	for _, bs := range sim.BaseStations {
		for _, name := range bs.SliceNames {
			s := bs.Slices[name]
			usedBandwidth += s.InitCapacity - s.Capacity.Level()
			capacitySum += s.InitCapacity
			sliceClientCount += s.ConnectedUsers
			sliceCount++
		}
	}

	for _, c := range sim.Clients {
		if !sim.StatsWindow.Contains(c.X, c.Y) {
			continue
		}
		inArea++
		if c.Connected {
			connectedInArea++
		}
		if bs := sim.baseStation(c.BaseStation); c.Attached && bs != nil && bs.Coverage.Contains(c.X, c.Y) {
			coveredInArea++
		}
		if len(c.LatencySamples) == 0 {
			continue
		}
		latest := c.LatencyLast
		latencySum += latest
		if latencyCount == 0 || latest > latencyMax {
			latencyMax = latest
		}
		if latencyCount == 0 || latest < latencyMin {
			latencyMin = latest
		}
		latencyCount++
		if bs := sim.baseStation(c.BaseStation); c.Attached && bs != nil {
			if s, ok := bs.Slice(c.SubscribedSlice); ok {
				if latest > s.DelayTolerance {
					slaViolations++
				}
				perSliceLatencySum[c.SubscribedSlice] += latest
				perSliceLatencyCount[c.SubscribedSlice]++
			}
		}
	}

	perSliceLatency := make(map[string]float64, len(perSliceLatencySum))
	for name, sum := range perSliceLatencySum {
		perSliceLatency[name] = sum / float64(perSliceLatencyCount[name])
	}

	stats := TickStats{
		Tick:                now,
		ConnectedRatio:      ratio(connectedInArea, inArea),
		TotalUsedBandwidth:  usedBandwidth,
		AvgSliceLoadRatio:   divideOrZero(usedBandwidth, capacitySum),
		AvgSliceClientCount: divideOrZero(float64(sliceClientCount), float64(sliceCount)),
		CoverageRatio:       ratio(coveredInArea, inArea),
		BlockRatio:          ratio(sc.blocks, sc.connectAttempts),
		HandoverRatio:       ratio(sc.handovers, sc.connectAttempts),
		HasLatencySamples:   latencyCount > 0,
		AvgLatency:          divideOrZero(latencySum, float64(latencyCount)),
		MaxLatency:          latencyMax,
		MinLatency:          latencyMin,
		SLAViolationRate:    divideOrZero(float64(slaViolations), float64(inArea)),
		PerSliceLatency:     perSliceLatency,
	}

	sc.History = append(sc.History, stats)
	sc.connectAttempts, sc.blocks, sc.handovers = 0, 0, 0
	return stats
}

func ratio(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

func divideOrZero(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
