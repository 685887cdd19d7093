package sim

import (
	"fmt"
	"io"
	"sort"
)

// Report renders the textual outputs described in §6: one block per
// client, the aggregate time-series tuple, and (when latency tracking is
// on) a latency-analysis section. Grounded in the teacher's
// Metrics.Print/SavetoFile style (sim/metrics_utils.go in the teacher repo).
type Report struct {
	sim *Simulator
}

// NewReport wraps a finished Simulator for reporting.
func NewReport(sim *Simulator) *Report {
	return &Report{sim: sim}
}

// windowBounds returns the [start, end] tick range that survives trimming
// warmup_ratio and cooldown_ratio off the simulation horizon (§6).
func (r *Report) windowBounds() (start, end float64) {
	start = r.sim.WarmupRatio * r.sim.Horizon
	end = r.sim.Horizon - r.sim.CooldownRatio*r.sim.Horizon
	return start, end
}

// inWindow reports series the Report should include after trimming.
func (r *Report) inWindow(tick float64) bool {
	start, end := r.windowBounds()
	return tick >= start && tick <= end
}

// Print writes the full end-of-run report (§6 Outputs).
func (r *Report) Print(w io.Writer) {
	r.printClients(w)
	r.printAggregate(w)
	if r.sim.LatencyTrackingEnabled {
		r.printLatencyAnalysis(w)
	}
}

func (r *Report) printClients(w io.Writer) {
	fmt.Fprintln(w, "=== PER-CLIENT SUMMARY ===")
	for _, c := range r.sim.Clients {
		fmt.Fprintf(w, "client %d: pos=(%.2f, %.2f) mobility=%s slice=%s\n",
			c.ID, c.X, c.Y, c.MobilityPatternName, c.SubscribedSlice)
		fmt.Fprintf(w, "  connected_time=%.2f unconnected_time=%.2f requests=%d consume_ticks=%d total_usage=%.2f\n",
			c.ConnectedTime, c.UnconnectedTime, c.TotalRequestCount, c.TotalConsumeTicks, c.TotalUsage)
		if r.sim.LatencyTrackingEnabled && len(c.LatencySamples) > 0 {
			fmt.Fprintf(w, "  latency: avg=%.4f min=%.4f max=%.4f handovers=%d\n",
				c.AvgLatency(), c.LatencyMin, c.LatencyMax, c.HandoverCount)
		}
	}
}

func (r *Report) filteredHistory() []TickStats {
	var out []TickStats
	for _, t := range r.sim.Stats.History {
		if r.inWindow(t.Tick) {
			out = append(out, t)
		}
	}
	return out
}

func (r *Report) printAggregate(w io.Writer) {
	fmt.Fprintln(w, "=== AGGREGATE TIME SERIES ===")
	history := r.filteredHistory()
	fmt.Fprintf(w, "%-10s %-10s %-12s %-12s %-12s %-10s %-10s %-10s",
		"tick", "conn_ratio", "used_bw", "slice_load", "slice_cnt", "coverage", "block", "handover")
	if r.sim.LatencyTrackingEnabled {
		fmt.Fprintf(w, " %-10s %-10s %-10s %-10s", "lat_avg", "lat_max", "lat_min", "sla_rate")
	}
	fmt.Fprintln(w)
	for _, t := range history {
		fmt.Fprintf(w, "%-10.2f %-10.4f %-12.2f %-12.4f %-12.4f %-10.4f %-10.4f %-10.4f",
			t.Tick, t.ConnectedRatio, t.TotalUsedBandwidth, t.AvgSliceLoadRatio, t.AvgSliceClientCount,
			t.CoverageRatio, t.BlockRatio, t.HandoverRatio)
		if r.sim.LatencyTrackingEnabled {
			fmt.Fprintf(w, " %-10.4f %-10.4f %-10.4f %-10.4f", t.AvgLatency, t.MaxLatency, t.MinLatency, t.SLAViolationRate)
		}
		fmt.Fprintln(w)
	}
}

func (r *Report) printLatencyAnalysis(w io.Writer) {
	fmt.Fprintln(w, "=== LATENCY ANALYSIS ===")
	var overallSum float64
	var overallCount int
	var violations int
	var totalInArea int
	perSlice := map[string]float64{}
	perSliceCount := map[string]int{}

	for _, c := range r.sim.Clients {
		if !r.sim.StatsWindow.Contains(c.X, c.Y) {
			continue
		}
		totalInArea++
		for _, l := range c.LatencySamples {
			overallSum += l
			overallCount++
		}
		if bs := r.sim.baseStation(c.BaseStation); c.Attached && bs != nil {
			if s, ok := bs.Slice(c.SubscribedSlice); ok {
				if len(c.LatencySamples) > 0 {
					if c.LatencyLast > s.DelayTolerance {
						violations++
					}
					perSlice[c.SubscribedSlice] += c.AvgLatency()
					perSliceCount[c.SubscribedSlice]++
				}
			}
		}
	}

	overallAvg := divideOrZero(overallSum, float64(overallCount))
	fmt.Fprintf(w, "overall_avg_latency=%.4f\n", overallAvg)

	names := make([]string, 0, len(perSlice))
	for name := range perSlice {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "slice %s: avg_latency=%.4f\n", name, divideOrZero(perSlice[name], float64(perSliceCount[name])))
	}

	fmt.Fprintf(w, "sla_violation_rate=%.4f\n", divideOrZero(float64(violations), float64(totalInArea)))
}
