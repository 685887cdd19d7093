package sim

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ransim/ransim/internal/config"
)

// weightedName pairs a config-level name (slice or mobility pattern) with
// its client_weight for the cumulative-weight draw described in §6.
type weightedName struct {
	name   string
	weight float64
}

func weightedFromSlices(slices map[string]config.SliceConfig) []weightedName {
	names := make([]string, 0, len(slices))
	for name := range slices {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]weightedName, 0, len(names))
	for _, name := range names {
		out = append(out, weightedName{name: name, weight: slices[name].ClientWeight})
	}
	return out
}

func weightedFromMobility(patterns map[string]config.MobilityPatternConfig) []weightedName {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]weightedName, 0, len(names))
	for _, name := range names {
		out = append(out, weightedName{name: name, weight: patterns[name].ClientWeight})
	}
	return out
}

// weightedDraw performs the cumulative-weight draw described in §6: sample u
// uniformly in [0, total weight) and return the first entry whose cumulative
// weight exceeds u. Entries must be pre-sorted by name so the draw is
// deterministic for a given rng stream. Falls back to uniform-by-index if
// every weight is zero.
func weightedDraw(entries []weightedName, rng *rand.Rand) string {
	total := 0.0
	for _, e := range entries {
		total += e.weight
	}
	if total <= 0 {
		return entries[rng.Intn(len(entries))].name
	}
	u := rng.Float64() * total
	cum := 0.0
	for _, e := range entries {
		cum += e.weight
		if u < cum {
			return e.name
		}
	}
	return entries[len(entries)-1].name
}

func newDistributorFromConfig(field string, spec config.DistSpec) (Distributor, error) {
	d, err := NewDistributor(DistSpec{Name: spec.Distribution, Params: spec.Params})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

// Build turns validated configuration into a fully wired Simulator, ready to
// Run (§4.8, component G's construction entry point). Grounded in the
// teacher's cmd/compose.go assembly style: every sub-object is constructed
// here rather than lazily, so Run never needs to re-check configuration.
func Build(cfg *config.Config, seed int64) (*Simulator, error) {
	rng := NewPartitionedRNG(seed)

	usagePatterns := make(map[string]Distributor, len(cfg.Slices))
	for name, sc := range cfg.Slices {
		d, err := newDistributorFromConfig(fmt.Sprintf("slices.%s.usage_pattern", name), sc.UsagePattern)
		if err != nil {
			return nil, err
		}
		usagePatterns[name] = d
	}
	sliceWeights := weightedFromSlices(cfg.Slices)

	mobilityDists := make(map[string]Distributor, len(cfg.MobilityPatterns))
	for name, mc := range cfg.MobilityPatterns {
		d, err := NewDistributor(DistSpec{Name: mc.Distribution, Params: mc.Params})
		if err != nil {
			return nil, fmt.Errorf("mobility_patterns.%s: %w", name, err)
		}
		mobilityDists[name] = d
	}
	mobilityWeights := weightedFromMobility(cfg.MobilityPatterns)

	locX, err := newDistributorFromConfig("clients.location.x", cfg.Clients.Location.X)
	if err != nil {
		return nil, err
	}
	locY, err := newDistributorFromConfig("clients.location.y", cfg.Clients.Location.Y)
	if err != nil {
		return nil, err
	}
	usageFreqDist, err := NewDistributor(DistSpec{Name: cfg.Clients.UsageFrequency.Distribution, Params: cfg.Clients.UsageFrequency.Params})
	if err != nil {
		return nil, fmt.Errorf("clients.usage_frequency: %w", err)
	}
	divideScale := cfg.Clients.UsageFrequency.DivideScale
	if divideScale == 0 {
		divideScale = 1
	}

	simulator := NewSimulator(float64(cfg.Settings.SimulationTime), cfg.Settings.LimitClosestBaseStations,
		cfg.DynamicAllocationEnabled(), cfg.LatencyTrackingEnabled(), rng)
	simulator.WarmupRatio = cfg.Settings.StatisticsParams.WarmupRatio
	simulator.CooldownRatio = cfg.Settings.StatisticsParams.CooldownRatio
	if sp := cfg.Settings.StatisticsParams; sp.X != (config.Range{}) || sp.Y != (config.Range{}) {
		simulator.StatsWindow = StatisticsWindow{MinX: sp.X.Min, MaxX: sp.X.Max, MinY: sp.Y.Min, MaxY: sp.Y.Max}
	}

	for i, bc := range cfg.BaseStations {
		id := BaseStationID(i)
		bs := NewBaseStation(id, Disk{CenterX: bc.X, CenterY: bc.Y, Radius: bc.Coverage}, bc.CapacityBandwidth)

		ratioSum := 0.0
		for _, r := range bc.Ratios {
			ratioSum += r
		}
		if ratioSum > 1 {
			logrus.Warnf("base station %d: slice ratios sum to %.3f > 1, init_capacity will exceed capacity_bandwidth", i, ratioSum)
		}

		names := make([]string, 0, len(bc.Ratios))
		for name := range bc.Ratios {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sc, ok := cfg.Slices[name]
			if !ok {
				return nil, fmt.Errorf("base station %d: ratios reference unknown slice %q", i, name)
			}
			initCapacity := bc.CapacityBandwidth * bc.Ratios[name]
			s := NewSlice(name, id, sc.DelayTolerance, sc.QoSClass, sc.BandwidthGuaranteed, sc.BandwidthMax, initCapacity, usagePatterns[name])
			bs.AddSlice(s)
		}
		simulator.AddBaseStation(bs)
	}

	// Per-client draws (location, slice, mobility pattern, usage frequency)
	// each use their own named subsystem so that changing one does not
	// perturb another (§4.8 step 1). Per-tick draws inside a client's
	// lifetime (mobility steps, usage-pattern sampling, the usage_freq
	// coin flip) share one combined "client:<id>" stream: those three all
	// belong to the same client's trajectory, so isolating them from each
	// other buys nothing while isolating the client from its neighbors is
	// what Testable Property 6 actually needs.
	for i := 0; i < cfg.Settings.NumClients; i++ {
		id := ClientID(i)
		x := locX.Sample(rng.ForSubsystem("location:x"))
		y := locY.Sample(rng.ForSubsystem("location:y"))
		sliceName := weightedDraw(sliceWeights, rng.ForSubsystem("slice_assignment"))
		mobilityName := weightedDraw(mobilityWeights, rng.ForSubsystem("mobility_assignment"))
		usageFreq := usageFreqDist.Sample(rng.ForSubsystem("usage_frequency")) / divideScale

		clientRNG := rng.ForSubsystem(fmt.Sprintf("client:%d", id))
		c := NewClient(id, x, y, mobilityName, mobilityDists[mobilityName], clientRNG, usageFreq, sliceName)
		simulator.AddClient(c)
	}

	simulator.SpatialIdx.Rebuild(simulator.Clients, simulator.BaseStations, 0, true)
	simulator.scheduleInitialEvents()

	return simulator, nil
}
