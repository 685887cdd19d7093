package sim

import "sort"

// SpatialIndex builds, for each client, the ordered list of nearest base
// stations, bounded to the K nearest (§4.7, component E). It is the sole
// writer of Client.ClosestBaseStations (Open Question 1, resolved).
type SpatialIndex struct {
	limitClosest    int
	lastRebuildTime float64
	hasRun          bool
}

// NewSpatialIndex creates a SpatialIndex bounding each client's cached list
// to the `limitClosest` nearest base stations.
func NewSpatialIndex(limitClosest int) *SpatialIndex {
	return &SpatialIndex{limitClosest: limitClosest}
}

// Rebuild recomputes Client.ClosestBaseStations for every client. A call at
// the same virtual time as the previous call is a no-op, as required by
// §4.7's "guarded by a last-run-time marker" contract. When assign is true,
// each client is additionally attached to its best eligible covering base
// station (used for the t=0 initial placement).
func (idx *SpatialIndex) Rebuild(clients []*Client, stations []*BaseStation, now float64, assign bool) {
	if idx.hasRun && now == idx.lastRebuildTime {
		return
	}
	for _, c := range clients {
		entries := make([]ClosestBS, 0, len(stations))
		for _, bs := range stations {
			entries = append(entries, ClosestBS{
				Distance:    bs.Coverage.DistanceTo(c.X, c.Y),
				BaseStation: bs.ID,
			})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Distance != entries[j].Distance {
				return entries[i].Distance < entries[j].Distance
			}
			return entries[i].BaseStation < entries[j].BaseStation
		})
		if idx.limitClosest > 0 && len(entries) > idx.limitClosest {
			entries = entries[:idx.limitClosest]
		}
		c.ClosestBaseStations = entries

		if assign {
			assignClosestBaseStation(c, stations)
		}
	}
	idx.lastRebuildTime = now
	idx.hasRun = true
}

// assignClosestBaseStation attaches c to the best-scoring covering base
// station among its cached candidates, with no exclusion.
func assignClosestBaseStation(c *Client, stations []*BaseStation) {
	byID := make(map[BaseStationID]*BaseStation, len(stations))
	for _, bs := range stations {
		byID[bs.ID] = bs
	}
	target, ok := selectFromCandidates(c, byID, nil)
	if ok {
		c.BaseStation = target
		c.Attached = true
	} else {
		c.Attached = false
	}
}

// loadWeightedScore computes score = d * (1 + load) as described in §4.4.
// load is 0 when the client's subscribed slice cannot be resolved at bs.
func loadWeightedScore(c *Client, bs *BaseStation, d float64) float64 {
	load := 0.0
	if s, ok := bs.Slice(c.SubscribedSlice); ok && s.InitCapacity > 0 {
		load = 1 - s.Capacity.Level()/s.InitCapacity
	}
	return d * (1 + load)
}

// selectFromCandidates picks the lowest-score covering base station from
// c's cached ClosestBaseStations, excluding `exclude` if non-nil. Ties in
// score are broken by lower base station ID (§4.4).
func selectFromCandidates(c *Client, byID map[BaseStationID]*BaseStation, exclude *BaseStationID) (BaseStationID, bool) {
	type scored struct {
		id    BaseStationID
		score float64
		d     float64
	}
	candidates := make([]scored, 0, len(c.ClosestBaseStations))
	for _, entry := range c.ClosestBaseStations {
		if exclude != nil && entry.BaseStation == *exclude {
			continue
		}
		bs, ok := byID[entry.BaseStation]
		if !ok {
			continue
		}
		candidates = append(candidates, scored{
			id:    entry.BaseStation,
			score: loadWeightedScore(c, bs, entry.Distance),
			d:     entry.Distance,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score < candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})
	for _, cand := range candidates {
		bs := byID[cand.id]
		if cand.d <= bs.Coverage.Radius {
			return cand.id, true
		}
	}
	return 0, false
}

// selectBaseStation is the Simulator-level entry point client.go uses during
// connect()/Move(): it makes one pass over the client's cached candidate list
// and reports false if nothing covers — the bounded, non-recursive handover
// of Open Question 2. It does not rebuild the index itself; only Move's
// coverage-loss path calls spatialIndexRebuildIfStale after a failed pass.
func (sim *Simulator) selectBaseStation(c *Client, exclude *BaseStationID) (BaseStationID, bool) {
	byID := sim.baseStationsByID()
	if target, ok := selectFromCandidates(c, byID, exclude); ok {
		return target, true
	}
	return 0, false
}

// spatialIndexRebuildIfStale rebuilds (without reassigning) the spatial
// index if it has not already run at `now`. Returns true if a rebuild was
// actually performed.
func (sim *Simulator) spatialIndexRebuildIfStale(now float64) bool {
	if sim.SpatialIdx.hasRun && sim.SpatialIdx.lastRebuildTime == now {
		return false
	}
	sim.SpatialIdx.Rebuild(sim.Clients, sim.BaseStations, now, false)
	return true
}
