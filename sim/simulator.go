package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// StatisticsWindow bounds the stats collector to clients inside a rectangle
// (§4.6, §6). NewSimulator starts every bound at +/-Inf so "no restriction"
// is the default; the builder replaces all four bounds from configuration
// unless both the x and y ranges are left at their zero value.
type StatisticsWindow struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Contains reports whether (x, y) lies inside the statistics rectangle.
func (w StatisticsWindow) Contains(x, y float64) bool {
	return x >= w.MinX && x <= w.MaxX && y >= w.MinY && y <= w.MaxY
}

// Simulator is the core object that owns the virtual clock, the event
// queue, and the arena of clients and base stations (§4.1, component G).
//
// Clients and base stations live in arena slices; a client refers to its
// base station by integer handle (BaseStationID), resolved through
// baseStationIdx, per the arena-allocation strategy recommended in §9 —
// there are no client<->base-station pointer cycles to reason about.
type Simulator struct {
	Clock   float64
	Horizon float64 // simulation_time

	EventQueue   *EventHeap
	nextEventSeq uint64

	Clients        []*Client
	BaseStations   []*BaseStation
	baseStationIdx map[BaseStationID]*BaseStation

	SpatialIdx *SpatialIndex
	Stats      *StatsCollector

	DynamicAllocationEnabled bool
	LatencyTrackingEnabled   bool

	StatsWindow   StatisticsWindow
	WarmupRatio   float64
	CooldownRatio float64

	RNG *PartitionedRNG
}

// NewSimulator constructs an empty Simulator. Use the sim package's Build
// function (builder.go) to go from parsed configuration to a fully wired
// Simulator ready to Run.
func NewSimulator(horizon float64, limitClosestBaseStations int, dynamicAllocation, latencyTracking bool, rng *PartitionedRNG) *Simulator {
	return &Simulator{
		Horizon:                  horizon,
		EventQueue:               NewEventHeap(),
		baseStationIdx:           make(map[BaseStationID]*BaseStation),
		SpatialIdx:               NewSpatialIndex(limitClosestBaseStations),
		Stats:                    NewStatsCollector(),
		DynamicAllocationEnabled: dynamicAllocation,
		LatencyTrackingEnabled:   latencyTracking,
		StatsWindow:              StatisticsWindow{MinX: math.Inf(-1), MaxX: math.Inf(1), MinY: math.Inf(-1), MaxY: math.Inf(1)},
		RNG:                      rng,
	}
}

// AddBaseStation registers a base station in the arena.
func (sim *Simulator) AddBaseStation(bs *BaseStation) {
	sim.BaseStations = append(sim.BaseStations, bs)
	sim.baseStationIdx[bs.ID] = bs
}

// AddClient registers a client in the arena.
func (sim *Simulator) AddClient(c *Client) {
	sim.Clients = append(sim.Clients, c)
}

func (sim *Simulator) baseStation(id BaseStationID) *BaseStation {
	return sim.baseStationIdx[id]
}

func (sim *Simulator) baseStationsByID() map[BaseStationID]*BaseStation {
	return sim.baseStationIdx
}

// scheduleInitialEvents primes the event queue with the first occurrence of
// every phase and scheduler-owned process. Called once by Build.
func (sim *Simulator) scheduleInitialEvents() {
	sim.nextEventSeq++
	sim.EventQueue.Schedule(&statsCollectorEvent{baseEvent{0, priorityStatsCollector, sim.nextEventSeq}})
	sim.nextEventSeq++
	sim.EventQueue.Schedule(&lockEvent{baseEvent{0, priorityLock, sim.nextEventSeq}})
	sim.nextEventSeq++
	sim.EventQueue.Schedule(&clientStatsEvent{baseEvent{tickStep, priorityClientStats, sim.nextEventSeq}})
	sim.nextEventSeq++
	sim.EventQueue.Schedule(&releaseEvent{baseEvent{2 * tickStep, priorityRelease, sim.nextEventSeq}})
	sim.nextEventSeq++
	sim.EventQueue.Schedule(&moveEvent{baseEvent{3 * tickStep, priorityMove, sim.nextEventSeq}})
	sim.nextEventSeq++
	sim.EventQueue.Schedule(&allocatorEvent{baseEvent{0, priorityAllocator, sim.nextEventSeq}})
}

// Run drives the event loop until the virtual clock reaches the horizon
// (§4.1 termination).
func (sim *Simulator) Run() {
	logrus.Infof("starting simulation: horizon=%.2f clients=%d base_stations=%d", sim.Horizon, len(sim.Clients), len(sim.BaseStations))
	for sim.EventQueue.Len() > 0 {
		ev := sim.EventQueue.PopNext()
		if ev.Timestamp() > sim.Horizon {
			break
		}
		sim.Clock = ev.Timestamp()
		logrus.Debugf("[tick %.2f] executing %T", sim.Clock, ev)
		ev.Execute(sim)
	}
	logrus.Infof("simulation ended at tick %.2f", sim.Clock)
}

// runLockPhase executes the .00 sub-phase for every client in pk order (§4.1, §5).
func (sim *Simulator) runLockPhase(now float64) {
	for _, c := range sim.Clients {
		c.Lock(sim, now)
	}
}

// runClientStatsPhase executes the .25 sub-phase for every client.
func (sim *Simulator) runClientStatsPhase() {
	for _, c := range sim.Clients {
		c.Stats(tickStep)
	}
}

// runReleasePhase executes the .50 sub-phase for every client.
func (sim *Simulator) runReleasePhase(now float64) {
	for _, c := range sim.Clients {
		c.Release(sim, now)
	}
}

// runMovePhase executes the .75 sub-phase for every client.
func (sim *Simulator) runMovePhase(now float64) {
	for _, c := range sim.Clients {
		c.Move(sim, now)
	}
}
