package sim

import "container/heap"

// Phase priorities order same-timestamp events deterministically (§4.1,
// §5). Lower runs first. The Stats Collector runs before that tick's Lock
// phase so it observes state as of the end of the previous tick; the
// Dynamic Allocator runs last so its writes are visible to the next Lock.
const (
	priorityStatsCollector = 0
	priorityLock           = 1
	priorityClientStats    = 2
	priorityRelease        = 3
	priorityMove           = 4
	priorityAllocator      = 5
)

// tickStep is the per-client phase granularity (§4.1).
const tickStep = 0.25

// allocatorStep is the Dynamic Allocator's cadence (§4.5).
const allocatorStep = 0.5

// Event is one scheduled occurrence in the simulator's event loop (component G).
type Event interface {
	Timestamp() float64
	Priority() int
	Execute(sim *Simulator)
	sequence() uint64
}

// baseEvent carries the fields common to every event, grounded in the
// teacher's cluster.BaseEvent (sim/cluster/events.go).
type baseEvent struct {
	timestamp float64
	priority  int
	seq       uint64
}

func (e baseEvent) Timestamp() float64 { return e.timestamp }
func (e baseEvent) Priority() int      { return e.priority }
func (e baseEvent) sequence() uint64   { return e.seq }

// EventHeap is a binary min-heap ordered by (timestamp, priority, seq),
// grounded in the teacher's sim/cluster/event_heap.go.
type EventHeap struct {
	events []Event
}

// NewEventHeap creates an empty, heap-initialized EventHeap.
func NewEventHeap() *EventHeap {
	h := &EventHeap{}
	heap.Init(h)
	return h
}

func (h *EventHeap) Len() int { return len(h.events) }

func (h *EventHeap) Less(i, j int) bool {
	a, b := h.events[i], h.events[j]
	if a.Timestamp() != b.Timestamp() {
		return a.Timestamp() < b.Timestamp()
	}
	if a.Priority() != b.Priority() {
		return a.Priority() < b.Priority()
	}
	return a.sequence() < b.sequence()
}

func (h *EventHeap) Swap(i, j int) { h.events[i], h.events[j] = h.events[j], h.events[i] }

func (h *EventHeap) Push(x any) { h.events = append(h.events, x.(Event)) }

func (h *EventHeap) Pop() any {
	old := h.events
	n := len(old)
	item := old[n-1]
	h.events = old[:n-1]
	return item
}

// Schedule inserts an event into the heap.
func (h *EventHeap) Schedule(e Event) { heap.Push(h, e) }

// PopNext removes and returns the earliest-ordered event, or nil if empty.
func (h *EventHeap) PopNext() Event {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(Event)
}

// --- concrete events ---

type lockEvent struct{ baseEvent }

func (e *lockEvent) Execute(sim *Simulator) {
	sim.runLockPhase(e.timestamp)
	sim.scheduleNext(e.timestamp+1, priorityLock, func(t float64, seq uint64) Event {
		return &lockEvent{baseEvent{t, priorityLock, seq}}
	})
}

type clientStatsEvent struct{ baseEvent }

func (e *clientStatsEvent) Execute(sim *Simulator) {
	sim.runClientStatsPhase()
	sim.scheduleNext(e.timestamp+1, priorityClientStats, func(t float64, seq uint64) Event {
		return &clientStatsEvent{baseEvent{t, priorityClientStats, seq}}
	})
}

type releaseEvent struct{ baseEvent }

func (e *releaseEvent) Execute(sim *Simulator) {
	sim.runReleasePhase(e.timestamp)
	sim.scheduleNext(e.timestamp+1, priorityRelease, func(t float64, seq uint64) Event {
		return &releaseEvent{baseEvent{t, priorityRelease, seq}}
	})
}

type moveEvent struct{ baseEvent }

func (e *moveEvent) Execute(sim *Simulator) {
	sim.runMovePhase(e.timestamp)
	sim.scheduleNext(e.timestamp+1, priorityMove, func(t float64, seq uint64) Event {
		return &moveEvent{baseEvent{t, priorityMove, seq}}
	})
}

type statsCollectorEvent struct{ baseEvent }

func (e *statsCollectorEvent) Execute(sim *Simulator) {
	sim.Stats.Collect(sim, e.timestamp)
	sim.scheduleNext(e.timestamp+1, priorityStatsCollector, func(t float64, seq uint64) Event {
		return &statsCollectorEvent{baseEvent{t, priorityStatsCollector, seq}}
	})
}

type allocatorEvent struct{ baseEvent }

func (e *allocatorEvent) Execute(sim *Simulator) {
	if sim.DynamicAllocationEnabled {
		RunDynamicAllocation(sim.BaseStations, sim.Clients, e.timestamp)
	}
	sim.scheduleNext(e.timestamp+allocatorStep, priorityAllocator, func(t float64, seq uint64) Event {
		return &allocatorEvent{baseEvent{t, priorityAllocator, seq}}
	})
}

// scheduleNext schedules the next occurrence of a self-rescheduling event
// unconditionally; Run's own horizon check is the single source of truth for
// termination, stopping at the first event past the horizon.
func (sim *Simulator) scheduleNext(next float64, priority int, make func(t float64, seq uint64) Event) {
	sim.nextEventSeq++
	sim.EventQueue.Schedule(make(next, sim.nextEventSeq))
}
