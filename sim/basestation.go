package sim

// BaseStationID is a stable integer handle for a base station, used instead
// of pointers so that clients can reference a base station without forming
// a shared mutable object graph (§9 design notes).
type BaseStationID int

// BaseStation is a container of Slices sharing one coverage disk and one
// total bandwidth budget (§3, component D).
type BaseStation struct {
	ID                BaseStationID
	Coverage          Disk
	CapacityBandwidth float64
	// SliceNames preserves configuration order for deterministic iteration;
	// Slices is keyed by slice name for O(1) lookup.
	SliceNames []string
	Slices     map[string]*Slice
}

// NewBaseStation constructs an empty BaseStation; slices are attached via AddSlice.
func NewBaseStation(id BaseStationID, coverage Disk, capacityBandwidth float64) *BaseStation {
	return &BaseStation{
		ID:                id,
		Coverage:          coverage,
		CapacityBandwidth: capacityBandwidth,
		Slices:            make(map[string]*Slice),
	}
}

// AddSlice attaches a slice to this base station, preserving insertion order.
func (b *BaseStation) AddSlice(s *Slice) {
	if _, exists := b.Slices[s.Name]; !exists {
		b.SliceNames = append(b.SliceNames, s.Name)
	}
	b.Slices[s.Name] = s
}

// Slice looks up a slice by name; ok is false if this base station does not
// carry that slice.
func (b *BaseStation) Slice(name string) (s *Slice, ok bool) {
	s, ok = b.Slices[name]
	return
}
