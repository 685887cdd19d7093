package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisk_Contains(t *testing.T) {
	d := Disk{CenterX: 0, CenterY: 0, Radius: 5}
	assert.True(t, d.Contains(3, 4))  // exactly on the boundary
	assert.True(t, d.Contains(0, 0))  // center
	assert.False(t, d.Contains(5, 5)) // outside
}

func TestDisk_DistanceTo(t *testing.T) {
	d := Disk{CenterX: 1, CenterY: 1, Radius: 1}
	assert.InDelta(t, 5.0, d.DistanceTo(1, 6), 1e-9)
}
