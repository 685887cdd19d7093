package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionedRNG_SameSubsystemReturnsSameStream(t *testing.T) {
	rng := NewPartitionedRNG(42)
	a := rng.ForSubsystem("mobility:0")
	b := rng.ForSubsystem("mobility:0")
	assert.Same(t, a, b)
}

func TestPartitionedRNG_DifferentSubsystemsAreIndependent(t *testing.T) {
	rng := NewPartitionedRNG(42)
	a := rng.ForSubsystem("location:x")
	b := rng.ForSubsystem("location:y")
	assert.NotEqual(t, a.Int63(), b.Int63())
}

func TestPartitionedRNG_DeterministicAcrossInstances(t *testing.T) {
	r1 := NewPartitionedRNG(7)
	r2 := NewPartitionedRNG(7)
	s1 := r1.ForSubsystem("client:3")
	s2 := r2.ForSubsystem("client:3")
	for i := 0; i < 10; i++ {
		assert.Equal(t, s1.Float64(), s2.Float64())
	}
}

func TestPartitionedRNG_Seed(t *testing.T) {
	rng := NewPartitionedRNG(99)
	assert.Equal(t, int64(99), rng.Seed())
}
