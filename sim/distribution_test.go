package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDistributor_UnknownNameIsError(t *testing.T) {
	_, err := NewDistributor(DistSpec{Name: "not-a-distribution"})
	require.Error(t, err)
}

func TestNewDistributor_MissingParamIsError(t *testing.T) {
	_, err := NewDistributor(DistSpec{Name: "uniform", Params: []float64{1}})
	require.Error(t, err)
}

func TestUniformSampler_Bounds(t *testing.T) {
	d, err := NewDistributor(DistSpec{Name: "uniform", Params: []float64{2, 4}})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		v := d.Sample(rng)
		assert.GreaterOrEqual(t, v, 2.0)
		assert.Less(t, v, 4.0)
	}
}

func TestRandRangeSampler_Bounds(t *testing.T) {
	d, err := NewDistributor(DistSpec{Name: "randrange", Params: []float64{0, 10, 2}})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		v := d.Sample(rng)
		assert.Equal(t, 0.0, float64(int(v)%2))
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 10.0)
	}
}

func TestRandIntSampler_InclusiveBounds(t *testing.T) {
	d, err := NewDistributor(DistSpec{Name: "randint", Params: []float64{1, 3}})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))
	seen := map[float64]bool{}
	for i := 0; i < 500; i++ {
		v := d.Sample(rng)
		seen[v] = true
		assert.GreaterOrEqual(t, v, 1.0)
		assert.LessOrEqual(t, v, 3.0)
	}
	assert.True(t, seen[1] && seen[2] && seen[3])
}

func TestExpoSampler_MeanApproximatesInverseLambda(t *testing.T) {
	d, err := NewDistributor(DistSpec{Name: "expo", Params: []float64{2.0}})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))
	sum := 0.0
	const n = 20000
	for i := 0; i < n; i++ {
		sum += d.Sample(rng)
	}
	assert.InDelta(t, 0.5, sum/n, 0.05)
}

func TestExpoSampler_ZeroLambdaIsError(t *testing.T) {
	_, err := NewDistributor(DistSpec{Name: "expo", Params: []float64{0}})
	require.Error(t, err)
}

func TestTriangularSampler_Bounds(t *testing.T) {
	d, err := NewDistributor(DistSpec{Name: "triangular", Params: []float64{0, 10, 3}})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		v := d.Sample(rng)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 10.0)
	}
}

func TestGaussSampler_DistinctFromNormal(t *testing.T) {
	gauss, err := NewDistributor(DistSpec{Name: "gauss", Params: []float64{0, 1}})
	require.NoError(t, err)
	normal, err := NewDistributor(DistSpec{Name: "normal", Params: []float64{0, 1}})
	require.NoError(t, err)

	rngA := rand.New(rand.NewSource(5))
	rngB := rand.New(rand.NewSource(5))
	assert.NotEqual(t, gauss.Sample(rngA), normal.Sample(rngB))
}

func TestParetoSampler_OneOrTwoParams(t *testing.T) {
	_, err := NewDistributor(DistSpec{Name: "pareto", Params: []float64{2}})
	require.NoError(t, err)
	_, err = NewDistributor(DistSpec{Name: "pareto", Params: []float64{1, 2}})
	require.NoError(t, err)
	_, err = NewDistributor(DistSpec{Name: "pareto", Params: []float64{1, 2, 3}})
	require.Error(t, err)
}

func TestGonumBackedDistributions_Construct(t *testing.T) {
	cases := []DistSpec{
		{Name: "beta", Params: []float64{2, 5}},
		{Name: "gamma", Params: []float64{2, 1}},
		{Name: "lognorm", Params: []float64{0, 1}},
		{Name: "normal", Params: []float64{0, 1}},
		{Name: "vonmises", Params: []float64{0, 1}},
		{Name: "weibull", Params: []float64{1, 1}},
	}
	rng := rand.New(rand.NewSource(1))
	for _, c := range cases {
		d, err := NewDistributor(c)
		require.NoError(t, err, c.Name)
		v := d.Sample(rng)
		assert.False(t, v != v, "%s produced NaN", c.Name) // NaN check without math import
	}
}

func TestRandomSampler_ZeroToOne(t *testing.T) {
	d, err := NewDistributor(DistSpec{Name: "random"})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		v := d.Sample(rng)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}
