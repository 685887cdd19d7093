package sim

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distributor draws a real-valued sample from a named probability
// distribution. It supplies mobility steps, session sizes, initial
// placement, and usage frequency. The weighted slice/mobility-pattern
// assignment and the per-tick request coin flip draw from *rand.Rand
// directly rather than through a Distributor.
type Distributor interface {
	Sample(rng *rand.Rand) float64
}

// DistSpec names a distribution and its parameters. It is the sim-package
// counterpart of internal/config's YAML-tagged distribution spec; the
// builder translates one into the other so the engine never depends on the
// YAML schema directly.
type DistSpec struct {
	Name   string
	Params []float64
}

func (s DistSpec) param(i int) (float64, error) {
	if i >= len(s.Params) {
		return 0, fmt.Errorf("distribution %q requires parameter #%d, got %d params", s.Name, i+1, len(s.Params))
	}
	return s.Params[i], nil
}

// NewDistributor builds a Distributor from a DistSpec. Unknown distribution
// names are a construction-time error (§7), never a panic, so configuration
// problems surface cleanly through the CLI's exit code.
func NewDistributor(spec DistSpec) (Distributor, error) {
	switch spec.Name {
	case "randrange":
		return newRandRange(spec)
	case "randint":
		return newRandInt(spec)
	case "random":
		return randomSampler{}, nil
	case "uniform":
		return newUniform(spec)
	case "triangular":
		return newTriangular(spec)
	case "beta":
		return newBeta(spec)
	case "expo":
		return newExpo(spec)
	case "gamma":
		return newGamma(spec)
	case "gauss":
		return newGauss(spec)
	case "lognorm":
		return newLognorm(spec)
	case "normal":
		return newNormal(spec)
	case "vonmises":
		return newVonMises(spec)
	case "pareto":
		return newPareto(spec)
	case "weibull":
		return newWeibull(spec)
	default:
		return nil, fmt.Errorf("unknown distribution %q", spec.Name)
	}
}

// randomSampler draws a uniform sample in [0, 1), matching Python's random().
type randomSampler struct{}

func (randomSampler) Sample(rng *rand.Rand) float64 { return rng.Float64() }

type randRangeSampler struct{ start, stop, step float64 }

func newRandRange(spec DistSpec) (Distributor, error) {
	start, err := spec.param(0)
	if err != nil {
		return nil, err
	}
	stop, err := spec.param(1)
	if err != nil {
		return nil, err
	}
	step := 1.0
	if len(spec.Params) > 2 {
		step = spec.Params[2]
	}
	if step == 0 {
		return nil, fmt.Errorf("randrange step must be non-zero")
	}
	return &randRangeSampler{start: start, stop: stop, step: step}, nil
}

func (s *randRangeSampler) Sample(rng *rand.Rand) float64 {
	n := int(math.Floor((s.stop - s.start) / s.step))
	if n <= 0 {
		return s.start
	}
	return s.start + float64(rng.Intn(n))*s.step
}

type randIntSampler struct{ a, b float64 }

func newRandInt(spec DistSpec) (Distributor, error) {
	a, err := spec.param(0)
	if err != nil {
		return nil, err
	}
	b, err := spec.param(1)
	if err != nil {
		return nil, err
	}
	return &randIntSampler{a: a, b: b}, nil
}

func (s *randIntSampler) Sample(rng *rand.Rand) float64 {
	lo, hi := int64(s.a), int64(s.b)
	if hi < lo {
		lo, hi = hi, lo
	}
	return float64(lo + rng.Int63n(hi-lo+1))
}

type uniformSampler struct{ a, b float64 }

func newUniform(spec DistSpec) (Distributor, error) {
	a, err := spec.param(0)
	if err != nil {
		return nil, err
	}
	b, err := spec.param(1)
	if err != nil {
		return nil, err
	}
	return &uniformSampler{a: a, b: b}, nil
}

func (s *uniformSampler) Sample(rng *rand.Rand) float64 {
	return s.a + rng.Float64()*(s.b-s.a)
}

// triangularSampler matches Python's random.triangular(low, high, mode).
type triangularSampler struct{ low, high, mode float64 }

func newTriangular(spec DistSpec) (Distributor, error) {
	low, err := spec.param(0)
	if err != nil {
		return nil, err
	}
	high, err := spec.param(1)
	if err != nil {
		return nil, err
	}
	mode := (low + high) / 2
	if len(spec.Params) > 2 {
		mode = spec.Params[2]
	}
	return &triangularSampler{low: low, high: high, mode: mode}, nil
}

func (s *triangularSampler) Sample(rng *rand.Rand) float64 {
	u := rng.Float64()
	c := (s.mode - s.low) / (s.high - s.low)
	if u <= c {
		return s.low + math.Sqrt(u*(s.high-s.low)*(s.mode-s.low))
	}
	return s.high - math.Sqrt((1-u)*(s.high-s.low)*(s.high-s.mode))
}

// gonumSampler adapts a gonum distuv distribution, which requires its own
// rand.Rand plugged in at sampling time via the Src field.
type gonumSampler struct {
	rand func(rng *rand.Rand) float64
}

func (s *gonumSampler) Sample(rng *rand.Rand) float64 { return s.rand(rng) }

func newBeta(spec DistSpec) (Distributor, error) {
	alpha, err := spec.param(0)
	if err != nil {
		return nil, err
	}
	beta, err := spec.param(1)
	if err != nil {
		return nil, err
	}
	return &gonumSampler{rand: func(rng *rand.Rand) float64 {
		d := distuv.Beta{Alpha: alpha, Beta: beta, Src: rng}
		return d.Rand()
	}}, nil
}

// expoSampler matches Python's random.expovariate(lambd): mean is 1/lambd.
type expoSampler struct{ lambd float64 }

func newExpo(spec DistSpec) (Distributor, error) {
	lambd, err := spec.param(0)
	if err != nil {
		return nil, err
	}
	if lambd == 0 {
		return nil, fmt.Errorf("expo distribution lambda must be non-zero")
	}
	return &expoSampler{lambd: lambd}, nil
}

func (s *expoSampler) Sample(rng *rand.Rand) float64 {
	return rng.ExpFloat64() / s.lambd
}

func newGamma(spec DistSpec) (Distributor, error) {
	alpha, err := spec.param(0)
	if err != nil {
		return nil, err
	}
	beta, err := spec.param(1)
	if err != nil {
		return nil, err
	}
	return &gonumSampler{rand: func(rng *rand.Rand) float64 {
		d := distuv.Gamma{Alpha: alpha, Beta: beta, Src: rng}
		return d.Rand()
	}}, nil
}

// gaussSampler matches Python's random.gauss(mu, sigma): a direct
// Box-Muller-free draw via math/rand's NormFloat64, distinct from the
// "normal" distribution which is routed through gonum below.
type gaussSampler struct{ mu, sigma float64 }

func newGauss(spec DistSpec) (Distributor, error) {
	mu, err := spec.param(0)
	if err != nil {
		return nil, err
	}
	sigma, err := spec.param(1)
	if err != nil {
		return nil, err
	}
	return &gaussSampler{mu: mu, sigma: sigma}, nil
}

func (s *gaussSampler) Sample(rng *rand.Rand) float64 {
	return rng.NormFloat64()*s.sigma + s.mu
}

func newLognorm(spec DistSpec) (Distributor, error) {
	mu, err := spec.param(0)
	if err != nil {
		return nil, err
	}
	sigma, err := spec.param(1)
	if err != nil {
		return nil, err
	}
	return &gonumSampler{rand: func(rng *rand.Rand) float64 {
		d := distuv.LogNormal{Mu: mu, Sigma: sigma, Src: rng}
		return d.Rand()
	}}, nil
}

func newNormal(spec DistSpec) (Distributor, error) {
	mu, err := spec.param(0)
	if err != nil {
		return nil, err
	}
	sigma, err := spec.param(1)
	if err != nil {
		return nil, err
	}
	return &gonumSampler{rand: func(rng *rand.Rand) float64 {
		d := distuv.Normal{Mu: mu, Sigma: sigma, Src: rng}
		return d.Rand()
	}}, nil
}

func newVonMises(spec DistSpec) (Distributor, error) {
	mu, err := spec.param(0)
	if err != nil {
		return nil, err
	}
	kappa, err := spec.param(1)
	if err != nil {
		return nil, err
	}
	return &gonumSampler{rand: func(rng *rand.Rand) float64 {
		d := distuv.VonMises{Mu: mu, Kappa: kappa, Src: rng}
		return d.Rand()
	}}, nil
}

// newPareto accepts either [alpha] (xm defaults to 1, as in Python's
// random.paretovariate) or [xm, alpha].
func newPareto(spec DistSpec) (Distributor, error) {
	var xm, alpha float64
	switch len(spec.Params) {
	case 1:
		xm, alpha = 1.0, spec.Params[0]
	case 2:
		xm, alpha = spec.Params[0], spec.Params[1]
	default:
		return nil, fmt.Errorf("pareto distribution requires 1 or 2 params, got %d", len(spec.Params))
	}
	return &gonumSampler{rand: func(rng *rand.Rand) float64 {
		d := distuv.Pareto{Xm: xm, Alpha: alpha, Src: rng}
		return d.Rand()
	}}, nil
}

func newWeibull(spec DistSpec) (Distributor, error) {
	shape, err := spec.param(0)
	if err != nil {
		return nil, err
	}
	scale, err := spec.param(1)
	if err != nil {
		return nil, err
	}
	return &gonumSampler{rand: func(rng *rand.Rand) float64 {
		d := distuv.Weibull{K: shape, Lambda: scale, Src: rng}
		return d.Rand()
	}}, nil
}
