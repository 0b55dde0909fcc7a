package semsim

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws one full error vector per call. Samplers are not safe for
// concurrent use; SimulateParallel gives each chunk of rows its own.
type Sampler interface {
	// Draw fills dst with one realization of the p independent error terms.
	Draw(dst []float64)
}

// ErrorDistribution describes the joint distribution of the p jointly
// independent error terms. Implementations must have finite per-variable
// variance and must produce identical draw streams for identical seeds.
type ErrorDistribution interface {
	// Dim returns p, the number of error terms per draw.
	Dim() int
	// Variances returns the per-variable error variances.
	Variances() []float64
	// Sampler returns an independent draw stream for the given seed.
	Sampler(seed uint64) Sampler
}

// pcgSource builds a distuv-compatible random source from a single seed.
// The second stream word keeps distinct small seeds decorrelated.
func pcgSource(seed uint64) *rand.PCG {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// GaussianErrors draws each error term from an independent normal with mean
// zero and a per-variable standard deviation.
type GaussianErrors struct {
	stddevs []float64
}

// NewGaussianErrors builds a Gaussian error distribution with the given
// per-variable standard deviations, all of which must be positive.
func NewGaussianErrors(stddevs []float64) (*GaussianErrors, error) {
	if len(stddevs) == 0 {
		return nil, &InvalidDimensionError{Reason: "need at least one error term"}
	}
	for i, sd := range stddevs {
		if sd <= 0 {
			return nil, fmt.Errorf("stddev for variable %d must be > 0, got %g", i+1, sd)
		}
	}
	out := make([]float64, len(stddevs))
	copy(out, stddevs)
	return &GaussianErrors{stddevs: out}, nil
}

// StandardGaussianErrors builds p independent standard-normal error terms,
// the default error distribution for SEM examples.
func StandardGaussianErrors(p int) *GaussianErrors {
	stddevs := make([]float64, p)
	for i := range stddevs {
		stddevs[i] = 1
	}
	return &GaussianErrors{stddevs: stddevs}
}

func (g *GaussianErrors) Dim() int { return len(g.stddevs) }

func (g *GaussianErrors) Variances() []float64 {
	vars := make([]float64, len(g.stddevs))
	for i, sd := range g.stddevs {
		vars[i] = sd * sd
	}
	return vars
}

func (g *GaussianErrors) Sampler(seed uint64) Sampler {
	src := pcgSource(seed)
	dists := make([]distuv.Normal, len(g.stddevs))
	for i, sd := range g.stddevs {
		dists[i] = distuv.Normal{Mu: 0, Sigma: sd, Src: src}
	}
	return &gaussianSampler{dists: dists}
}

type gaussianSampler struct {
	dists []distuv.Normal
}

func (s *gaussianSampler) Draw(dst []float64) {
	for i := range s.dists {
		dst[i] = s.dists[i].Rand()
	}
}

// UniformErrors draws each error term uniformly from [-w_i, w_i], so each
// term has mean zero and variance w_i^2 / 3.
type UniformErrors struct {
	halfWidths []float64
}

// NewUniformErrors builds a mean-zero uniform error distribution with the
// given per-variable half-widths, all of which must be positive.
func NewUniformErrors(halfWidths []float64) (*UniformErrors, error) {
	if len(halfWidths) == 0 {
		return nil, &InvalidDimensionError{Reason: "need at least one error term"}
	}
	for i, w := range halfWidths {
		if w <= 0 {
			return nil, fmt.Errorf("half-width for variable %d must be > 0, got %g", i+1, w)
		}
	}
	out := make([]float64, len(halfWidths))
	copy(out, halfWidths)
	return &UniformErrors{halfWidths: out}, nil
}

func (u *UniformErrors) Dim() int { return len(u.halfWidths) }

func (u *UniformErrors) Variances() []float64 {
	vars := make([]float64, len(u.halfWidths))
	for i, w := range u.halfWidths {
		vars[i] = w * w / 3
	}
	return vars
}

func (u *UniformErrors) Sampler(seed uint64) Sampler {
	src := pcgSource(seed)
	dists := make([]distuv.Uniform, len(u.halfWidths))
	for i, w := range u.halfWidths {
		dists[i] = distuv.Uniform{Min: -w, Max: w, Src: src}
	}
	return &uniformSampler{dists: dists}
}

type uniformSampler struct {
	dists []distuv.Uniform
}

func (s *uniformSampler) Draw(dst []float64) {
	for i := range s.dists {
		dst[i] = s.dists[i].Rand()
	}
}

// StudentTErrors draws each error term from a location-scale Student's t
// with mean zero, shared degrees of freedom nu and per-variable scale.
// nu must exceed 2 so the variance scale_i^2 * nu / (nu - 2) is finite.
type StudentTErrors struct {
	nu     float64
	scales []float64
}

// NewStudentTErrors builds a heavy-tailed error distribution. Useful for
// examples where the Gaussian assumption of the downstream method is meant
// to be violated.
func NewStudentTErrors(nu float64, scales []float64) (*StudentTErrors, error) {
	if len(scales) == 0 {
		return nil, &InvalidDimensionError{Reason: "need at least one error term"}
	}
	if nu <= 2 {
		return nil, fmt.Errorf("degrees of freedom must be > 2 for finite variance, got %g", nu)
	}
	for i, s := range scales {
		if s <= 0 {
			return nil, fmt.Errorf("scale for variable %d must be > 0, got %g", i+1, s)
		}
	}
	out := make([]float64, len(scales))
	copy(out, scales)
	return &StudentTErrors{nu: nu, scales: out}, nil
}

func (t *StudentTErrors) Dim() int { return len(t.scales) }

func (t *StudentTErrors) Variances() []float64 {
	vars := make([]float64, len(t.scales))
	for i, s := range t.scales {
		vars[i] = s * s * t.nu / (t.nu - 2)
	}
	return vars
}

func (t *StudentTErrors) Sampler(seed uint64) Sampler {
	src := pcgSource(seed)
	dists := make([]distuv.StudentsT, len(t.scales))
	for i, s := range t.scales {
		dists[i] = distuv.StudentsT{Mu: 0, Sigma: s, Nu: t.nu, Src: src}
	}
	return &studentTSampler{dists: dists}
}

type studentTSampler struct {
	dists []distuv.StudentsT
}

func (s *studentTSampler) Draw(dst []float64) {
	for i := range s.dists {
		dst[i] = s.dists[i].Rand()
	}
}
