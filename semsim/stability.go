package semsim

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// StabilityReport describes the eigenstructure of a coefficient matrix.
// The feedback system X = BX + eps has a well-defined equilibrium only when
// SpectralRadius < 1 (the Neumann series I + B + B^2 + ... converges).
type StabilityReport struct {
	// Eigenvalues of B, in the order returned by the factorization
	Eigenvalues []complex128
	// Largest eigenvalue modulus
	SpectralRadius float64
	// True when SpectralRadius < 1
	Stable bool
}

// Stability computes the eigenvalues of B and checks the spectral-radius
// stability condition. The report is advisory: Simulate does its own gating.
func (m *StructuralModel) Stability() (*StabilityReport, error) {
	return stabilityOf(m.B)
}

// SpectralRadius returns the largest eigenvalue modulus of a square matrix.
func SpectralRadius(B *mat.Dense) (float64, error) {
	rep, err := stabilityOf(B)
	if err != nil {
		return 0, err
	}
	return rep.SpectralRadius, nil
}

func stabilityOf(B *mat.Dense) (*StabilityReport, error) {
	r, c := B.Dims()
	if r != c {
		return nil, &InvalidDimensionError{
			Reason: fmt.Sprintf("matrix must be square, got %dx%d", r, c),
		}
	}

	var eig mat.Eigen
	if ok := eig.Factorize(B, mat.EigenNone); !ok {
		return nil, fmt.Errorf("eigenvalue factorization failed")
	}

	values := eig.Values(nil)

	radius := 0.0
	for _, v := range values {
		if a := cmplx.Abs(v); a > radius {
			radius = a
		}
	}

	return &StabilityReport{
		Eigenvalues:    values,
		SpectralRadius: radius,
		Stable:         radius < 1,
	}, nil
}
