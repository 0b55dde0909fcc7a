package semsim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ImpliedCovariance returns the exact covariance of the simulated vector,
// A Sigma_eps A^T with A = (I - B)^(-1) and Sigma_eps the diagonal error
// covariance. The empirical covariance of a large simulated sample converges
// to this matrix.
func (m *StructuralModel) ImpliedCovariance(dist ErrorDistribution) (*mat.SymDense, error) {
	if dist == nil {
		return nil, &InvalidDimensionError{Reason: "error distribution not provided"}
	}
	p := m.Dim()
	if dist.Dim() != p {
		return nil, &InvalidDimensionError{
			Reason: fmt.Sprintf("error distribution has %d terms for %d variables", dist.Dim(), p),
		}
	}

	A, err := m.reducedForm()
	if err != nil {
		return nil, err
	}

	D := mat.NewDiagDense(p, dist.Variances())

	var AD, S mat.Dense
	AD.Mul(A, D)
	S.Mul(&AD, A.T())

	// S is symmetric up to floating-point error; average the two triangles.
	sym := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			sym.SetSym(i, j, (S.At(i, j)+S.At(j, i))/2)
		}
	}
	return sym, nil
}

// EmpiricalCovariance computes the sample covariance of an n x p data
// matrix, one variable per column.
func EmpiricalCovariance(samples *mat.Dense) *mat.SymDense {
	_, p := samples.Dims()
	cov := mat.NewSymDense(p, nil)
	stat.CovarianceMatrix(cov, samples, nil)
	return cov
}
