package semsim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StructuralModel holds the linear structural coefficient matrix of a SEM.
type StructuralModel struct {
	// Coefficient matrix, p x p. B.At(i, j) is the linear effect of
	// variable j on variable i. Nonzero entries may form directed cycles.
	B *mat.Dense
	// List of variable names, one per row/column of B
	VarNames []string
}

// InvalidDimensionError reports a shape problem: a non-square coefficient
// matrix, a name or distribution that does not match the number of
// variables, or a non-positive sample count.
type InvalidDimensionError struct {
	Reason string
}

func (e *InvalidDimensionError) Error() string {
	return "semsim: invalid dimension: " + e.Reason
}

// UnstableModelError reports a coefficient matrix whose feedback system has
// no well-defined equilibrium: the spectral radius of B is >= 1. This covers
// the singular (I - B) case, since an eigenvalue of exactly 1 makes I - B
// singular.
type UnstableModelError struct {
	SpectralRadius float64
}

func (e *UnstableModelError) Error() string {
	return fmt.Sprintf("semsim: unstable model: spectral radius %g >= 1", e.SpectralRadius)
}

// NewStructuralModel validates B and wraps it in a StructuralModel.
// varNames may be nil, in which case names X1..Xp are generated.
func NewStructuralModel(B *mat.Dense, varNames []string) (*StructuralModel, error) {
	if B == nil {
		return nil, &InvalidDimensionError{Reason: "coefficient matrix not provided"}
	}

	r, c := B.Dims()
	if r != c {
		return nil, &InvalidDimensionError{
			Reason: fmt.Sprintf("coefficient matrix must be square, got %dx%d", r, c),
		}
	}

	if varNames == nil {
		varNames = make([]string, r)
		for i := range varNames {
			varNames[i] = fmt.Sprintf("X%d", i+1)
		}
	}
	if len(varNames) != r {
		return nil, &InvalidDimensionError{
			Reason: fmt.Sprintf("got %d variable names for %d variables", len(varNames), r),
		}
	}

	return &StructuralModel{B: B, VarNames: varNames}, nil
}

// Dim returns p, the number of variables in the model.
func (m *StructuralModel) Dim() int {
	p, _ := m.B.Dims()
	return p
}
