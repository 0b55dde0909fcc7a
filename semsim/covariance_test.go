package semsim_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/causalsim/semsim/semsim"
)

func TestImpliedCovariance_NoStructure(t *testing.T) {
	// With B = 0 the model is X = eps, so the implied covariance is the
	// diagonal error covariance itself.
	m, err := semsim.NewStructuralModel(mat.NewDense(3, 3, nil), nil)
	require.NoError(t, err)

	dist, err := semsim.NewGaussianErrors([]float64{1, 2, 0.5})
	require.NoError(t, err)

	sigma, err := m.ImpliedCovariance(dist)
	require.NoError(t, err)

	want := []float64{1, 4, 0.25}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				require.InDelta(t, want[i], sigma.At(i, j), 1e-12)
			} else {
				require.InDelta(t, 0, sigma.At(i, j), 1e-12)
			}
		}
	}
}

func TestEmpiricalCovariance_ConvergesToImplied(t *testing.T) {
	m, err := semsim.NewStructuralModel(cyclicExampleB(), nil)
	require.NoError(t, err)
	dist := semsim.StandardGaussianErrors(4)

	implied, err := m.ImpliedCovariance(dist)
	require.NoError(t, err)

	samples, err := m.Simulate(20000, dist, 7)
	require.NoError(t, err)
	empirical := semsim.EmpiricalCovariance(samples)

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			require.InDelta(t, implied.At(i, j), empirical.At(i, j), 0.2,
				"covariance entry (%d,%d)", i, j)
		}
	}
}

func TestImpliedCovariance_Errors(t *testing.T) {
	m, err := semsim.NewStructuralModel(cyclicExampleB(), nil)
	require.NoError(t, err)

	var dimErr *semsim.InvalidDimensionError
	_, err = m.ImpliedCovariance(nil)
	require.ErrorAs(t, err, &dimErr)

	_, err = m.ImpliedCovariance(semsim.StandardGaussianErrors(2))
	require.ErrorAs(t, err, &dimErr)

	// Unstable model has no implied covariance.
	unstable, err := semsim.NewStructuralModel(mat.NewDense(1, 1, []float64{1}), nil)
	require.NoError(t, err)
	var unstableErr *semsim.UnstableModelError
	_, err = unstable.ImpliedCovariance(semsim.StandardGaussianErrors(1))
	require.ErrorAs(t, err, &unstableErr)
}
