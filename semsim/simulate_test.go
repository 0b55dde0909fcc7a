package semsim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/causalsim/semsim/semsim"
)

func TestSimulate_Shape(t *testing.T) {
	m, err := semsim.NewStructuralModel(cyclicExampleB(), nil)
	require.NoError(t, err)

	samples, err := m.Simulate(1000, semsim.StandardGaussianErrors(4), 42)
	require.NoError(t, err)

	rows, cols := samples.Dims()
	require.Equal(t, 1000, rows)
	require.Equal(t, 4, cols)
}

func TestSimulate_NoNaNOrInf(t *testing.T) {
	m, err := semsim.NewStructuralModel(cyclicExampleB(), nil)
	require.NoError(t, err)

	samples, err := m.Simulate(1000, semsim.StandardGaussianErrors(4), 42)
	require.NoError(t, err)

	rows, cols := samples.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := samples.At(i, j)
			require.False(t, math.IsNaN(v), "NaN at (%d,%d)", i, j)
			require.False(t, math.IsInf(v, 0), "Inf at (%d,%d)", i, j)
		}
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	m, err := semsim.NewStructuralModel(cyclicExampleB(), nil)
	require.NoError(t, err)
	dist := semsim.StandardGaussianErrors(4)

	a, err := m.Simulate(500, dist, 7)
	require.NoError(t, err)
	b, err := m.Simulate(500, dist, 7)
	require.NoError(t, err)
	require.True(t, mat.Equal(a, b), "same seed must reproduce the same sample")

	c, err := m.Simulate(500, dist, 8)
	require.NoError(t, err)
	require.False(t, mat.Equal(a, c), "different seeds must differ")
}

func TestSimulateParallel_MatchesSequential(t *testing.T) {
	m, err := semsim.NewStructuralModel(cyclicExampleB(), nil)
	require.NoError(t, err)
	dist := semsim.StandardGaussianErrors(4)

	// 1300 rows spans multiple chunks, including a partial final one.
	seq, err := m.Simulate(1300, dist, 99)
	require.NoError(t, err)

	for _, workers := range []int{1, 2, 4, 0} {
		par, err := m.SimulateParallel(1300, dist, 99, workers)
		require.NoError(t, err)
		require.True(t, mat.Equal(seq, par), "workers=%d must match sequential output", workers)
	}
}

// The first row of the example B is all zeros, so X1 is exactly its own
// error term. Simulating with a zero coefficient matrix and the same seed
// reproduces the raw error draws for comparison.
func TestSimulate_ExogenousColumnEqualsErrors(t *testing.T) {
	m, err := semsim.NewStructuralModel(cyclicExampleB(), nil)
	require.NoError(t, err)
	zero, err := semsim.NewStructuralModel(mat.NewDense(4, 4, nil), nil)
	require.NoError(t, err)

	dist := semsim.StandardGaussianErrors(4)
	samples, err := m.Simulate(1000, dist, 42)
	require.NoError(t, err)
	raw, err := zero.Simulate(1000, dist, 42)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		require.InDelta(t, raw.At(i, 0), samples.At(i, 0), 1e-12)
	}
}

func TestSimulate_CyclicCoefficientsInduceCorrelation(t *testing.T) {
	m, err := semsim.NewStructuralModel(cyclicExampleB(), nil)
	require.NoError(t, err)

	samples, err := m.Simulate(1000, semsim.StandardGaussianErrors(4), 42)
	require.NoError(t, err)

	x2 := mat.Col(nil, 1, samples)
	x3 := mat.Col(nil, 2, samples)

	// The analytic correlation between X2 and X3 is about 0.8.
	corr := stat.Correlation(x2, x3, nil)
	require.Greater(t, corr, 0.5)
}

func TestSimulate_SingularModelRejected(t *testing.T) {
	// Eigenvalue exactly 1, so (I - B) is singular.
	B := mat.NewDense(2, 2, []float64{
		1, 0,
		0, 0,
	})
	m, err := semsim.NewStructuralModel(B, nil)
	require.NoError(t, err)

	samples, err := m.Simulate(100, semsim.StandardGaussianErrors(2), 1)
	require.Nil(t, samples)

	var unstable *semsim.UnstableModelError
	require.ErrorAs(t, err, &unstable)
	require.InDelta(t, 1.0, unstable.SpectralRadius, 1e-12)
}

func TestSimulate_UnstableCycleRejected(t *testing.T) {
	B := mat.NewDense(2, 2, []float64{
		0, 1.1,
		1, 0,
	})
	m, err := semsim.NewStructuralModel(B, nil)
	require.NoError(t, err)

	_, err = m.Simulate(100, semsim.StandardGaussianErrors(2), 1)

	var unstable *semsim.UnstableModelError
	require.ErrorAs(t, err, &unstable)
}

func TestSimulate_BadArguments(t *testing.T) {
	m, err := semsim.NewStructuralModel(cyclicExampleB(), nil)
	require.NoError(t, err)

	var dimErr *semsim.InvalidDimensionError

	_, err = m.Simulate(0, semsim.StandardGaussianErrors(4), 1)
	require.ErrorAs(t, err, &dimErr)

	_, err = m.Simulate(-5, semsim.StandardGaussianErrors(4), 1)
	require.ErrorAs(t, err, &dimErr)

	_, err = m.Simulate(100, nil, 1)
	require.ErrorAs(t, err, &dimErr)

	// Distribution dimension does not match the model.
	_, err = m.Simulate(100, semsim.StandardGaussianErrors(3), 1)
	require.ErrorAs(t, err, &dimErr)

	_, err = m.SimulateParallel(0, semsim.StandardGaussianErrors(4), 1, 2)
	require.ErrorAs(t, err, &dimErr)
}
