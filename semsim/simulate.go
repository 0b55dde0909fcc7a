package semsim

import (
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Rows are generated in fixed-size chunks, each with its own seed derived
// from the master seed. Output is therefore identical between Simulate and
// SimulateParallel, whatever the worker count.
const simChunkSize = 512

// reducedForm computes A = (I - B)^(-1) after gating on the spectral-radius
// stability condition. A is computed once per simulation and reused for all
// samples.
func (m *StructuralModel) reducedForm() (*mat.Dense, error) {
	rep, err := m.Stability()
	if err != nil {
		return nil, err
	}
	if !rep.Stable {
		return nil, &UnstableModelError{SpectralRadius: rep.SpectralRadius}
	}

	p := m.Dim()
	imb := mat.NewDense(p, p, nil)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			v := -m.B.At(i, j)
			if i == j {
				v += 1
			}
			imb.Set(i, j, v)
		}
	}

	var A mat.Dense
	if err := A.Inverse(imb); err != nil {
		// Spectral radius < 1 rules this out in exact arithmetic, but the
		// inversion can still fail on badly conditioned input.
		return nil, &UnstableModelError{SpectralRadius: rep.SpectralRadius}
	}
	return &A, nil
}

// prepareSimulation validates the arguments, computes the reduced form and
// derives one seed per chunk of rows.
func (m *StructuralModel) prepareSimulation(n int, dist ErrorDistribution, seed uint64) (*mat.Dense, []uint64, error) {
	if n <= 0 {
		return nil, nil, &InvalidDimensionError{
			Reason: fmt.Sprintf("sample count must be > 0, got %d", n),
		}
	}
	if dist == nil {
		return nil, nil, &InvalidDimensionError{Reason: "error distribution not provided"}
	}
	if dist.Dim() != m.Dim() {
		return nil, nil, &InvalidDimensionError{
			Reason: fmt.Sprintf("error distribution has %d terms for %d variables", dist.Dim(), m.Dim()),
		}
	}

	A, err := m.reducedForm()
	if err != nil {
		return nil, nil, err
	}

	numChunks := (n + simChunkSize - 1) / simChunkSize
	master := rand.New(pcgSource(seed))
	chunkSeeds := make([]uint64, numChunks)
	for i := range chunkSeeds {
		chunkSeeds[i] = master.Uint64()
	}

	return A, chunkSeeds, nil
}

// fillChunk generates rows [start, end) of out. Each row is a fresh error
// draw mapped through the reduced form: row = A * eps.
func fillChunk(out *mat.Dense, A *mat.Dense, dist ErrorDistribution, seed uint64, start, end int) {
	p := dist.Dim()
	sampler := dist.Sampler(seed)

	eps := make([]float64, p)
	epsVec := mat.NewVecDense(p, eps)
	var row mat.VecDense

	for r := start; r < end; r++ {
		sampler.Draw(eps)
		row.MulVec(A, epsVec)
		for j := 0; j < p; j++ {
			out.Set(r, j, row.AtVec(j))
		}
	}
}

// Simulate generates n i.i.d. samples of the p-dimensional random vector
// X satisfying X = BX + eps, i.e. X = (I - B)^(-1) eps with one fresh error
// draw per sample. It returns an n x p matrix, one row per sample, with
// column order matching B's row/column order.
//
// The result is a pure function of (B, n, dist, seed): the same seed always
// reproduces the same matrix. Simulate fails with *UnstableModelError when
// the spectral radius of B is >= 1 and with *InvalidDimensionError on shape
// problems; it never returns a partial result.
func (m *StructuralModel) Simulate(n int, dist ErrorDistribution, seed uint64) (*mat.Dense, error) {
	A, chunkSeeds, err := m.prepareSimulation(n, dist, seed)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(n, m.Dim(), nil)
	for c, chunkSeed := range chunkSeeds {
		start := c * simChunkSize
		end := min(start+simChunkSize, n)
		fillChunk(out, A, dist, chunkSeed, start, end)
	}
	return out, nil
}

// SimulateParallel is Simulate with the chunks fanned out over a worker
// pool. Sample generation is embarrassingly parallel given the reduced form,
// and each chunk carries its own seed, so the output is byte-identical to
// Simulate's for the same arguments. workers <= 0 means runtime.NumCPU().
func (m *StructuralModel) SimulateParallel(n int, dist ErrorDistribution, seed uint64, workers int) (*mat.Dense, error) {
	A, chunkSeeds, err := m.prepareSimulation(n, dist, seed)
	if err != nil {
		return nil, err
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(chunkSeeds) {
		workers = len(chunkSeeds)
	}

	out := mat.NewDense(n, m.Dim(), nil)

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)

	// Workers write disjoint row ranges, so no further synchronization is
	// needed on out.
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for c := range jobs {
				start := c * simChunkSize
				end := min(start+simChunkSize, n)
				fillChunk(out, A, dist, chunkSeeds[c], start, end)
			}
		}()
	}

	for c := range chunkSeeds {
		jobs <- c
	}
	close(jobs)
	wg.Wait()

	return out, nil
}
