package ctu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestReconstructAppliesMHDSourceTerm checks that a nonzero dB_normal/dx
// gradient in bxc, combined with nonzero transverse velocity, perturbs
// the reconstructed edge states' non-normal field components relative
// to a otherwise-identical bxc=0 row (flux.go's bxc contract, spec.md
// §4.2 step 1's multidimensional MHD term).
func TestReconstructAppliesMHDSourceTerm(t *testing.T) {
	r := NewDefaultReconstructor()
	prim := make([]Prim, 6)
	for i := range prim {
		prim[i] = Prim{D: 1, P: 1, V2: 0.3, V3: -0.2, B2c: 1, B3c: 1}
	}
	flat := make([]float64, 6)
	gradient := []float64{0, 1, 2, 3, 4, 5}

	wlFlat, wrFlat := r.Reconstruct(prim, flat, 0.1, 0.1, 2, 3)
	wlGrad, wrGrad := r.Reconstruct(prim, gradient, 0.1, 0.1, 2, 3)

	require.NotEqual(t, wlFlat[0].B2c, wlGrad[0].B2c)
	require.NotEqual(t, wlFlat[0].B3c, wlGrad[0].B3c)
	require.NotEqual(t, wrFlat[0].B2c, wrGrad[0].B2c)
	require.InDelta(t, wlGrad[0].B2c-wlFlat[0].B2c, wrGrad[0].B2c-wrFlat[0].B2c, 1e-12)
}

// TestApplyMHDSourceTermZeroGradientIsNoop checks that a uniform bxc
// row (zero dB_normal/dx everywhere) leaves the non-normal field
// components untouched, matching a bxc-less reconstruction exactly.
func TestApplyMHDSourceTermZeroGradientIsNoop(t *testing.T) {
	r := NewDefaultReconstructor()
	prim := make([]Prim, 6)
	for i := range prim {
		prim[i] = Prim{D: 1, P: 1, V2: 0.3, V3: -0.2, B2c: 1, B3c: 1}
	}
	uniform := []float64{5, 5, 5, 5, 5, 5}

	wl, wr := r.Reconstruct(prim, uniform, 0.1, 0.1, 2, 3)
	dwl, dwr := r.Reconstruct(prim, make([]float64, 6), 0.1, 0.1, 2, 3)
	require.Equal(t, dwl, wl)
	require.Equal(t, dwr, wr)
}
