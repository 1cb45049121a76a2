package ctu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRotateFluxPermutesMomentum(t *testing.T) {
	lf := LocalFlux{D: 1, Mx: 2, My: 3, Mz: 4, E: 5, By: 6, Bz: 7}
	gf1 := rotateFlux(SweepX1, lf)
	require.Equal(t, 2.0, gf1.M1)
	require.Equal(t, 3.0, gf1.M2)
	require.Equal(t, 4.0, gf1.M3)

	gf2 := rotateFlux(SweepX2, lf)
	require.Equal(t, 4.0, gf2.M1)
	require.Equal(t, 2.0, gf2.M2)
	require.Equal(t, 3.0, gf2.M3)

	gf3 := rotateFlux(SweepX3, lf)
	require.Equal(t, 3.0, gf3.M1)
	require.Equal(t, 4.0, gf3.M2)
	require.Equal(t, 2.0, gf3.M3)
}

func TestHCorrectionEtaZeroForIdenticalStates(t *testing.T) {
	eos := EOS{Gamma: 5.0 / 3.0}
	p := Prim{D: 1, P: 1}
	eta := HCorrectionEta(NewDefaultRiemannSolver(), 0, p, p, eos, false)
	require.InDelta(t, 0, eta, 1e-12)
}

func TestEtahStencilMaxIgnoresNegatives(t *testing.T) {
	require.Equal(t, 3.0, EtahStencilMax(1, 3, 2))
	require.Equal(t, 0.0, EtahStencilMax())
	require.Equal(t, 2.0, EtahStencilMax(-5, 2, -1))
}

func TestFluxRowMatchesDirectReconstruct(t *testing.T) {
	cfg := testConfig(Features{})
	prim := make([]Prim, 6)
	for i := range prim {
		prim[i] = Prim{D: 1 + 0.1*float64(i), P: 1, V1: 0.2}
	}
	bxc := make([]float64, 6)
	bxi := make([]float64, 7)
	wl, wr, fluxes := FluxRow(cfg, SweepX1, prim, bxc, bxi, 0.01, 0.01, 2, 3, nil)
	require.Len(t, fluxes, 2)

	dwl, dwr := cfg.Reconstruct.Reconstruct(prim, bxc, 0.01, 0.01, 2, 3)
	require.Equal(t, dwl, wl)
	require.Equal(t, dwr, wr)
}
