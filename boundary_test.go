package ctu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func nonUniformGrid(t *testing.T, nx1, nx2 int, feat Features) *Grid {
	t.Helper()
	g := NewGrid(nx1, nx2, 1, 2, 1, 1, 1, feat)
	eos := EOS{Gamma: 5.0 / 3.0}
	for j := g.Js; j <= g.Je; j++ {
		for i := g.Is; i <= g.Ie; i++ {
			p := Prim{D: 1 + float64(i) + 0.1*float64(j), P: 2, V1: 0.3, V2: -0.2}
			g.U.Set(i, j, 0, ToCons(p, eos, false))
		}
	}
	return g
}

func TestFillGhostsOutflowIdempotent(t *testing.T) {
	cfg := testConfig(Features{})
	g := nonUniformGrid(t, 8, 8, Features{})

	FillGhosts(g, cfg, nil)
	snap := g.U.D.At(-1, g.Js, 0)

	FillGhosts(g, cfg, nil)
	require.Equal(t, snap, g.U.D.At(-1, g.Js, 0))
	// outflow: ghost equals the nearest active cell, not a mirror.
	require.Equal(t, g.U.D.At(g.Is, g.Js, 0), g.U.D.At(-1, g.Js, 0))
}

func TestFillGhostsPeriodicWraps(t *testing.T) {
	cfg := testConfig(Features{})
	for i := range cfg.BC {
		cfg.BC[i] = BCPeriodic
	}
	g := nonUniformGrid(t, 8, 8, Features{})
	FillGhosts(g, cfg, nil)

	require.Equal(t, g.U.D.At(g.Ie, g.Js, 0), g.U.D.At(-1, g.Js, 0))
	require.Equal(t, g.U.D.At(g.Is, g.Js, 0), g.U.D.At(g.Ie+1, g.Js, 0))
}

func TestFillGhostsReflectingFlipsNormalMomentum(t *testing.T) {
	cfg := testConfig(Features{})
	for i := range cfg.BC {
		cfg.BC[i] = BCReflectKeepB
	}
	g := nonUniformGrid(t, 8, 8, Features{})
	FillGhosts(g, cfg, nil)

	interior := g.U.M1.At(g.Is, g.Js, 0)
	ghost := g.U.M1.At(-1, g.Js, 0)
	require.InDelta(t, -interior, ghost, 1e-12)

	tangential := g.U.M2.At(g.Is, g.Js, 0)
	require.InDelta(t, tangential, g.U.M2.At(-1, g.Js, 0), 1e-12)
}

func TestReflectZeroBForcesFaceToZero(t *testing.T) {
	feat := Features{MHD: true}
	cfg := testConfig(feat)
	for i := range cfg.BC {
		cfg.BC[i] = BCReflectZeroB
	}
	g := uniformGrid(t, 8, 8, 1, feat)
	FillGhosts(g, cfg, nil)
	require.InDelta(t, 0, g.B1i.At(g.Is, g.Js, 0), 1e-12)
	require.InDelta(t, 0, g.B1i.At(g.Ie+1, g.Js, 0), 1e-12)
}
