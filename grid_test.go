package ctu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testFeatures() Features { return Features{MHD: true} }

func testConfig(feat Features) Config {
	return Config{
		Features:    feat,
		EOS:         EOS{Gamma: 5.0 / 3.0},
		CFLNumber:   0.4,
		NGhost:      3,
		BC:          [6]BCFlag{BCOutflow, BCOutflow, BCOutflow, BCOutflow, BCOutflow, BCOutflow},
		Reconstruct: NewDefaultReconstructor(),
		Solver:      NewDefaultRiemannSolver(),
	}
}

// uniformGrid builds an nx1 x nx2 x nx3 grid with a uniform state and,
// if feat.MHD, a uniform unit x1 field threaded through every face so
// DivergenceB starts at exactly zero.
func uniformGrid(t *testing.T, nx1, nx2, nx3 int, feat Features) *Grid {
	t.Helper()
	if nx3 < 1 {
		nx3 = 1
	}
	g := NewGrid(nx1, nx2, nx3, 3, 1.0, 1.0, 1.0, feat)
	p := Prim{D: 1, P: 1, B1c: 1}
	c := ToCons(p, EOS{Gamma: 5.0 / 3.0}, false)
	kg := tern(g.Is3D(), g.NGhost, 0)
	for k := g.Ks - kg; k <= g.Ke+kg; k++ {
		for j := g.Js - g.NGhost; j <= g.Je+g.NGhost; j++ {
			for i := g.Is - g.NGhost; i <= g.Ie+g.NGhost; i++ {
				g.U.Set(i, j, k, c)
			}
		}
	}
	if feat.MHD {
		for k := g.Ks - kg; k <= g.Ke+kg; k++ {
			for j := g.Js - g.NGhost; j <= g.Je+g.NGhost; j++ {
				for i := g.Is - g.NGhost; i <= g.Ie+g.NGhost+1; i++ {
					g.B1i.Set(i, j, k, 1)
				}
			}
		}
	}
	return g
}

func TestCCPosFaceX1PosConsistency(t *testing.T) {
	g := NewGrid(4, 4, 1, 2, 0.5, 0.5, 1, Features{})
	x1, _, _ := g.CCPos(2, 2, 0)
	xl, _, _ := g.FaceX1Pos(2, 2, 0)
	xr, _, _ := g.FaceX1Pos(3, 2, 0)
	require.InDelta(t, x1, 0.5*(xl+xr), 1e-12)
}

func TestIs3D(t *testing.T) {
	g2 := NewGrid(4, 4, 1, 2, 1, 1, 1, Features{})
	require.False(t, g2.Is3D())
	g3 := NewGrid(4, 4, 4, 2, 1, 1, 1, Features{})
	require.True(t, g3.Is3D())
}

func TestCFLTimeStepPositive(t *testing.T) {
	feat := testFeatures()
	cfg := testConfig(feat)
	g := uniformGrid(t, 8, 8, 1, feat)
	dt := g.CFLTimeStep(cfg)
	require.Greater(t, dt, 0.0)
	require.False(t, isInf(dt))
}

func isInf(x float64) bool { return x > 1e300 || x < -1e300 }
