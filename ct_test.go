package ctu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSyncCellCenteredB(t *testing.T) {
	feat := Features{MHD: true}
	g := uniformGrid(t, 6, 6, 1, feat)
	// perturb the face field so the cell-centered average isn't trivially 1.
	g.B1i.Set(g.Is+2, g.Js+2, g.Ks, 3)
	SyncCellCenteredB(g)
	want := 0.5 * (g.B1i.At(g.Is+1, g.Js+2, g.Ks) + g.B1i.At(g.Is+2, g.Js+2, g.Ks))
	require.InDelta(t, want, g.U.B1c.At(g.Is+1, g.Js+2, g.Ks), 1e-12)
}

func TestDivergenceBZeroOnUniformField(t *testing.T) {
	feat := Features{MHD: true}
	g := uniformGrid(t, 6, 6, 6, feat)
	require.InDelta(t, 0, g.DivergenceB(), 1e-12)
}

// TestCTUpdateFaceBPreservesDivergence checks the discrete identity
// that makes CT divergence-free: applying CTUpdateFaceB from a curl of
// corner EMFs must not change div B, for any EMF field, because the
// update is itself a discrete curl.
func TestCTUpdateFaceBPreservesDivergence(t *testing.T) {
	feat := Features{MHD: true}
	g := uniformGrid(t, 6, 6, 6, feat)
	w := NewWorkspace(g, feat)

	for k := g.Ks; k <= g.Ke; k++ {
		for j := g.Js; j <= g.Je+1; j++ {
			for i := g.Is; i <= g.Ie+1; i++ {
				w.Emf3.Set(i, j, k, float64(i)*0.1+float64(j)*0.2)
			}
		}
	}
	for k := g.Ks; k <= g.Ke+1; k++ {
		for j := g.Js; j <= g.Je; j++ {
			for i := g.Is; i <= g.Ie+1; i++ {
				w.Emf2.Set(i, j, k, float64(k)*0.15-float64(i)*0.05)
			}
		}
	}
	for k := g.Ks; k <= g.Ke+1; k++ {
		for j := g.Js; j <= g.Je+1; j++ {
			for i := g.Is; i <= g.Ie; i++ {
				w.Emf1.Set(i, j, k, float64(j)*0.07+float64(k)*0.03)
			}
		}
	}

	CTUpdateFaceB(g, w, 0.01)
	require.InDelta(t, 0, g.DivergenceB(), 1e-9)
}
