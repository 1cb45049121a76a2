package ctu

import "github.com/astrogrid/ctumhd/internal/scratch"

// CornerEMF assembles the cell-edge EMFs emf1, emf2, emf3 from the
// four adjacent face fluxes of the two transverse sweeps, per spec.md
// §4.3. This is the sole CT ingredient that guarantees the discrete
// div B = 0 property; the sign, weighting and stencil below must not
// drift from the spec.
//
// Each contributing face's raw EMF uses the fixed sign convention of
// spec.md §4.1: x1Flux.By = -E3, x1Flux.Bz = +E2, x2Flux.By = -E1,
// x2Flux.Bz = +E3, x3Flux.By = -E2, x3Flux.Bz = +E1. Every contributing
// face also carries a derivative correction: the difference between
// its raw EMF and the cell-centered EMF estimator at the cell its own
// mass flux upwinds to.
func CornerEMF(g *Grid, w *Workspace) {
	emf3Corner(g, w)
	if g.Is3D() {
		emf1Corner(g, w)
		emf2Corner(g, w)
	}
}

// upwindAlongI picks cc(iLo,j,k) when massFlux > 0, cc(iHi,j,k) when
// massFlux < 0, and the average of the two when it is exactly zero
// (spec.md §4.3).
func upwindAlongI(cc *scratch.Field3D, massFlux float64, iLo, iHi, j, k int) float64 {
	switch {
	case massFlux > 0:
		return cc.At(iLo, j, k)
	case massFlux < 0:
		return cc.At(iHi, j, k)
	default:
		return 0.5 * (cc.At(iLo, j, k) + cc.At(iHi, j, k))
	}
}

func upwindAlongJ(cc *scratch.Field3D, massFlux float64, i, jLo, jHi, k int) float64 {
	switch {
	case massFlux > 0:
		return cc.At(i, jLo, k)
	case massFlux < 0:
		return cc.At(i, jHi, k)
	default:
		return 0.5 * (cc.At(i, jLo, k) + cc.At(i, jHi, k))
	}
}

func upwindAlongK(cc *scratch.Field3D, massFlux float64, i, j, kLo, kHi int) float64 {
	switch {
	case massFlux > 0:
		return cc.At(i, j, kLo)
	case massFlux < 0:
		return cc.At(i, j, kHi)
	default:
		return 0.5 * (cc.At(i, j, kLo) + cc.At(i, j, kHi))
	}
}

// emf3Corner fills w.Emf3 at every x1-x2 edge (i,j,k), i in [Is,Ie+1],
// j in [Js,Je+1]: two contributions from the x1 sweep's tangential
// flux, each corrected against the cell-centered EMF it upwinds to
// along x1 by its own mass flux, and two from the x2 sweep, each
// upwound along x2 by its own mass flux.
func emf3Corner(g *Grid, w *Workspace) {
	for k := g.Ks; k <= g.Ke; k++ {
		for j := g.Js; j <= g.Je+1; j++ {
			for i := g.Is; i <= g.Ie+1; i++ {
				f1s := w.X1Flux.At(i, j-1, k)
				f1n := w.X1Flux.At(i, j, k)
				f2w := w.X2Flux.At(i-1, j, k)
				f2e := w.X2Flux.At(i, j, k)

				raw1 := -f1s.By
				raw2 := -f1n.By
				raw3 := f2w.Bz
				raw4 := f2e.Bz

				de1 := raw1 - upwindAlongI(w.Emf3CC, f1s.D, i-1, i, j-1, k)
				de2 := raw2 - upwindAlongI(w.Emf3CC, f1n.D, i-1, i, j, k)
				de3 := raw3 - upwindAlongJ(w.Emf3CC, f2w.D, i-1, j-1, j, k)
				de4 := raw4 - upwindAlongJ(w.Emf3CC, f2e.D, i, j-1, j, k)

				w.Emf3.Set(i, j, k, 0.25*(raw1+raw2+raw3+raw4+de1+de2+de3+de4))
			}
		}
	}
}

// emf1Corner fills w.Emf1 at every x2-x3 edge (3D only), cyclic with
// emf3Corner under (1,2,3) -> (2,3,1).
func emf1Corner(g *Grid, w *Workspace) {
	for k := g.Ks; k <= g.Ke+1; k++ {
		for j := g.Js; j <= g.Je+1; j++ {
			for i := g.Is; i <= g.Ie; i++ {
				f2b := w.X2Flux.At(i, j, k-1)
				f2t := w.X2Flux.At(i, j, k)
				f3s := w.X3Flux.At(i, j-1, k)
				f3n := w.X3Flux.At(i, j, k)

				raw1 := -f2b.By
				raw2 := -f2t.By
				raw3 := f3s.Bz
				raw4 := f3n.Bz

				de1 := raw1 - upwindAlongK(w.Emf1CC, f2b.D, i, j-1, k-1, k)
				de2 := raw2 - upwindAlongK(w.Emf1CC, f2t.D, i, j, k-1, k)
				de3 := raw3 - upwindAlongJ(w.Emf1CC, f3s.D, i, j-1, j, k-1)
				de4 := raw4 - upwindAlongJ(w.Emf1CC, f3n.D, i, j-1, j, k)

				w.Emf1.Set(i, j, k, 0.25*(raw1+raw2+raw3+raw4+de1+de2+de3+de4))
			}
		}
	}
}

// emf2Corner fills w.Emf2 at every x3-x1 edge (3D only), cyclic with
// emf3Corner under (1,2,3) -> (3,1,2).
func emf2Corner(g *Grid, w *Workspace) {
	for k := g.Ks; k <= g.Ke+1; k++ {
		for j := g.Js; j <= g.Je; j++ {
			for i := g.Is; i <= g.Ie+1; i++ {
				f3w := w.X3Flux.At(i-1, j, k)
				f3e := w.X3Flux.At(i, j, k)
				f1b := w.X1Flux.At(i, j, k-1)
				f1t := w.X1Flux.At(i, j, k)

				raw1 := -f3w.By
				raw2 := -f3e.By
				raw3 := f1b.Bz
				raw4 := f1t.Bz

				de1 := raw1 - upwindAlongI(w.Emf2CC, f3w.D, i-1, i, j, k-1)
				de2 := raw2 - upwindAlongI(w.Emf2CC, f3e.D, i-1, i, j, k)
				de3 := raw3 - upwindAlongK(w.Emf2CC, f1b.D, i, j, k-1, k)
				de4 := raw4 - upwindAlongK(w.Emf2CC, f1t.D, i, j, k-1, k)

				w.Emf2.Set(i, j, k, 0.25*(raw1+raw2+raw3+raw4+de1+de2+de3+de4))
			}
		}
	}
}

// CellCenteredEMF computes emf3_cc = (B1c*M2 - B2c*M1)/d, and
// cyclically emf1_cc/emf2_cc in 3D, per spec.md §4.2 step 2/step 6.
// It must be recomputed at both t^n (from U) and t^{n+1/2} (from
// dhalf and the half-step-advanced momenta).
func CellCenteredEMF(g *Grid, w *Workspace, density, m1, m2, m3, b1c, b2c, b3c *scratch.Field3D) {
	kpad := tern(g.Is3D(), 1, 0)
	for k := g.Ks - kpad; k <= g.Ke+kpad; k++ {
		for j := g.Js - 1; j <= g.Je+1; j++ {
			for i := g.Is - 1; i <= g.Ie+1; i++ {
				d := density.At(i, j, k)
				w.Emf3CC.Set(i, j, k, (b1c.At(i, j, k)*m2.At(i, j, k)-b2c.At(i, j, k)*m1.At(i, j, k))/d)
				if g.Is3D() {
					w.Emf1CC.Set(i, j, k, (b2c.At(i, j, k)*m3.At(i, j, k)-b3c.At(i, j, k)*m2.At(i, j, k))/d)
					w.Emf2CC.Set(i, j, k, (b3c.At(i, j, k)*m1.At(i, j, k)-b1c.At(i, j, k)*m3.At(i, j, k))/d)
				}
			}
		}
	}
}
