package ctu

import "github.com/astrogrid/ctumhd/internal/scratch"

// CTUpdateFaceB advances the three face-centered fields by dt using
// the already-assembled corner EMFs (spec.md §4.2 steps 4 and 9: the
// half-step update uses dt/2, the full-step update uses dt). This is
// the discrete curl of the edge EMFs; it is the identity that keeps
// div B exactly zero to round-off (spec.md §3 invariant 1).
func CTUpdateFaceB(g *Grid, w *Workspace, dt float64) {
	CTUpdateFaceBInto(g, w, dt, g.B1i, g.B2i, g.B3i, g.B1i, g.B2i, g.B3i)
}

// CTUpdateFaceBInto is CTUpdateFaceB generalized to read the baseline
// face field from src and write the advanced field to dst, so the
// half-step prediction (spec.md §4.2 step 4) can land in the
// workspace's BHalf arrays without disturbing g's t^n face field,
// which the full-step update in step 9 still needs.
func CTUpdateFaceBInto(g *Grid, w *Workspace, dt float64, src1, src2, src3, dst1, dst2, dst3 *scratch.Field3D) {
	dx1i, dx2i, dx3i := 1/g.Dx1, 1/g.Dx2, 0.0
	if g.Is3D() {
		dx3i = 1 / g.Dx3
	}

	for k := g.Ks; k <= g.Ke; k++ {
		for j := g.Js; j <= g.Je; j++ {
			for i := g.Is; i <= g.Ie+1; i++ {
				d := (w.Emf3.At(i, j+1, k) - w.Emf3.At(i, j, k)) * dx2i
				if g.Is3D() {
					d -= (w.Emf2.At(i, j, k+1) - w.Emf2.At(i, j, k)) * dx3i
				}
				dst1.Set(i, j, k, src1.At(i, j, k)-dt*d)
			}
		}
	}
	for k := g.Ks; k <= g.Ke; k++ {
		for j := g.Js; j <= g.Je+1; j++ {
			for i := g.Is; i <= g.Ie; i++ {
				d := -(w.Emf3.At(i+1, j, k) - w.Emf3.At(i, j, k)) * dx1i
				if g.Is3D() {
					d += (w.Emf1.At(i, j, k+1) - w.Emf1.At(i, j, k)) * dx3i
				}
				dst2.Set(i, j, k, src2.At(i, j, k)-dt*d)
			}
		}
	}
	if !g.Is3D() {
		return
	}
	for k := g.Ks; k <= g.Ke+1; k++ {
		for j := g.Js; j <= g.Je; j++ {
			for i := g.Is; i <= g.Ie; i++ {
				d := (w.Emf2.At(i+1, j, k) - w.Emf2.At(i, j, k)) * dx1i
				d -= (w.Emf1.At(i, j+1, k) - w.Emf1.At(i, j, k)) * dx2i
				dst3.Set(i, j, k, src3.At(i, j, k)-dt*d)
			}
		}
	}
}

// SyncCellCenteredB enforces spec.md §3 invariant 2: B?c =
// 0.5*(B?i_left + B?i_right) for every active cell, exactly.
func SyncCellCenteredB(g *Grid) {
	for k := g.Ks; k <= g.Ke; k++ {
		for j := g.Js; j <= g.Je; j++ {
			for i := g.Is; i <= g.Ie; i++ {
				g.U.B1c.Set(i, j, k, 0.5*(g.B1i.At(i, j, k)+g.B1i.At(i+1, j, k)))
				g.U.B2c.Set(i, j, k, 0.5*(g.B2i.At(i, j, k)+g.B2i.At(i, j+1, k)))
				if g.Is3D() {
					g.U.B3c.Set(i, j, k, 0.5*(g.B3i.At(i, j, k)+g.B3i.At(i, j, k+1)))
				}
			}
		}
	}
}

// DivergenceB computes max|div B| over active cells using the
// face-centered fields, the diagnostic named in spec.md §7/§8. It
// should be ~ machine epsilon for any state produced entirely by
// CTUpdateFaceB starting from a divergence-free initial condition.
func (g *Grid) DivergenceB() float64 {
	var maxDiv float64
	for k := g.Ks; k <= g.Ke; k++ {
		for j := g.Js; j <= g.Je; j++ {
			for i := g.Is; i <= g.Ie; i++ {
				div := (g.B1i.At(i+1, j, k) - g.B1i.At(i, j, k)) / g.Dx1
				div += (g.B2i.At(i, j+1, k) - g.B2i.At(i, j, k)) / g.Dx2
				if g.Is3D() {
					div += (g.B3i.At(i, j, k+1) - g.B3i.At(i, j, k)) / g.Dx3
				}
				if abs := absf(div); abs > maxDiv {
					maxDiv = abs
				}
			}
		}
	}
	return maxDiv
}
