package ctu

import (
	"github.com/astrogrid/ctumhd/internal/linalg"
	"github.com/astrogrid/ctumhd/internal/scratch"
)

// Step advances Grid g by dt using the directionally unsplit CTU/CT
// algorithm (spec.md §4.2): a predictor pass reconstructs and solves
// each direction's Riemann fluxes independently, the resulting
// face-centered EMFs advance the magnetic field a half step, each
// direction's interface states are corrected by the other two
// directions' transverse flux divergence, the final (optionally
// H-corrected) fluxes update the conserved state and the face field a
// full step, and the cell-centered field is resynced from the new
// face values. g's ghost zones must already be filled (FillGhosts)
// before calling Step; Step itself never touches a ghost cell's value,
// only reads it.
func Step(g *Grid, w *Workspace, cfg Config) Outcome {
	dt := g.Dt

	if bad := predictorPass(g, w, cfg, dt); bad != nil {
		return Outcome{Bad: bad}
	}

	if cfg.MHD {
		CellCenteredEMF(g, w, g.U.D, g.U.M1, g.U.M2, g.U.M3, g.U.B1c, g.U.B2c, g.U.B3c)
		CornerEMF(g, w)
		CTUpdateFaceBInto(g, w, 0.5*dt, g.B1i, g.B2i, g.B3i, w.BHalf1, w.BHalf2, w.BHalf3)
	}

	halfStepState(g, w, cfg, dt)

	transverseCorrect(g, w, cfg, dt)

	if cfg.MHD {
		CellCenteredEMF(g, w, w.Dhalf, w.MHalf1, w.MHalf2, w.MHalf3, w.B1cHalf, w.B2cHalf, w.B3cHalf)
	}

	if bad := finalPass(g, w, cfg, dt); bad != nil {
		return Outcome{Bad: bad}
	}

	if bad := conservativeUpdate(g, w, cfg, dt); bad != nil {
		return Outcome{Bad: bad}
	}

	if cfg.MHD {
		CornerEMF(g, w)
		CTUpdateFaceBInto(g, w, dt, g.B1i, g.B2i, g.B3i, g.B1i, g.B2i, g.B3i)
		SyncCellCenteredB(g)
	}

	g.T += dt
	return okOutcome()
}

// --- row extraction -------------------------------------------------

func primAt(g *Grid, cfg Config, i, j, k int) Prim {
	return ToPrim(g.U.At(i, j, k), cfg.EOS, cfg.Isothermal)
}

func rowX1(g *Grid, cfg Config, j, k, lo, hi int) (prim []Prim, bxc []float64) {
	for i := lo; i <= hi; i++ {
		prim = append(prim, primAt(g, cfg, i, j, k))
		bxc = append(bxc, g.U.At(i, j, k).B1c)
	}
	return
}

func rowX2(g *Grid, cfg Config, i, k, lo, hi int) (prim []Prim, bxc []float64) {
	for j := lo; j <= hi; j++ {
		prim = append(prim, primAt(g, cfg, i, j, k))
		bxc = append(bxc, g.U.At(i, j, k).B2c)
	}
	return
}

func rowX3(g *Grid, cfg Config, i, j, lo, hi int) (prim []Prim, bxc []float64) {
	for k := lo; k <= hi; k++ {
		prim = append(prim, primAt(g, cfg, i, j, k))
		bxc = append(bxc, g.U.At(i, j, k).B3c)
	}
	return
}

// --- predictor pass ---------------------------------------------------

// predictorPass reconstructs and solves every direction's Riemann
// fluxes with no H-correction and no transverse correction, the
// low-order fluxes spec.md §4.2 combines with the t^n cell-centered
// EMF into the predictor corner EMFs, and that seed the transverse
// correction term (steps 1 and 3).
func predictorPass(g *Grid, w *Workspace, cfg Config, dt float64) *BadState {
	return runAllSweeps(g, w, cfg, dt, nil, nil, nil)
}

// runAllSweeps calls sweepRow over every transverse row of all three
// (or two, in 2D) directions. The transverse loop range is widened by
// one cell on each side of the active zone: emf.go's corner stencils
// read X?Flux one cell beyond the active range in the transverse
// directions, so that data must already be valid by the time CornerEMF
// runs, for both the predictor and the final pass.
func runAllSweeps(g *Grid, w *Workspace, cfg Config, dt float64, eta1, eta2, eta3 *scratch.Field3D) *BadState {
	ng := 1
	dtdx1 := dt / g.Dx1
	for k := g.Ks - tern(g.Is3D(), ng, 0); k <= g.Ke+tern(g.Is3D(), ng, 0); k++ {
		for j := g.Js - ng; j <= g.Je+ng; j++ {
			if bad := sweepRow(g, w, cfg, SweepX1, j, k, dtdx1, eta1); bad != nil {
				return bad
			}
		}
	}
	dtdx2 := dt / g.Dx2
	for k := g.Ks - tern(g.Is3D(), ng, 0); k <= g.Ke+tern(g.Is3D(), ng, 0); k++ {
		for i := g.Is - ng; i <= g.Ie+ng; i++ {
			if bad := sweepRow(g, w, cfg, SweepX2, i, k, dtdx2, eta2); bad != nil {
				return bad
			}
		}
	}
	if !g.Is3D() {
		return nil
	}
	dtdx3 := dt / g.Dx3
	for j := g.Js - ng; j <= g.Je+ng; j++ {
		for i := g.Is - ng; i <= g.Ie+ng; i++ {
			if bad := sweepRow(g, w, cfg, SweepX3, i, j, dtdx3, eta3); bad != nil {
				return bad
			}
		}
	}
	return nil
}

func tern(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}

// sweepRow reconstructs one 1D row normal to sweep at fixed transverse
// coordinates (a,b) and solves the Riemann flux at every active face
// [faceLo,faceHi], storing the assembled face Left/Right primitive
// states into the workspace's UlX?/UrX? arrays and the flux into
// X?Flux. etah, if non-nil, seeds the H-correction wavespeed per face
// (final pass only).
func sweepRow(g *Grid, w *Workspace, cfg Config, sweep Sweep, a, b int, dtdx float64, etah *scratch.Field3D) *BadState {
	var faceLo, faceHi int
	switch sweep {
	case SweepX1:
		faceLo, faceHi = g.Is, g.Ie+1
	case SweepX2:
		faceLo, faceHi = g.Js, g.Je+1
	default:
		faceLo, faceHi = g.Ks, g.Ke+1
	}
	cellLo, cellHi := faceLo-1, faceHi

	var prim []Prim
	var bxc []float64
	switch sweep {
	case SweepX1:
		prim, bxc = rowX1(g, cfg, a, b, cellLo, cellHi)
	case SweepX2:
		prim, bxc = rowX2(g, cfg, a, b, cellLo, cellHi)
	default:
		prim, bxc = rowX3(g, cfg, a, b, cellLo, cellHi)
	}
	wl, wr := cfg.Reconstruct.Reconstruct(prim, bxc, g.Dt, dtdx, cellLo, cellHi)
	applyPredictorSources(g, cfg, sweep, a, b, cellLo, cellHi, 0.5*g.Dt, wl, wr)

	for face := faceLo; face <= faceHi; face++ {
		left := wr[face-1-cellLo]
		right := wl[face-cellLo]
		bxi := faceNormalB(g, sweep, a, b, face)

		eta := 0.0
		if etah != nil {
			eta = etahAt(g, etah, sweep, a, b, face)
		}
		lf := cfg.Solver.Flux(bxi, left, right, eta, cfg.EOS, cfg.Isothermal)
		setFlux(w, sweep, a, b, face, lf)
		setRowState(w, sweep, a, b, face, left, right)

		if bad := checkPhysical(faceI(sweep, a, b, face), faceJ(sweep, a, b, face), faceK(sweep, a, b, face), sweep, left.D, left.P, cfg.Isothermal); bad != nil {
			return bad
		}
	}
	return nil
}

// applyPredictorSources adds spec.md §4.2 step 1's gravitational and
// shearing-box Coriolis half-steps to each reconstructed edge state's
// velocity, before the predictor's Riemann solve sees them. A no-op
// when neither source is configured.
func applyPredictorSources(g *Grid, cfg Config, sweep Sweep, a, b, cellLo, cellHi int, halfDt float64, wl, wr []Prim) {
	if cfg.Gravity == nil && !cfg.ShearingBox.Enabled {
		return
	}
	dx := sweepDx(g, sweep)
	for idx := cellLo; idx <= cellHi; idx++ {
		i, j, k := faceI(sweep, a, b, idx), faceJ(sweep, a, b, idx), faceK(sweep, a, b, idx)
		var dv float64
		if cfg.Gravity != nil {
			xl1, xl2, xl3, xr1, xr2, xr3 := cellFacePositions(g, sweep, i, j, k)
			dv = faceGravitySource(cfg.Gravity(xl1, xl2, xl3), cfg.Gravity(xr1, xr2, xr3), dx, halfDt)
		}
		x1, _, _ := g.CCPos(i, j, k)
		n := idx - cellLo
		applyCellSource(cfg, sweep, halfDt, dv, x1, &wl[n])
		applyCellSource(cfg, sweep, halfDt, dv, x1, &wr[n])
	}
}

// applyCellSource applies one edge state's gravitational normal-velocity
// increment dv and shearing-box Coriolis half-step in place.
func applyCellSource(cfg Config, sweep Sweep, halfDt, dv, x1 float64, p *Prim) {
	if cfg.Gravity != nil {
		switch sweep {
		case SweepX1:
			p.V1 += dv
		case SweepX2:
			p.V2 += dv
		default:
			p.V3 += dv
		}
	}
	if cfg.ShearingBox.Enabled && p.D > 0 {
		m1, m2 := p.D*p.V1, p.D*p.V2
		m1n, m2n := CoriolisHalfStep(cfg.ShearingBox, p.D, m1, m2, x1, halfDt)
		p.V1, p.V2 = m1n/p.D, m2n/p.D
	}
}

func sweepDx(g *Grid, sweep Sweep) float64 {
	switch sweep {
	case SweepX1:
		return g.Dx1
	case SweepX2:
		return g.Dx2
	default:
		return g.Dx3
	}
}

// cellFacePositions returns the two face positions bounding cell
// (i,j,k) along sweep, for evaluating a potential at the faces a
// gravitational half-step needs.
func cellFacePositions(g *Grid, sweep Sweep, i, j, k int) (xl1, xl2, xl3, xr1, xr2, xr3 float64) {
	switch sweep {
	case SweepX2:
		xl1, xl2, xl3 = g.FaceX2Pos(i, j, k)
		xr1, xr2, xr3 = g.FaceX2Pos(i, j+1, k)
	case SweepX3:
		xl1, xl2, xl3 = g.FaceX3Pos(i, j, k)
		xr1, xr2, xr3 = g.FaceX3Pos(i, j, k+1)
	default:
		xl1, xl2, xl3 = g.FaceX1Pos(i, j, k)
		xr1, xr2, xr3 = g.FaceX1Pos(i+1, j, k)
	}
	return
}

func faceI(sweep Sweep, a, b, face int) int {
	if sweep == SweepX1 {
		return face
	}
	return a
}
func faceJ(sweep Sweep, a, b, face int) int {
	switch sweep {
	case SweepX1:
		return a
	case SweepX2:
		return face
	default:
		return a
	}
}
func faceK(sweep Sweep, a, b, face int) int {
	switch sweep {
	case SweepX1, SweepX2:
		return b
	default:
		return face
	}
}

func faceNormalB(g *Grid, sweep Sweep, a, b, face int) float64 {
	switch sweep {
	case SweepX1:
		return g.B1i.At(face, a, b)
	case SweepX2:
		return g.B2i.At(a, face, b)
	default:
		return g.B3i.At(a, b, face)
	}
}

func etahAt(g *Grid, etah *scratch.Field3D, sweep Sweep, a, b, face int) float64 {
	switch sweep {
	case SweepX1:
		return etah.At(face, a, b)
	case SweepX2:
		return etah.At(a, face, b)
	default:
		return etah.At(a, b, face)
	}
}

func setFlux(w *Workspace, sweep Sweep, a, b, face int, lf LocalFlux) {
	switch sweep {
	case SweepX1:
		w.X1Flux.Set(face, a, b, lf)
	case SweepX2:
		w.X2Flux.Set(a, face, b, lf)
	default:
		w.X3Flux.Set(a, b, face, lf)
	}
}

func setRowState(w *Workspace, sweep Sweep, a, b, face int, left, right Prim) {
	switch sweep {
	case SweepX1:
		w.UlX1.Set(face, a, b, left)
		w.UrX1.Set(face, a, b, right)
	case SweepX2:
		w.UlX2.Set(a, face, b, left)
		w.UrX2.Set(a, face, b, right)
	default:
		if w.UlX3 != nil {
			w.UlX3.Set(a, b, face, left)
			w.UrX3.Set(a, b, face, right)
		}
	}
}

// --- half-step state --------------------------------------------------

// halfStepState advances the cell-centered conserved state a half
// step using the predictor fluxes' divergence, spec.md §4.2's
// "half-step density" generalized to momentum and cell-centered field
// (needed to rebuild the t^{n+1/2} cell-centered EMF).
func halfStepState(g *Grid, w *Workspace, cfg Config, dt float64) {
	halfDt := 0.5 * dt
	dx1i, dx2i, dx3i := halfDt/g.Dx1, halfDt/g.Dx2, 0.0
	if g.Is3D() {
		dx3i = halfDt / g.Dx3
	}
	for k := g.Ks; k <= g.Ke; k++ {
		for j := g.Js; j <= g.Je; j++ {
			for i := g.Is; i <= g.Ie; i++ {
				c := g.U.At(i, j, k)
				gf1l := rotateFlux(SweepX1, w.X1Flux.At(i, j, k))
				gf1r := rotateFlux(SweepX1, w.X1Flux.At(i+1, j, k))
				gf2l := rotateFlux(SweepX2, w.X2Flux.At(i, j, k))
				gf2r := rotateFlux(SweepX2, w.X2Flux.At(i, j+1, k))

				d := c.D - dx1i*(gf1r.D-gf1l.D) - dx2i*(gf2r.D-gf2l.D)
				m1 := c.M1 - dx1i*(gf1r.M1-gf1l.M1) - dx2i*(gf2r.M1-gf2l.M1)
				m2 := c.M2 - dx1i*(gf1r.M2-gf1l.M2) - dx2i*(gf2r.M2-gf2l.M2)
				m3 := c.M3 - dx1i*(gf1r.M3-gf1l.M3) - dx2i*(gf2r.M3-gf2l.M3)
				if g.Is3D() {
					gf3l := rotateFlux(SweepX3, w.X3Flux.At(i, j, k))
					gf3r := rotateFlux(SweepX3, w.X3Flux.At(i, j, k+1))
					d -= dx3i * (gf3r.D - gf3l.D)
					m1 -= dx3i * (gf3r.M1 - gf3l.M1)
					m2 -= dx3i * (gf3r.M2 - gf3l.M2)
					m3 -= dx3i * (gf3r.M3 - gf3l.M3)
				}
				w.Dhalf.Set(i, j, k, d)
				w.MHalf1.Set(i, j, k, m1)
				w.MHalf2.Set(i, j, k, m2)
				w.MHalf3.Set(i, j, k, m3)
				if cfg.MHD {
					w.B1cHalf.Set(i, j, k, 0.5*(w.BHalf1.At(i, j, k)+w.BHalf1.At(i+1, j, k)))
					w.B2cHalf.Set(i, j, k, 0.5*(w.BHalf2.At(i, j, k)+w.BHalf2.At(i, j+1, k)))
					if g.Is3D() {
						w.B3cHalf.Set(i, j, k, 0.5*(w.BHalf3.At(i, j, k)+w.BHalf3.At(i, j, k+1)))
					} else {
						w.B3cHalf.Set(i, j, k, c.B3c)
					}
				}
			}
		}
	}
}

// --- transverse correction ---------------------------------------------

// transverseCorrect applies the other two directions' predictor flux
// divergence to each direction's assembled face primitive states
// (spec.md §4.2 steps 5-6), the CTU cross-term that makes the scheme
// stable without dimensional splitting. It mutates UlX?/UrX? in
// place, ready for finalPass's Riemann solve.
func transverseCorrect(g *Grid, w *Workspace, cfg Config, dt float64) {
	halfDt := 0.5 * dt
	correctDirection(g, w, cfg, SweepX1, halfDt)
	correctDirection(g, w, cfg, SweepX2, halfDt)
	if g.Is3D() {
		correctDirection(g, w, cfg, SweepX3, halfDt)
	}
}

func correctDirection(g *Grid, w *Workspace, cfg Config, sweep Sweep, halfDt float64) {
	others := otherSweeps(sweep)
	ng := 1
	kpad := tern(g.Is3D(), ng, 0)
	switch sweep {
	case SweepX1:
		for k := g.Ks - kpad; k <= g.Ke+kpad; k++ {
			for j := g.Js - ng; j <= g.Je+ng; j++ {
				for i := g.Is; i <= g.Ie+1; i++ {
					ul := w.UlX1.At(i, j, k)
					ur := w.UrX1.At(i, j, k)
					ul = transverseAdjust(ul, g, w, cfg, halfDt, others, i-1, j, k)
					ur = transverseAdjust(ur, g, w, cfg, halfDt, others, i, j, k)
					w.UlX1.Set(i, j, k, ul)
					w.UrX1.Set(i, j, k, ur)
				}
			}
		}
	case SweepX2:
		for k := g.Ks - kpad; k <= g.Ke+kpad; k++ {
			for j := g.Js; j <= g.Je+1; j++ {
				for i := g.Is - ng; i <= g.Ie+ng; i++ {
					ul := w.UlX2.At(i, j, k)
					ur := w.UrX2.At(i, j, k)
					ul = transverseAdjust(ul, g, w, cfg, halfDt, others, i, j-1, k)
					ur = transverseAdjust(ur, g, w, cfg, halfDt, others, i, j, k)
					w.UlX2.Set(i, j, k, ul)
					w.UrX2.Set(i, j, k, ur)
				}
			}
		}
	default:
		if !g.Is3D() {
			return
		}
		for k := g.Ks; k <= g.Ke+1; k++ {
			for j := g.Js - ng; j <= g.Je+ng; j++ {
				for i := g.Is - ng; i <= g.Ie+ng; i++ {
					ul := w.UlX3.At(i, j, k)
					ur := w.UrX3.At(i, j, k)
					ul = transverseAdjust(ul, g, w, cfg, halfDt, others, i, j, k-1)
					ur = transverseAdjust(ur, g, w, cfg, halfDt, others, i, j, k)
					w.UlX3.Set(i, j, k, ul)
					w.UrX3.Set(i, j, k, ur)
				}
			}
		}
	}
}

func otherSweeps(sweep Sweep) [2]Sweep {
	switch sweep {
	case SweepX1:
		return [2]Sweep{SweepX2, SweepX3}
	case SweepX2:
		return [2]Sweep{SweepX1, SweepX3}
	default:
		return [2]Sweep{SweepX1, SweepX2}
	}
}

// transverseAdjust corrects the conservative form of primitive state p
// (a cell's own reconstructed edge, already living at cell (i,j,k)) by
// -halfDt/dx * (transverse flux difference) for each of the two
// sweep directions that are NOT the one being corrected, then converts
// back to primitive.
func transverseAdjust(p Prim, g *Grid, w *Workspace, cfg Config, halfDt float64, others [2]Sweep, i, j, k int) Prim {
	c := ToCons(p, cfg.EOS, cfg.Isothermal)
	for _, sw := range others {
		if sw == SweepX3 && !g.Is3D() {
			continue
		}
		applyTransverseFlux(g, w, cfg, sw, halfDt, i, j, k, &c)
	}
	return ToPrim(c, cfg.EOS, cfg.Isothermal)
}

// applyTransverseFlux applies one other direction's predictor flux
// divergence to c: the hydro flux-divergence term, the MHD transverse
// field source term (Gardiner & Stone 2007's minmod(-dbNormal,
// dbTangential) limiter over the already-computed GridFlux.DB2/DB3 EMF
// contributions), and a transverse gravity momentum term.
func applyTransverseFlux(g *Grid, w *Workspace, cfg Config, sw Sweep, halfDt float64, i, j, k int, c *Cons) {
	var gl, gr GridFlux
	var dx, dbNormal float64
	switch sw {
	case SweepX2:
		gl = rotateFlux(SweepX2, w.X2Flux.At(i, j, k))
		gr = rotateFlux(SweepX2, w.X2Flux.At(i, j+1, k))
		dx = g.Dx2
		dbNormal = g.B2i.At(i, j+1, k) - g.B2i.At(i, j, k)
	case SweepX3:
		gl = rotateFlux(SweepX3, w.X3Flux.At(i, j, k))
		gr = rotateFlux(SweepX3, w.X3Flux.At(i, j, k+1))
		dx = g.Dx3
		dbNormal = g.B3i.At(i, j, k+1) - g.B3i.At(i, j, k)
	default:
		gl = rotateFlux(SweepX1, w.X1Flux.At(i, j, k))
		gr = rotateFlux(SweepX1, w.X1Flux.At(i+1, j, k))
		dx = g.Dx1
		dbNormal = g.B1i.At(i+1, j, k) - g.B1i.At(i, j, k)
	}
	f := halfDt / dx
	c.D -= f * (gr.D - gl.D)
	c.M1 -= f * (gr.M1 - gl.M1)
	c.M2 -= f * (gr.M2 - gl.M2)
	c.M3 -= f * (gr.M3 - gl.M3)
	c.E -= f * (gr.E - gl.E)

	if cfg.MHD {
		db2 := linalg.MinmodMHD(dbNormal, gr.DB2-gl.DB2)
		db3 := linalg.MinmodMHD(dbNormal, gr.DB3-gl.DB3)
		t2, t3 := transverseBTargets(sw)
		addTransverseB(c, t2, -f*db2)
		addTransverseB(c, t3, -f*db3)
	}

	if cfg.Gravity != nil {
		xl1, xl2, xl3, xr1, xr2, xr3 := cellFacePositions(g, sw, i, j, k)
		dv := faceGravitySource(cfg.Gravity(xl1, xl2, xl3), cfg.Gravity(xr1, xr2, xr3), dx, halfDt)
		addTransverseMomentum(c, sw, c.D*dv)
	}
}

// bComponent names one of a Cons's three cell-centered field components.
type bComponent int

const (
	bComp1 bComponent = iota
	bComp2
	bComp3
)

// transverseBTargets maps a sweep direction's rotated GridFlux.DB2/DB3
// pair onto the two grid field components they source, per rotateFlux's
// direction-dependent table.
func transverseBTargets(sw Sweep) (bComponent, bComponent) {
	switch sw {
	case SweepX2:
		return bComp1, bComp3
	case SweepX3:
		return bComp1, bComp2
	default:
		return bComp2, bComp3
	}
}

func addTransverseB(c *Cons, comp bComponent, delta float64) {
	switch comp {
	case bComp1:
		c.B1c += delta
	case bComp2:
		c.B2c += delta
	default:
		c.B3c += delta
	}
}

func addTransverseMomentum(c *Cons, sw Sweep, delta float64) {
	switch sw {
	case SweepX1:
		c.M1 += delta
	case SweepX2:
		c.M2 += delta
	default:
		c.M3 += delta
	}
}

// --- final pass --------------------------------------------------------

// finalPass re-solves every direction's Riemann flux from the
// transverse-corrected interface states, applying the H-correction
// wavespeed when enabled (spec.md §4.2 step 7).
func finalPass(g *Grid, w *Workspace, cfg Config, dt float64) *BadState {
	var eta1, eta2, eta3 *scratch.Field3D
	if cfg.HCorrection {
		eta1, eta2, eta3 = computeEtaFields(g, w, cfg)
	}
	ng := 1
	kpad := tern(g.Is3D(), ng, 0)
	for k := g.Ks - kpad; k <= g.Ke+kpad; k++ {
		for j := g.Js - ng; j <= g.Je+ng; j++ {
			for i := g.Is; i <= g.Ie+1; i++ {
				left := w.UlX1.At(i, j, k)
				right := w.UrX1.At(i, j, k)
				bxi := g.B1i.At(i, j, k)
				eta := 0.0
				if eta1 != nil {
					eta = eta1.At(i, j, k)
				}
				lf := cfg.Solver.Flux(bxi, left, right, eta, cfg.EOS, cfg.Isothermal)
				w.X1Flux.Set(i, j, k, lf)
				if j >= g.Js && j <= g.Je && k >= g.Ks && k <= g.Ke {
					if bad := checkPhysical(i, j, k, SweepX1, left.D, left.P, cfg.Isothermal); bad != nil {
						return bad
					}
				}
			}
		}
	}
	for k := g.Ks - kpad; k <= g.Ke+kpad; k++ {
		for j := g.Js; j <= g.Je+1; j++ {
			for i := g.Is - ng; i <= g.Ie+ng; i++ {
				left := w.UlX2.At(i, j, k)
				right := w.UrX2.At(i, j, k)
				bxi := g.B2i.At(i, j, k)
				eta := 0.0
				if eta2 != nil {
					eta = eta2.At(i, j, k)
				}
				lf := cfg.Solver.Flux(bxi, left, right, eta, cfg.EOS, cfg.Isothermal)
				w.X2Flux.Set(i, j, k, lf)
			}
		}
	}
	if !g.Is3D() {
		return nil
	}
	for k := g.Ks; k <= g.Ke+1; k++ {
		for j := g.Js - ng; j <= g.Je+ng; j++ {
			for i := g.Is - ng; i <= g.Ie+ng; i++ {
				left := w.UlX3.At(i, j, k)
				right := w.UrX3.At(i, j, k)
				bxi := g.B3i.At(i, j, k)
				eta := 0.0
				if eta3 != nil {
					eta = eta3.At(i, j, k)
				}
				lf := cfg.Solver.Flux(bxi, left, right, eta, cfg.EOS, cfg.Isothermal)
				w.X3Flux.Set(i, j, k, lf)
			}
		}
	}
	return nil
}

// computeEtaFields computes the per-face H-correction eta (spec.md
// §4.2 step 7) from the corrected L/R states, then widens it to the
// max over each face's stencil neighbors before returning.
func computeEtaFields(g *Grid, w *Workspace, cfg Config) (eta1, eta2, eta3 *scratch.Field3D) {
	eta1 = scratch.NewField3D(g.Nx1+1, g.Nx2, g.Nx3, g.NGhost)
	eta2 = scratch.NewField3D(g.Nx1, g.Nx2+1, g.Nx3, g.NGhost)
	if g.Is3D() {
		eta3 = scratch.NewField3D(g.Nx1, g.Nx2, g.Nx3+1, g.NGhost)
	}
	for k := g.Ks; k <= g.Ke; k++ {
		for j := g.Js; j <= g.Je; j++ {
			for i := g.Is; i <= g.Ie+1; i++ {
				v := HCorrectionEta(cfg.Solver, g.B1i.At(i, j, k), w.UlX1.At(i, j, k), w.UrX1.At(i, j, k), cfg.EOS, cfg.Isothermal)
				eta1.Set(i, j, k, v)
			}
		}
	}
	for k := g.Ks; k <= g.Ke; k++ {
		for j := g.Js; j <= g.Je+1; j++ {
			for i := g.Is; i <= g.Ie; i++ {
				v := HCorrectionEta(cfg.Solver, g.B2i.At(i, j, k), w.UlX2.At(i, j, k), w.UrX2.At(i, j, k), cfg.EOS, cfg.Isothermal)
				eta2.Set(i, j, k, v)
			}
		}
	}
	if g.Is3D() {
		for k := g.Ks; k <= g.Ke+1; k++ {
			for j := g.Js; j <= g.Je; j++ {
				for i := g.Is; i <= g.Ie; i++ {
					v := HCorrectionEta(cfg.Solver, g.B3i.At(i, j, k), w.UlX3.At(i, j, k), w.UrX3.At(i, j, k), cfg.EOS, cfg.Isothermal)
					eta3.Set(i, j, k, v)
				}
			}
		}
	}
	widenEta(g, eta1, eta2, eta3)
	return
}

// widenEta replaces each face's eta with the max over its immediate
// stencil neighbors in the two transverse directions, the "seed etah
// = max over the stencil neighbors" rule (spec.md §4.2 step 7).
func widenEta(g *Grid, eta1, eta2, eta3 *scratch.Field3D) {
	for k := g.Ks; k <= g.Ke; k++ {
		for j := g.Js; j <= g.Je; j++ {
			for i := g.Is; i <= g.Ie+1; i++ {
				eta1.Set(i, j, k, EtahStencilMax(eta1.At(i, j, k), eta1.At(i, j-1, k), eta1.At(i, j+1, k)))
			}
		}
	}
	for k := g.Ks; k <= g.Ke; k++ {
		for j := g.Js; j <= g.Je+1; j++ {
			for i := g.Is; i <= g.Ie; i++ {
				eta2.Set(i, j, k, EtahStencilMax(eta2.At(i, j, k), eta2.At(i-1, j, k), eta2.At(i+1, j, k)))
			}
		}
	}
	if !g.Is3D() {
		return
	}
	for k := g.Ks; k <= g.Ke+1; k++ {
		for j := g.Js; j <= g.Je; j++ {
			for i := g.Is; i <= g.Ie; i++ {
				eta3.Set(i, j, k, EtahStencilMax(eta3.At(i, j, k), eta3.At(i-1, j, k), eta3.At(i+1, j, k)))
			}
		}
	}
}

// --- conservative update ------------------------------------------------

// conservativeUpdate applies the final fluxes' divergence, the
// gravity source term, and (if enabled) the shearing-box Coriolis
// operator to every active cell, then validates the result (spec.md
// §4.2 steps 10-11). Results are staged in a local buffer and only
// committed to g.U once every cell has passed checkPhysical, so a
// caller that retries the whole step with a halved dt after a
// BadState always starts from the untouched pre-step state rather
// than one partially advanced by the cells that came earlier in loop
// order.
func conservativeUpdate(g *Grid, w *Workspace, cfg Config, dt float64) *BadState {
	dx1i, dx2i, dx3i := dt/g.Dx1, dt/g.Dx2, 0.0
	if g.Is3D() {
		dx3i = dt / g.Dx3
	}
	type cellUpdate struct {
		i, j, k int
		c       Cons
	}
	updates := make([]cellUpdate, 0, g.Nx1*g.Nx2*g.Nx3)
	for k := g.Ks; k <= g.Ke; k++ {
		for j := g.Js; j <= g.Je; j++ {
			for i := g.Is; i <= g.Ie; i++ {
				c := g.U.At(i, j, k)
				gf1l := rotateFlux(SweepX1, w.X1Flux.At(i, j, k))
				gf1r := rotateFlux(SweepX1, w.X1Flux.At(i+1, j, k))
				gf2l := rotateFlux(SweepX2, w.X2Flux.At(i, j, k))
				gf2r := rotateFlux(SweepX2, w.X2Flux.At(i, j+1, k))

				c.D -= dx1i*(gf1r.D-gf1l.D) + dx2i*(gf2r.D-gf2l.D)
				c.M1 -= dx1i*(gf1r.M1-gf1l.M1) + dx2i*(gf2r.M1-gf2l.M1)
				c.M2 -= dx1i*(gf1r.M2-gf1l.M2) + dx2i*(gf2r.M2-gf2l.M2)
				c.M3 -= dx1i*(gf1r.M3-gf1l.M3) + dx2i*(gf2r.M3-gf2l.M3)
				if !cfg.Isothermal {
					c.E -= dx1i*(gf1r.E-gf1l.E) + dx2i*(gf2r.E-gf2l.E)
				}
				if g.Is3D() {
					gf3l := rotateFlux(SweepX3, w.X3Flux.At(i, j, k))
					gf3r := rotateFlux(SweepX3, w.X3Flux.At(i, j, k+1))
					c.M1 -= dx3i * (gf3r.M1 - gf3l.M1)
					c.M2 -= dx3i * (gf3r.M2 - gf3l.M2)
					c.M3 -= dx3i * (gf3r.M3 - gf3l.M3)
					c.D -= dx3i * (gf3r.D - gf3l.D)
					if !cfg.Isothermal {
						c.E -= dx3i * (gf3r.E - gf3l.E)
					}
					for s := range c.S {
						c.S[s] -= dx3i * (gf3r.S[s] - gf3l.S[s])
					}
				}
				for s := range c.S {
					c.S[s] -= dx1i*(gf1r.S[s]-gf1l.S[s]) + dx2i*(gf2r.S[s]-gf2l.S[s])
				}

				if cfg.Gravity != nil {
					dHalf := w.Dhalf.At(i, j, k)
					applyGravitySource(g, cfg, i, j, k, dt, gf1l.D, gf1r.D, dHalf, &c)
				}
				if cfg.ShearingBox.Enabled {
					x1, _, _ := g.CCPos(i, j, k)
					c.M1, c.M2 = CoriolisHalfStep(cfg.ShearingBox, c.D, c.M1, c.M2, x1, dt)
				}

				if bad := checkPhysical(i, j, k, SweepX1, c.D, pressureOf(c, cfg), cfg.Isothermal); bad != nil {
					return bad
				}
				updates = append(updates, cellUpdate{i, j, k, c})
			}
		}
	}
	for _, u := range updates {
		g.U.Set(u.i, u.j, u.k, u.c)
	}
	return nil
}

func pressureOf(c Cons, cfg Config) float64 {
	if cfg.Isothermal {
		return 1
	}
	p := ToPrim(c, cfg.EOS, cfg.Isothermal)
	return p.P
}

// applyGravitySource adds the momentum and (non-isothermal) energy
// source terms from cfg.Gravity to c, given the already-computed x1
// mass fluxes through the cell's two faces (spec.md §4.2 step 10's
// "F_d^mass * (Φ_face - Φ_center)"). The momentum term is weighted by
// dHalf, the half-step density from halfStepState, not c.D: by the
// time this runs c.D already holds the post-advection full-step value.
func applyGravitySource(g *Grid, cfg Config, i, j, k int, dt, massFluxLeft, massFluxRight, dHalf float64, c *Cons) {
	xl1, _, _ := g.FaceX1Pos(i, j, k)
	xr1, _, _ := g.FaceX1Pos(i+1, j, k)
	x1, x2, x3 := g.CCPos(i, j, k)
	phiL := cfg.Gravity(xl1, x2, x3)
	phiR := cfg.Gravity(xr1, x2, x3)
	phiC := cfg.Gravity(x1, x2, x3)
	c.M1 += dHalf * faceGravitySource(phiL, phiR, g.Dx1, dt)
	if !cfg.Isothermal {
		c.E += gravityEnergySource(massFluxLeft, massFluxRight, phiC, phiL, phiR, dt, g.Dx1)
	}
}
