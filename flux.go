package ctu

// Reconstructor produces face left/right primitive states from a row
// of cell-centered primitives and the row's normal face field, over
// [lo,hi]. Spec.md §4.1 leaves the algorithm opaque (PLM, PPM, ...) as
// long as it is total-variation-limiting; it is injected, not owned,
// by the flux kernel. internal/recon provides the concrete PLM default.
type Reconstructor interface {
	Reconstruct(prim []Prim, bxc []float64, dt, dtdx float64, lo, hi int) (wl, wr []Prim)
}

// RiemannSolver computes the numerical flux at one face and the fast
// magnetosonic speed used for the H-correction and the CFL estimate.
// Spec.md §4.1 treats the solver as a black box; internal/riemann
// provides the concrete HLLE default.
type RiemannSolver interface {
	// Flux returns the conservative flux in the LOCAL (Mx,My,Mz,By,Bz)
	// basis for the Riemann problem normal to the sweep direction.
	// etah is the H-correction wavespeed to widen dissipation by; it is
	// zero when the H-correction is disabled.
	Flux(bxi float64, ul, ur Prim, etah float64, eos EOS, isothermal bool) LocalFlux
	MaxWavespeed(c Cons, eos EOS, isothermal bool, bxi float64) float64
}

// LocalFlux is a numerical flux in the rotated 1D basis a sweep solves
// in: (Mx,My,Mz) along (normal,tangent1,tangent2), (By,Bz) the
// tangential field fluxes. The integrator permutes these into grid
// components according to the fixed, direction-dependent rotation in
// spec.md §4.1's table.
type LocalFlux struct {
	D          float64
	Mx, My, Mz float64
	E          float64
	By, Bz     float64
	S          []float64
}

// GridFlux is a LocalFlux already rotated into grid (M1,M2,M3,B2,B3-or-
// equivalent) components, ready to apply directly to a Cons.
type GridFlux struct {
	D          float64
	M1, M2, M3 float64
	E          float64
	DB2, DB3   float64 // contributions to d/dt of the two tangential face B's this sweep updates via CT, not cell-centered B directly
	S          []float64
}

// rotateFlux maps a LocalFlux emitted by a sweep normal to `sweep` into
// grid-aligned components, per spec.md §4.1's table.
func rotateFlux(sweep Sweep, lf LocalFlux) GridFlux {
	gf := GridFlux{D: lf.D, E: lf.E, S: lf.S}
	switch sweep {
	case SweepX1:
		gf.M1, gf.M2, gf.M3 = lf.Mx, lf.My, lf.Mz
		gf.DB2, gf.DB3 = lf.By, lf.Bz // (By,Bz) -> (B2c,B3c)-feeding EMF contributions
	case SweepX2:
		gf.M2, gf.M3, gf.M1 = lf.Mx, lf.My, lf.Mz
		gf.DB3, gf.DB2 = lf.By, lf.Bz // (By,Bz) -> (B3c,B1c)
	case SweepX3:
		gf.M3, gf.M1, gf.M2 = lf.Mx, lf.My, lf.Mz
		gf.DB2, gf.DB3 = lf.By, lf.Bz // caller interprets as (B1c,B2c)
	}
	return gf
}

// FluxRow computes interface L/R primitive states and the conservative
// flux at every interface [lo,hi] of a 1D row, invoking the injected
// reconstruction and Riemann-solver operators. etah, when non-nil, is
// the per-face H-correction wavespeed seeded from the stencil maximum
// (spec.md §4.2 step 7); it must be the same length as the flux row.
func FluxRow(cfg Config, sweep Sweep, prim []Prim, bxcRow []float64, bxiRow []float64, dt, dtdx float64, lo, hi int, etah []float64) (wl, wr []Prim, fluxes []LocalFlux) {
	wl, wr = cfg.Reconstruct.Reconstruct(prim, bxcRow, dt, dtdx, lo, hi)
	fluxes = make([]LocalFlux, hi-lo+1)
	for idx := lo; idx <= hi; idx++ {
		eta := 0.
		if etah != nil {
			eta = etah[idx-lo]
		}
		fluxes[idx-lo] = cfg.Solver.Flux(bxiRow[idx-lo], wl[idx-lo], wr[idx-lo], eta, cfg.EOS, cfg.Isothermal)
	}
	return
}

// HCorrectionEta computes η_d = ½(|Δu| + |Δc_f|) at one face from the
// already-transverse-corrected L/R states, per spec.md §4.2 step 7.
func HCorrectionEta(solver RiemannSolver, bxi float64, ul, ur Prim, eos EOS, isothermal bool) float64 {
	cl := ToCons(ul, eos, isothermal)
	cr := ToCons(ur, eos, isothermal)
	cfl := solver.MaxWavespeed(cl, eos, isothermal, bxi)
	cfr := solver.MaxWavespeed(cr, eos, isothermal, bxi)
	du := absf(ul.V1 - ur.V1)
	dc := absf(cfl - cfr)
	return 0.5 * (du + dc)
}

// EtahStencilMax seeds the final H-correction wavespeed at a face from
// the maximum of the per-face eta values at the stencil neighbors
// (spec.md §4.2 step 7: "seed etah = max over the stencil neighbors").
func EtahStencilMax(vals ...float64) float64 {
	m := 0.0
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
