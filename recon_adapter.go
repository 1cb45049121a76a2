package ctu

import "github.com/astrogrid/ctumhd/internal/recon"

// DefaultReconstructor wraps the internal/recon PLM implementation to
// satisfy the Reconstructor interface, converting between the public
// Prim type and recon's import-cycle-free mirror of it.
type DefaultReconstructor struct {
	impl recon.PLM
}

// NewDefaultReconstructor returns the package's stock PLM reconstructor.
func NewDefaultReconstructor() Reconstructor { return DefaultReconstructor{} }

func (DefaultReconstructor) Reconstruct(prim []Prim, bxc []float64, dt, dtdx float64, lo, hi int) (wl, wr []Prim) {
	rp := make([]recon.Prim, len(prim))
	for i, p := range prim {
		rp[i] = toReconPrim(p)
	}
	rwl, rwr := recon.PLM{}.Reconstruct(rp, dt, dtdx, lo, hi)
	wl = make([]Prim, len(rwl))
	wr = make([]Prim, len(rwr))
	for i := range rwl {
		wl[i] = fromReconPrim(rwl[i])
		wr[i] = fromReconPrim(rwr[i])
	}
	applyMHDSourceTerm(prim, bxc, dt, dtdx, lo, hi, wl, wr)
	return
}

// applyMHDSourceTerm adds the CTU predictor's multidimensional MHD
// term, (v_perp)(dB_normal/dx_normal)*dt/2, to each edge state's two
// non-normal field components. bxc is the row's raw, pre-reconstruction
// cell-centered normal field; PLM itself stays a pure hydro+field
// limiter and never sees it.
func applyMHDSourceTerm(prim []Prim, bxc []float64, dt, dtdx float64, lo, hi int, wl, wr []Prim) {
	if len(bxc) == 0 {
		return
	}
	dx := dt / dtdx
	for idx := lo; idx <= hi; idx++ {
		n := idx - lo
		dbdx := (bxcAt(bxc, idx+1, lo, hi) - bxcAt(bxc, idx-1, lo, hi)) / (2 * dx)
		src2 := 0.5 * dt * prim[n].V2 * dbdx
		src3 := 0.5 * dt * prim[n].V3 * dbdx
		wl[n].B2c += src2
		wr[n].B2c += src2
		wl[n].B3c += src3
		wr[n].B3c += src3
	}
}

func bxcAt(bxc []float64, idx, lo, hi int) float64 {
	if idx < lo {
		idx = lo
	}
	if idx > hi {
		idx = hi
	}
	return bxc[idx-lo]
}

func toReconPrim(p Prim) recon.Prim {
	return recon.Prim{D: p.D, V1: p.V1, V2: p.V2, V3: p.V3, P: p.P,
		B1c: p.B1c, B2c: p.B2c, B3c: p.B3c, S: append([]float64(nil), p.S...)}
}

func fromReconPrim(p recon.Prim) Prim {
	return Prim{D: p.D, V1: p.V1, V2: p.V2, V3: p.V3, P: p.P,
		B1c: p.B1c, B2c: p.B2c, B3c: p.B3c, S: p.S}
}
