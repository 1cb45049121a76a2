// Package riemann provides the concrete HLLE (hydrodynamics) /
// HLLE-MHD (magnetized) flux function satisfying ctu.RiemannSolver.
// Spec.md §1 treats the Riemann solver as an external collaborator
// consumed through the compute_flux contract; this is the minimal
// concrete implementation needed to exercise it.
package riemann

import "math"

// Prim mirrors ctu.Prim's layout to avoid an import cycle.
type Prim struct {
	D, V1, V2, V3, P float64
	B1c, B2c, B3c    float64
	S                []float64
}

// LocalFlux mirrors ctu.LocalFlux's layout.
type LocalFlux struct {
	D          float64
	Mx, My, Mz float64
	E          float64
	By, Bz     float64
	S          []float64
}

// EOS mirrors ctu.EOS.
type EOS struct {
	Gamma         float64
	IsoSoundSpeed float64
}

// HLLE is a two-wave approximate Riemann solver. For MHD states
// (Bx != 0 or tangential field present) it uses the fast magnetosonic
// signal speeds; for pure hydrodynamics it reduces to the standard
// HLLE estimate. etah widens the dissipation bracket per spec.md §4.1
// ("the solver must widen its dissipation accordingly").
type HLLE struct{}

func soundSpeed(p Prim, eos EOS, isothermal bool) float64 {
	if isothermal {
		return eos.IsoSoundSpeed
	}
	return math.Sqrt(eos.Gamma * p.P / p.D)
}

// fastMagnetosonic returns the fast magnetosonic speed along the
// sweep's normal direction, given the normal face field bxi.
func fastMagnetosonic(p Prim, eos EOS, isothermal bool, bxi float64) float64 {
	cs := soundSpeed(p, eos, isothermal)
	bx2 := bxi * bxi
	bt2 := p.B2c*p.B2c + p.B3c*p.B3c
	b2 := bx2 + bt2
	if b2 == 0 {
		return cs
	}
	va2 := b2 / p.D
	cs2 := cs * cs
	term := va2 + cs2
	disc := term*term - 4*cs2*bx2/p.D
	if disc < 0 {
		disc = 0
	}
	return math.Sqrt(0.5 * (term + math.Sqrt(disc)))
}

// MaxWavespeed implements ctu.RiemannSolver.MaxWavespeed.
func (HLLE) MaxWavespeed(d, m1, m2, m3, e, b1c, b2c, b3c float64, eos EOS, isothermal bool, bxi float64) float64 {
	p := Prim{D: d, V1: m1 / d, V2: m2 / d, V3: m3 / d, B1c: b1c, B2c: b2c, B3c: b3c}
	if !isothermal {
		ke := 0.5 * (m1*m1 + m2*m2 + m3*m3) / d
		me := 0.5 * (b1c*b1c + b2c*b2c + b3c*b3c)
		p.P = (eos.Gamma - 1) * (e - ke - me)
	}
	return fastMagnetosonic(p, eos, isothermal, bxi)
}

func flux1d(p Prim, bxi float64, eos EOS, isothermal bool) (f LocalFlux, cons [8]float64) {
	pt := p.P
	if p.B1c != 0 || p.B2c != 0 || p.B3c != 0 || bxi != 0 {
		pt += 0.5 * (bxi*bxi + p.B2c*p.B2c + p.B3c*p.B3c)
	}
	mx := p.D * p.V1
	my := p.D * p.V2
	mz := p.D * p.V3
	var e float64
	if !isothermal {
		ke := 0.5 * p.D * (p.V1*p.V1 + p.V2*p.V2 + p.V3*p.V3)
		me := 0.5 * (bxi*bxi + p.B2c*p.B2c + p.B3c*p.B3c)
		e = p.P/(eos.Gamma-1) + ke + me
	}
	f.D = mx
	f.Mx = mx*p.V1 - bxi*bxi + pt
	f.My = my*p.V1 - bxi*p.B2c
	f.Mz = mz*p.V1 - bxi*p.B3c
	f.By = p.B2c*p.V1 - bxi*p.V2
	f.Bz = p.B3c*p.V1 - bxi*p.V3
	if !isothermal {
		f.E = (e + pt) * p.V1
		if bxi != 0 || p.B2c != 0 || p.B3c != 0 {
			f.E -= bxi * (bxi*p.V1 + p.B2c*p.V2 + p.B3c*p.V3)
		}
	}
	f.S = make([]float64, len(p.S))
	for i, s := range p.S {
		f.S[i] = s * p.D * p.V1
	}
	cons = [8]float64{p.D, mx, my, mz, e, bxi, p.B2c, p.B3c}
	return
}

// Flux implements ctu.RiemannSolver.Flux.
func (HLLE) Flux(bxi float64, ul, ur Prim, etah float64, eos EOS, isothermal bool) LocalFlux {
	csl := fastMagnetosonic(ul, eos, isothermal, bxi)
	csr := fastMagnetosonic(ur, eos, isothermal, bxi)

	sl := math.Min(ul.V1-csl, ur.V1-csr)
	sr := math.Max(ul.V1+csl, ur.V1+csr)
	if etah > 0 {
		sl -= etah
		sr += etah
	}

	fl, cl := flux1d(ul, bxi, eos, isothermal)
	fr, cr := flux1d(ur, bxi, eos, isothermal)

	if sl >= 0 {
		return fl
	}
	if sr <= 0 {
		return fr
	}

	var out LocalFlux
	denom := sr - sl
	fld := [8]float64{fl.D, fl.Mx, fl.My, fl.Mz, fl.E, bxi, fl.By, fl.Bz}
	frd := [8]float64{fr.D, fr.Mx, fr.My, fr.Mz, fr.E, bxi, fr.By, fr.Bz}
	var hll [8]float64
	for i := range hll {
		hll[i] = (sr*fld[i] - sl*frd[i] + sl*sr*(cr[i]-cl[i])) / denom
	}
	out.D, out.Mx, out.My, out.Mz, out.E = hll[0], hll[1], hll[2], hll[3], hll[4]
	out.By, out.Bz = hll[6], hll[7]

	if len(ul.S) > 0 {
		out.S = make([]float64, len(ul.S))
		for i := range ul.S {
			slv := ul.S[i] * cl[0] * ul.V1
			srv := ur.S[i] * cr[0] * ur.V1
			out.S[i] = (sr*slv - sl*srv + sl*sr*(ur.S[i]*cr[0]-ul.S[i]*cl[0])) / denom
		}
	}
	return out
}
