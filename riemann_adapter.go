package ctu

import "github.com/astrogrid/ctumhd/internal/riemann"

// DefaultRiemannSolver wraps the internal/riemann HLLE implementation
// to satisfy the RiemannSolver interface.
type DefaultRiemannSolver struct{}

// NewDefaultRiemannSolver returns the package's stock HLLE solver.
func NewDefaultRiemannSolver() RiemannSolver { return DefaultRiemannSolver{} }

func toRiemannPrim(p Prim) riemann.Prim {
	return riemann.Prim{D: p.D, V1: p.V1, V2: p.V2, V3: p.V3, P: p.P,
		B1c: p.B1c, B2c: p.B2c, B3c: p.B3c, S: p.S}
}

func toRiemannEOS(e EOS) riemann.EOS {
	return riemann.EOS{Gamma: e.Gamma, IsoSoundSpeed: e.IsoSoundSpeed}
}

func (DefaultRiemannSolver) Flux(bxi float64, ul, ur Prim, etah float64, eos EOS, isothermal bool) LocalFlux {
	lf := riemann.HLLE{}.Flux(bxi, toRiemannPrim(ul), toRiemannPrim(ur), etah, toRiemannEOS(eos), isothermal)
	return LocalFlux{D: lf.D, Mx: lf.Mx, My: lf.My, Mz: lf.Mz, E: lf.E, By: lf.By, Bz: lf.Bz, S: lf.S}
}

func (DefaultRiemannSolver) MaxWavespeed(c Cons, eos EOS, isothermal bool, bxi float64) float64 {
	return riemann.HLLE{}.MaxWavespeed(c.D, c.M1, c.M2, c.M3, c.E, c.B1c, c.B2c, c.B3c, toRiemannEOS(eos), isothermal, bxi)
}
