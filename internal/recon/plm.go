// Package recon provides the concrete piecewise-linear-method (PLM)
// reconstruction operator that satisfies ctu.Reconstructor. Spec.md
// §4.1 treats reconstruction as an opaque, injected collaborator
// ("PLM or PPM... algorithm is opaque") so this is the minimal
// total-variation-limiting default the integrator needs to exercise
// that contract; it is not itself part of the spec's core algorithm.
package recon

import "github.com/astrogrid/ctumhd/internal/linalg"

// Prim mirrors ctu.Prim's field layout without importing the ctu
// package, avoiding an import cycle (ctu imports recon's PLM type to
// wire the default Reconstructor).
type Prim struct {
	D, V1, V2, V3, P          float64
	B1c, B2c, B3c             float64
	S                         []float64
}

// PLM reconstructs face L/R primitive states with van-Leer/minmod
// slope limiting and a second-order characteristic-tracing correction
// by the normal velocity (the standard piecewise-linear predictor used
// ahead of a Riemann solve).
type PLM struct{}

// Reconstruct implements the shape ctu.Reconstructor expects. It takes
// []Prim as `interface{}`-free concrete recon.Prim rows so the adapter
// in the ctu package can convert 1:1.
func (PLM) Reconstruct(prim []Prim, dt, dtdx float64, lo, hi int) (wl, wr []Prim) {
	n := hi - lo + 1
	wl = make([]Prim, n)
	wr = make([]Prim, n)
	for idx := lo; idx <= hi; idx++ {
		i := idx - lo
		pm := at(prim, idx-1, lo, hi)
		p0 := at(prim, idx, lo, hi)
		pp := at(prim, idx+1, lo, hi)

		dl := limitedSlope(pm, p0, pp)

		left := p0
		right := p0
		for f := 0; f < numFields(p0); f++ {
			sl := fieldAt(dl, f)
			// Characteristic-tracing half-step along the normal velocity,
			// folded into the edge extrapolation as in Colella's PLM.
			trace := -0.5 * dtdx * fieldAt(p0, 1) * sl
			setField(&left, f, fieldAt(p0, f)-0.5*sl+trace)
			setField(&right, f, fieldAt(p0, f)+0.5*sl+trace)
		}
		wl[i] = left
		wr[i] = right
	}
	return
}

func at(prim []Prim, idx, lo, hi int) Prim {
	if idx < lo {
		idx = lo
	}
	if idx > hi {
		idx = hi
	}
	return prim[idx-lo]
}

// limitedSlope returns a minmod-limited centered-difference slope per
// field, using the standard left/right/centered triad.
func limitedSlope(pm, p0, pp Prim) Prim {
	var s Prim
	n := numFields(p0)
	s.S = make([]float64, len(p0.S))
	for f := 0; f < n; f++ {
		left := fieldAt(p0, f) - fieldAt(pm, f)
		right := fieldAt(pp, f) - fieldAt(p0, f)
		center := 0.5 * (fieldAt(pp, f) - fieldAt(pm, f))
		setField(&s, f, linalg.Minmod3(2*left, center, 2*right))
	}
	return s
}

const baseFields = 8 // D,V1,V2,V3,P,B1c,B2c,B3c

func numFields(p Prim) int { return baseFields + len(p.S) }

func fieldAt(p Prim, f int) float64 {
	switch f {
	case 0:
		return p.D
	case 1:
		return p.V1
	case 2:
		return p.V2
	case 3:
		return p.V3
	case 4:
		return p.P
	case 5:
		return p.B1c
	case 6:
		return p.B2c
	case 7:
		return p.B3c
	default:
		return p.S[f-baseFields]
	}
}

func setField(p *Prim, f int, val float64) {
	switch f {
	case 0:
		p.D = val
	case 1:
		p.V1 = val
	case 2:
		p.V2 = val
	case 3:
		p.V3 = val
	case 4:
		p.P = val
	case 5:
		p.B1c = val
	case 6:
		p.B2c = val
	case 7:
		p.B3c = val
	default:
		if p.S == nil {
			p.S = make([]float64, f-baseFields+1)
		}
		p.S[f-baseFields] = val
	}
}
