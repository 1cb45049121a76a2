package ctu

import "github.com/astrogrid/ctumhd/internal/scratch"

// Cons is the conservative state of one cell, passed by value the way
// InMAP passes small per-cell summaries; the backing storage is always
// the struct-of-arrays fields on State; Cons is a reader/writer view
// used by the flux kernel and integrator math.
type Cons struct {
	D          float64
	M1, M2, M3 float64
	E          float64 // ignored when Isothermal
	B1c, B2c, B3c float64 // ignored unless MHD
	S          []float64 // NScalars entries
}

// State is the struct-of-arrays conservative cell state for a Grid.
// Fields absent from the active feature set are left nil so an
// isothermal or hydrodynamic-only run pays no memory for E or B.
type State struct {
	D          *scratch.Field3D
	M1, M2, M3 *scratch.Field3D
	E          *scratch.Field3D // nil if Isothermal
	B1c, B2c, B3c *scratch.Field3D // nil unless MHD
	S          []*scratch.Field3D // len == NScalars

	feat Features
}

func newState(nx1, nx2, nx3, nghost int, feat Features) *State {
	s := &State{feat: feat}
	s.D = scratch.NewField3D(nx1, nx2, nx3, nghost)
	s.M1 = scratch.NewField3D(nx1, nx2, nx3, nghost)
	s.M2 = scratch.NewField3D(nx1, nx2, nx3, nghost)
	s.M3 = scratch.NewField3D(nx1, nx2, nx3, nghost)
	if !feat.Isothermal {
		s.E = scratch.NewField3D(nx1, nx2, nx3, nghost)
	}
	if feat.MHD {
		s.B1c = scratch.NewField3D(nx1, nx2, nx3, nghost)
		s.B2c = scratch.NewField3D(nx1, nx2, nx3, nghost)
		s.B3c = scratch.NewField3D(nx1, nx2, nx3, nghost)
	}
	if feat.NScalars > 0 {
		s.S = make([]*scratch.Field3D, feat.NScalars)
		for n := range s.S {
			s.S[n] = scratch.NewField3D(nx1, nx2, nx3, nghost)
		}
	}
	return s
}

// At reads the conservative state of active-zone-relative cell (i,j,k).
func (s *State) At(i, j, k int) Cons {
	c := Cons{
		D:  s.D.At(i, j, k),
		M1: s.M1.At(i, j, k),
		M2: s.M2.At(i, j, k),
		M3: s.M3.At(i, j, k),
	}
	if s.E != nil {
		c.E = s.E.At(i, j, k)
	}
	if s.feat.MHD {
		c.B1c = s.B1c.At(i, j, k)
		c.B2c = s.B2c.At(i, j, k)
		c.B3c = s.B3c.At(i, j, k)
	}
	if len(s.S) > 0 {
		c.S = make([]float64, len(s.S))
		for n, f := range s.S {
			c.S[n] = f.At(i, j, k)
		}
	}
	return c
}

// Set writes the conservative state of active-zone-relative cell (i,j,k).
func (s *State) Set(i, j, k int, c Cons) {
	s.D.Set(i, j, k, c.D)
	s.M1.Set(i, j, k, c.M1)
	s.M2.Set(i, j, k, c.M2)
	s.M3.Set(i, j, k, c.M3)
	if s.E != nil {
		s.E.Set(i, j, k, c.E)
	}
	if s.feat.MHD {
		s.B1c.Set(i, j, k, c.B1c)
		s.B2c.Set(i, j, k, c.B2c)
		s.B3c.Set(i, j, k, c.B3c)
	}
	for n, f := range s.S {
		f.Set(i, j, k, c.S[n])
	}
}

// Prim is the primitive-variable view of a cell: density, velocity,
// pressure, tangential field and scalar concentrations. Conversion
// to/from Cons is treated as an external collaborator's contract by
// spec.md §1 ("primitive-conservative converters ... out of scope");
// the functions below are the minimal concrete implementation needed
// to exercise that contract end to end.
type Prim struct {
	D          float64
	V1, V2, V3 float64
	P          float64 // ignored when Isothermal
	B1c, B2c, B3c float64
	S          []float64
}

// ToPrim converts a conservative state to primitive variables.
func ToPrim(c Cons, eos EOS, isothermal bool) Prim {
	p := Prim{
		D:  c.D,
		V1: c.M1 / c.D,
		V2: c.M2 / c.D,
		V3: c.M3 / c.D,
		B1c: c.B1c, B2c: c.B2c, B3c: c.B3c,
		S: c.S,
	}
	if !isothermal {
		ke := 0.5 * (c.M1*c.M1 + c.M2*c.M2 + c.M3*c.M3) / c.D
		me := 0.5 * (c.B1c*c.B1c + c.B2c*c.B2c + c.B3c*c.B3c)
		p.P = (eos.Gamma - 1) * (c.E - ke - me)
	}
	return p
}

// ToCons converts primitive variables back to the conservative state.
func ToCons(p Prim, eos EOS, isothermal bool) Cons {
	c := Cons{
		D:  p.D,
		M1: p.D * p.V1,
		M2: p.D * p.V2,
		M3: p.D * p.V3,
		B1c: p.B1c, B2c: p.B2c, B3c: p.B3c,
		S: p.S,
	}
	if !isothermal {
		ke := 0.5 * p.D * (p.V1*p.V1 + p.V2*p.V2 + p.V3*p.V3)
		me := 0.5 * (p.B1c*p.B1c + p.B2c*p.B2c + p.B3c*p.B3c)
		c.E = p.P/(eos.Gamma-1) + ke + me
	}
	return c
}
