package ctu

import "github.com/astrogrid/ctumhd/internal/scratch"

// FluxField is a full-grid array of fluxes at the faces of one sweep
// direction: one larger than the active zone count in that direction,
// matching the face-B sizing convention in spec.md §3, plus one padding
// layer on every side of every direction. Scratch buffers
// like this are allocated once, lazily, and reused every step (spec.md
// §3 Lifecycle; §9 "no per-step allocation is permitted on the hot
// path").
type FluxField struct {
	data           []LocalFlux
	n1, n2, n3     int // face-count in the sweep direction, active count in the other two, each plus two padding layers
	dir            Sweep
}

func newFluxField(nx1, nx2, nx3 int, dir Sweep) *FluxField {
	n1, n2, n3 := nx1+2, nx2+2, nx3+2
	switch dir {
	case SweepX1:
		n1++
	case SweepX2:
		n2++
	case SweepX3:
		n3++
	}
	return &FluxField{data: make([]LocalFlux, n1*n2*n3), n1: n1, n2: n2, n3: n3, dir: dir}
}

func (f *FluxField) idx(i, j, k int) int {
	return ((k+1)*f.n2+j+1)*f.n1 + i + 1
}

// At returns the flux at face (i,j,k), where i is the face index in
// the sweep direction (0..active count inclusive) and j,k are cell
// indices in the transverse directions. Each index may also reach one
// layer beyond its range on either side, the margin the integrator's
// widened transverse rows write and read.
func (f *FluxField) At(i, j, k int) LocalFlux { return f.data[f.idx(i, j, k)] }

// Set stores the flux at face (i,j,k).
func (f *FluxField) Set(i, j, k int, v LocalFlux) { f.data[f.idx(i, j, k)] = v }

// PrimRowField is a full-grid array of reconstructed L/R primitive
// states at the faces of one sweep direction (Ul_xdFace / Ur_xdFace in
// spec.md §3), indexed and padded the same way as FluxField.
type PrimRowField struct {
	data       []Prim
	n1, n2, n3 int
	dir        Sweep
}

func newPrimRowField(nx1, nx2, nx3 int, dir Sweep) *PrimRowField {
	n1, n2, n3 := nx1+2, nx2+2, nx3+2
	switch dir {
	case SweepX1:
		n1++
	case SweepX2:
		n2++
	case SweepX3:
		n3++
	}
	return &PrimRowField{data: make([]Prim, n1*n2*n3), n1: n1, n2: n2, n3: n3, dir: dir}
}

func (f *PrimRowField) idx(i, j, k int) int { return ((k+1)*f.n2+j+1)*f.n1 + i + 1 }
func (f *PrimRowField) At(i, j, k int) Prim  { return f.data[f.idx(i, j, k)] }
func (f *PrimRowField) Set(i, j, k int, v Prim) { f.data[f.idx(i, j, k)] = v }

// Workspace bundles the integrator's per-Grid scratch arrays: the
// three directions' face L/R states and fluxes, the corner EMFs and
// their cell-centered estimators, the H-correction wavespeeds, and the
// half-step density. It is allocated lazily on first use and released
// at teardown (spec.md §3 Lifecycle).
type Workspace struct {
	UlX1, UrX1 *PrimRowField
	UlX2, UrX2 *PrimRowField
	UlX3, UrX3 *PrimRowField

	X1Flux, X2Flux, X3Flux *FluxField

	Emf1, Emf2, Emf3 *scratch.Field3D
	Emf1CC, Emf2CC, Emf3CC *scratch.Field3D

	Eta1, Eta2, Eta3 *scratch.Field3D // nil unless both MHD and the H-correction are enabled

	// Dhalf, MHalf{1,2,3} and, when MHD, B{1,2,3}cHalf hold the
	// half-step-advanced cell-centered conserved state (spec.md §4.2's
	// "half-step density" note, generalized to the other components
	// the t^{n+1/2} cell-centered EMF also needs).
	Dhalf                   *scratch.Field3D
	MHalf1, MHalf2, MHalf3  *scratch.Field3D
	B1cHalf, B2cHalf, B3cHalf *scratch.Field3D

	// BHalf{1,2,3} hold the half-step face field predicted from the
	// predictor-pass corner EMFs (spec.md §4.2 step 4). They are
	// distinct from g.B{1,2,3}i so the full-step CT update in step 9
	// still has the untouched t^n face field to advance from.
	BHalf1, BHalf2, BHalf3 *scratch.Field3D
}

// NewWorkspace allocates the scratch arrays sized for g.
func NewWorkspace(g *Grid, feat Features) *Workspace {
	nx1, nx2, nx3, ng := g.Nx1, g.Nx2, g.Nx3, g.NGhost
	w := &Workspace{
		UlX1: newPrimRowField(nx1, nx2, nx3, SweepX1), UrX1: newPrimRowField(nx1, nx2, nx3, SweepX1),
		UlX2: newPrimRowField(nx1, nx2, nx3, SweepX2), UrX2: newPrimRowField(nx1, nx2, nx3, SweepX2),
		X1Flux: newFluxField(nx1, nx2, nx3, SweepX1),
		X2Flux: newFluxField(nx1, nx2, nx3, SweepX2),
		Dhalf:  scratch.NewField3D(nx1, nx2, nx3, ng),
		MHalf1: scratch.NewField3D(nx1, nx2, nx3, ng),
		MHalf2: scratch.NewField3D(nx1, nx2, nx3, ng),
		MHalf3: scratch.NewField3D(nx1, nx2, nx3, ng),
	}
	if g.Is3D() {
		w.UlX3 = newPrimRowField(nx1, nx2, nx3, SweepX3)
		w.UrX3 = newPrimRowField(nx1, nx2, nx3, SweepX3)
		w.X3Flux = newFluxField(nx1, nx2, nx3, SweepX3)
	}
	if feat.MHD {
		w.B1cHalf = scratch.NewField3D(nx1, nx2, nx3, ng)
		w.B2cHalf = scratch.NewField3D(nx1, nx2, nx3, ng)
		w.B3cHalf = scratch.NewField3D(nx1, nx2, nx3, ng)
		w.BHalf1 = scratch.NewField3D(nx1+1, nx2, nx3, ng)
		w.BHalf2 = scratch.NewField3D(nx1, nx2+1, nx3, ng)
		if nx3 > 1 {
			w.BHalf3 = scratch.NewField3D(nx1, nx2, nx3+1, ng)
		} else {
			w.BHalf3 = scratch.NewField3D(nx1, nx2, 1, ng)
		}
		// EMFs live on cell edges: emf3 at the (i,j,k) x1-x2 edge has
		// shape one larger in both x1 and x2; emf1/emf2 analogously.
		w.Emf3 = scratch.NewField3D(nx1+1, nx2+1, nx3, ng)
		w.Emf3CC = scratch.NewField3D(nx1, nx2, nx3, ng)
		if g.Is3D() {
			w.Emf1 = scratch.NewField3D(nx1, nx2+1, nx3+1, ng)
			w.Emf2 = scratch.NewField3D(nx1+1, nx2, nx3+1, ng)
			w.Emf1CC = scratch.NewField3D(nx1, nx2, nx3, ng)
			w.Emf2CC = scratch.NewField3D(nx1, nx2, nx3, ng)
		}
		if feat.HCorrection {
			w.Eta1 = scratch.NewField3D(nx1+1, nx2, nx3, ng)
			w.Eta2 = scratch.NewField3D(nx1, nx2+1, nx3, ng)
			if g.Is3D() {
				w.Eta3 = scratch.NewField3D(nx1, nx2, nx3+1, ng)
			}
		}
	}
	return w
}
