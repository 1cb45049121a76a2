package ctu

import (
	"math"

	"github.com/astrogrid/ctumhd/internal/scratch"
)

// Grid is one tile of a structured Cartesian mesh owned by one process.
// It carries the conserved state, the face-centered magnetic fields,
// and the bookkeeping (extents, spacing, neighbor identifiers) a single
// time step needs. Grids are constructed once at startup; their arrays
// live for the lifetime of the process, the same single-writer,
// tree-shaped ownership InMAP uses for a Cell's neighbor slices.
type Grid struct {
	Nx1, Nx2, Nx3 int // active-zone extents
	NGhost        int

	// Active-zone index ranges, inclusive. Ghost cells lie outside
	// [Is,Ie], [Js,Je], [Ks,Ke].
	Is, Ie int
	Js, Je int
	Ks, Ke int

	Dx1, Dx2, Dx3 float64
	X1Min, X2Min, X3Min float64 // position of the lower-left-front active corner

	T, Dt float64

	// Neighbor identifiers: >= 0 names a remote rank, < 0 means the
	// face is a physical boundary.
	Lx1, Rx1, Lx2, Rx2, Lx3, Rx3 int

	U  *State
	B1i, B2i, B3i *scratch.Field3D // face-centered fields

	feat Features
}

// NewGrid allocates a Grid and its conserved-state/face-field arrays.
// Allocation failure is fatal at startup per the spec's error model;
// Go expresses that as a panic from the runtime allocator itself, so
// there is no separate failure path to model here beyond validating
// the requested extents.
func NewGrid(nx1, nx2, nx3, nghost int, dx1, dx2, dx3 float64, feat Features) *Grid {
	if nx1 <= 0 || nx2 <= 0 || nx3 <= 0 || nghost <= 0 {
		panic("ctu: grid extents and nghost must be positive")
	}
	g := &Grid{
		Nx1: nx1, Nx2: nx2, Nx3: nx3, NGhost: nghost,
		Is: 0, Ie: nx1 - 1,
		Js: 0, Je: nx2 - 1,
		Ks: 0, Ke: nx3 - 1,
		Dx1: dx1, Dx2: dx2, Dx3: dx3,
		feat: feat,
	}
	g.U = newState(nx1, nx2, nx3, nghost, feat)
	// Face arrays are sized one larger than the active zone count in
	// their own direction (spec.md §3, Face magnetic fields).
	g.B1i = scratch.NewField3D(nx1+1, nx2, nx3, nghost)
	g.B2i = scratch.NewField3D(nx1, nx2+1, nx3, nghost)
	if nx3 > 1 {
		g.B3i = scratch.NewField3D(nx1, nx2, nx3+1, nghost)
	} else {
		g.B3i = scratch.NewField3D(nx1, nx2, 1, nghost)
	}
	return g
}

// Is3D reports whether this Grid has a non-trivial x3 extent. The
// integrator uses this to elide the k-loop and the x3 sweep rather than
// maintaining separate 2D/3D implementations (spec.md §9, "Coupling
// between two-dimensional and three-dimensional variants").
func (g *Grid) Is3D() bool { return g.Nx3 > 1 }

// CCPos returns the cell-center physical position of active-zone-
// relative index (i,j,k). Spec.md §9 flags that some source blocks
// reuse a stale cc_pos result across an inner loop; CCPos is cheap
// enough that callers should simply call it again for every cell
// rather than caching it across an index change.
func (g *Grid) CCPos(i, j, k int) (x1, x2, x3 float64) {
	x1 = g.X1Min + (float64(i)+0.5)*g.Dx1
	x2 = g.X2Min + (float64(j)+0.5)*g.Dx2
	x3 = g.X3Min + (float64(k)+0.5)*g.Dx3
	return
}

// FaceX1Pos returns the position of the -x1 face of cell (i,j,k).
func (g *Grid) FaceX1Pos(i, j, k int) (x1, x2, x3 float64) {
	x1 = g.X1Min + float64(i)*g.Dx1
	x2 = g.X2Min + (float64(j)+0.5)*g.Dx2
	x3 = g.X3Min + (float64(k)+0.5)*g.Dx3
	return
}

func (g *Grid) FaceX2Pos(i, j, k int) (x1, x2, x3 float64) {
	x1 = g.X1Min + (float64(i)+0.5)*g.Dx1
	x2 = g.X2Min + float64(j)*g.Dx2
	x3 = g.X3Min + (float64(k)+0.5)*g.Dx3
	return
}

func (g *Grid) FaceX3Pos(i, j, k int) (x1, x2, x3 float64) {
	x1 = g.X1Min + (float64(i)+0.5)*g.Dx1
	x2 = g.X2Min + (float64(j)+0.5)*g.Dx2
	x3 = g.X3Min + float64(k)*g.Dx3
	return
}

// CFLTimeStep returns the locally CFL-limited step size for this tile,
// the fast magnetosonic speed being supplied by the flux kernel's
// MaxWavespeed. The process-wide dt is the MPI-reduced minimum of this
// value across all ranks (spec.md §5); that reduction is
// AllreduceMinDt in exchange.go, not here, since it is a collective,
// not a per-Grid computation.
func (g *Grid) CFLTimeStep(cfg Config) float64 {
	dtMin := math.Inf(1)
	mind := math.Min(g.Dx1, g.Dx2)
	if g.Is3D() {
		mind = math.Min(mind, g.Dx3)
	}
	for k := g.Ks; k <= g.Ke; k++ {
		for j := g.Js; j <= g.Je; j++ {
			for i := g.Is; i <= g.Ie; i++ {
				c := g.U.At(i, j, k)
				cf := cfg.Solver.MaxWavespeed(c, cfg.EOS, cfg.Isothermal, g.B1i.At(i, j, k))
				speed := math.Abs(c.M1/c.D) + cf
				if speed <= 0 {
					continue
				}
				dt := cfg.CFLNumber * mind / speed
				if dt < dtMin {
					dtMin = dt
				}
			}
		}
	}
	return dtMin
}
