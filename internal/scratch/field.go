// Package scratch provides the ghost-aware dense arrays the integrator
// builds its per-step and per-Grid state on. It adapts ctessum/sparse's
// DenseArray (row-major, k-j-i order) with an accessor that knows about
// ghost zones, so callers index by active-zone-relative (i,j,k) instead
// of raw offsets.
package scratch

import "github.com/ctessum/sparse"

// Field3D is a flat k,j,i array with nghost ghost layers on every side
// (none in x3 when nx3 is 1). In the backing array, raw index (0,0,0)
// is the first ghost cell; At and Set take active-zone-relative
// indices, so their (0,0,0) is the first active cell.
type Field3D struct {
	arr            *sparse.DenseArray
	nx1, nx2, nx3  int // active-zone extents
	nghost         int
}

// NewField3D allocates a zeroed field sized nx1 x nx2 x nx3 active cells
// plus nghost ghost layers on every side. nx3 may be 1 for a 2D field, in
// which case no ghost layers are added in the x3 direction.
func NewField3D(nx1, nx2, nx3, nghost int) *Field3D {
	g3 := nghost
	if nx3 == 1 {
		g3 = 0
	}
	shape := []int{nx3 + 2*g3, nx2 + 2*nghost, nx1 + 2*nghost}
	return &Field3D{
		arr:    sparse.ZerosDense(shape...),
		nx1:    nx1,
		nx2:    nx2,
		nx3:    nx3,
		nghost: nghost,
	}
}

func (f *Field3D) g3() int {
	if f.nx3 == 1 {
		return 0
	}
	return f.nghost
}

// At returns the value at active-zone-relative index (i,j,k); negative
// indices and indices beyond the active range reach into ghost zones.
func (f *Field3D) At(i, j, k int) float64 {
	return f.arr.Get(k+f.g3(), j+f.nghost, i+f.nghost)
}

// Set stores a value at active-zone-relative index (i,j,k).
func (f *Field3D) Set(i, j, k int, val float64) {
	f.arr.Set(val, k+f.g3(), j+f.nghost, i+f.nghost)
}

// Shape returns the full (ghost-inclusive) shape in (x3,x2,x1) order.
func (f *Field3D) Shape() []int { return f.arr.GetShape() }

// Dense exposes the backing ctessum/sparse array for bulk I/O or gob
// serialization at checkpoint boundaries.
func (f *Field3D) Dense() *sparse.DenseArray { return f.arr }

// Scale multiplies every element, ghost or active, by val.
func (f *Field3D) Scale(val float64) { f.arr.Scale(val) }
