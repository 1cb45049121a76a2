package ctu

import "fmt"

// BCFlag selects one of the closed set of physical-boundary policies,
// spec.md §4.4/§6.
type BCFlag int

const (
	BCReflectZeroB BCFlag = 1 // reflecting, B_n = 0
	BCOutflow      BCFlag = 2
	BCPeriodic     BCFlag = 4
	BCReflectKeepB BCFlag = 5 // reflecting, B_n preserved
	BCUser         BCFlag = 100
)

// Face indexes BC/neighbor/UserBoundary arrays: ix1, ox1, ix2, ox2,
// ix3, ox3, in the order spec.md §4.4's ordering rule requires.
const (
	FaceIX1 = iota
	FaceOX1
	FaceIX2
	FaceOX2
	FaceIX3
	FaceOX3
)

// BoundaryFunc is the problem-registered callback for BCUser, spec.md
// §6 `user_boundary(Grid)`.
type BoundaryFunc func(g *Grid, face int)

func validateBC(flag BCFlag) {
	switch flag {
	case BCReflectZeroB, BCOutflow, BCPeriodic, BCReflectKeepB, BCUser:
		return
	default:
		panic(fmt.Sprintf("ctu: unrecognized boundary condition flag %d", flag))
	}
}

// ValidateConfig checks the configuration's BC flags are all
// recognized; an unknown flag is fatal at initialization (spec.md §7).
func ValidateConfig(cfg Config) {
	for _, f := range cfg.BC {
		validateBC(f)
	}
}

// FillGhosts fills nghost ghost layers on every face of g, dispatching
// to a physical BC policy or neighbor exchange. Directions are
// processed x1 -> x2 -> x3, inner before outer face within a
// direction, per spec.md §4.4's strict ordering rule: a later
// direction's copy range must include the ghost zones the earlier
// direction already filled, so corners come out right.
//
// Calling FillGhosts twice with no intervening update is idempotent
// (spec.md §8, "Idempotence"): every policy below is a pure function
// of already-active-zone or already-filled-ghost data, so a repeat
// call reproduces the same ghost values.
func FillGhosts(g *Grid, cfg Config, ex Exchanger) {
	fillDirection(g, cfg, ex, 0)
	fillDirection(g, cfg, ex, 1)
	if g.Is3D() {
		fillDirection(g, cfg, ex, 2)
	}
}

func fillDirection(g *Grid, cfg Config, ex Exchanger, dim int) {
	innerFace, outerFace := dim*2, dim*2+1
	innerNeighbor, outerNeighbor := neighborID(g, dim, true), neighborID(g, dim, false)

	if innerNeighbor >= 0 || outerNeighbor >= 0 {
		Exchange(g, cfg, ex, dim)
	}
	if innerNeighbor < 0 {
		applyPhysicalBC(g, cfg, dim, true, innerFace)
	}
	if outerNeighbor < 0 {
		applyPhysicalBC(g, cfg, dim, false, outerFace)
	}

	if cfg.ShearingBox.Enabled && dim == 0 && cfg.BC[FaceIX1] == BCPeriodic {
		applyShearingSheetBC(g, cfg, true)
		applyShearingSheetBC(g, cfg, false)
	}
}

func neighborID(g *Grid, dim int, inner bool) int {
	switch {
	case dim == 0 && inner:
		return g.Lx1
	case dim == 0 && !inner:
		return g.Rx1
	case dim == 1 && inner:
		return g.Lx2
	case dim == 1 && !inner:
		return g.Rx2
	case dim == 2 && inner:
		return g.Lx3
	default:
		return g.Rx3
	}
}

func applyPhysicalBC(g *Grid, cfg Config, dim int, inner bool, face int) {
	switch cfg.BC[face] {
	case BCReflectZeroB:
		reflectingBC(g, dim, inner, true)
	case BCReflectKeepB:
		reflectingBC(g, dim, inner, false)
	case BCOutflow:
		outflowBC(g, dim, inner)
	case BCPeriodic:
		periodicLocalBC(g, dim, inner)
	case BCUser:
		if fn := cfg.UserBoundary[face]; fn != nil {
			fn(g, face)
		}
	default:
		panic(fmt.Sprintf("ctu: unrecognized boundary condition flag %d on face %d", cfg.BC[face], face))
	}
}

// outflowBC copies the last active cell into every ghost cell in the
// given direction. The normal face-field array gets the same
// treatment, except its "already at the inner edge of the outer ghost
// region" offset-by-2 particular for the outer face (spec.md §4.4
// "Interface-field particulars").
func outflowBC(g *Grid, dim int, inner bool) {
	ng := g.NGhost
	switch dim {
	case 0:
		if inner {
			for gh := 1; gh <= ng; gh++ {
				copyPlaneX1(g, -gh, g.Is)
			}
		} else {
			for gh := 1; gh <= ng; gh++ {
				copyPlaneX1(g, g.Ie+gh, g.Ie)
			}
			copyFaceX1Outer(g, 2)
		}
	case 1:
		if inner {
			for gh := 1; gh <= ng; gh++ {
				copyPlaneX2(g, -gh, g.Js)
			}
		} else {
			for gh := 1; gh <= ng; gh++ {
				copyPlaneX2(g, g.Je+gh, g.Je)
			}
			copyFaceX2Outer(g, 2)
		}
	case 2:
		if inner {
			for gh := 1; gh <= ng; gh++ {
				copyPlaneX3(g, -gh, g.Ks)
			}
		} else {
			for gh := 1; gh <= ng; gh++ {
				copyPlaneX3(g, g.Ke+gh, g.Ke)
			}
			copyFaceX3Outer(g, 2)
		}
	}
}

// periodicLocalBC copies from the opposite end of this Grid's own
// active zone (no neighbor process on this face).
func periodicLocalBC(g *Grid, dim int, inner bool) {
	ng := g.NGhost
	switch dim {
	case 0:
		if inner {
			for gh := 1; gh <= ng; gh++ {
				copyPlaneX1(g, -gh, g.Ie-gh+1)
			}
		} else {
			for gh := 1; gh <= ng; gh++ {
				copyPlaneX1(g, g.Ie+gh, g.Is+gh-1)
			}
		}
	case 1:
		if inner {
			for gh := 1; gh <= ng; gh++ {
				copyPlaneX2(g, -gh, g.Je-gh+1)
			}
		} else {
			for gh := 1; gh <= ng; gh++ {
				copyPlaneX2(g, g.Je+gh, g.Js+gh-1)
			}
		}
	case 2:
		if inner {
			for gh := 1; gh <= ng; gh++ {
				copyPlaneX3(g, -gh, g.Ke-gh+1)
			}
		} else {
			for gh := 1; gh <= ng; gh++ {
				copyPlaneX3(g, g.Ke+gh, g.Ks+gh-1)
			}
		}
	}
}

// reflectingBC mirrors tangential fields and flips normal momentum.
// When zeroNormalB is true the normal interface field on the boundary
// face itself is set to zero first, then mirrored symmetrically
// (spec.md §4.4); otherwise the normal B is preserved, not flipped.
func reflectingBC(g *Grid, dim int, inner bool, zeroNormalB bool) {
	ng := g.NGhost
	for gh := 1; gh <= ng; gh++ {
		var src, dst int
		switch {
		case dim == 0 && inner:
			src, dst = g.Is+gh-1, -gh
		case dim == 0 && !inner:
			src, dst = g.Ie-gh+1, g.Ie+gh
		case dim == 1 && inner:
			src, dst = g.Js+gh-1, -gh
		case dim == 1 && !inner:
			src, dst = g.Je-gh+1, g.Je+gh
		case dim == 2 && inner:
			src, dst = g.Ks+gh-1, -gh
		default:
			src, dst = g.Ke-gh+1, g.Ke+gh
		}
		mirrorPlane(g, dim, src, dst)
	}
	if zeroNormalB {
		zeroNormalFace(g, dim, inner)
	}
}

// Exchanger is implemented by exchange.go's MPI-backed communicator.
// It is declared here so boundary.go can call it without an import
// cycle; package-internal wiring lives in exchange.go.
type Exchanger interface {
	SendRecv(g *Grid, dim int, toward bool, out, in []float64) error
	Rank() int
}
