package ctu

// copyPlaneX1 copies every state and face field at active/ghost index
// srcI into index dstI, for all (j,k) in the currently-active x2/x3
// range. x1 is always filled first (spec.md §4.4), so this range is
// deliberately narrow; x2 and x3's equivalents widen it to pick up the
// corners x1 already filled.
func copyPlaneX1(g *Grid, dstI, srcI int) {
	for k := g.Ks; k <= g.Ke; k++ {
		for j := g.Js; j <= g.Je; j++ {
			copyCell(g, dstI, j, k, srcI, j, k)
		}
	}
	copyFace1(g, dstI, srcI, g.Js, g.Je, g.Ks, g.Ke)
}

func copyPlaneX2(g *Grid, dstJ, srcJ int) {
	lo1, hi1 := g.Is-g.NGhost, g.Ie+g.NGhost
	for k := g.Ks; k <= g.Ke; k++ {
		for i := lo1; i <= hi1; i++ {
			copyCell(g, i, dstJ, k, i, srcJ, k)
		}
	}
	copyFace2(g, dstJ, srcJ, lo1, hi1, g.Ks, g.Ke)
}

func copyPlaneX3(g *Grid, dstK, srcK int) {
	lo1, hi1 := g.Is-g.NGhost, g.Ie+g.NGhost
	lo2, hi2 := g.Js-g.NGhost, g.Je+g.NGhost
	for j := lo2; j <= hi2; j++ {
		for i := lo1; i <= hi1; i++ {
			copyCell(g, i, j, dstK, i, j, srcK)
		}
	}
	copyFace3(g, dstK, srcK, lo1, hi1, lo2, hi2)
}

func copyCell(g *Grid, di, dj, dk, si, sj, sk int) {
	s := g.U
	s.D.Set(di, dj, dk, s.D.At(si, sj, sk))
	s.M1.Set(di, dj, dk, s.M1.At(si, sj, sk))
	s.M2.Set(di, dj, dk, s.M2.At(si, sj, sk))
	s.M3.Set(di, dj, dk, s.M3.At(si, sj, sk))
	if s.E != nil {
		s.E.Set(di, dj, dk, s.E.At(si, sj, sk))
	}
	if s.B1c != nil {
		s.B1c.Set(di, dj, dk, s.B1c.At(si, sj, sk))
		s.B2c.Set(di, dj, dk, s.B2c.At(si, sj, sk))
		s.B3c.Set(di, dj, dk, s.B3c.At(si, sj, sk))
	}
	for n := range s.S {
		s.S[n].Set(di, dj, dk, s.S[n].At(si, sj, sk))
	}
}

// copyFace1 copies the x1-normal face field over the given (j,k)
// range at a single offset pair (dstI, srcI); used alongside
// copyPlaneX1's cell copy for the ghost layer that isn't the boundary
// face itself. The boundary interface (i == Is or i == Ie+1) is left
// to outflowBC/reflectingBC's own particular handling.
func copyFace1(g *Grid, dstI, srcI, jlo, jhi, klo, khi int) {
	if dstI == g.Ie+1 {
		return
	}
	for k := klo; k <= khi; k++ {
		for j := jlo; j <= jhi; j++ {
			g.B1i.Set(dstI, j, k, g.B1i.At(srcI, j, k))
		}
	}
}

func copyFace2(g *Grid, dstJ, srcJ, ilo, ihi, klo, khi int) {
	if dstJ == g.Je+1 {
		return
	}
	for k := klo; k <= khi; k++ {
		for i := ilo; i <= ihi; i++ {
			g.B2i.Set(i, dstJ, k, g.B2i.At(i, srcJ, k))
		}
	}
}

func copyFace3(g *Grid, dstK, srcK, ilo, ihi, jlo, jhi int) {
	if !g.Is3D() || dstK == g.Ke+1 {
		return
	}
	for j := jlo; j <= jhi; j++ {
		for i := ilo; i <= ihi; i++ {
			g.B3i.Set(i, j, dstK, g.B3i.At(i, j, srcK))
		}
	}
}

// copyFaceX1Outer copies the normal interface field from offset
// "back" cells beyond the last active face, spec.md §4.4's particular
// that the outflow outer-x1 boundary leaves B1i[ie+2..] equal to
// B1i[ie+1] rather than re-deriving it from a one-sided difference.
func copyFaceX1Outer(g *Grid, back int) {
	for k := g.Ks; k <= g.Ke; k++ {
		for j := g.Js; j <= g.Je; j++ {
			v := g.B1i.At(g.Ie+1, j, k)
			for gh := back; gh <= g.NGhost+1; gh++ {
				g.B1i.Set(g.Ie+gh, j, k, v)
			}
		}
	}
}

func copyFaceX2Outer(g *Grid, back int) {
	for k := g.Ks; k <= g.Ke; k++ {
		for i := g.Is; i <= g.Ie; i++ {
			v := g.B2i.At(i, g.Je+1, k)
			for gh := back; gh <= g.NGhost+1; gh++ {
				g.B2i.Set(i, g.Je+gh, k, v)
			}
		}
	}
}

func copyFaceX3Outer(g *Grid, back int) {
	if !g.Is3D() {
		return
	}
	for j := g.Js; j <= g.Je; j++ {
		for i := g.Is; i <= g.Ie; i++ {
			v := g.B3i.At(i, j, g.Ke+1)
			for gh := back; gh <= g.NGhost+1; gh++ {
				g.B3i.Set(i, j, g.Ke+gh, v)
			}
		}
	}
}

// mirrorPlane copies (src -> dst) across a direction's midline, flipping
// the sign of the normal momentum and normal cell-centered field
// component; tangential quantities are copied unchanged (spec.md
// §4.4, "reflecting").
func mirrorPlane(g *Grid, dim int, src, dst int) {
	switch dim {
	case 0:
		for k := g.Ks; k <= g.Ke; k++ {
			for j := g.Js; j <= g.Je; j++ {
				c := g.U.At(src, j, k)
				c.M1 = -c.M1
				c.B1c = -c.B1c
				g.U.Set(dst, j, k, c)
			}
		}
	case 1:
		for k := g.Ks; k <= g.Ke; k++ {
			for i := g.Is - g.NGhost; i <= g.Ie+g.NGhost; i++ {
				c := g.U.At(i, src, k)
				c.M2 = -c.M2
				c.B2c = -c.B2c
				g.U.Set(i, dst, k, c)
			}
		}
	case 2:
		for j := g.Js - g.NGhost; j <= g.Je+g.NGhost; j++ {
			for i := g.Is - g.NGhost; i <= g.Ie+g.NGhost; i++ {
				c := g.U.At(i, j, src)
				c.M3 = -c.M3
				c.B3c = -c.B3c
				g.U.Set(i, j, dst, c)
			}
		}
	}
}

// zeroNormalFace mirrors the normal interface field antisymmetrically
// about the boundary face, forcing the face value itself to zero
// (BCReflectZeroB, spec.md §4.4).
func zeroNormalFace(g *Grid, dim int, inner bool) {
	ng := g.NGhost
	switch dim {
	case 0:
		face := g.Is
		if !inner {
			face = g.Ie + 1
		}
		for k := g.Ks; k <= g.Ke; k++ {
			for j := g.Js; j <= g.Je; j++ {
				g.B1i.Set(face, j, k, 0)
				for gh := 1; gh <= ng; gh++ {
					var mirror, ghost int
					if inner {
						mirror, ghost = face+gh, face-gh
					} else {
						mirror, ghost = face-gh, face+gh
					}
					g.B1i.Set(ghost, j, k, -g.B1i.At(mirror, j, k))
				}
			}
		}
	case 1:
		face := g.Js
		if !inner {
			face = g.Je + 1
		}
		for k := g.Ks; k <= g.Ke; k++ {
			for i := g.Is; i <= g.Ie; i++ {
				g.B2i.Set(i, face, k, 0)
				for gh := 1; gh <= ng; gh++ {
					var mirror, ghost int
					if inner {
						mirror, ghost = face+gh, face-gh
					} else {
						mirror, ghost = face-gh, face+gh
					}
					g.B2i.Set(i, ghost, k, -g.B2i.At(i, mirror, k))
				}
			}
		}
	case 2:
		if !g.Is3D() {
			return
		}
		face := g.Ks
		if !inner {
			face = g.Ke + 1
		}
		for j := g.Js; j <= g.Je; j++ {
			for i := g.Is; i <= g.Ie; i++ {
				g.B3i.Set(i, j, face, 0)
				for gh := 1; gh <= ng; gh++ {
					var mirror, ghost int
					if inner {
						mirror, ghost = face+gh, face-gh
					} else {
						mirror, ghost = face-gh, face+gh
					}
					g.B3i.Set(i, j, ghost, -g.B3i.At(i, j, mirror))
				}
			}
		}
	}
}

// applyShearingSheetBC applies the Galilean y-remap on top of the
// plain periodic x1 copy already performed by periodicLocalBC, per
// spec.md §4.4's ShearingSheet_ix1/ShearingSheet_ox1. The remap
// resamples the tangential (x2) profile by the current shear
// displacement using linear interpolation between the two bracketing
// j cells, wrapped periodically in x2.
func applyShearingSheetBC(g *Grid, cfg Config, inner bool) {
	ly := float64(g.Nx2) * g.Dx2
	deltaY := ShearDisplacement(cfg.ShearingBox, float64(g.Nx1)*g.Dx1, ly, g.T)
	if deltaY == 0 {
		return
	}
	shiftCells := deltaY / g.Dx2
	jshift := int(shiftCells)
	if float64(jshift) > shiftCells {
		jshift--
	}
	frac := shiftCells - float64(jshift)

	ng := g.NGhost
	var ilo, ihi int
	if inner {
		ilo, ihi = -ng, -1
	} else {
		ilo, ihi = g.Ie+1, g.Ie+ng
	}
	for k := g.Ks; k <= g.Ke; k++ {
		for i := ilo; i <= ihi; i++ {
			col := make([]Cons, g.Nx2)
			for j := g.Js; j <= g.Je; j++ {
				col[j-g.Js] = g.U.At(i, j, k)
			}
			for j := g.Js; j <= g.Je; j++ {
				c0 := col[wrapJ(g, j+jshift)-g.Js]
				c1 := col[wrapJ(g, j+jshift+1)-g.Js]
				g.U.Set(i, j, k, blendCons(c0, c1, frac))
			}
		}
	}
}

func wrapJ(g *Grid, j int) int {
	n := g.Nx2
	for j < g.Js {
		j += n
	}
	for j > g.Je {
		j -= n
	}
	return j
}

func blendCons(a, b Cons, frac float64) Cons {
	c := Cons{
		D:  a.D + frac*(b.D-a.D),
		M1: a.M1 + frac*(b.M1-a.M1),
		M2: a.M2 + frac*(b.M2-a.M2),
		M3: a.M3 + frac*(b.M3-a.M3),
		E:  a.E + frac*(b.E-a.E),
		B1c: a.B1c + frac*(b.B1c-a.B1c),
		B2c: a.B2c + frac*(b.B2c-a.B2c),
		B3c: a.B3c + frac*(b.B3c-a.B3c),
	}
	if len(a.S) > 0 {
		c.S = make([]float64, len(a.S))
		for n := range a.S {
			c.S[n] = a.S[n] + frac*(b.S[n]-a.S[n])
		}
	}
	return c
}
