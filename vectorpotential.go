package ctu

// InitFaceBFromVectorPotential seeds the x1/x2 face-centered field of
// a 2D grid from a z-directed vector potential Az(x1,x2), so the
// resulting face field is divergence-free to round-off by
// construction: B1i = dAz/dx2, B2i = -dAz/dx1, taken as a discrete
// curl around each face's edge rather than a pointwise derivative
// (spec.md §1's "vector-potential quadrature" utility, the standard
// field-loop-advection initial condition).
func InitFaceBFromVectorPotential(g *Grid, Az func(x1, x2 float64) float64) {
	if g.Is3D() {
		panic("ctu: InitFaceBFromVectorPotential only supports 2D grids")
	}
	ng := g.NGhost
	for j := g.Js - ng; j <= g.Je+ng; j++ {
		for i := g.Is - ng; i <= g.Ie+ng+1; i++ {
			x1, _, _ := g.FaceX1Pos(i, j, 0)
			azLo := Az(x1, g.X2Min+float64(j)*g.Dx2)
			azHi := Az(x1, g.X2Min+float64(j+1)*g.Dx2)
			g.B1i.Set(i, j, 0, (azHi-azLo)/g.Dx2)
		}
	}
	for j := g.Js - ng; j <= g.Je+ng+1; j++ {
		for i := g.Is - ng; i <= g.Ie+ng; i++ {
			_, x2, _ := g.FaceX2Pos(i, j, 0)
			azLo := Az(g.X1Min+float64(i)*g.Dx1, x2)
			azHi := Az(g.X1Min+float64(i+1)*g.Dx1, x2)
			g.B2i.Set(i, j, 0, -(azHi-azLo)/g.Dx1)
		}
	}
	SyncCellCenteredB(g)
}
