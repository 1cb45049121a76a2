package ctu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitFaceBFromVectorPotentialIsDivergenceFree(t *testing.T) {
	feat := Features{MHD: true}
	g := NewGrid(16, 16, 1, 2, 0.1, 0.1, 1, feat)
	g.X1Min, g.X2Min = -0.8, -0.8

	Az := func(x1, x2 float64) float64 {
		r2 := x1*x1 + x2*x2
		return math.Exp(-r2 / 0.1)
	}
	InitFaceBFromVectorPotential(g, Az)
	require.InDelta(t, 0, g.DivergenceB(), 1e-9)
}
