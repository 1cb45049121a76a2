package linalg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinmod2SameSign(t *testing.T) {
	require.Equal(t, 1.0, Minmod2(1, 2))
	require.Equal(t, -1.0, Minmod2(-1, -2))
}

func TestMinmod2OppositeSignIsZero(t *testing.T) {
	require.Equal(t, 0.0, Minmod2(1, -2))
	require.Equal(t, 0.0, Minmod2(0, 5))
}

func TestMinmod3(t *testing.T) {
	require.Equal(t, 1.0, Minmod3(1, 2, 3))
	require.Equal(t, -0.5, Minmod3(-1, -2, -0.5))
	require.Equal(t, 0.0, Minmod3(1, -2, 3))
}

func TestMinmodMHDOppositeSignConvention(t *testing.T) {
	// a, b = -dbNormal, dbTangential; a*b < 0 is the branch that fires.
	require.Equal(t, 2.0, MinmodMHD(1, 2))
	require.Equal(t, 0.0, MinmodMHD(-1, 2))
}
