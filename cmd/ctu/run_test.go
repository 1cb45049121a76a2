package main

import (
	"testing"

	"github.com/astrogrid/ctumhd/internal/config"
	"github.com/stretchr/testify/require"
)

func smallConfig() *config.RunConfig {
	rc := &config.RunConfig{
		Grid: config.GridConfig{Nx1: 8, Nx2: 8, Nx3: 0, NGhost: 3, Dx1: 1, Dx2: 1},
		Physics: config.PhysicsConfig{
			Gamma: 5.0 / 3.0,
		},
		Boundary:  config.BoundaryConfig{Faces: [6]string{"periodic", "periodic", "periodic", "periodic", "periodic", "periodic"}},
		CFLNumber: 0.4,
		NSteps:    2,
		LogEvery:  1,
	}
	return rc
}

func TestRunCompletesSmallGrid(t *testing.T) {
	rc := smallConfig()
	require.NoError(t, Run(rc))
}

func TestBuildGridUniformState(t *testing.T) {
	rc := smallConfig()
	g := buildGrid(rc, buildConfig(rc).Features)
	require.InDelta(t, 1.0, g.U.D.At(g.Is, g.Js, g.Ks), 1e-12)
}
