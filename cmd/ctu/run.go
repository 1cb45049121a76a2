package main

import (
	"fmt"
	"math"

	ctu "github.com/astrogrid/ctumhd"
	"github.com/astrogrid/ctumhd/internal/config"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the integrator to completion.",
	Long:  "run advances a grid built from the configuration file for the configured number of steps or until the time limit is reached.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		return Run(loadedConfig)
	},
}

// buildBC translates the TOML boundary names into BCFlag values, face
// by face, in the ix1/ox1/ix2/ox2/ix3/ox3 order Config.BC expects.
func buildBC(rc *config.RunConfig) [6]ctu.BCFlag {
	var bc [6]ctu.BCFlag
	for i, name := range rc.Boundary.Faces {
		switch name {
		case "", "outflow":
			bc[i] = ctu.BCOutflow
		case "periodic", "shearing-sheet":
			bc[i] = ctu.BCPeriodic
		case "reflecting":
			bc[i] = ctu.BCReflectKeepB
		case "reflecting-zero-b":
			bc[i] = ctu.BCReflectZeroB
		}
	}
	return bc
}

// buildConfig translates a decoded RunConfig into the package's own
// Config, wiring the default reconstructor/solver pair the same way
// the stock CLI always does (spec.md §6 allows swapping them, but only
// a library caller, not this command line, has a reason to).
func buildConfig(rc *config.RunConfig) ctu.Config {
	var grav ctu.StaticPotential
	if rc.Physics.Gravity {
		gm := rc.Physics.GravityGM
		grav = func(x1, x2, x3 float64) float64 {
			r := math.Sqrt(x1*x1 + x2*x2 + x3*x3)
			if r == 0 {
				return 0
			}
			return -gm / r
		}
	}
	return ctu.Config{
		Features: ctu.Features{
			MHD:         rc.Physics.MHD,
			Isothermal:  rc.Physics.Isothermal,
			HCorrection: rc.Physics.HCorrection,
			ShearingBox: rc.Physics.ShearingBox,
			NScalars:    rc.Physics.NScalars,
		},
		EOS: ctu.EOS{
			Gamma:         rc.Physics.Gamma,
			IsoSoundSpeed: rc.Physics.SoundSpeed,
		},
		CFLNumber:   rc.CFLNumber,
		NGhost:      rc.Grid.NGhost,
		BC:          buildBC(rc),
		Gravity:     grav,
		ShearingBox: ctu.ShearingBoxConfig{Enabled: rc.Physics.ShearingBox, Omega: rc.Physics.Omega},
		Reconstruct: ctu.NewDefaultReconstructor(),
		Solver:      ctu.NewDefaultRiemannSolver(),
	}
}

// buildGrid allocates the Grid from rc and fills it with a uniform
// unit-density, unit-pressure, at-rest state; a real run overwrites
// this with a problem-specific initial condition before calling Run,
// the same separation InMAP draws between reading a config file and
// the science package that actually populates a Cell.
func buildGrid(rc *config.RunConfig, feat ctu.Features) *ctu.Grid {
	nx3 := rc.Grid.Nx3
	if nx3 < 1 {
		nx3 = 1
	}
	g := ctu.NewGrid(rc.Grid.Nx1, rc.Grid.Nx2, nx3, rc.Grid.NGhost,
		rc.Grid.Dx1, rc.Grid.Dx2, rc.Grid.Dx3, feat)
	g.X1Min, g.X2Min, g.X3Min = rc.Grid.X1Min, rc.Grid.X2Min, rc.Grid.X3Min
	g.Lx1, g.Rx1, g.Lx2, g.Rx2, g.Lx3, g.Rx3 = -1, -1, -1, -1, -1, -1

	p := ctu.Prim{D: 1, P: 1}
	if feat.NScalars > 0 {
		p.S = make([]float64, feat.NScalars)
	}
	c := ctu.ToCons(p, ctu.EOS{Gamma: rc.Physics.Gamma, IsoSoundSpeed: rc.Physics.SoundSpeed}, rc.Physics.Isothermal)
	kg := g.NGhost
	if !g.Is3D() {
		kg = 0
	}
	for k := g.Ks - kg; k <= g.Ke+kg; k++ {
		for j := g.Js - g.NGhost; j <= g.Je+g.NGhost; j++ {
			for i := g.Is - g.NGhost; i <= g.Ie+g.NGhost; i++ {
				g.U.Set(i, j, k, c)
			}
		}
	}
	return g
}

// Run is the library entry point the runCmd and any future automated
// test harness share, mirroring inmap/cmd.Run's separation from its
// cobra RunE wrapper.
func Run(rc *config.RunConfig) error {
	feat := ctu.Features{
		MHD: rc.Physics.MHD, Isothermal: rc.Physics.Isothermal,
		HCorrection: rc.Physics.HCorrection, ShearingBox: rc.Physics.ShearingBox,
		NScalars: rc.Physics.NScalars,
	}
	g := buildGrid(rc, feat)
	cfg := buildConfig(rc)
	ctu.ValidateConfig(cfg)
	w := ctu.NewWorkspace(g, feat)

	log := ctu.NewLogger(rc.Verbose)
	observe := ctu.LogStep(log, rc.DivergenceEvery)

	for step := 0; rc.NSteps <= 0 || step < rc.NSteps; step++ {
		if rc.TimeLimit > 0 && g.T >= rc.TimeLimit {
			break
		}
		ctu.FillGhosts(g, cfg, nil)
		g.Dt = ctu.AllreduceMinDt(nil, g.CFLTimeStep(cfg))
		if rc.TimeLimit > 0 && g.T+g.Dt > rc.TimeLimit {
			g.Dt = rc.TimeLimit - g.T
		}

		if err := AdvanceWithRetry(g, w, cfg, 4); err != nil {
			return err
		}

		if rc.LogEvery > 0 && step%rc.LogEvery == 0 {
			if err := observe(g, step, g.T, g.Dt); err != nil {
				return err
			}
		}
	}
	fmt.Printf("ctu: completed at t=%g\n", g.T)
	return nil
}

// AdvanceWithRetry runs one Step, halving dt and retrying up to
// maxRetries times if the step reports a non-physical state, the
// recovery spec.md §7 allows for a transient BadState (as opposed to
// an allocation or exchange failure, which is always fatal). It lives
// outside the ctu package because retry policy is a caller decision,
// not part of the integrator itself.
func AdvanceWithRetry(g *ctu.Grid, w *ctu.Workspace, cfg ctu.Config, maxRetries int) error {
	dt := g.Dt
	for attempt := 0; ; attempt++ {
		g.Dt = dt
		outcome := ctu.Step(g, w, cfg)
		if outcome.Ok() {
			return nil
		}
		if attempt >= maxRetries {
			return fmt.Errorf("ctu: step failed after %d retries: %v", attempt, outcome.Bad)
		}
		dt *= 0.5
	}
}
