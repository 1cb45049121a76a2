// Package config reads the TOML run configuration for the ctu command
// line, the same shape InMAP's inmap/cmd.ConfigData/ReadConfigFile
// pair gives its own CLI: a single struct decoded wholesale with
// BurntSushi/toml, then lightly validated and defaulted afterward.
package config

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/BurntSushi/toml"
)

// GridConfig describes the logically Cartesian grid a run starts
// from: active-zone extents, ghost width, and cell spacing. Nx3 <= 1
// selects a 2D run, mirroring how Grid.Is3D treats Nx3.
type GridConfig struct {
	Nx1, Nx2, Nx3       int
	NGhost              int
	Dx1, Dx2, Dx3       float64
	X1Min, X2Min, X3Min float64
}

// PhysicsConfig selects the equation of state and optional physics
// modules a run enables.
type PhysicsConfig struct {
	MHD         bool
	Isothermal  bool
	Gamma       float64
	SoundSpeed  float64
	HCorrection bool
	NScalars    int

	Gravity     bool
	GravityGM   float64 // point-mass GM at the coordinate origin, used if Gravity is true

	ShearingBox bool
	Omega       float64
}

// BoundaryConfig names the six per-face boundary policies by the
// strings spec.md §4.4 uses: "outflow", "periodic", "reflecting",
// "reflecting-zero-b", plus "shearing-sheet" (set up like "periodic" by
// the CLI); an empty string is also accepted. Order is ix1, ox1, ix2,
// ox2, ix3, ox3.
type BoundaryConfig struct {
	Faces [6]string
}

// RunConfig is the top-level decode target for a ctu TOML file,
// InMAP's ConfigData role for this repo.
type RunConfig struct {
	Grid     GridConfig
	Physics  PhysicsConfig
	Boundary BoundaryConfig

	CFLNumber float64

	NSteps      int
	TimeLimit   float64 // stop once T reaches this; 0 means no limit
	LogEvery    int
	DivergenceEvery int
	Verbose     bool

	OutputFile string
}

// Load reads and decodes the TOML file at filename, mirroring
// ReadConfigFile's open-then-decode shape, and fills in the defaults
// a bare-bones config file is allowed to omit.
func Load(filename string) (*RunConfig, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("config: cannot open %s: %v", filename, err)
	}
	defer f.Close()

	data, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %s: %v", filename, err)
	}

	cfg := new(RunConfig)
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("config: cannot parse %s: %v", filename, err)
	}
	cfg.setDefaults()
	return cfg, cfg.Validate()
}

func (c *RunConfig) setDefaults() {
	if c.Grid.NGhost == 0 {
		c.Grid.NGhost = 3
	}
	if c.CFLNumber == 0 {
		c.CFLNumber = 0.4
	}
	if c.LogEvery == 0 {
		c.LogEvery = 1
	}
	if c.Physics.Gamma == 0 {
		c.Physics.Gamma = 5.0 / 3.0
	}
}

// Validate reports the configuration errors a CLI should fail fast on
// before ever allocating a Grid.
func (c *RunConfig) Validate() error {
	if c.Grid.Nx1 <= 0 || c.Grid.Nx2 <= 0 {
		return fmt.Errorf("config: grid.nx1 and grid.nx2 must be positive")
	}
	if c.Grid.Dx1 <= 0 || c.Grid.Dx2 <= 0 {
		return fmt.Errorf("config: grid.dx1 and grid.dx2 must be positive")
	}
	if c.Grid.Nx3 > 1 && c.Grid.Dx3 <= 0 {
		return fmt.Errorf("config: grid.dx3 must be positive for a 3D run")
	}
	if c.CFLNumber <= 0 || c.CFLNumber > 1 {
		return fmt.Errorf("config: cflnumber must be in (0,1]")
	}
	for i, name := range c.Boundary.Faces {
		switch name {
		case "", "outflow", "periodic", "reflecting", "reflecting-zero-b", "shearing-sheet":
		default:
			return fmt.Errorf("config: boundary.faces[%d]: unknown policy %q", i, name)
		}
	}
	return nil
}
