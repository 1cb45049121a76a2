// Package ctu implements the directionally unsplit Corner Transport
// Upwind (CTU) integrator with Constrained Transport (CT) for a
// finite-volume fluid/MHD solver on a logically Cartesian grid, along
// with the ghost-zone boundary-exchange subsystem that makes it usable
// in a domain-decomposed parallel run.
//
// The package mirrors the shape of a flat scientific-computing Go repo:
// one importable package holding the grid, state, flux kernel, CT
// integrator and boundary exchange, with CLI and config glue living
// under cmd/ and internal/config.
package ctu

// Features selects the compile-time-in-spirit feature set of a run.
// Rather than conditional compilation, absent components are modeled
// by nil fields on State/Grid so they cost no memory, the same way the
// struct shape of a Cell is tailored to what's actually tracked.
type Features struct {
	MHD         bool
	Isothermal  bool
	HCorrection bool
	ShearingBox bool
	NScalars    int
}

// EOS fixed parameters. Only Gamma is used when Isothermal is false;
// IsoSoundSpeed is used when Isothermal is true.
type EOS struct {
	Gamma         float64
	IsoSoundSpeed float64
}

// Config bundles everything the integrator and boundary exchange need
// that isn't part of the per-cell state: feature flags, equation of
// state, the six boundary policies, and the optional gravity/shearing
// callbacks.
type Config struct {
	Features
	EOS
	CFLNumber float64
	NGhost    int

	BC [6]BCFlag // order: ix1, ox1, ix2, ox2, ix3, ox3

	Gravity     StaticPotential // nil if no gravity
	ShearingBox ShearingBoxConfig

	Reconstruct Reconstructor
	Solver      RiemannSolver

	UserBoundary [6]BoundaryFunc // only consulted where BC[face] == BCUser
}
