package ctu

// StaticPotential is the user-supplied static gravitational potential
// callback, spec.md §6: Φ(x1,x2,x3). A nil StaticPotential disables
// gravity entirely; the integrator must skip every gravity-related
// read, write and source term when it is nil (mirrors how it already
// skips energy terms when Isothermal is set).
type StaticPotential func(x1, x2, x3 float64) float64

// faceGravitySource returns the velocity increment -dΦ/dx * halfDt
// across one cell, from the potential at the cell's two bounding faces
// (phiLeft, phiRight). The predictor and transverse terms pass dt/2
// (spec.md §4.2 step 1, "gravitational half-step"); applyGravitySource
// passes the full dt.
func faceGravitySource(phiLeft, phiRight, dx, halfDt float64) float64 {
	return -(phiRight - phiLeft) / dx * halfDt
}

// gravityEnergySource returns the flux-weighted potential-difference
// energy source spec.md §4.2 notes: "F_d^mass * (Φ_face - Φ_center)
// averaged across the two faces of the cell", for second-order
// conservation of total energy under gravity.
func gravityEnergySource(massFluxLeft, massFluxRight, phiCenter, phiFaceLeft, phiFaceRight, dt, dx float64) float64 {
	left := massFluxLeft * (phiFaceLeft - phiCenter)
	right := massFluxRight * (phiCenter - phiFaceRight)
	return 0.5 * (left + right) * dt / dx
}
