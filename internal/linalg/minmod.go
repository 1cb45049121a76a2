// Package linalg provides the small numerical-linear-algebra helpers
// the reconstruction and MHD source-term limiters need: minmod-family
// slope limiters and thin wrappers around gonum/floats reductions.
package linalg

import "github.com/gonum/floats"

// Minmod2 is the two-argument minmod limiter: returns the smaller-
// magnitude of a, b if they share a sign, zero otherwise. MinmodMHD
// below uses the opposite convention (same-sign inputs yield zero) for
// the transverse MHD source-term limiter.
func Minmod2(a, b float64) float64 {
	if a*b <= 0 {
		return 0
	}
	if a < 0 {
		return floats.Max([]float64{a, b})
	}
	return floats.Min([]float64{a, b})
}

// MinmodMHD implements the spec.md §4.2 transverse-field source-term
// limiter: mdbT = minmod(-db_normal, db_tangential), with the stated
// convention that same-sign inputs yield zero (opposite to the
// classical TVD minmod, which is the physically-motivated antisymmetric
// form Gardiner & Stone (2007) use for the transverse CT source term).
func MinmodMHD(dbNormal, dbTangential float64) float64 {
	a, b := -dbNormal, dbTangential
	if a*b >= 0 {
		return 0
	}
	if a < 0 {
		return floats.Max([]float64{a, b})
	}
	return floats.Min([]float64{a, b})
}

// Minmod3 is the standard three-argument minmod used by PLM slope
// limiting: zero unless all three share a sign, otherwise the smallest
// magnitude.
func Minmod3(a, b, c float64) float64 {
	if a > 0 && b > 0 && c > 0 {
		return floats.Min([]float64{a, b, c})
	}
	if a < 0 && b < 0 && c < 0 {
		return floats.Max([]float64{a, b, c})
	}
	return 0
}
