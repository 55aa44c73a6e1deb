package navmath

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Physical constants.
const (
	// Gravity is the standard gravitational acceleration (m/s²).
	Gravity = 9.81
	// Small is the magnitude below which a vector is treated as zero.
	Small = 1e-9
)

// NotAvailable marks a measurement that has not been received yet, e.g. a
// differential GNSS heading before the receivers have a fix. Use
// IsAvailable to test for it; NaN never compares equal to itself.
var NotAvailable = math.NaN()

// IsAvailable reports whether v is a usable measurement (finite, not the
// NotAvailable sentinel).
func IsAvailable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Normalize returns v scaled to unit length. A zero vector is returned
// unchanged so that degenerate inputs degrade the output instead of
// producing NaNs.
func Normalize(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n < Small {
		return v
	}
	return r3.Scale(1/n, v)
}

// Horizontal returns v with its down component removed.
func Horizontal(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y}
}

// Negate returns -v.
func Negate(v r3.Vec) r3.Vec {
	return r3.Vec{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// IsFinite reports whether every component of v is finite.
func IsFinite(v r3.Vec) bool {
	return IsAvailable(v.X) && IsAvailable(v.Y) && IsAvailable(v.Z)
}
