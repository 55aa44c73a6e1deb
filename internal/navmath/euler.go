package navmath

import "math"

// Deg converts degrees to radians.
const Deg = math.Pi / 180

// Euler holds ZYX Euler angles in radians.
type Euler struct {
	Roll  float64
	Pitch float64
	Yaw   float64
}

// Heading returns the yaw angle mapped to [0, 2π).
func (e Euler) Heading() float64 {
	return WrapTwoPi(e.Yaw)
}

// Degrees returns roll, pitch and heading in degrees.
func (e Euler) Degrees() (roll, pitch, heading float64) {
	return e.Roll / Deg, e.Pitch / Deg, e.Heading() / Deg
}

// WrapPi maps an angle into (-π, π].
func WrapPi(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// WrapTwoPi maps an angle into [0, 2π).
func WrapTwoPi(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
