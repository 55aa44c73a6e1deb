package observer

import "github.com/banshee-data/vario.report/internal/navmath"

// Indices into the vertical Kalman state.
const (
	StatePosition = iota // down position, -altitude (m)
	StateVelocity        // down velocity (m/s)
	StateBias            // accelerometer bias (m/s²)
	stateSize
)

// VerticalKalman fuses barometric altitude with the nav-frame vertical
// acceleration. The acceleration is the control input of a constant
// acceleration model; the filter estimates down position, down velocity and
// the accelerometer bias.
type VerticalKalman struct {
	ts float64

	X [stateSize]float64
	P [stateSize * stateSize]float64 // row-major

	accelNoise float64 // variance of the control input
	baroNoise  float64 // variance of the altitude measurement
	biasNoise  float64 // bias random walk per second

	observedAcc float64
	primed      bool
}

// NewVerticalKalman returns a filter for sample period ts and the given
// noise variances.
func NewVerticalKalman(ts, accelNoise, baroNoise, biasNoise float64) VerticalKalman {
	k := VerticalKalman{
		ts:         ts,
		accelNoise: accelNoise,
		baroNoise:  baroNoise,
		biasNoise:  biasNoise,
	}
	k.P = [stateSize * stateSize]float64{
		10, 0, 0,
		0, 1, 0,
		0, 0, 0.1,
	}
	return k
}

// Update runs one predict/correct cycle. altitude is the barometric altitude
// (m, positive up) and navAccDown the down component of the nav-frame
// specific force (≈ -g at rest). It returns the down velocity.
func (k *VerticalKalman) Update(altitude, navAccDown float64) float64 {
	z := -altitude
	if !k.primed {
		k.primed = true
		k.X[StatePosition] = z
	}

	u := navAccDown + navmath.Gravity
	k.predict(u)
	k.correct(z)

	k.observedAcc = u - k.X[StateBias]
	return k.X[StateVelocity]
}

// predict applies the constant acceleration model
//
//	F = [1  ts  -ts²/2]
//	    [0  1   -ts   ]
//	    [0  0    1    ]
//
// with control u entering through G = [ts²/2, ts, 0].
func (k *VerticalKalman) predict(u float64) {
	ts := k.ts
	h := ts * ts / 2

	acc := u - k.X[StateBias]
	k.X[StatePosition] += ts*k.X[StateVelocity] + h*acc
	k.X[StateVelocity] += ts * acc

	P := k.P

	// F * P
	var FP [stateSize * stateSize]float64
	for j := 0; j < stateSize; j++ {
		FP[0*3+j] = P[0*3+j] + ts*P[1*3+j] - h*P[2*3+j]
		FP[1*3+j] = P[1*3+j] - ts*P[2*3+j]
		FP[2*3+j] = P[2*3+j]
	}

	// F * P * F^T
	for i := 0; i < stateSize; i++ {
		k.P[i*3+0] = FP[i*3+0] + ts*FP[i*3+1] - h*FP[i*3+2]
		k.P[i*3+1] = FP[i*3+1] - ts*FP[i*3+2]
		k.P[i*3+2] = FP[i*3+2]
	}

	// Q = G G^T σa² + diag(0, 0, σb²·ts)
	g := [stateSize]float64{h, ts, 0}
	for i := 0; i < stateSize; i++ {
		for j := 0; j < stateSize; j++ {
			k.P[i*3+j] += g[i] * g[j] * k.accelNoise
		}
	}
	k.P[2*3+2] += k.biasNoise * ts
}

// correct applies the position measurement, H = [1 0 0].
func (k *VerticalKalman) correct(z float64) {
	y := z - k.X[StatePosition]
	s := k.P[0*3+0] + k.baroNoise
	if s < navmath.Small {
		return
	}

	var K [stateSize]float64
	for i := 0; i < stateSize; i++ {
		K[i] = k.P[i*3+0] / s
	}

	for i := 0; i < stateSize; i++ {
		k.X[i] += K[i] * y
	}

	// P' = (I - K H) P; only column 0 of K H is non-zero
	var newP [stateSize * stateSize]float64
	for i := 0; i < stateSize; i++ {
		for j := 0; j < stateSize; j++ {
			newP[i*3+j] = k.P[i*3+j] - K[i]*k.P[0*3+j]
		}
	}
	k.P = newP
}

// Velocity returns the down velocity (m/s), negative while climbing.
func (k *VerticalKalman) Velocity() float64 { return k.X[StateVelocity] }

// Altitude returns the filtered altitude (m).
func (k *VerticalKalman) Altitude() float64 { return -k.X[StatePosition] }

// Bias returns the estimated accelerometer bias (m/s²).
func (k *VerticalKalman) Bias() float64 { return k.X[StateBias] }

// ObservedAcceleration returns the bias-corrected down acceleration of the
// last cycle (m/s²).
func (k *VerticalKalman) ObservedAcceleration() float64 { return k.observedAcc }
