package navmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Quaternion is an attitude quaternion rotating body-frame vectors into
// the nav frame: X_nav = q · X_body · conj(q).
// Real is the scalar part; Imag, Jmag and Kmag pair with the front/north,
// right/east and bottom/down axes.
type Quaternion quat.Number

// IdentityQuaternion is the zero rotation (body frame aligned with nav frame).
var IdentityQuaternion = Quaternion{Real: 1}

// Norm returns the quaternion magnitude.
func (q Quaternion) Norm() float64 {
	return quat.Abs(quat.Number(q))
}

// Normalized returns q scaled to unit magnitude. A degenerate quaternion
// falls back to the identity.
func (q Quaternion) Normalized() Quaternion {
	n := q.Norm()
	if n < Small {
		return IdentityQuaternion
	}
	return Quaternion(quat.Scale(1/n, quat.Number(q)))
}

// RotateSmallAngle applies a first-order rotation by the half angles
// (hx, hy, hz), i.e. q + q⊗(0, hx, hy, hz). Callers pass rate·Ts/2.
// The result is not normalised.
func (q Quaternion) RotateSmallAngle(hx, hy, hz float64) Quaternion {
	dq := quat.Mul(quat.Number(q), quat.Number{Imag: hx, Jmag: hy, Kmag: hz})
	return Quaternion(quat.Add(quat.Number(q), dq))
}

// RotationMatrix returns the body→nav rotation matrix for q.
func (q Quaternion) RotationMatrix() Mat3 {
	e0, e1, e2, e3 := q.Real, q.Imag, q.Jmag, q.Kmag
	return Mat3{
		{e0*e0 + e1*e1 - e2*e2 - e3*e3, 2 * (e1*e2 - e0*e3), 2 * (e1*e3 + e0*e2)},
		{2 * (e1*e2 + e0*e3), e0*e0 - e1*e1 + e2*e2 - e3*e3, 2 * (e2*e3 - e0*e1)},
		{2 * (e1*e3 - e0*e2), 2 * (e2*e3 + e0*e1), e0*e0 - e1*e1 - e2*e2 + e3*e3},
	}
}

// QuaternionFromRotationMatrix converts a body→nav rotation matrix into a
// unit quaternion with non-negative scalar part.
func QuaternionFromRotationMatrix(m Mat3) Quaternion {
	var q Quaternion
	tr := m[0][0] + m[1][1] + m[2][2]
	switch {
	case tr > 0:
		s := 2 * math.Sqrt(tr+1)
		q = Quaternion{
			Real: s / 4,
			Imag: (m[2][1] - m[1][2]) / s,
			Jmag: (m[0][2] - m[2][0]) / s,
			Kmag: (m[1][0] - m[0][1]) / s,
		}
	case m[0][0] > m[1][1] && m[0][0] > m[2][2]:
		s := 2 * math.Sqrt(1+m[0][0]-m[1][1]-m[2][2])
		q = Quaternion{
			Real: (m[2][1] - m[1][2]) / s,
			Imag: s / 4,
			Jmag: (m[0][1] + m[1][0]) / s,
			Kmag: (m[0][2] + m[2][0]) / s,
		}
	case m[1][1] > m[2][2]:
		s := 2 * math.Sqrt(1+m[1][1]-m[0][0]-m[2][2])
		q = Quaternion{
			Real: (m[0][2] - m[2][0]) / s,
			Imag: (m[0][1] + m[1][0]) / s,
			Jmag: s / 4,
			Kmag: (m[1][2] + m[2][1]) / s,
		}
	default:
		s := 2 * math.Sqrt(1+m[2][2]-m[0][0]-m[1][1])
		q = Quaternion{
			Real: (m[1][0] - m[0][1]) / s,
			Imag: (m[0][2] + m[2][0]) / s,
			Jmag: (m[1][2] + m[2][1]) / s,
			Kmag: s / 4,
		}
	}
	if q.Real < 0 {
		q = Quaternion(quat.Scale(-1, quat.Number(q)))
	}
	return q.Normalized()
}

// QuaternionFromEuler builds the quaternion for ZYX (yaw, pitch, roll)
// Euler angles.
func QuaternionFromEuler(e Euler) Quaternion {
	cr, sr := math.Cos(e.Roll/2), math.Sin(e.Roll/2)
	cp, sp := math.Cos(e.Pitch/2), math.Sin(e.Pitch/2)
	cy, sy := math.Cos(e.Yaw/2), math.Sin(e.Yaw/2)

	return Quaternion{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}.Normalized()
}

// Euler returns the ZYX Euler angles of q. q must be a unit quaternion.
// Roll and yaw are in (-π, π], pitch in [-π/2, π/2].
func (q Quaternion) Euler() Euler {
	e0, e1, e2, e3 := q.Real, q.Imag, q.Jmag, q.Kmag

	sinPitch := 2 * (e0*e2 - e3*e1)
	if sinPitch > 1 {
		sinPitch = 1
	} else if sinPitch < -1 {
		sinPitch = -1
	}

	return Euler{
		Roll:  math.Atan2(2*(e0*e1+e2*e3), 1-2*(e1*e1+e2*e2)),
		Pitch: math.Asin(sinPitch),
		Yaw:   math.Atan2(2*(e0*e3+e1*e2), 1-2*(e2*e2+e3*e3)),
	}
}
