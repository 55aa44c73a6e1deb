package ahrs

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/vario.report/internal/monitoring"
	"github.com/banshee-data/vario.report/internal/navmath"
)

// Fuse runs one cycle using the magnetometer for heading. gnssAcc is the
// nav-frame acceleration derived from the GNSS velocity.
func (e *Estimator) Fuse(gyro, acc, rawMag, gnssAcc r3.Vec) {
	mag := e.calibrated(rawMag)
	a := e.body2nav.MulVec(acc)
	ind := horizontalInduction(e.body2nav.MulVec(mag))

	mode := e.classifier.Classify(e.turnRate)
	e.correct(mode, a, gnssAcc, ind.Y*e.cfg.MHGain)

	e.update(acc, r3.Add(gyro, e.gyroCorrection), mag)
}

// FuseDiffGNSS runs one cycle using a differential GNSS heading (rad)
// instead of the magnetometer. The caller must only pass an available
// heading; see navmath.IsAvailable.
func (e *Estimator) FuseDiffGNSS(gyro, acc, rawMag, gnssAcc r3.Vec, gnssHeading float64) {
	mag := e.calibrated(rawMag)
	a := e.body2nav.MulVec(acc)

	mode := e.classifier.Classify(e.turnRate)
	e.correct(mode, a, gnssAcc, navmath.WrapPi(gnssHeading-e.euler.Yaw)*e.cfg.HGain)

	e.update(acc, r3.Add(gyro, e.gyroCorrection), mag)
}

func (e *Estimator) calibrated(raw r3.Vec) r3.Vec {
	if c, ok := e.calibration.Current(); ok {
		return c.Calibrate(raw)
	}
	return raw
}

// horizontalInduction drops the vertical component and normalises.
func horizontalInduction(ind r3.Vec) r3.Vec {
	return navmath.Normalize(navmath.Horizontal(ind))
}

// correct computes the gyro correction for one cycle. a is the nav-frame
// accelerometer reading, g the GNSS acceleration and heading the heading
// error term of the active heading reference.
func (e *Estimator) correct(mode FlightMode, a, g r3.Vec, heading float64) {
	nc := r3.Vec{
		X: -a.Y + g.Y,
		Y: a.X - g.X,
		Z: e.headingCorrection(mode, a, g, heading),
	}
	e.navCorrection = nc
	e.gyroCorrection = e.applyIntegrator(mode, e.nav2body.MulVec(nc))
}

// headingCorrection returns the down component of the nav correction.
func (e *Estimator) headingCorrection(mode FlightMode, a, g r3.Vec, heading float64) float64 {
	if mode != Circling {
		return heading
	}
	// INS × GNSS acceleration isolates the heading error, independent of bank
	cross := a.X*g.Y - a.Y*g.X
	return 0.5 * (cross*e.cfg.CrossGain + heading)
}

// applyIntegrator turns the body-frame correction into the gyro correction.
// The integrator learns only in straight flight; while circling or in
// transition it is used but frozen.
func (e *Estimator) applyIntegrator(mode FlightMode, body r3.Vec) r3.Vec {
	integral := r3.Scale(e.cfg.IGain, e.gyroIntegrator)

	switch mode {
	case StraightFlight:
		body = r3.Scale(e.cfg.PGain, body)
		e.gyroIntegrator = r3.Add(e.gyroIntegrator, body)
		return r3.Add(body, r3.Scale(e.cfg.IGain, e.gyroIntegrator))
	case Circling:
		return r3.Scale(e.cfg.PGain, r3.Add(body, integral))
	case Transition:
		return r3.Add(r3.Scale(e.cfg.PGain, body), integral)
	default:
		monitoring.Haltf("ahrs: flight mode %d", mode)
		return r3.Vec{}
	}
}
