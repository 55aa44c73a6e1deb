package ahrs

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/vario.report/internal/navmath"
)

// Estimator is the quaternion complementary filter. Create one with New,
// seed it with Initialize or SetFromEuler, then call Fuse or FuseDiffGNSS
// once per sample period.
type Estimator struct {
	cfg    Config
	halfTs float64

	attitude navmath.Quaternion
	body2nav navmath.Mat3
	nav2body navmath.Mat3
	euler    navmath.Euler

	classifier  Classifier
	calibration CalibrationSource

	gyroIntegrator  r3.Vec
	gyroCorrection  r3.Vec
	navCorrection   r3.Vec
	angularRate     r3.Vec
	navAcceleration r3.Vec
	navInduction    r3.Vec
	turnRate        float64

	slipAngle  navmath.PT2
	pitchAngle navmath.PT2
}

// New returns an estimator at the identity attitude in straight flight.
func New(cfg Config) *Estimator {
	cfg.warnUntested()
	e := &Estimator{
		cfg:         cfg,
		halfTs:      cfg.SamplePeriod / 2,
		classifier:  NewClassifier(cfg.HighTurnRate, cfg.LowTurnRate, cfg.CircleLimit),
		calibration: noCalibration{},
		slipAngle:   navmath.NewPT2TC(cfg.AngleTC, cfg.SamplePeriod),
		pitchAngle:  navmath.NewPT2TC(cfg.AngleTC, cfg.SamplePeriod),
	}
	e.setAttitude(navmath.IdentityQuaternion)
	return e
}

// SetCalibration installs the compass calibration source consulted on
// every Fuse. nil removes it.
func (e *Estimator) SetCalibration(src CalibrationSource) {
	if src == nil {
		src = noCalibration{}
	}
	e.calibration = src
}

// Initialize sets the attitude from a static gravity reading and a
// magnetic induction reading, both in body frame. The two vectors must be
// non-zero and not parallel.
func (e *Estimator) Initialize(acceleration, induction r3.Vec) {
	down := navmath.Normalize(navmath.Negate(acceleration))
	north := navmath.Normalize(induction)

	east := navmath.Normalize(r3.Cross(down, north))
	north = navmath.Normalize(r3.Cross(east, down))

	// rows are the nav axes seen from the body frame
	e.setAttitude(navmath.QuaternionFromRotationMatrix(navmath.MatFromRows(north, east, down)))
}

// SetFromEuler sets the attitude directly, e.g. from a differential GNSS
// heading at start-up.
func (e *Estimator) SetFromEuler(roll, pitch, yaw float64) {
	e.setAttitude(navmath.QuaternionFromEuler(navmath.Euler{Roll: roll, Pitch: pitch, Yaw: yaw}))
}

func (e *Estimator) setAttitude(q navmath.Quaternion) {
	e.attitude = q
	e.refresh()
}

func (e *Estimator) refresh() {
	e.body2nav = e.attitude.RotationMatrix()
	e.nav2body = e.body2nav.T()
	e.euler = e.attitude.Euler()
}

// update advances the attitude by one sample using the corrected gyro rate.
func (e *Estimator) update(acc, gyro, mag r3.Vec) {
	e.attitude = e.attitude.RotateSmallAngle(
		gyro.X*e.halfTs,
		gyro.Y*e.halfTs,
		gyro.Z*e.halfTs,
	).Normalized()
	e.refresh()

	e.angularRate = gyro
	e.navAcceleration = e.body2nav.MulVec(acc)
	e.navInduction = e.body2nav.MulVec(mag)
	e.turnRate = e.body2nav.MulVec(gyro).Z

	e.slipAngle.Respond(math.Atan2(-acc.Y, -acc.Z))
	e.pitchAngle.Respond(math.Atan2(acc.X, -acc.Z))
}

// Attitude returns the body→nav unit quaternion.
func (e *Estimator) Attitude() navmath.Quaternion { return e.attitude }

// Euler returns roll, pitch and yaw in radians.
func (e *Estimator) Euler() navmath.Euler { return e.euler }

// Body2Nav returns the body→nav rotation matrix.
func (e *Estimator) Body2Nav() navmath.Mat3 { return e.body2nav }

// Nav2Body returns the nav→body rotation matrix, the transpose of Body2Nav.
func (e *Estimator) Nav2Body() navmath.Mat3 { return e.nav2body }

// AngularRate returns the corrected body rate fed to the last integration step.
func (e *Estimator) AngularRate() r3.Vec { return e.angularRate }

// GyroCorrection returns the body-frame correction added to the gyro rate.
func (e *Estimator) GyroCorrection() r3.Vec { return e.gyroCorrection }

// GyroIntegrator returns the accumulated gyro bias correction.
func (e *Estimator) GyroIntegrator() r3.Vec { return e.gyroIntegrator }

// NavCorrection returns the nav-frame correction of the last fusion step.
func (e *Estimator) NavCorrection() r3.Vec { return e.navCorrection }

// NavAcceleration returns the accelerometer reading rotated into nav frame.
func (e *Estimator) NavAcceleration() r3.Vec { return e.navAcceleration }

// NavInduction returns the magnetometer reading rotated into nav frame.
func (e *Estimator) NavInduction() r3.Vec { return e.navInduction }

// TurnRate returns the nav-frame yaw rate in rad/s.
func (e *Estimator) TurnRate() float64 { return e.turnRate }

// SlipAngle returns the filtered slip angle in radians.
func (e *Estimator) SlipAngle() float64 { return e.slipAngle.Output() }

// PitchAngle returns the filtered accelerometer pitch angle in radians.
func (e *Estimator) PitchAngle() float64 { return e.pitchAngle.Output() }

// FlightMode returns the current circling classification.
func (e *Estimator) FlightMode() FlightMode { return e.classifier.Mode() }

// CirclingCounter returns the hysteresis counter.
func (e *Estimator) CirclingCounter() int { return e.classifier.Counter() }
