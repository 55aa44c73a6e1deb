package observer

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/vario.report/internal/navmath"
)

// Observer produces wind and vario estimates.
type Observer struct {
	windNorth navmath.Averager
	windEast  navmath.Averager

	meanWindNorth navmath.Averager
	meanWindEast  navmath.Averager

	kalman        VerticalKalman
	kineticEnergy navmath.Differentiator

	varioTAS navmath.Averager
	varioINS navmath.Averager
	varioAvg navmath.Averager

	wind                 r3.Vec
	varioUncompensated   float64
	speedCompensationTAS float64
	speedCompensationINS float64
}

// New returns an observer with all filters at zero.
func New(cfg Config) *Observer {
	ts := cfg.SamplePeriod
	return &Observer{
		windNorth:     navmath.NewAveragerTC(cfg.WindTC, ts),
		windEast:      navmath.NewAveragerTC(cfg.WindTC, ts),
		meanWindNorth: navmath.NewAveragerTC(cfg.MeanWindTC, ts),
		meanWindEast:  navmath.NewAveragerTC(cfg.MeanWindTC, ts),
		kalman:        NewVerticalKalman(ts, cfg.AccelNoise, cfg.BaroNoise, cfg.BiasNoise),
		kineticEnergy: navmath.NewDifferentiator(ts),
		varioTAS:      navmath.NewAveragerTC(cfg.VarioTC, ts),
		varioINS:      navmath.NewAveragerTC(cfg.VarioTC, ts),
		varioAvg:      navmath.NewAveragerTC(cfg.VarioAvgTC, ts),
	}
}

// Update runs one cycle. Velocities and accelerations are nav frame (NED);
// navAcc is the rotated accelerometer reading, airVelocity the airspeed
// vector, altitude the barometric altitude (m) and tas the true airspeed
// (m/s). gnssAcc is not used by the current model. Inputs must be finite.
func (o *Observer) Update(gnssVelocity, gnssAcc, navAcc, airVelocity r3.Vec, altitude, tas float64) {
	o.wind = r3.Vec{
		X: o.windNorth.Respond(gnssVelocity.X - airVelocity.X),
		Y: o.windEast.Respond(gnssVelocity.Y - airVelocity.Y),
	}
	o.meanWindNorth.Respond(o.wind.X)
	o.meanWindEast.Respond(o.wind.Y)

	// negative while climbing
	o.varioUncompensated = o.kalman.Update(altitude, navAcc.Z)

	o.speedCompensationTAS = o.kineticEnergy.Respond(tas * tas / navmath.Gravity / 2)

	ground := navmath.Horizontal(r3.Sub(gnssVelocity, o.wind))
	o.speedCompensationINS = (r3.Dot(ground, navmath.Horizontal(navAcc)) +
		o.kalman.Velocity()*o.kalman.ObservedAcceleration()) / navmath.Gravity

	// positive on energy gain
	tasVario := o.varioTAS.Respond(o.speedCompensationTAS - o.varioUncompensated)
	o.varioINS.Respond(o.speedCompensationINS - o.varioUncompensated)
	o.varioAvg.Respond(tasVario)
}

// Wind returns the short-term wind vector (m/s); the down component is zero.
func (o *Observer) Wind() r3.Vec { return o.wind }

// MeanWind returns the long-term average wind (m/s).
func (o *Observer) MeanWind() r3.Vec {
	return r3.Vec{X: o.meanWindNorth.Output(), Y: o.meanWindEast.Output()}
}

// VarioUncompensated returns the Kalman down velocity (m/s).
func (o *Observer) VarioUncompensated() float64 { return o.varioUncompensated }

// VarioTAS returns the airspeed compensated vario (m/s, positive climbing).
func (o *Observer) VarioTAS() float64 { return o.varioTAS.Output() }

// VarioINS returns the inertially compensated vario (m/s, positive climbing).
func (o *Observer) VarioINS() float64 { return o.varioINS.Output() }

// VarioAveraged returns the long-term average of VarioTAS.
func (o *Observer) VarioAveraged() float64 { return o.varioAvg.Output() }

// SpeedCompensationTAS returns the airspeed energy term of the last cycle.
func (o *Observer) SpeedCompensationTAS() float64 { return o.speedCompensationTAS }

// SpeedCompensationINS returns the inertial energy term of the last cycle.
func (o *Observer) SpeedCompensationINS() float64 { return o.speedCompensationINS }

// Kalman exposes the vertical filter state.
func (o *Observer) Kalman() *VerticalKalman { return &o.kalman }
