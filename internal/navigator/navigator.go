package navigator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/vario.report/internal/ahrs"
	"github.com/banshee-data/vario.report/internal/monitoring"
	"github.com/banshee-data/vario.report/internal/navmath"
	"github.com/banshee-data/vario.report/internal/observer"
	"github.com/banshee-data/vario.report/internal/samplesource"
)

// Airborne counter levels, in samples.
const (
	airborneEntry = 500
	airborneMax   = 2000
)

// Navigator owns one estimator and one observer and runs them from a
// single goroutine. Only the CalibrationSlot may be touched concurrently.
type Navigator struct {
	cfg     Config
	mapping navmath.Mat3

	ahrs        *ahrs.Estimator
	observer    *observer.Observer
	calibration ahrs.CalibrationSlot

	gnss     samplesource.GNSSFix
	haveGNSS bool

	altitude     float64
	haveAltitude bool
	density      float64
	ias          float64
	tas          float64

	airborneCounter int
	onLanded        func()

	initialized bool
	time        time.Duration
	rejected    int
}

// New returns a navigator. The attitude is set from the first IMU sample.
func New(cfg Config) *Navigator {
	n := &Navigator{
		cfg:      cfg,
		mapping:  navmath.QuaternionFromEuler(cfg.SensorTilt).RotationMatrix(),
		ahrs:     ahrs.New(cfg.AHRS),
		observer: observer.New(cfg.Observer),
		gnss:     samplesource.GNSSFix{Heading: navmath.NotAvailable},
		density:  SeaLevelDensity,
	}
	if cfg.Calibration != nil {
		n.calibration.Store(cfg.Calibration)
	}
	n.ahrs.SetCalibration(&n.calibration)
	return n
}

// Calibration returns the compass calibration slot. A calibration
// collector may store a new result at any time.
func (n *Navigator) Calibration() *ahrs.CalibrationSlot { return &n.calibration }

// OnLanded registers f to run once each time the airborne counter expires.
func (n *Navigator) OnLanded(f func()) { n.onLanded = f }

// AHRS returns the attitude estimator.
func (n *Navigator) AHRS() *ahrs.Estimator { return n.ahrs }

// Observer returns the flight observer.
func (n *Navigator) Observer() *observer.Observer { return n.observer }

// MapSensor rotates a sensor frame vector into the airframe.
func (n *Navigator) MapSensor(v r3.Vec) r3.Vec { return n.mapping.MulVec(v) }

// UpdatePressure converts raw static and pitot pressures (Pa). A missing or
// non-finite static reading keeps the last altitude, a non-finite pitot
// reading the last IAS.
func (n *Navigator) UpdatePressure(static, pitot float64) {
	if p := static - n.cfg.QNHOffset; p > 0 && navmath.IsAvailable(p) {
		n.altitude = PressureAltitude(p)
		n.density = AirDensity(p, n.altitude)
		n.haveAltitude = true
	}
	if navmath.IsAvailable(pitot) {
		n.ias = IndicatedAirspeed((pitot - n.cfg.PitotOffset) * n.cfg.PitotSpan)
	}
	n.tas = TrueAirspeed(n.ias, n.density)
}

// UpdateGNSS records a new GNSS solution. A fix with a non-finite velocity
// or acceleration is dropped; a non-finite heading is stored as not
// available.
func (n *Navigator) UpdateGNSS(fix samplesource.GNSSFix) {
	if !navmath.IsFinite(fix.Velocity) || !navmath.IsFinite(fix.Acceleration) {
		n.reject("GNSS fix")
		return
	}
	if !navmath.IsAvailable(fix.Heading) {
		fix.Heading = navmath.NotAvailable
	}
	n.gnss = fix
	n.haveGNSS = true
}

// UpdateIMU runs one full cycle from sensor frame readings. A cycle with a
// non-finite reading is skipped. The observer starts with the first valid
// static pressure so the vertical filter takes its initial altitude from a
// real reading.
func (n *Navigator) UpdateIMU(acc, mag, gyro r3.Vec) {
	if !navmath.IsFinite(acc) || !navmath.IsFinite(mag) || !navmath.IsFinite(gyro) {
		n.reject("IMU cycle")
		return
	}

	acc = n.MapSensor(acc)
	mag = n.MapSensor(mag)
	gyro = n.MapSensor(gyro)

	if !n.initialized {
		n.initialize(acc, mag)
	}

	if navmath.IsAvailable(n.gnss.Heading) {
		n.ahrs.FuseDiffGNSS(gyro, acc, mag, n.gnss.Acceleration, n.gnss.Heading)
	} else {
		n.ahrs.Fuse(gyro, acc, mag, n.gnss.Acceleration)
	}

	if n.haveAltitude {
		n.observer.Update(
			n.gnss.Velocity,
			n.gnss.Acceleration,
			n.ahrs.NavAcceleration(),
			n.airVelocity(),
			n.altitude,
			n.tas,
		)
	}

	n.updateAirborne()
}

// reject counts a dropped reading and logs the first of a run.
func (n *Navigator) reject(what string) {
	n.rejected++
	if n.rejected == 1 {
		monitoring.Logf("navigator: dropping non-finite %s at %v", what, n.time)
	}
}

// Rejected returns the number of readings dropped for non-finite values.
func (n *Navigator) Rejected() int { return n.rejected }

func (n *Navigator) initialize(acc, mag r3.Vec) {
	n.initialized = true
	if navmath.IsAvailable(n.gnss.Heading) {
		n.ahrs.SetFromEuler(0, 0, n.gnss.Heading)
		monitoring.Logf("navigator: attitude set from D-GNSS heading %.1f°", n.gnss.Heading/navmath.Deg)
		return
	}
	if c, ok := n.calibration.Current(); ok {
		mag = c.Calibrate(mag)
	}
	n.ahrs.Initialize(acc, mag)
}

// airVelocity returns TAS along the horizontal projection of the nose.
func (n *Navigator) airVelocity() r3.Vec {
	m := n.ahrs.Body2Nav()
	nose := navmath.Normalize(r3.Vec{X: m[0][0], Y: m[1][0]})
	return r3.Scale(n.tas, nose)
}

func (n *Navigator) updateAirborne() {
	if n.ias > n.cfg.AirborneIAS {
		if n.airborneCounter < airborneEntry {
			n.airborneCounter = airborneEntry
		} else if n.airborneCounter < airborneMax {
			n.airborneCounter++
		}
		return
	}
	if n.airborneCounter > 0 {
		n.airborneCounter--
		if n.airborneCounter == 0 {
			monitoring.Logf("navigator: landed at %v", n.time)
			if n.onLanded != nil {
				n.onLanded()
			}
		}
	}
}

// Airborne reports whether the airborne counter is running.
func (n *Navigator) Airborne() bool { return n.airborneCounter > 0 }

// Process runs one sample through the chain.
func (n *Navigator) Process(s samplesource.Sample) {
	n.time = s.Time
	n.UpdatePressure(s.StaticPressure, s.PitotPressure)
	if s.GNSS != nil {
		n.UpdateGNSS(*s.GNSS)
	}
	n.UpdateIMU(s.Acc, s.Mag, s.Gyro)
}

// Output returns the record of the last completed cycle.
func (n *Navigator) Output() Output {
	return Output{
		Time:               n.time,
		Attitude:           n.ahrs.Attitude(),
		Euler:              n.ahrs.Euler(),
		TurnRate:           n.ahrs.TurnRate(),
		SlipAngle:          n.ahrs.SlipAngle(),
		PitchAngle:         n.ahrs.PitchAngle(),
		Mode:               n.ahrs.FlightMode(),
		Wind:               n.observer.Wind(),
		MeanWind:           n.observer.MeanWind(),
		VarioUncompensated: n.observer.VarioUncompensated(),
		VarioTAS:           n.observer.VarioTAS(),
		VarioINS:           n.observer.VarioINS(),
		VarioAveraged:      n.observer.VarioAveraged(),
		Altitude:           n.altitude,
		IAS:                n.ias,
		TAS:                n.tas,
		Airborne:           n.Airborne(),
	}
}

// Run processes samples from src until it is exhausted or ctx is done,
// publishing every output record to h. h is closed on return. A source
// reaching io.EOF is not an error.
func (n *Navigator) Run(ctx context.Context, src samplesource.Source, h *Handoff) error {
	defer h.Close()
	for {
		s, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("next sample: %w", err)
		}
		n.Process(s)
		h.Publish(n.Output())
	}
}

// Replay processes every sample of src and returns all output records.
func (n *Navigator) Replay(ctx context.Context, src samplesource.Source) ([]Output, error) {
	var out []Output
	for {
		s, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("next sample %d: %w", len(out)+1, err)
		}
		n.Process(s)
		out = append(out, n.Output())
	}
}
