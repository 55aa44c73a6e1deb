package ahrs

import (
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/vario.report/internal/config"
)

// Calibrator corrects a raw magnetometer reading.
type Calibrator interface {
	Calibrate(raw r3.Vec) r3.Vec
}

// CalibrationSource is the estimator's view of an optional, externally
// owned compass calibration. Current reports false while no calibration
// exists, in which case the raw reading is used unmodified.
type CalibrationSource interface {
	Current() (Calibrator, bool)
}

// CompassCalibration is a per axis offset and scale correction. Variance
// is the residual of the fit that produced it.
type CompassCalibration struct {
	Offset   r3.Vec
	Scale    r3.Vec
	Variance r3.Vec
}

// Calibrate returns (raw - offset) scaled per axis.
func (c *CompassCalibration) Calibrate(raw r3.Vec) r3.Vec {
	return r3.Vec{
		X: (raw.X - c.Offset.X) * c.Scale.X,
		Y: (raw.Y - c.Offset.Y) * c.Scale.Y,
		Z: (raw.Z - c.Offset.Z) * c.Scale.Z,
	}
}

// CompassCalibrationFromTuning converts the persisted form. It returns nil
// when cfg carries no calibration.
func CompassCalibrationFromTuning(cfg *config.TuningConfig) *CompassCalibration {
	cc := cfg.CompassCalibration
	if cc == nil {
		return nil
	}
	vec := func(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }
	return &CompassCalibration{
		Offset:   vec(cc.Offset),
		Scale:    vec(cc.Scale),
		Variance: vec(cc.Variance),
	}
}

// CalibrationSlot holds the current compass calibration. A calibration
// collector running elsewhere may Store a new result at any time; the
// estimator picks it up on its next cycle. The zero value is empty.
type CalibrationSlot struct {
	p atomic.Pointer[CompassCalibration]
}

// Store publishes c. Storing nil clears the slot.
func (s *CalibrationSlot) Store(c *CompassCalibration) { s.p.Store(c) }

// Current implements CalibrationSource.
func (s *CalibrationSlot) Current() (Calibrator, bool) {
	c := s.p.Load()
	if c == nil {
		return nil, false
	}
	return c, true
}

// Load returns the stored calibration or nil.
func (s *CalibrationSlot) Load() *CompassCalibration { return s.p.Load() }

type noCalibration struct{}

func (noCalibration) Current() (Calibrator, bool) { return nil, false }
