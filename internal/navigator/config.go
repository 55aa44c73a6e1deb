package navigator

import (
	"github.com/banshee-data/vario.report/internal/ahrs"
	"github.com/banshee-data/vario.report/internal/config"
	"github.com/banshee-data/vario.report/internal/navmath"
	"github.com/banshee-data/vario.report/internal/observer"
)

// Config holds everything a Navigator needs at construction.
type Config struct {
	AHRS     ahrs.Config
	Observer observer.Config

	// SensorTilt is the installation attitude of the sensor in the airframe.
	SensorTilt navmath.Euler

	AirborneIAS float64 // m/s
	QNHOffset   float64 // Pa, subtracted from static pressure
	PitotOffset float64 // Pa
	PitotSpan   float64

	Calibration *ahrs.CompassCalibration // optional stored calibration
}

// DefaultConfig returns the navigator config from the tuning defaults file.
func DefaultConfig() Config {
	return ConfigFromTuning(config.MustLoadDefaultConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		AHRS:     ahrs.ConfigFromTuning(cfg),
		Observer: observer.ConfigFromTuning(cfg),
		SensorTilt: navmath.Euler{
			Roll:  cfg.GetSensorTiltRoll(),
			Pitch: cfg.GetSensorTiltPitch(),
			Yaw:   cfg.GetSensorTiltYaw(),
		},
		AirborneIAS: cfg.GetAirborneIAS(),
		QNHOffset:   cfg.GetQNHOffset(),
		PitotOffset: cfg.GetPitotOffset(),
		PitotSpan:   cfg.GetPitotSpan(),
		Calibration: ahrs.CompassCalibrationFromTuning(cfg),
	}
}
