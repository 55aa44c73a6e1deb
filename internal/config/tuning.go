package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for the estimator.
// Values are read once at construction and stay static while flying.
// Angles are radians, rates rad/s, time constants seconds.
type TuningConfig struct {
	// Sampling
	SamplePeriod *float64 `json:"sample_period,omitempty"` // s, 0.01 at 100 Hz

	// Attitude controller gains
	PGain     *float64 `json:"p_gain,omitempty"`     // proportional
	IGain     *float64 `json:"i_gain,omitempty"`     // integral
	HGain     *float64 `json:"h_gain,omitempty"`     // GNSS heading, per rad of heading error
	MHGain    *float64 `json:"m_h_gain,omitempty"`   // magnetic heading
	CrossGain *float64 `json:"cross_gain,omitempty"` // GNSS/INS acceleration cross product

	// Circling classifier
	HighTurnRate *float64 `json:"high_turn_rate,omitempty"` // rad/s
	LowTurnRate  *float64 `json:"low_turn_rate,omitempty"`  // rad/s
	CircleLimit  *int     `json:"circle_limit,omitempty"`   // samples

	// Filter time constants
	AngleTC    *float64 `json:"angle_tc,omitempty"`     // slip and pitch angle
	WindTC     *float64 `json:"wind_tc,omitempty"`      // short-term wind
	MeanWindTC *float64 `json:"mean_wind_tc,omitempty"` // long-term wind
	VarioTC    *float64 `json:"vario_tc,omitempty"`     // compensated vario
	VarioAvgTC *float64 `json:"vario_avg_tc,omitempty"` // averaged vario

	// Vertical Kalman filter noise
	VarioAccelNoise *float64 `json:"vario_accel_noise,omitempty"` // (m/s²)² process noise
	VarioBaroNoise  *float64 `json:"vario_baro_noise,omitempty"`  // m² altitude measurement noise
	VarioBiasNoise  *float64 `json:"vario_bias_noise,omitempty"`  // (m/s²)² per second bias random walk

	// Sensor installation
	SensorTiltRoll  *float64 `json:"sensor_tilt_roll,omitempty"`
	SensorTiltPitch *float64 `json:"sensor_tilt_pitch,omitempty"`
	SensorTiltYaw   *float64 `json:"sensor_tilt_yaw,omitempty"`

	// Air data
	AirborneIAS *float64 `json:"airborne_ias,omitempty"` // m/s
	QNHOffset   *float64 `json:"qnh_offset,omitempty"`   // Pa
	PitotOffset *float64 `json:"pitot_offset,omitempty"` // Pa
	PitotSpan   *float64 `json:"pitot_span,omitempty"`   // factor

	// Optional stored compass calibration
	CompassCalibration *CompassCalibration `json:"compass_calibration,omitempty"`
}

// CompassCalibration is the persisted result of a ground compass
// calibration: per axis offset, scale and residual variance.
type CompassCalibration struct {
	Offset   [3]float64 `json:"offset"`
	Scale    [3]float64 `json:"scale"`
	Variance [3]float64 `json:"variance"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a config with every field populated from the
// built-in defaults. It matches config/tuning.defaults.json.
func DefaultTuningConfig() *TuningConfig {
	e := EmptyTuningConfig()
	return &TuningConfig{
		SamplePeriod:    ptrFloat64(e.GetSamplePeriod()),
		PGain:           ptrFloat64(e.GetPGain()),
		IGain:           ptrFloat64(e.GetIGain()),
		HGain:           ptrFloat64(e.GetHGain()),
		MHGain:          ptrFloat64(e.GetMHGain()),
		CrossGain:       ptrFloat64(e.GetCrossGain()),
		HighTurnRate:    ptrFloat64(e.GetHighTurnRate()),
		LowTurnRate:     ptrFloat64(e.GetLowTurnRate()),
		CircleLimit:     ptrInt(e.GetCircleLimit()),
		AngleTC:         ptrFloat64(e.GetAngleTC()),
		WindTC:          ptrFloat64(e.GetWindTC()),
		MeanWindTC:      ptrFloat64(e.GetMeanWindTC()),
		VarioTC:         ptrFloat64(e.GetVarioTC()),
		VarioAvgTC:      ptrFloat64(e.GetVarioAvgTC()),
		VarioAccelNoise: ptrFloat64(e.GetVarioAccelNoise()),
		VarioBaroNoise:  ptrFloat64(e.GetVarioBaroNoise()),
		VarioBiasNoise:  ptrFloat64(e.GetVarioBiasNoise()),
		SensorTiltRoll:  ptrFloat64(e.GetSensorTiltRoll()),
		SensorTiltPitch: ptrFloat64(e.GetSensorTiltPitch()),
		SensorTiltYaw:   ptrFloat64(e.GetSensorTiltYaw()),
		AirborneIAS:     ptrFloat64(e.GetAirborneIAS()),
		QNHOffset:       ptrFloat64(e.GetQNHOffset()),
		PitotOffset:     ptrFloat64(e.GetPitotOffset()),
		PitotSpan:       ptrFloat64(e.GetPitotSpan()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from cmd/vario/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	positive := []struct {
		name string
		v    *float64
	}{
		{"sample_period", c.SamplePeriod},
		{"angle_tc", c.AngleTC},
		{"wind_tc", c.WindTC},
		{"mean_wind_tc", c.MeanWindTC},
		{"vario_tc", c.VarioTC},
		{"vario_avg_tc", c.VarioAvgTC},
		{"vario_accel_noise", c.VarioAccelNoise},
		{"vario_baro_noise", c.VarioBaroNoise},
		{"pitot_span", c.PitotSpan},
	}
	for _, p := range positive {
		if p.v == nil {
			continue
		}
		if math.IsNaN(*p.v) || math.IsInf(*p.v, 0) || *p.v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", p.name, *p.v)
		}
	}

	if c.VarioBiasNoise != nil && *c.VarioBiasNoise < 0 {
		return fmt.Errorf("vario_bias_noise must be non-negative, got %f", *c.VarioBiasNoise)
	}

	if c.CircleLimit != nil && *c.CircleLimit < 1 {
		return fmt.Errorf("circle_limit must be at least 1, got %d", *c.CircleLimit)
	}

	if c.GetLowTurnRate() <= 0 {
		return fmt.Errorf("low_turn_rate must be positive, got %f", c.GetLowTurnRate())
	}
	if c.GetHighTurnRate() <= c.GetLowTurnRate() {
		return fmt.Errorf("high_turn_rate (%f) must exceed low_turn_rate (%f)",
			c.GetHighTurnRate(), c.GetLowTurnRate())
	}

	if cc := c.CompassCalibration; cc != nil {
		for i, s := range cc.Scale {
			if s == 0 || math.IsNaN(s) {
				return fmt.Errorf("compass_calibration scale[%d] must be non-zero", i)
			}
		}
	}

	return nil
}

// GetSamplePeriod returns the sample_period value or the default (100 Hz).
func (c *TuningConfig) GetSamplePeriod() float64 {
	if c.SamplePeriod == nil {
		return 0.01
	}
	return *c.SamplePeriod
}

// GetPGain returns the p_gain value or the default.
func (c *TuningConfig) GetPGain() float64 {
	if c.PGain == nil {
		return 0.03
	}
	return *c.PGain
}

// GetIGain returns the i_gain value or the default.
func (c *TuningConfig) GetIGain() float64 {
	if c.IGain == nil {
		return 0.00006
	}
	return *c.IGain
}

// GetHGain returns the h_gain value or the default.
func (c *TuningConfig) GetHGain() float64 {
	if c.HGain == nil {
		return 38.0
	}
	return *c.HGain
}

// GetMHGain returns the m_h_gain value or the default.
func (c *TuningConfig) GetMHGain() float64 {
	if c.MHGain == nil {
		return -10.0
	}
	return *c.MHGain
}

// GetCrossGain returns the cross_gain value or the default.
func (c *TuningConfig) GetCrossGain() float64 {
	if c.CrossGain == nil {
		return 0.05
	}
	return *c.CrossGain
}

// GetHighTurnRate returns the high_turn_rate value or the default.
func (c *TuningConfig) GetHighTurnRate() float64 {
	if c.HighTurnRate == nil {
		return 0.15
	}
	return *c.HighTurnRate
}

// GetLowTurnRate returns the low_turn_rate value or the default.
func (c *TuningConfig) GetLowTurnRate() float64 {
	if c.LowTurnRate == nil {
		return 0.0707
	}
	return *c.LowTurnRate
}

// GetCircleLimit returns the circle_limit value or the default
// (10 s at 100 Hz).
func (c *TuningConfig) GetCircleLimit() int {
	if c.CircleLimit == nil {
		return 1000
	}
	return *c.CircleLimit
}

// GetAngleTC returns the angle_tc value or the default.
func (c *TuningConfig) GetAngleTC() float64 {
	if c.AngleTC == nil {
		return 0.5
	}
	return *c.AngleTC
}

// GetWindTC returns the wind_tc value or the default.
func (c *TuningConfig) GetWindTC() float64 {
	if c.WindTC == nil {
		return 5.0
	}
	return *c.WindTC
}

// GetMeanWindTC returns the mean_wind_tc value or the default.
func (c *TuningConfig) GetMeanWindTC() float64 {
	if c.MeanWindTC == nil {
		return 60.0
	}
	return *c.MeanWindTC
}

// GetVarioTC returns the vario_tc value or the default.
func (c *TuningConfig) GetVarioTC() float64 {
	if c.VarioTC == nil {
		return 2.0
	}
	return *c.VarioTC
}

// GetVarioAvgTC returns the vario_avg_tc value or the default.
func (c *TuningConfig) GetVarioAvgTC() float64 {
	if c.VarioAvgTC == nil {
		return 30.0
	}
	return *c.VarioAvgTC
}

// GetVarioAccelNoise returns the vario_accel_noise value or the default.
func (c *TuningConfig) GetVarioAccelNoise() float64 {
	if c.VarioAccelNoise == nil {
		return 0.1
	}
	return *c.VarioAccelNoise
}

// GetVarioBaroNoise returns the vario_baro_noise value or the default.
func (c *TuningConfig) GetVarioBaroNoise() float64 {
	if c.VarioBaroNoise == nil {
		return 0.25
	}
	return *c.VarioBaroNoise
}

// GetVarioBiasNoise returns the vario_bias_noise value or the default.
func (c *TuningConfig) GetVarioBiasNoise() float64 {
	if c.VarioBiasNoise == nil {
		return 1e-5
	}
	return *c.VarioBiasNoise
}

// GetSensorTiltRoll returns the sensor_tilt_roll value or the default.
func (c *TuningConfig) GetSensorTiltRoll() float64 {
	if c.SensorTiltRoll == nil {
		return 0
	}
	return *c.SensorTiltRoll
}

// GetSensorTiltPitch returns the sensor_tilt_pitch value or the default.
func (c *TuningConfig) GetSensorTiltPitch() float64 {
	if c.SensorTiltPitch == nil {
		return 0
	}
	return *c.SensorTiltPitch
}

// GetSensorTiltYaw returns the sensor_tilt_yaw value or the default.
func (c *TuningConfig) GetSensorTiltYaw() float64 {
	if c.SensorTiltYaw == nil {
		return 0
	}
	return *c.SensorTiltYaw
}

// GetAirborneIAS returns the airborne_ias value or the default.
func (c *TuningConfig) GetAirborneIAS() float64 {
	if c.AirborneIAS == nil {
		return 20.0
	}
	return *c.AirborneIAS
}

// GetQNHOffset returns the qnh_offset value or the default.
func (c *TuningConfig) GetQNHOffset() float64 {
	if c.QNHOffset == nil {
		return 0
	}
	return *c.QNHOffset
}

// GetPitotOffset returns the pitot_offset value or the default.
func (c *TuningConfig) GetPitotOffset() float64 {
	if c.PitotOffset == nil {
		return 0
	}
	return *c.PitotOffset
}

// GetPitotSpan returns the pitot_span value or the default.
func (c *TuningConfig) GetPitotSpan() float64 {
	if c.PitotSpan == nil {
		return 1.0
	}
	return *c.PitotSpan
}
