package observer

import "github.com/banshee-data/vario.report/internal/config"

// Config holds the static observer parameters. Time constants are in
// seconds, noise terms are variances.
type Config struct {
	SamplePeriod float64

	WindTC     float64
	MeanWindTC float64
	VarioTC    float64
	VarioAvgTC float64

	AccelNoise float64
	BaroNoise  float64
	BiasNoise  float64
}

// DefaultConfig returns the observer config from the tuning defaults file.
func DefaultConfig() Config {
	return ConfigFromTuning(config.MustLoadDefaultConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		SamplePeriod: cfg.GetSamplePeriod(),
		WindTC:       cfg.GetWindTC(),
		MeanWindTC:   cfg.GetMeanWindTC(),
		VarioTC:      cfg.GetVarioTC(),
		VarioAvgTC:   cfg.GetVarioAvgTC(),
		AccelNoise:   cfg.GetVarioAccelNoise(),
		BaroNoise:    cfg.GetVarioBaroNoise(),
		BiasNoise:    cfg.GetVarioBiasNoise(),
	}
}
