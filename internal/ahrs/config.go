package ahrs

import (
	"math"

	"github.com/banshee-data/vario.report/internal/config"
	"github.com/banshee-data/vario.report/internal/monitoring"
)

// TestedSamplePeriod is the sample period the gains were tuned at (100 Hz).
// The small-angle quaternion step is only validated at this rate.
const TestedSamplePeriod = 0.01

// Config holds the static estimator parameters.
type Config struct {
	SamplePeriod float64 // s

	PGain     float64
	IGain     float64
	HGain     float64 // per rad of GNSS heading error
	MHGain    float64
	CrossGain float64

	HighTurnRate float64 // rad/s
	LowTurnRate  float64 // rad/s
	CircleLimit  int     // samples

	AngleTC float64 // s, slip and pitch angle filters
}

// DefaultConfig returns the estimator config from the tuning defaults file.
func DefaultConfig() Config {
	cfg := config.MustLoadDefaultConfig()
	return ConfigFromTuning(cfg)
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
// Use this in production code where the TuningConfig is already loaded.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		SamplePeriod: cfg.GetSamplePeriod(),
		PGain:        cfg.GetPGain(),
		IGain:        cfg.GetIGain(),
		HGain:        cfg.GetHGain(),
		MHGain:       cfg.GetMHGain(),
		CrossGain:    cfg.GetCrossGain(),
		HighTurnRate: cfg.GetHighTurnRate(),
		LowTurnRate:  cfg.GetLowTurnRate(),
		CircleLimit:  cfg.GetCircleLimit(),
		AngleTC:      cfg.GetAngleTC(),
	}
}

func (c Config) warnUntested() {
	if math.Abs(c.SamplePeriod-TestedSamplePeriod) > 1e-9 {
		monitoring.Logf("ahrs: sample period %.4fs differs from the tested %.2fs; gains are not revalidated",
			c.SamplePeriod, TestedSamplePeriod)
	}
}
