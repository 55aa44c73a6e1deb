// Package report turns the output records of a run into a text summary, an
// interactive HTML chart and a static PNG plot.
package report

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/vario.report/internal/ahrs"
	"github.com/banshee-data/vario.report/internal/navigator"
	"github.com/banshee-data/vario.report/internal/units"
)

// Stats describes one signal over a run.
type Stats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

func describe(x []float64) Stats {
	if len(x) == 0 {
		return Stats{}
	}
	s := Stats{Min: floats.Min(x), Max: floats.Max(x)}
	if len(x) == 1 {
		s.Mean = x[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(x, nil)
	return s
}

// Summary condenses a run.
type Summary struct {
	Samples      int
	Duration     time.Duration
	AirborneTime time.Duration

	// CirclingShare is the fraction of airborne samples spent circling.
	CirclingShare float64
	// Thermals counts entries into circling.
	Thermals int
	// CirclingClimb is the mean TAS-compensated vario while circling.
	CirclingClimb float64

	VarioTAS Stats
	VarioINS Stats
	Altitude Stats
	TAS      Stats

	// MaxAveragedClimb is the best long-term averaged vario of the run.
	MaxAveragedClimb float64
	// MeanWind is the long-term wind at the end of the run.
	MeanWind r3.Vec
}

// Summarize computes the summary of outs, which must be in time order.
func Summarize(outs []navigator.Output) Summary {
	var s Summary
	s.Samples = len(outs)
	if len(outs) == 0 {
		return s
	}
	s.Duration = outs[len(outs)-1].Time - outs[0].Time
	s.MeanWind = outs[len(outs)-1].MeanWind

	varioTAS := make([]float64, 0, len(outs))
	varioINS := make([]float64, 0, len(outs))
	altitude := make([]float64, 0, len(outs))
	tas := make([]float64, 0, len(outs))
	averaged := make([]float64, 0, len(outs))
	var climbing []float64

	var airborne, circling int
	prevMode := ahrs.StraightFlight
	for i, o := range outs {
		altitude = append(altitude, o.Altitude)
		averaged = append(averaged, o.VarioAveraged)
		if o.Mode == ahrs.Circling && prevMode != ahrs.Circling {
			s.Thermals++
		}
		prevMode = o.Mode

		if !o.Airborne {
			continue
		}
		airborne++
		if i > 0 {
			s.AirborneTime += o.Time - outs[i-1].Time
		}
		varioTAS = append(varioTAS, o.VarioTAS)
		varioINS = append(varioINS, o.VarioINS)
		tas = append(tas, o.TAS)
		if o.Mode == ahrs.Circling {
			circling++
			climbing = append(climbing, o.VarioTAS)
		}
	}

	if airborne > 0 {
		s.CirclingShare = float64(circling) / float64(airborne)
	}
	if len(climbing) > 0 {
		s.CirclingClimb = stat.Mean(climbing, nil)
	}
	s.VarioTAS = describe(varioTAS)
	s.VarioINS = describe(varioINS)
	s.Altitude = describe(altitude)
	s.TAS = describe(tas)
	s.MaxAveragedClimb = floats.Max(averaged)
	return s
}

// Write prints the summary as an aligned table in the given display units.
func (s Summary) Write(w io.Writer, unit string) error {
	vario := func(v float64) string {
		return fmt.Sprintf("%.2f %s", units.ConvertVario(v, unit), units.VarioLabel(unit))
	}
	speed := func(v float64) string {
		return fmt.Sprintf("%.1f %s", units.ConvertSpeed(v, unit), units.SpeedLabel(unit))
	}
	alt := func(v float64) string {
		return fmt.Sprintf("%.0f %s", units.ConvertAltitude(v, unit), units.AltitudeLabel(unit))
	}
	windDir := math.Mod(math.Atan2(-s.MeanWind.Y, -s.MeanWind.X)*180/math.Pi+360, 360)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "samples\t%d\n", s.Samples)
	fmt.Fprintf(tw, "duration\t%v\n", s.Duration.Round(time.Second))
	fmt.Fprintf(tw, "airborne\t%v\n", s.AirborneTime.Round(time.Second))
	fmt.Fprintf(tw, "thermals\t%d (%.0f%% circling)\n", s.Thermals, 100*s.CirclingShare)
	fmt.Fprintf(tw, "circling climb\t%s\n", vario(s.CirclingClimb))
	fmt.Fprintf(tw, "best averaged climb\t%s\n", vario(s.MaxAveragedClimb))
	fmt.Fprintf(tw, "vario TAS\tmean %s\tsd %s\tmin %s\tmax %s\n",
		vario(s.VarioTAS.Mean), vario(s.VarioTAS.StdDev), vario(s.VarioTAS.Min), vario(s.VarioTAS.Max))
	fmt.Fprintf(tw, "vario INS\tmean %s\tsd %s\tmin %s\tmax %s\n",
		vario(s.VarioINS.Mean), vario(s.VarioINS.StdDev), vario(s.VarioINS.Min), vario(s.VarioINS.Max))
	fmt.Fprintf(tw, "altitude\tmin %s\tmax %s\n", alt(s.Altitude.Min), alt(s.Altitude.Max))
	fmt.Fprintf(tw, "true airspeed\tmean %s\tmax %s\n", speed(s.TAS.Mean), speed(s.TAS.Max))
	fmt.Fprintf(tw, "mean wind\t%s from %03.0f°\n", speed(math.Hypot(s.MeanWind.X, s.MeanWind.Y)), windDir)
	return tw.Flush()
}
