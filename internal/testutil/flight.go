package testutil

import (
	"context"
	"io"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/vario.report/internal/navmath"
	"github.com/banshee-data/vario.report/internal/samplesource"
)

// Segment is one leg of a synthetic flight flown at constant true airspeed
// and climb rate. TurnRate is reached by rolling into the bank that balances
// the centripetal acceleration, so the turn stays coordinated throughout.
type Segment struct {
	Duration time.Duration
	TAS      float64 // m/s
	TurnRate float64 // rad/s, positive to the right
	Climb    float64 // m/s, positive up
}

// Flight is a synthetic flight in a steady wind. Samples are physically
// consistent: accelerometer, gyro and magnetometer readings match the true
// attitude and the pressures match the ISA altitude.
type Flight struct {
	SamplePeriod float64 // s, default 0.01
	GNSSEvery    int     // GNSS fix every n samples, default 10
	Altitude     float64 // m at start
	Heading      float64 // rad at start
	Wind         r3.Vec  // m/s nav frame, down ignored
	Field        r3.Vec  // nav frame magnetic induction
	DiffGNSS     bool    // include the true heading in every fix
	RollRate     float64 // rad/s towards each segment's bank, default 0.3
	Segments     []Segment
}

// Truth is the true state of a Flight at one sample.
type Truth struct {
	Attitude navmath.Euler
	Altitude float64
	Velocity r3.Vec // ground velocity, NED
}

// Generate returns the samples of f and the true state at each one.
func (f Flight) Generate() ([]samplesource.Sample, []Truth) {
	ts := f.SamplePeriod
	if ts <= 0 {
		ts = 0.01
	}
	every := f.GNSSEvery
	if every <= 0 {
		every = 10
	}
	rollStep := f.RollRate * ts
	if rollStep <= 0 {
		rollStep = 0.3 * ts
	}

	var (
		samples []samplesource.Sample
		truth   []Truth
		t       time.Duration
		heading = f.Heading
		alt     = f.Altitude
		bank    float64
		i       int
	)
	step := time.Duration(ts * float64(time.Second))

	for _, seg := range f.Segments {
		n := int(seg.Duration.Seconds()/ts + 0.5)
		target := math.Atan(seg.TAS * seg.TurnRate / navmath.Gravity)
		for k := 0; k < n; k++ {
			next := bank + math.Max(-rollStep, math.Min(rollStep, target-bank))
			rate := 0.0
			if seg.TAS > 0 {
				rate = navmath.Gravity * math.Tan(bank) / seg.TAS
			}
			att := navmath.Euler{Roll: bank, Yaw: navmath.WrapPi(heading)}
			nav2body := navmath.QuaternionFromEuler(att).RotationMatrix().T()

			air := r3.Vec{X: seg.TAS * math.Cos(heading), Y: seg.TAS * math.Sin(heading)}
			ground := r3.Add(air, navmath.Horizontal(f.Wind))
			ground.Z = -seg.Climb
			accel := r3.Vec{X: -air.Y * rate, Y: air.X * rate}
			specific := r3.Sub(accel, r3.Vec{Z: navmath.Gravity})

			gyro := nav2body.MulVec(r3.Vec{Z: rate})
			gyro.X += (next - bank) / ts

			p := isaPressure(alt)
			s := samplesource.Sample{
				Time:           t,
				Acc:            nav2body.MulVec(specific),
				Gyro:           gyro,
				Mag:            nav2body.MulVec(f.Field),
				StaticPressure: p,
				PitotPressure:  0.5 * isaDensity(p, alt) * seg.TAS * seg.TAS,
			}
			if i%every == 0 {
				fix := &samplesource.GNSSFix{
					Velocity:     ground,
					Acceleration: accel,
					Heading:      navmath.NotAvailable,
				}
				if f.DiffGNSS {
					fix.Heading = navmath.WrapTwoPi(heading)
				}
				s.GNSS = fix
			}
			samples = append(samples, s)
			truth = append(truth, Truth{Attitude: att, Altitude: alt, Velocity: ground})

			heading += rate * ts
			bank = next
			alt += seg.Climb * ts
			t += step
			i++
		}
	}
	return samples, truth
}

func isaPressure(h float64) float64 {
	return 101325 * math.Pow(1-0.0065*h/288.15, 1/0.190263)
}

func isaDensity(p, h float64) float64 {
	return 1.225 * (p / 101325) * (288.15 / (288.15 - 0.0065*h))
}

// SliceSource replays a fixed slice of samples.
type SliceSource struct {
	Samples []samplesource.Sample
	next    int
}

// Next implements samplesource.Source.
func (s *SliceSource) Next(ctx context.Context) (samplesource.Sample, error) {
	if err := ctx.Err(); err != nil {
		return samplesource.Sample{}, err
	}
	if s.next >= len(s.Samples) {
		return samplesource.Sample{}, io.EOF
	}
	smp := s.Samples[s.next]
	s.next++
	return smp, nil
}
