package navigator

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/vario.report/internal/ahrs"
	"github.com/banshee-data/vario.report/internal/config"
	"github.com/banshee-data/vario.report/internal/monitoring"
	"github.com/banshee-data/vario.report/internal/navmath"
	"github.com/banshee-data/vario.report/internal/testutil"
)

var field = r3.Vec{X: 0.4, Z: 0.9}

func testConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

func replay(t *testing.T, n *Navigator, f testutil.Flight) ([]Output, []testutil.Truth) {
	t.Helper()
	samples, truth := f.Generate()
	out, err := n.Replay(context.Background(), &testutil.SliceSource{Samples: samples})
	require.NoError(t, err)
	require.Len(t, out, len(samples))
	return out, truth
}

func TestDefaultConfigMatchesBuiltIns(t *testing.T) {
	t.Parallel()
	assert.Equal(t, testConfig(), DefaultConfig())
}

func TestSensorMapping(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.SensorTilt = navmath.Euler{Yaw: math.Pi / 2}
	n := New(cfg)
	testutil.AssertVecInDelta(t, r3.Vec{Y: 1}, n.MapSensor(r3.Vec{X: 1}), 1e-12)

	id := New(testConfig())
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, id.MapSensor(r3.Vec{X: 1, Y: 2, Z: 3}))
}

func TestUpdatePressure(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.QNHOffset = 100
	cfg.PitotOffset = 10
	cfg.PitotSpan = 2
	n := New(cfg)

	n.UpdatePressure(SeaLevelPressure+100, 10+0.25*SeaLevelDensity*30*30)
	o := n.Output()
	assert.InDelta(t, 0, o.Altitude, 1e-9)
	assert.InDelta(t, 30, o.IAS, 1e-9)
	assert.InDelta(t, 30, o.TAS, 1e-9)

	// a missing static reading keeps the last altitude
	n.UpdatePressure(0, 10)
	assert.InDelta(t, 0, n.Output().Altitude, 1e-9)
	assert.Equal(t, 0.0, n.Output().IAS)

	// non-finite readings keep the last values
	n.UpdatePressure(SeaLevelPressure+100, 10+0.25*SeaLevelDensity*20*20)
	n.UpdatePressure(math.NaN(), math.Inf(1))
	o = n.Output()
	assert.InDelta(t, 0, o.Altitude, 1e-9)
	assert.InDelta(t, 20, o.IAS, 1e-9)
	assert.InDelta(t, 20, o.TAS, 1e-9)
}

func assertFinite(t *testing.T, outs []Output) {
	t.Helper()
	for i, o := range outs {
		values := []float64{
			o.Attitude.Real, o.Attitude.Imag, o.Attitude.Jmag, o.Attitude.Kmag,
			o.Euler.Roll, o.Euler.Pitch, o.Euler.Yaw, o.TurnRate,
			o.Wind.X, o.Wind.Y, o.MeanWind.X, o.MeanWind.Y,
			o.VarioUncompensated, o.VarioTAS, o.VarioINS, o.VarioAveraged,
			o.Altitude, o.IAS, o.TAS,
		}
		for _, v := range values {
			if !navmath.IsAvailable(v) {
				t.Fatalf("output %d is not finite: %+v", i, o)
			}
		}
	}
}

func TestNonFiniteReadingsAreDropped(t *testing.T) {
	original := monitoring.Logf
	defer func() { monitoring.Logf = original }()
	monitoring.SetLogger(nil)

	samples, _ := testutil.Flight{
		Altitude: 1200,
		Heading:  0.5,
		Wind:     r3.Vec{X: -2, Y: 4},
		Field:    field,
		Segments: []testutil.Segment{{Duration: 60 * time.Second, TAS: 25, Climb: -1}},
	}.Generate()
	samples[10].PitotPressure = math.NaN()
	samples[20].Gyro.X = math.NaN()
	samples[25].Acc.Z = math.Inf(-1)
	samples[30].GNSS.Velocity.Y = math.NaN()
	samples[40].StaticPressure = math.Inf(1)
	samples[50].Mag.Z = math.NaN()

	n := New(testConfig())
	out, err := n.Replay(context.Background(), &testutil.SliceSource{Samples: samples})
	require.NoError(t, err)
	require.Len(t, out, len(samples))
	assertFinite(t, out)
	assert.Equal(t, 4, n.Rejected())

	last := out[len(out)-1]
	testutil.AssertVecInDelta(t, r3.Vec{X: -2, Y: 4}, last.Wind, 0.1)
	assert.InDelta(t, -1, last.VarioTAS, 0.05)
	assert.InDelta(t, -1, last.VarioINS, 0.05)
	assert.InDelta(t, 0.5, last.Euler.Yaw, 0.01)
}

func TestObserverWaitsForStaticPressure(t *testing.T) {
	t.Parallel()

	samples, _ := testutil.Flight{
		Altitude: 540,
		Field:    field,
		Segments: []testutil.Segment{{Duration: 20 * time.Second}},
	}.Generate()
	samples[0].StaticPressure = 0
	samples[1].StaticPressure = math.NaN()

	n := New(testConfig())
	out, err := n.Replay(context.Background(), &testutil.SliceSource{Samples: samples})
	require.NoError(t, err)
	assertFinite(t, out)

	assert.Equal(t, 0.0, out[0].Altitude)
	assert.Equal(t, 0.0, out[1].VarioUncompensated)
	assert.InDelta(t, 540, out[2].Altitude, 0.5)

	worst := 0.0
	for _, o := range out {
		worst = math.Max(worst, math.Abs(o.VarioUncompensated))
	}
	assert.Less(t, worst, 0.01)
}

func TestInitialHeadingUsesCalibration(t *testing.T) {
	t.Parallel()

	offset := r3.Vec{X: 0.3, Y: -0.6, Z: 0.2}
	samples, _ := testutil.Flight{
		Altitude: 500,
		Heading:  1.0,
		Field:    field,
		Segments: []testutil.Segment{{Duration: time.Second, TAS: 25}},
	}.Generate()
	for i := range samples {
		samples[i].Mag = r3.Add(samples[i].Mag, offset)
	}

	cfg := testConfig()
	cfg.Calibration = &ahrs.CompassCalibration{Offset: offset, Scale: r3.Vec{X: 1, Y: 1, Z: 1}}
	n := New(cfg)
	out, err := n.Replay(context.Background(), &testutil.SliceSource{Samples: samples})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out[0].Euler.Yaw, 0.01)
}

func TestAirborneCounterAndLanding(t *testing.T) {
	original := monitoring.Logf
	defer func() { monitoring.Logf = original }()
	monitoring.SetLogger(nil)

	n := New(testConfig())
	landed := 0
	n.OnLanded(func() { landed++ })

	n.ias = 25
	n.updateAirborne()
	require.Equal(t, airborneEntry, n.airborneCounter)
	assert.True(t, n.Airborne())

	for i := 0; i < 3000; i++ {
		n.updateAirborne()
	}
	require.Equal(t, airborneMax, n.airborneCounter)

	n.ias = 5
	for i := 0; i < airborneMax-1; i++ {
		n.updateAirborne()
	}
	assert.True(t, n.Airborne())
	assert.Equal(t, 0, landed)

	n.updateAirborne()
	assert.False(t, n.Airborne())
	assert.Equal(t, 1, landed)

	// staying on the ground does not fire again
	n.updateAirborne()
	assert.Equal(t, 1, landed)

	// a short hop re-arms the counter at the entry level
	n.ias = 30
	n.updateAirborne()
	assert.Equal(t, airborneEntry, n.airborneCounter)
}

func TestStraightGlideInWind(t *testing.T) {
	t.Parallel()

	n := New(testConfig())
	out, _ := replay(t, n, testutil.Flight{
		Altitude: 1200,
		Heading:  0.5,
		Wind:     r3.Vec{X: -2, Y: 4},
		Field:    field,
		Segments: []testutil.Segment{{Duration: 60 * time.Second, TAS: 25, Climb: -1}},
	})
	last := out[len(out)-1]

	assert.Equal(t, ahrs.StraightFlight, last.Mode)
	assert.InDelta(t, 0.5, last.Euler.Yaw, 0.01)
	assert.InDelta(t, 0, last.Euler.Roll, 0.01)
	testutil.AssertVecInDelta(t, r3.Vec{X: -2, Y: 4}, last.Wind, 0.1)
	assert.InDelta(t, 1, last.VarioUncompensated, 0.05)
	assert.InDelta(t, -1, last.VarioTAS, 0.05)
	assert.InDelta(t, -1, last.VarioINS, 0.05)
	assert.True(t, last.Airborne)
	assert.InDelta(t, 1200-59.99, last.Altitude, 0.01)
}

func TestThermalCircling(t *testing.T) {
	t.Parallel()

	const rate = 0.3
	n := New(testConfig())
	out, truth := replay(t, n, testutil.Flight{
		Altitude: 800,
		Field:    field,
		Segments: []testutil.Segment{
			{Duration: 20 * time.Second, TAS: 25},
			{Duration: 40 * time.Second, TAS: 25, TurnRate: rate, Climb: 2},
		},
	})

	// the classifier needs circle_limit samples above the high threshold,
	// counted from when the roll-in passes high_turn_rate
	entered := -1
	for i, o := range out {
		if o.Mode == ahrs.Circling {
			entered = i
			break
		}
	}
	require.GreaterOrEqual(t, entered, 2000+testConfig().AHRS.CircleLimit-1)
	assert.Less(t, entered, 2000+testConfig().AHRS.CircleLimit+200)

	last := out[len(out)-1]
	assert.Equal(t, ahrs.Circling, last.Mode)
	assert.InDelta(t, rate, last.TurnRate, 0.01)
	assert.InDelta(t, truth[len(truth)-1].Attitude.Roll, last.Euler.Roll, 0.03)
	assert.InDelta(t, 2, last.VarioTAS, 0.1)
}

func TestDiffGNSSInitialisesHeading(t *testing.T) {
	original := monitoring.Logf
	defer func() { monitoring.Logf = original }()
	monitoring.SetLogger(nil)

	n := New(testConfig())
	out, _ := replay(t, n, testutil.Flight{
		Heading:  2.0,
		DiffGNSS: true,
		Segments: []testutil.Segment{{Duration: 5 * time.Second, TAS: 25}},
	})
	assert.InDelta(t, 2.0, out[0].Euler.Yaw, 0.01)
	assert.InDelta(t, 2.0, out[len(out)-1].Euler.Yaw, 0.01)
}

func TestStoredCalibrationIsUsed(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Calibration = &ahrs.CompassCalibration{Scale: r3.Vec{X: 1, Y: 1, Z: 1}}
	n := New(cfg)
	_, ok := n.Calibration().Current()
	assert.True(t, ok)

	n.Calibration().Store(nil)
	_, ok = n.Calibration().Current()
	assert.False(t, ok)
}

func TestRunPublishesOutputs(t *testing.T) {
	t.Parallel()

	samples, _ := testutil.Flight{
		Field:    field,
		Segments: []testutil.Segment{{Duration: time.Second, TAS: 20}},
	}.Generate()

	n := New(testConfig())
	h := NewHandoff()
	done := make(chan error, 1)
	go func() { done <- n.Run(context.Background(), &testutil.SliceSource{Samples: samples}, h) }()

	var last Output
	for o := range h.C() {
		last = o
	}
	require.NoError(t, <-done)
	assert.Equal(t, samples[len(samples)-1].Time, last.Time)
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(testConfig()).Run(ctx, &testutil.SliceSource{}, NewHandoff())
	assert.ErrorIs(t, err, context.Canceled)
}
