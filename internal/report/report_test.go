package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/vario.report/internal/ahrs"
	"github.com/banshee-data/vario.report/internal/navigator"
	"github.com/banshee-data/vario.report/internal/units"
)

// glideThenClimb is one second of straight glide at -1 m/s followed by one
// second of circling at +2 m/s.
func glideThenClimb() []navigator.Output {
	outs := make([]navigator.Output, 200)
	for i := range outs {
		o := navigator.Output{
			Time:          time.Duration(i) * 10 * time.Millisecond,
			Mode:          ahrs.StraightFlight,
			VarioTAS:      -1,
			VarioINS:      -1,
			VarioAveraged: 0.1,
			Altitude:      1000 - float64(i),
			TAS:           25,
			Airborne:      true,
			MeanWind:      r3.Vec{X: 0, Y: -3},
		}
		if i >= 100 {
			o.Mode = ahrs.Circling
			o.VarioTAS = 2
			o.VarioINS = 2
			o.VarioAveraged = 0.6
		}
		outs[i] = o
	}
	return outs
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize(glideThenClimb())
	assert.Equal(t, 200, s.Samples)
	assert.Equal(t, 1990*time.Millisecond, s.Duration)
	assert.Equal(t, 1990*time.Millisecond, s.AirborneTime)
	assert.Equal(t, 1, s.Thermals)
	assert.InDelta(t, 0.5, s.CirclingShare, 1e-12)
	assert.InDelta(t, 2, s.CirclingClimb, 1e-12)
	assert.InDelta(t, 0.5, s.VarioTAS.Mean, 1e-12)
	assert.InDelta(t, -1, s.VarioTAS.Min, 1e-12)
	assert.InDelta(t, 2, s.VarioTAS.Max, 1e-12)
	assert.Greater(t, s.VarioTAS.StdDev, 1.4)
	assert.InDelta(t, 801, s.Altitude.Min, 1e-12)
	assert.InDelta(t, 0.6, s.MaxAveragedClimb, 1e-12)
	assert.Equal(t, r3.Vec{Y: -3}, s.MeanWind)
}

func TestSummarizeGroundSamples(t *testing.T) {
	t.Parallel()

	outs := glideThenClimb()
	for i := 0; i < 50; i++ {
		outs[i].Airborne = false
	}
	s := Summarize(outs)
	assert.Equal(t, 1500*time.Millisecond, s.AirborneTime)
	assert.InDelta(t, 100.0/150.0, s.CirclingShare, 1e-12)

	one := Summarize(outs[199:])
	assert.Equal(t, 1, one.Samples)
	assert.Equal(t, Stats{Mean: 2, Min: 2, Max: 2}, one.VarioTAS)
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	if diff := cmp.Diff(Summary{}, Summarize(nil)); diff != "" {
		t.Errorf("Summarize(nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestSummaryWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Summarize(glideThenClimb()).Write(&buf, units.KNOTS))
	out := buf.String()

	assert.Contains(t, out, "1 (50% circling)")
	assert.Contains(t, out, "3.89 kt")
	assert.Contains(t, out, "48.6 kt")
	// wind blowing towards the west comes from 090°
	assert.Contains(t, out, "from 090°")
}

func TestStride(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, stride(5, 10))
	assert.Equal(t, 4, stride(10, 3))
	assert.Equal(t, 1, stride(DefaultMaxPoints, 0))
	assert.Equal(t, 2, stride(DefaultMaxPoints+1, 0))
}

func TestRenderChart(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, RenderChart(&buf, glideThenClimb(), ChartOptions{Title: "Test flight", MaxPoints: 50}))
	html := buf.String()
	for _, want := range []string{"Test flight", "vario TAS", "circling", "altitude", "echarts"} {
		assert.Contains(t, html, want)
	}

	assert.Error(t, RenderChart(&buf, nil, ChartOptions{}))
}

func TestWritePlot(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WritePlot(&buf, glideThenClimb(), "", units.MPS))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), "not a PNG")

	assert.Error(t, WritePlot(&buf, nil, "", units.MPS))
}

func TestSavePlot(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vario.png")
	require.NoError(t, SavePlot(path, glideThenClimb(), "Test flight", units.KMPH))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(1000))
}
