package testutil

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/vario.report/internal/navmath"
)

func TestAssertStatusCode(t *testing.T) {
	t.Parallel()
	AssertStatusCode(t, http.StatusOK, http.StatusOK)
}

func TestAssertStatusCode_FailurePath(t *testing.T) {
	t.Parallel()

	ok := t.Run("status mismatch", func(t *testing.T) {
		AssertStatusCode(t, http.StatusOK, http.StatusBadRequest)
	})
	if ok {
		t.Fatal("expected subtest to fail on mismatched status code")
	}
}

func TestAssertNoError(t *testing.T) {
	t.Parallel()
	AssertNoError(t, nil)
}

func TestAssertError_FailurePath(t *testing.T) {
	t.Parallel()

	ok := t.Run("nil error", func(t *testing.T) {
		AssertError(t, nil)
	})
	if ok {
		t.Fatal("expected subtest to fail on nil error")
	}
	AssertError(t, errors.New("boom"))
}

func TestAssertVecInDelta_FailurePath(t *testing.T) {
	t.Parallel()

	AssertVecInDelta(t, r3.Vec{X: 1}, r3.Vec{X: 1.05}, 0.1)
	ok := t.Run("far apart", func(t *testing.T) {
		AssertVecInDelta(t, r3.Vec{X: 1}, r3.Vec{Y: 1}, 0.1)
	})
	if ok {
		t.Fatal("expected subtest to fail")
	}
}

func TestFlightStraightLevel(t *testing.T) {
	t.Parallel()

	f := Flight{
		Altitude: 500,
		Field:    r3.Vec{X: 0.4, Z: 0.9},
		Wind:     r3.Vec{Y: 3},
		Segments: []Segment{{Duration: time.Second, TAS: 25}},
	}
	samples, truth := f.Generate()
	require.Len(t, samples, 100)
	require.Len(t, truth, 100)

	s := samples[0]
	AssertVecInDelta(t, r3.Vec{Z: -navmath.Gravity}, s.Acc, 1e-9)
	AssertVecInDelta(t, r3.Vec{}, s.Gyro, 1e-12)
	AssertVecInDelta(t, f.Field, s.Mag, 1e-12)
	require.NotNil(t, s.GNSS)
	AssertVecInDelta(t, r3.Vec{X: 25, Y: 3}, s.GNSS.Velocity, 1e-9)
	assert.True(t, math.IsNaN(s.GNSS.Heading))
	assert.Nil(t, samples[1].GNSS)
	assert.NotNil(t, samples[10].GNSS)

	// ISA 500 m
	assert.InDelta(t, 95461, s.StaticPressure, 5)
	assert.InDelta(t, 0.5*1.1673*25*25, s.PitotPressure, 1)
	assert.Equal(t, 990*time.Millisecond, samples[99].Time)
}

func TestFlightCoordinatedTurn(t *testing.T) {
	t.Parallel()

	const rate = 0.3
	f := Flight{
		DiffGNSS: true,
		Field:    r3.Vec{X: 0.4, Z: 0.9},
		Segments: []Segment{{Duration: 10 * time.Second, TAS: 25, TurnRate: rate, Climb: 1}},
	}
	samples, truth := f.Generate()
	require.Len(t, samples, 1000)

	// coordinated: no lateral specific force
	for _, s := range samples {
		require.InDelta(t, 0, s.Acc.Y, 1e-9)
		require.InDelta(t, 0, s.Acc.X, 1e-9)
	}
	want := math.Hypot(navmath.Gravity, 25*rate)
	assert.InDelta(t, -want, samples[500].Acc.Z, 1e-9)
	assert.InDelta(t, math.Atan(25*rate/navmath.Gravity), truth[500].Attitude.Roll, 1e-12)
	// rolling in at the default rate
	assert.InDelta(t, 0.3, samples[0].Gyro.X, 1e-9)
	assert.InDelta(t, 0.003, truth[1].Attitude.Roll, 1e-12)
	assert.InDelta(t, 9.99, truth[999].Altitude-truth[0].Altitude, 1e-6)
	assert.False(t, math.IsNaN(samples[0].GNSS.Heading))
}

func TestSliceSource(t *testing.T) {
	t.Parallel()

	f := Flight{Segments: []Segment{{Duration: 30 * time.Millisecond, TAS: 20}}}
	samples, _ := f.Generate()
	src := &SliceSource{Samples: samples}

	for i := 0; i < 3; i++ {
		_, err := src.Next(context.Background())
		require.NoError(t, err)
	}
	_, err := src.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&SliceSource{Samples: samples}).Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
