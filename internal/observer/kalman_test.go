package observer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/vario.report/internal/navmath"
)

func newTestKalman() VerticalKalman {
	return NewVerticalKalman(ts, 0.1, 0.25, 1e-5)
}

func TestKalmanSeedsFromFirstAltitude(t *testing.T) {
	t.Parallel()

	k := newTestKalman()
	v := k.Update(1234, -navmath.Gravity)
	assert.InDelta(t, 1234, k.Altitude(), 1e-6)
	assert.InDelta(t, 0, v, 1e-9)
}

func TestKalmanTracksConstantClimb(t *testing.T) {
	t.Parallel()

	k := newTestKalman()
	for i := 0; i < 3000; i++ {
		k.Update(3*float64(i)*ts, -navmath.Gravity)
	}
	assert.InDelta(t, -3, k.Velocity(), 1e-2)
	assert.InDelta(t, 0, k.Bias(), 1e-2)
	assert.InDelta(t, 0, k.ObservedAcceleration(), 1e-2)
}

func TestKalmanEstimatesAccelerometerBias(t *testing.T) {
	t.Parallel()

	k := newTestKalman()
	for i := 0; i < 30000; i++ {
		k.Update(100, -navmath.Gravity+0.2)
	}
	assert.InDelta(t, 0.2, k.Bias(), 1e-3)
	assert.InDelta(t, 0, k.Velocity(), 1e-3)
	assert.InDelta(t, 100, k.Altitude(), 1e-3)
}

func TestKalmanCovarianceSymmetricPositive(t *testing.T) {
	t.Parallel()

	k := newTestKalman()
	for i := 0; i < 5000; i++ {
		k.Update(float64(i%7), -navmath.Gravity+0.01*float64(i%3))
	}
	for i := 0; i < stateSize; i++ {
		require.Greater(t, k.P[i*3+i], 0.0, "P[%d,%d]", i, i)
		for j := 0; j < stateSize; j++ {
			assert.InDelta(t, k.P[i*3+j], k.P[j*3+i], 1e-9)
		}
	}
}
