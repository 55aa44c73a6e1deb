package observer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/vario.report/internal/config"
	"github.com/banshee-data/vario.report/internal/navmath"
)

const ts = 0.01

var rest = r3.Vec{Z: -navmath.Gravity}

func testConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

func TestDefaultConfigMatchesBuiltIns(t *testing.T) {
	t.Parallel()
	assert.Equal(t, testConfig(), DefaultConfig())
}

func TestWindConverges(t *testing.T) {
	t.Parallel()

	o := New(testConfig())
	gnss := r3.Vec{X: 10}
	air := r3.Vec{X: 8}

	// twelve wind time constants
	for i := 0; i < 6000; i++ {
		o.Update(gnss, r3.Vec{}, rest, air, 500, 8)
	}
	w := o.Wind()
	assert.InDelta(t, 2, w.X, 1e-3)
	assert.InDelta(t, 0, w.Y, 1e-9)
	assert.Equal(t, 0.0, w.Z)

	// the mean wind follows with its longer time constant
	mw := o.MeanWind()
	assert.Greater(t, mw.X, 1.0)
	assert.Less(t, mw.X, 2.0)
}

func TestWindAxesIndependent(t *testing.T) {
	t.Parallel()

	o := New(testConfig())
	for i := 0; i < 6000; i++ {
		o.Update(r3.Vec{X: 20, Y: -3, Z: 1}, r3.Vec{}, rest, r3.Vec{X: 25, Y: 1, Z: 4}, 500, 25)
	}
	w := o.Wind()
	assert.InDelta(t, -5, w.X, 1e-3)
	assert.InDelta(t, -4, w.Y, 1e-3)
	assert.Equal(t, 0.0, w.Z)
}

func TestUncompensatedVarioNegativeWhileClimbing(t *testing.T) {
	t.Parallel()

	o := New(testConfig())
	const climb = 2.0
	for i := 0; i < 6000; i++ {
		o.Update(r3.Vec{X: 25}, r3.Vec{}, rest, r3.Vec{X: 25}, 1000+climb*float64(i)*ts, 25)
	}
	assert.InDelta(t, -climb, o.VarioUncompensated(), 0.01)
	assert.InDelta(t, climb, o.VarioTAS(), 0.01)
	assert.InDelta(t, climb, o.VarioINS(), 0.01)
	assert.InDelta(t, 1000+climb*5999*ts, o.Kalman().Altitude(), 0.1)
}

func TestTASCompensationRate(t *testing.T) {
	t.Parallel()

	o := New(testConfig())
	o.Update(r3.Vec{}, r3.Vec{}, rest, r3.Vec{}, 500, 30)
	assert.Equal(t, 0.0, o.SpeedCompensationTAS())

	o.Update(r3.Vec{}, r3.Vec{}, rest, r3.Vec{}, 500, 30.01)
	want := (30.01*30.01 - 30*30) / navmath.Gravity / 2 / ts
	assert.InDelta(t, want, o.SpeedCompensationTAS(), 1e-9)
}

// energyTrade returns a pull-up/push-over sequence in which airspeed is
// traded for height at constant total energy.
func energyTrade(t float64) (speed, accel, altitude, vs, vAcc float64) {
	const w = 0.2
	speed = 30 + 5*math.Sin(w*t)
	accel = 5 * w * math.Cos(w*t)
	dd := -5 * w * w * math.Sin(w*t)
	altitude = 1000 - (speed*speed-900)/(2*navmath.Gravity)
	vs = -speed * accel / navmath.Gravity
	vAcc = -(accel*accel + speed*dd) / navmath.Gravity
	return
}

func TestTotalEnergyTradeCancels(t *testing.T) {
	t.Parallel()

	o := New(testConfig())
	var maxTAS, maxINS, maxRaw float64
	for i := 0; i < 12000; i++ {
		speed, accel, altitude, vs, vAcc := energyTrade(float64(i) * ts)
		navAcc := r3.Vec{X: accel, Z: -navmath.Gravity - vAcc}
		gnss := r3.Vec{X: speed, Z: -vs}
		o.Update(gnss, r3.Vec{}, navAcc, r3.Vec{X: speed}, altitude, speed)

		if i < 2000 {
			continue
		}
		maxTAS = math.Max(maxTAS, math.Abs(o.VarioTAS()))
		maxINS = math.Max(maxINS, math.Abs(o.VarioINS()))
		maxRaw = math.Max(maxRaw, math.Abs(o.VarioUncompensated()))
	}
	require.Greater(t, maxRaw, 2.0, "the manoeuvre moves the raw vario")
	assert.Less(t, maxTAS, 0.01)
	// the inertial path also counts the vertical kinetic energy the
	// scenario leaves out of its height trade
	assert.Less(t, maxINS, 0.15)
}

func TestVarioAveragedFollowsTASVario(t *testing.T) {
	t.Parallel()

	o := New(testConfig())
	for i := 0; i < 30000; i++ {
		o.Update(r3.Vec{}, r3.Vec{}, rest, r3.Vec{}, 1000+1.5*float64(i)*ts, 0)
	}
	assert.InDelta(t, 1.5, o.VarioAveraged(), 0.01)
}
