package navigator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPressureAltitude(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0, PressureAltitude(SeaLevelPressure), 1e-9)
	assert.InDelta(t, 500, PressureAltitude(95460.83), 0.1)
	assert.InDelta(t, 1000, PressureAltitude(89874.6), 0.5)
	assert.True(t, math.IsNaN(PressureAltitude(0)))
}

func TestAirspeeds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, IndicatedAirspeed(-3))
	ias := IndicatedAirspeed(0.5 * SeaLevelDensity * 30 * 30)
	assert.InDelta(t, 30, ias, 1e-9)

	assert.InDelta(t, ias, TrueAirspeed(ias, SeaLevelDensity), 1e-12)
	assert.InDelta(t, ias, TrueAirspeed(ias, 0), 1e-12)

	rho := AirDensity(95460.83, 500)
	assert.InDelta(t, 1.1673, rho, 1e-3)
	assert.Greater(t, TrueAirspeed(ias, rho), ias)
}
