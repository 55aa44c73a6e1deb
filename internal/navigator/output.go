package navigator

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/vario.report/internal/ahrs"
	"github.com/banshee-data/vario.report/internal/navmath"
)

// Output is the record produced at the end of every cycle.
type Output struct {
	Time time.Duration `json:"time"`

	Attitude   navmath.Quaternion `json:"attitude"`
	Euler      navmath.Euler      `json:"euler"`
	TurnRate   float64            `json:"turn_rate"`
	SlipAngle  float64            `json:"slip_angle"`
	PitchAngle float64            `json:"pitch_angle"`
	Mode       ahrs.FlightMode    `json:"mode"`

	Wind     r3.Vec `json:"wind"`
	MeanWind r3.Vec `json:"mean_wind"`

	VarioUncompensated float64 `json:"vario_uncompensated"`
	VarioTAS           float64 `json:"vario_tas"`
	VarioINS           float64 `json:"vario_ins"`
	VarioAveraged      float64 `json:"vario_averaged"`

	Altitude float64 `json:"altitude"`
	IAS      float64 `json:"ias"`
	TAS      float64 `json:"tas"`
	Airborne bool    `json:"airborne"`
}
