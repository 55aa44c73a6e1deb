// Package units provides shared constants and conversions for display units.
// Everything is computed in SI; a unit name selects how airspeed, climb rate
// and altitude are shown.
package units

import "strings"

// Unit constants
const (
	MPS   = "mps"
	KMPH  = "kmph"
	KPH   = "kph"
	KNOTS = "knots"
	MPH   = "mph"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MPS, KMPH, KPH, KNOTS, MPH}

const (
	mpsToKnots = 1.9438444924406
	mpsToMPH   = 2.2369362920544
	mpsToFPM   = 196.850393700787
	metreToFt  = 3.28083989501312
)

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// ConvertSpeed converts an airspeed or wind speed from m/s to the target units.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case KMPH, KPH:
		return speedMPS * 3.6
	case KNOTS:
		return speedMPS * mpsToKnots
	case MPH:
		return speedMPS * mpsToMPH
	default:
		return speedMPS
	}
}

// ConvertVario converts a climb rate from m/s. Knots users read climb in
// knots, mph users in feet per minute, everyone else in m/s.
func ConvertVario(varioMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case KNOTS:
		return varioMPS * mpsToKnots
	case MPH:
		return varioMPS * mpsToFPM
	default:
		return varioMPS
	}
}

// ConvertAltitude converts metres to feet for knots and mph, else leaves metres.
func ConvertAltitude(metres float64, targetUnits string) float64 {
	switch targetUnits {
	case KNOTS, MPH:
		return metres * metreToFt
	default:
		return metres
	}
}

// SpeedLabel returns the abbreviation shown after a converted speed.
func SpeedLabel(unit string) string {
	switch unit {
	case KMPH, KPH:
		return "km/h"
	case KNOTS:
		return "kt"
	case MPH:
		return "mph"
	default:
		return "m/s"
	}
}

// VarioLabel returns the abbreviation shown after a converted climb rate.
func VarioLabel(unit string) string {
	switch unit {
	case KNOTS:
		return "kt"
	case MPH:
		return "fpm"
	default:
		return "m/s"
	}
}

// AltitudeLabel returns the abbreviation shown after a converted altitude.
func AltitudeLabel(unit string) string {
	switch unit {
	case KNOTS, MPH:
		return "ft"
	default:
		return "m"
	}
}
