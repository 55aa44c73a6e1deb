package navigator

import "math"

// ISA sea level constants.
const (
	SeaLevelPressure    = 101325.0 // Pa
	SeaLevelDensity     = 1.225    // kg/m³
	SeaLevelTemperature = 288.15   // K
	LapseRate           = 0.0065   // K/m

	isaExponent = 0.190263 // R·L / (g·M)
)

// PressureAltitude returns the ISA altitude (m) for a static pressure (Pa).
func PressureAltitude(p float64) float64 {
	if p <= 0 {
		return math.NaN()
	}
	return SeaLevelTemperature / LapseRate * (1 - math.Pow(p/SeaLevelPressure, isaExponent))
}

// AirDensity returns the ISA density (kg/m³) at static pressure p (Pa) and
// pressure altitude h (m).
func AirDensity(p, h float64) float64 {
	t := SeaLevelTemperature - LapseRate*h
	return SeaLevelDensity * (p / SeaLevelPressure) * (SeaLevelTemperature / t)
}

// IndicatedAirspeed returns the IAS (m/s) for a dynamic pressure (Pa).
// Negative pressures read as zero.
func IndicatedAirspeed(q float64) float64 {
	if q <= 0 {
		return 0
	}
	return math.Sqrt(2 * q / SeaLevelDensity)
}

// TrueAirspeed scales ias to the given air density.
func TrueAirspeed(ias, density float64) float64 {
	if density <= 0 {
		return ias
	}
	return ias * math.Sqrt(SeaLevelDensity/density)
}
