package units

import (
	"math"
	"testing"
)

func TestConvertSpeed(t *testing.T) {
	tests := []struct {
		name     string
		speedMPS float64
		units    string
		expected float64
	}{
		{"25 m/s to kmph", 25.0, KMPH, 90.0},
		{"25 m/s to kph", 25.0, KPH, 90.0},
		{"25 m/s to knots", 25.0, KNOTS, 48.596},
		{"25 m/s to mph", 25.0, MPH, 55.923},
		{"25 m/s to mps", 25.0, MPS, 25.0},
		{"unknown units default to mps", 10.0, "unknown", 10.0},
		{"best glide 100 km/h", 27.778, KMPH, 100.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertSpeed(tt.speedMPS, tt.units)
			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("ConvertSpeed(%f, %s) = %f, want %f", tt.speedMPS, tt.units, result, tt.expected)
			}
		})
	}
}

func TestConvertVarioAndAltitude(t *testing.T) {
	tests := []struct {
		unit      string
		vario     float64
		altitude  float64
		varioUnit string
		altUnit   string
	}{
		{MPS, 2, 1000, "m/s", "m"},
		{KMPH, 2, 1000, "m/s", "m"},
		{KNOTS, 3.888, 3280.84, "kt", "ft"},
		{MPH, 393.7, 3280.84, "fpm", "ft"},
	}

	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			if got := ConvertVario(2, tt.unit); math.Abs(got-tt.vario) > 0.01 {
				t.Errorf("ConvertVario(2, %s) = %f, want %f", tt.unit, got, tt.vario)
			}
			if got := ConvertAltitude(1000, tt.unit); math.Abs(got-tt.altitude) > 0.01 {
				t.Errorf("ConvertAltitude(1000, %s) = %f, want %f", tt.unit, got, tt.altitude)
			}
			if got := VarioLabel(tt.unit); got != tt.varioUnit {
				t.Errorf("VarioLabel(%s) = %q, want %q", tt.unit, got, tt.varioUnit)
			}
			if got := AltitudeLabel(tt.unit); got != tt.altUnit {
				t.Errorf("AltitudeLabel(%s) = %q, want %q", tt.unit, got, tt.altUnit)
			}
		})
	}
}

func TestSpeedLabel(t *testing.T) {
	for unit, want := range map[string]string{
		MPS: "m/s", KMPH: "km/h", KPH: "km/h", KNOTS: "kt", MPH: "mph", "": "m/s",
	} {
		if got := SpeedLabel(unit); got != want {
			t.Errorf("SpeedLabel(%q) = %q, want %q", unit, got, want)
		}
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid mps", MPS, true},
		{"valid kmph", KMPH, true},
		{"valid kph", KPH, true},
		{"valid knots", KNOTS, true},
		{"valid mph", MPH, true},
		{"invalid unit", "invalid", false},
		{"empty string", "", false},
		{"case sensitive", "Knots", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValid(tt.unit)
			if result != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, result, tt.expected)
			}
		})
	}
}

func TestGetValidUnitsString(t *testing.T) {
	if got := GetValidUnitsString(); got != "mps, kmph, kph, knots, mph" {
		t.Errorf("GetValidUnitsString() = %q", got)
	}
}
