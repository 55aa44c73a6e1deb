// Package samplesource decodes the 100 Hz sensor sample stream, either from
// a recorded CSV log or from lines arriving over a serial bridge.
package samplesource

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/vario.report/internal/navmath"
)

// Column counts of a sample line.
const (
	RequiredColumns = 12
	GNSSColumns     = 7
)

// ErrColumnCount is returned for lines with neither the required nor the
// full column count.
var ErrColumnCount = errors.New("unexpected column count")

// ErrNonFinite is returned for NaN or infinite readings.
var ErrNonFinite = errors.New("non-finite value")

// GNSSFix is the latest satellite navigation solution, nav frame (NED).
// Heading is the differential GNSS heading in radians, navmath.NotAvailable
// when the receiver pair has no fix.
type GNSSFix struct {
	Velocity     r3.Vec
	Acceleration r3.Vec
	Heading      float64
}

// Sample is one sensor cycle. Acc, Gyro and Mag are in sensor frame;
// pressures are in Pa. GNSS is nil on cycles without a new fix.
type Sample struct {
	Time           time.Duration
	Acc            r3.Vec
	Gyro           r3.Vec
	Mag            r3.Vec
	StaticPressure float64
	PitotPressure  float64
	GNSS           *GNSSFix
}

// Source yields samples in order. Next returns io.EOF after the last sample.
type Source interface {
	Next(ctx context.Context) (Sample, error)
}

// ParseLine decodes one comma separated sample:
//
//	t, ax, ay, az, gx, gy, gz, mx, my, mz, p_static, p_pitot[, vn, ve, vd, an, ae, ad, heading]
//
// t is in seconds. An empty, "nan" or "-" heading is not available; every
// other column must hold a finite number.
func ParseLine(line string) (Sample, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != RequiredColumns && len(fields) != RequiredColumns+GNSSColumns {
		return Sample{}, fmt.Errorf("%w: got %d, want %d or %d",
			ErrColumnCount, len(fields), RequiredColumns, RequiredColumns+GNSSColumns)
	}

	values := make([]float64, len(fields))
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if i == RequiredColumns+GNSSColumns-1 && isMissing(f) {
			values[i] = navmath.NotAvailable
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Sample{}, fmt.Errorf("column %d: %w", i+1, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Sample{}, fmt.Errorf("column %d: %w: %s", i+1, ErrNonFinite, f)
		}
		values[i] = v
	}

	vec := func(i int) r3.Vec { return r3.Vec{X: values[i], Y: values[i+1], Z: values[i+2]} }
	s := Sample{
		Time:           time.Duration(values[0] * float64(time.Second)),
		Acc:            vec(1),
		Gyro:           vec(4),
		Mag:            vec(7),
		StaticPressure: values[10],
		PitotPressure:  values[11],
	}
	if len(values) > RequiredColumns {
		s.GNSS = &GNSSFix{
			Velocity:     vec(12),
			Acceleration: vec(15),
			Heading:      values[18],
		}
	}
	return s, nil
}

func isMissing(f string) bool {
	switch strings.ToLower(f) {
	case "", "-", "nan":
		return true
	}
	return false
}

// FormatLine is the inverse of ParseLine.
func FormatLine(s Sample) string {
	var b strings.Builder
	w := func(v float64) {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	wv := func(v r3.Vec) {
		w(v.X)
		w(v.Y)
		w(v.Z)
	}

	w(s.Time.Seconds())
	wv(s.Acc)
	wv(s.Gyro)
	wv(s.Mag)
	w(s.StaticPressure)
	w(s.PitotPressure)
	if s.GNSS != nil {
		wv(s.GNSS.Velocity)
		wv(s.GNSS.Acceleration)
		if navmath.IsAvailable(s.GNSS.Heading) {
			w(s.GNSS.Heading)
		} else {
			b.WriteString(",nan")
		}
	}
	return b.String()
}
