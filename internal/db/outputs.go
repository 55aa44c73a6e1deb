package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/vario.report/internal/ahrs"
	"github.com/banshee-data/vario.report/internal/navigator"
)

const outputColumns = `time_ns, q_real, q_imag, q_jmag, q_kmag, roll, pitch, yaw,
	turn_rate, slip_angle, pitch_angle, mode, wind_north, wind_east,
	mean_wind_north, mean_wind_east, vario_uncompensated, vario_tas, vario_ins,
	vario_averaged, altitude, ias, tas, airborne`

// RecordOutputs appends outs to a run in one transaction. Sequence numbers
// continue from the run's current sample count.
func (db *DB) RecordOutputs(runID string, outs []navigator.Output) error {
	if len(outs) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRow(`SELECT samples FROM runs WHERE run_id = ?`, runID).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return fmt.Errorf("read sample count of run %s: %w", runID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO outputs (run_id, seq, ` + outputColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, o := range outs {
		_, err := stmt.Exec(
			runID, next+i, o.Time.Nanoseconds(),
			o.Attitude.Real, o.Attitude.Imag, o.Attitude.Jmag, o.Attitude.Kmag,
			o.Euler.Roll, o.Euler.Pitch, o.Euler.Yaw,
			o.TurnRate, o.SlipAngle, o.PitchAngle, int(o.Mode),
			o.Wind.X, o.Wind.Y, o.MeanWind.X, o.MeanWind.Y,
			o.VarioUncompensated, o.VarioTAS, o.VarioINS, o.VarioAveraged,
			o.Altitude, o.IAS, o.TAS, o.Airborne,
		)
		if err != nil {
			return fmt.Errorf("insert output %d: %w", next+i, err)
		}
	}

	if _, err := tx.Exec(`UPDATE runs SET samples = ? WHERE run_id = ?`, next+len(outs), runID); err != nil {
		return err
	}
	return tx.Commit()
}

// Outputs returns the records of a run in sequence order.
func (db *DB) Outputs(runID string) ([]navigator.Output, error) {
	rows, err := db.Query(`SELECT `+outputColumns+` FROM outputs WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outs []navigator.Output
	for rows.Next() {
		var (
			o                    navigator.Output
			timeNs               int64
			mode                 int
			windN, windE         float64
			meanWindN, meanWindE float64
		)
		err := rows.Scan(
			&timeNs,
			&o.Attitude.Real, &o.Attitude.Imag, &o.Attitude.Jmag, &o.Attitude.Kmag,
			&o.Euler.Roll, &o.Euler.Pitch, &o.Euler.Yaw,
			&o.TurnRate, &o.SlipAngle, &o.PitchAngle, &mode,
			&windN, &windE, &meanWindN, &meanWindE,
			&o.VarioUncompensated, &o.VarioTAS, &o.VarioINS, &o.VarioAveraged,
			&o.Altitude, &o.IAS, &o.TAS, &o.Airborne,
		)
		if err != nil {
			return nil, err
		}
		o.Time = time.Duration(timeNs)
		o.Mode = ahrs.FlightMode(mode)
		o.Wind = r3.Vec{X: windN, Y: windE}
		o.MeanWind = r3.Vec{X: meanWindN, Y: meanWindE}
		outs = append(outs, o)
	}
	return outs, rows.Err()
}

// Recorder batches outputs of a live run. It is not safe for concurrent use.
type Recorder struct {
	db      *DB
	runID   string
	batch   []navigator.Output
	size    int
	written int
}

// NewRecorder returns a recorder flushing every size records.
func (db *DB) NewRecorder(runID string, size int) *Recorder {
	if size < 1 {
		size = 1
	}
	return &Recorder{db: db, runID: runID, size: size, batch: make([]navigator.Output, 0, size)}
}

// Add queues o and flushes when the batch is full.
func (r *Recorder) Add(o navigator.Output) error {
	r.batch = append(r.batch, o)
	if len(r.batch) >= r.size {
		return r.Flush()
	}
	return nil
}

// Flush writes any queued records.
func (r *Recorder) Flush() error {
	if len(r.batch) == 0 {
		return nil
	}
	if err := r.db.RecordOutputs(r.runID, r.batch); err != nil {
		return err
	}
	r.written += len(r.batch)
	r.batch = r.batch[:0]
	return nil
}

// Written returns the number of records committed so far.
func (r *Recorder) Written() int { return r.written }
