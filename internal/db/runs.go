package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrRunNotFound = errors.New("run not found")

// Run is one navigator session: a replayed log or a live connection.
type Run struct {
	ID        string
	Source    string
	Config    string // tuning JSON the run was computed with
	StartedAt time.Time
	Samples   int
}

// NewRun registers a run and returns it with a fresh UUID.
func (db *DB) NewRun(source string, configJSON []byte) (Run, error) {
	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}
	run := Run{
		ID:        uuid.NewString(),
		Source:    source,
		Config:    string(configJSON),
		StartedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	_, err := db.Exec(
		`INSERT INTO runs (run_id, source, config_json, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Source, run.Config, run.StartedAt.UnixMilli(),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Run returns the run with the given id.
func (db *DB) Run(id string) (Run, error) {
	row := db.QueryRow(
		`SELECT run_id, source, config_json, started_at, samples FROM runs WHERE run_id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// Runs returns every run, newest first.
func (db *DB) Runs() ([]Run, error) {
	rows, err := db.Query(
		`SELECT run_id, source, config_json, started_at, samples FROM runs ORDER BY started_at DESC, run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and its outputs.
func (db *DB) DeleteRun(id string) error {
	res, err := db.Exec(`DELETE FROM runs WHERE run_id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		run     Run
		started int64
	)
	if err := s.Scan(&run.ID, &run.Source, &run.Config, &started, &run.Samples); err != nil {
		return Run{}, err
	}
	run.StartedAt = time.UnixMilli(started).UTC()
	return run, nil
}
