package main

import (
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/banshee-data/vario.report/internal/db"
)

// runMigrate handles the migrate subcommand. Opening the database already
// applies pending migrations, so "up" only reports the resulting version.
func runMigrate(args []string, stdout io.Writer) error {
	fs := newFlagSet("migrate")
	dbPath := fs.String("db", "vario.db", "Path to the sqlite database")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("migrate: missing action (up, down, version, force N): %w", errUsage)
	}
	action := fs.Arg(0)

	store, err := db.OpenDB(*dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	switch action {
	case "up":
		if err := store.MigrateUp(); err != nil {
			return err
		}
	case "down":
		log.Printf("rolling back one migration")
		if err := store.MigrateDown(); err != nil {
			return err
		}
	case "version":
	case "force":
		if fs.NArg() < 2 {
			return fmt.Errorf("migrate force: missing version: %w", errUsage)
		}
		v, err := strconv.Atoi(fs.Arg(1))
		if err != nil {
			return fmt.Errorf("migrate force: invalid version %q: %w", fs.Arg(1), errUsage)
		}
		log.Printf("forcing migration version to %d", v)
		if err := store.MigrateForce(v); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown migrate action %q: %w", action, errUsage)
	}

	version, dirty, err := store.MigrateVersion()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "version %d (dirty: %v)\n", version, dirty)
	return nil
}
