package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/vario.report/internal/db"
	"github.com/banshee-data/vario.report/internal/units"
)

// runRuns lists the stored runs, or deletes one with -rm.
func runRuns(args []string, stdout io.Writer) error {
	fs := newFlagSet("runs")
	dbPath := fs.String("db", "vario.db", "Path to the sqlite database")
	remove := fs.String("rm", "", "Delete the run with this ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := db.OpenDB(*dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	if *remove != "" {
		if err := store.DeleteRun(*remove); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "deleted run %s\n", *remove)
		return nil
	}

	runs, err := store.Runs()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCE\tSTARTED\tSAMPLES")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", r.ID, r.Source, r.StartedAt.Format(time.RFC3339), r.Samples)
	}
	return tw.Flush()
}

// runReport summarises a stored run and optionally charts it.
func runReport(args []string, stdout io.Writer) error {
	fs := newFlagSet("report")
	dbPath := fs.String("db", "vario.db", "Path to the sqlite database")
	runID := fs.String("run", "", "Run ID (required, see vario runs)")
	htmlPath := fs.String("html", "", "Write an HTML chart of the run")
	pngPath := fs.String("png", "", "Write a PNG plot of the varios")
	unit := fs.String("units", units.MPS, "Display units: "+units.GetValidUnitsString())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return fmt.Errorf("report: -run is required: %w", errUsage)
	}
	if err := checkUnits(*unit); err != nil {
		return err
	}

	store, err := db.OpenDB(*dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	stored, err := store.Run(*runID)
	if err != nil {
		return err
	}
	outs, err := store.Outputs(stored.ID)
	if err != nil {
		return err
	}
	if len(outs) == 0 {
		return fmt.Errorf("run %s has no output records", stored.ID)
	}

	fmt.Fprintf(stdout, "run\t%s (%s, %s)\n", stored.ID, stored.Source, stored.StartedAt.Format(time.RFC3339))
	return writeReport(stdout, outs, artifacts{
		title: stored.Source,
		unit:  *unit,
		html:  *htmlPath,
		png:   *pngPath,
	})
}
