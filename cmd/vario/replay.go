package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/vario.report/internal/db"
	"github.com/banshee-data/vario.report/internal/navigator"
	"github.com/banshee-data/vario.report/internal/report"
	"github.com/banshee-data/vario.report/internal/samplesource"
	"github.com/banshee-data/vario.report/internal/units"
)

func runReplay(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("replay")
	in := fs.String("in", "", "Recorded sample log (CSV, required)")
	dbPath := fs.String("db", "", "Store the run in this sqlite database")
	htmlPath := fs.String("html", "", "Write an HTML chart of the run")
	pngPath := fs.String("png", "", "Write a PNG plot of the varios")
	configPath := fs.String("config", "", "Tuning config JSON (defaults to the built-in values)")
	unit := fs.String("units", units.MPS, "Display units: "+units.GetValidUnitsString())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("replay: -in is required: %w", errUsage)
	}
	if err := checkUnits(*unit); err != nil {
		return err
	}

	tuning, err := loadTuning(*configPath)
	if err != nil {
		return err
	}

	f, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("open sample log: %w", err)
	}
	defer f.Close()

	nav := navigator.New(navigator.ConfigFromTuning(tuning))
	nav.OnLanded(func() { log.Print("landing detected") })

	start := time.Now()
	outs, err := nav.Replay(ctx, samplesource.NewCSVSource(f))
	if err != nil {
		return fmt.Errorf("replay %s: %w", *in, err)
	}
	if len(outs) == 0 {
		return fmt.Errorf("replay %s: no samples", *in)
	}
	log.Printf("replayed %d samples from %s in %v", len(outs), *in, time.Since(start).Round(time.Millisecond))

	if *dbPath != "" {
		cfgJSON, err := json.Marshal(tuning)
		if err != nil {
			return fmt.Errorf("encode tuning config: %w", err)
		}
		store, err := db.OpenDB(*dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()

		stored, err := store.NewRun(filepath.Base(*in), cfgJSON)
		if err != nil {
			return err
		}
		if err := store.RecordOutputs(stored.ID, outs); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "run\t%s\n", stored.ID)
	}

	return writeReport(stdout, outs, artifacts{
		title: filepath.Base(*in),
		unit:  *unit,
		html:  *htmlPath,
		png:   *pngPath,
	})
}

// artifacts names the optional files written for a run.
type artifacts struct {
	title string
	unit  string
	html  string
	png   string
}

// writeReport prints the summary of outs and writes any requested chart
// and plot files.
func writeReport(stdout io.Writer, outs []navigator.Output, a artifacts) error {
	if err := report.Summarize(outs).Write(stdout, a.unit); err != nil {
		return err
	}

	if a.html != "" {
		f, err := os.Create(a.html)
		if err != nil {
			return fmt.Errorf("create chart: %w", err)
		}
		err = report.RenderChart(f, outs, report.ChartOptions{Title: a.title, Units: a.unit})
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		log.Printf("wrote chart %s", a.html)
	}

	if a.png != "" {
		if err := report.SavePlot(a.png, outs, a.title, a.unit); err != nil {
			return fmt.Errorf("write plot: %w", err)
		}
		log.Printf("wrote plot %s", a.png)
	}
	return nil
}
