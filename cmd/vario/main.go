package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/vario.report/internal/config"
	"github.com/banshee-data/vario.report/internal/units"
	"github.com/banshee-data/vario.report/internal/version"
)

// errUsage marks errors caused by a bad command line.
var errUsage = errors.New("invalid usage")

func main() {
	flag.Usage = func() { printUsage(os.Stderr) }
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flag.Args(), os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
			printUsage(os.Stderr)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

// run dispatches one subcommand. Reports and summaries go to stdout,
// progress goes to the standard logger.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command: %w", errUsage)
	}

	command, rest := args[0], args[1:]
	switch command {
	case "replay":
		return runReplay(ctx, rest, stdout)
	case "live":
		return runLive(ctx, rest, stdout)
	case "runs":
		return runRuns(rest, stdout)
	case "report":
		return runReport(rest, stdout)
	case "migrate":
		return runMigrate(rest, stdout)
	case "version":
		fmt.Fprintln(stdout, version.String())
		return nil
	case "help":
		printUsage(stdout)
		return nil
	default:
		return fmt.Errorf("unknown command %q: %w", command, errUsage)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `vario - attitude, wind and vario estimation for gliders

Usage: vario <command> [options]

Commands:
  replay     Run the navigator over a recorded sample log
  live       Run the navigator on a sensor bridge and serve debug pages
  runs       List or delete the runs stored in a database
  report     Summarise and chart a stored run
  migrate    Manage the database schema (up, down, version, force N)
  version    Show the build version
  help       Show this help message

Examples:
  # Replay a log, store it and write a chart
  vario replay -in flight.csv -db vario.db -html flight.html -units knots

  # Fly with the sensor bridge on USB, debug pages on :8080
  vario live -port /dev/ttyUSB0 -db vario.db

  # Exercise the live path with a recording at 100 Hz
  vario live -replay flight.csv -rate 10ms

Run "vario <command> -h" for the options of each command.
`)
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

// loadTuning reads a tuning override file, or the built-in defaults when
// path is empty.
func loadTuning(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.DefaultTuningConfig(), nil
	}
	cfg, err := config.LoadTuningConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load tuning config %s: %w", path, err)
	}
	return cfg, nil
}

func checkUnits(unit string) error {
	if !units.IsValid(unit) {
		return fmt.Errorf("invalid units %q, want one of %s: %w", unit, units.GetValidUnitsString(), errUsage)
	}
	return nil
}
