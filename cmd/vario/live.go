package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/banshee-data/vario.report/internal/db"
	"github.com/banshee-data/vario.report/internal/navigator"
	"github.com/banshee-data/vario.report/internal/samplesource"
	"github.com/banshee-data/vario.report/internal/serialmux"
	"github.com/banshee-data/vario.report/internal/units"
)

type liveOptions struct {
	port       string
	replay     string
	rate       time.Duration
	serialJSON string
	dbPath     string
	listen     string
	configPath string
	unit       string
	batch      int
	status     time.Duration
}

func runLive(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("live")
	var o liveOptions
	fs.StringVar(&o.port, "port", "", "Serial device of the sensor bridge")
	fs.StringVar(&o.replay, "replay", "", "Replay a recorded log as if it were the sensor bridge")
	fs.DurationVar(&o.rate, "rate", 10*time.Millisecond, "Line interval when replaying (0 for as fast as possible)")
	fs.StringVar(&o.serialJSON, "serial", "", `Serial options as JSON, e.g. {"baud_rate":115200}`)
	fs.StringVar(&o.dbPath, "db", "", "Record the outputs in this sqlite database")
	fs.StringVar(&o.listen, "listen", ":8080", "Listen address for the debug pages (empty disables)")
	fs.StringVar(&o.configPath, "config", "", "Tuning config JSON (defaults to the built-in values)")
	fs.StringVar(&o.unit, "units", units.MPS, "Display units: "+units.GetValidUnitsString())
	fs.IntVar(&o.batch, "batch", 100, "Output records per database transaction")
	fs.DurationVar(&o.status, "status", 10*time.Second, "Interval between status lines (0 disables)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (o.port == "") == (o.replay == "") {
		return fmt.Errorf("live: exactly one of -port or -replay is required: %w", errUsage)
	}
	if err := checkUnits(o.unit); err != nil {
		return err
	}

	tuning, err := loadTuning(o.configPath)
	if err != nil {
		return err
	}

	mux, source, err := openMux(o)
	if err != nil {
		return err
	}
	defer mux.Close()

	var (
		store *db.DB
		rec   *db.Recorder
	)
	if o.dbPath != "" {
		store, err = db.OpenDB(o.dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()

		cfgJSON, err := json.Marshal(tuning)
		if err != nil {
			return fmt.Errorf("encode tuning config: %w", err)
		}
		stored, err := store.NewRun(source, cfgJSON)
		if err != nil {
			return err
		}
		rec = store.NewRecorder(stored.ID, o.batch)
		log.Printf("recording run %s", stored.ID)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	latest := &latestOutput{}

	// subscribe before monitoring so the first lines are not lost
	id, lines := mux.Subscribe()

	// run the monitor routine to manage IO on the serial port
	monitorErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := mux.Monitor(runCtx)
		// an exhausted or failed port ends the sample stream
		mux.Unsubscribe(id)
		monitorErr <- err
		log.Print("monitor routine terminated")
	}()

	nav := navigator.New(navigator.ConfigFromTuning(tuning))
	nav.OnLanded(func() { log.Print("landing detected") })
	h := navigator.NewHandoff()
	src := samplesource.NewLineSource(lines)

	navErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		navErr <- nav.Run(runCtx, src, h)
		log.Print("navigator routine terminated")
	}()

	var server *http.Server
	if o.listen != "" {
		server, err = newDebugServer(o.listen, mux, store, latest)
		if err != nil {
			cancel()
			wg.Wait()
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveUntilDone(runCtx, server)
		}()
	}

	var ticker <-chan time.Time
	if o.status > 0 {
		t := time.NewTicker(o.status)
		defer t.Stop()
		ticker = t.C
	}

	var recordErr error
	taken := 0
consume:
	for {
		select {
		case out, ok := <-h.C():
			if !ok {
				break consume
			}
			taken++
			latest.Store(out)
			if rec != nil && recordErr == nil {
				if recordErr = rec.Add(out); recordErr != nil {
					log.Printf("recording stopped: %v", recordErr)
				}
			}
		case <-ticker:
			if out, ok := latest.Load(); ok {
				fmt.Fprintln(stdout, statusLine(out, o.unit))
			}
		}
	}

	err = <-navErr
	cancel()
	wg.Wait()

	if rec != nil && recordErr == nil {
		recordErr = rec.Flush()
	}
	if rec != nil {
		log.Printf("recorded %d of %d output records", rec.Written(), taken)
	}
	if src.Skipped() > 0 {
		log.Printf("skipped %d undecodable lines", src.Skipped())
	}
	if out, ok := latest.Load(); ok {
		fmt.Fprintln(stdout, statusLine(out, o.unit))
	}

	if err != nil && !isShutdown(err) {
		return err
	}
	if merr := <-monitorErr; merr != nil && !isShutdown(merr) {
		return fmt.Errorf("serial monitor: %w", merr)
	}
	return recordErr
}

// isShutdown reports whether err only says that the run was stopped.
func isShutdown(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// openMux returns a mux over the sensor bridge or over a replayed log, and
// the name the run is stored under.
func openMux(o liveOptions) (serialmux.SerialMuxInterface, string, error) {
	if o.replay != "" {
		f, err := os.Open(o.replay)
		if err != nil {
			return nil, "", fmt.Errorf("open replay log: %w", err)
		}
		return serialmux.NewSerialMux(serialmux.NewReplayPort(f, o.rate)), "replay:" + o.replay, nil
	}

	var opts serialmux.PortOptions
	if o.serialJSON != "" {
		if err := json.Unmarshal([]byte(o.serialJSON), &opts); err != nil {
			return nil, "", fmt.Errorf("parse -serial options: %w", err)
		}
	}
	mux, err := serialmux.Open(o.port, opts)
	if err != nil {
		return nil, "", err
	}
	log.Printf("opened sensor bridge %s", o.port)
	return mux, o.port, nil
}

// latestOutput holds the most recent record for the status line and the
// HTTP endpoint.
type latestOutput struct {
	mu  sync.Mutex
	out navigator.Output
	ok  bool
}

func (l *latestOutput) Store(o navigator.Output) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out, l.ok = o, true
}

func (l *latestOutput) Load() (navigator.Output, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out, l.ok
}

func (l *latestOutput) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	out, ok := l.Load()
	if !ok {
		http.Error(w, "No output yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		http.Error(w, "Failed to encode output", http.StatusInternalServerError)
	}
}

// newDebugServer mounts the mux and database admin routes and the latest
// output endpoint, and binds the listen address.
func newDebugServer(addr string, mux serialmux.SerialMuxInterface, store *db.DB, latest *latestOutput) (*http.Server, error) {
	httpMux := http.NewServeMux()
	mux.AttachAdminRoutes(httpMux)
	if store != nil {
		if err := store.AttachAdminRoutes(httpMux); err != nil {
			return nil, fmt.Errorf("attach database routes: %w", err)
		}
	}
	httpMux.Handle("/api/latest", latest)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	log.Printf("debug pages at http://%s/debug/", ln.Addr())

	server := &http.Server{Handler: httpMux}
	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("http server: %v", err)
		}
	}()
	return server, nil
}

// serveUntilDone shuts server down once ctx is done.
func serveUntilDone(ctx context.Context, server *http.Server) {
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("failed to shut down http server: %v", err)
		server.Close()
	}
}

func statusLine(o navigator.Output, unit string) string {
	roll, _, heading := o.Euler.Degrees()
	return fmt.Sprintf("%8.1fs  %-10s  bank %5.1f°  hdg %03.0f°  vario %+5.1f %s  avg %+5.1f %s  alt %5.0f %s  tas %4.0f %s",
		o.Time.Seconds(), o.Mode, roll, heading,
		units.ConvertVario(o.VarioTAS, unit), units.VarioLabel(unit),
		units.ConvertVario(o.VarioAveraged, unit), units.VarioLabel(unit),
		units.ConvertAltitude(o.Altitude, unit), units.AltitudeLabel(unit),
		units.ConvertSpeed(o.TAS, unit), units.SpeedLabel(unit))
}
