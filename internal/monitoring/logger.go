package monitoring

import (
	"fmt"
	"log"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// InvariantError is the panic value raised by Haltf. It marks a programming
// logic violation (an unreachable estimator state), never bad sensor input.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "invariant violated: " + e.Msg }

// Haltf is the halt/diagnostic path. The default logs the message and
// panics with an *InvariantError; there is no recovery inside the
// estimator. SetHalt replaces it.
var Haltf func(format string, v ...interface{}) = defaultHalt

func defaultHalt(format string, v ...interface{}) {
	err := &InvariantError{Msg: fmt.Sprintf(format, v...)}
	Logf("HALT: %v", err)
	panic(err)
}

// SetHalt replaces the halt handler. Passing nil restores the default.
// A replacement must not return normally if the caller relies on halting;
// tests usually install one that records the message and panics.
func SetHalt(f func(format string, v ...interface{})) {
	if f == nil {
		Haltf = defaultHalt
		return
	}
	Haltf = f
}
