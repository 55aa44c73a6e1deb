// Package navigator wires the attitude estimator and the flight observer
// into the per-sample processing chain: sensor mapping, air data, GNSS
// bookkeeping, airborne detection and the output record handed to
// readers.
package navigator
