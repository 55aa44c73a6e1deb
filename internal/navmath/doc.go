// Package navmath holds the numeric primitives shared by the attitude
// estimator and the flight observer: 3-vectors (gonum r3.Vec), fixed 3x3
// rotation matrices, unit quaternions, Euler angles and the small recursive
// filters (averager, PT2, differentiator) that run once per sample.
//
// Frames: body vectors are (front, right, bottom); nav vectors are
// (north, east, down). r3.Vec X/Y/Z carry those components in that order.
//
// Nothing in this package allocates on the per-sample path.
package navmath
