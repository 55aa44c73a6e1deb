// Package ahrs maintains the aircraft attitude.
//
// Responsibilities: quaternion integration of the gyroscope rate, the
// complementary-filter correction from GNSS acceleration and magnetic
// induction, and the circling classifier that switches the heading
// correction strategy.
// Key types: Estimator, Classifier, FlightMode, CalibrationSlot.
//
// The estimator is driven once per sample period from a single goroutine.
// None of its methods block or allocate, and it is not safe for concurrent
// use.
package ahrs
