// Package observer estimates the wind and the total energy compensated
// vertical speed from GNSS, inertial and air data.
//
// Vertical quantities follow the nav frame down axis: the uncompensated
// vario is negative while climbing. The compensated varios are energy
// rates and are positive on energy gain.
//
// Like the attitude estimator, an Observer is driven once per sample
// period from one goroutine and is not safe for concurrent use.
package observer
