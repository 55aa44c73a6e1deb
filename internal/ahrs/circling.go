package ahrs

import "math"

// FlightMode is the output of the circling classifier.
type FlightMode uint8

const (
	StraightFlight FlightMode = iota
	Transition
	Circling
)

func (m FlightMode) String() string {
	switch m {
	case StraightFlight:
		return "straight"
	case Transition:
		return "transition"
	case Circling:
		return "circling"
	default:
		return "unknown"
	}
}

// Classifier is a debounced hysteresis state machine over the turn rate.
// The counter climbs while the turn rate exceeds the high threshold and
// falls while it is below the low one; in between it holds.
type Classifier struct {
	high    float64
	low     float64
	limit   int
	counter int
	mode    FlightMode
}

// NewClassifier returns a classifier in straight flight. limit is the
// number of samples needed to move from straight flight to circling.
func NewClassifier(high, low float64, limit int) Classifier {
	if limit < 1 {
		limit = 1
	}
	return Classifier{high: high, low: low, limit: limit}
}

// Classify feeds one turn rate sample (rad/s) and returns the new mode.
func (c *Classifier) Classify(turnRate float64) FlightMode {
	rate := math.Abs(turnRate)

	if c.counter < c.limit && rate > c.high {
		c.counter++
	} else if c.counter > 0 && rate < c.low {
		c.counter--
	}

	switch c.counter {
	case 0:
		c.mode = StraightFlight
	case c.limit:
		c.mode = Circling
	default:
		c.mode = Transition
	}
	return c.mode
}

// Mode returns the most recent classification.
func (c *Classifier) Mode() FlightMode { return c.mode }

// Counter returns the hysteresis counter in [0, limit].
func (c *Classifier) Counter() int { return c.counter }
