package navmath

// Averager is a single-pole low-pass filter:
//
//	y[k] = y[k-1] + alpha·(x[k] − y[k-1])
//
// alpha is the cutoff frequency divided by the sample rate (Ts / τ for a
// time constant τ). The state starts at zero.
type Averager struct {
	alpha  float64
	output float64
}

// NewAverager returns an averager with the given alpha, clamped to (0, 1].
func NewAverager(alpha float64) Averager {
	if alpha > 1 {
		alpha = 1
	}
	if alpha <= 0 {
		alpha = Small
	}
	return Averager{alpha: alpha}
}

// NewAveragerTC returns an averager with time constant tc (s) sampled every
// ts (s).
func NewAveragerTC(tc, ts float64) Averager {
	if tc <= 0 {
		return NewAverager(1)
	}
	return NewAverager(ts / tc)
}

// Respond feeds one sample and returns the new output.
func (a *Averager) Respond(x float64) float64 {
	a.output += a.alpha * (x - a.output)
	return a.output
}

// Output returns the current output without feeding a sample.
func (a *Averager) Output() float64 { return a.output }

// Settle forces the state to v.
func (a *Averager) Settle(v float64) { a.output = v }

// PT2 is a critically damped second-order low-pass made of two cascaded
// averagers sharing the same alpha.
type PT2 struct {
	first, second Averager
}

// NewPT2TC returns a PT2 with time constant tc (s) per stage sampled every
// ts (s).
func NewPT2TC(tc, ts float64) PT2 {
	return PT2{first: NewAveragerTC(tc, ts), second: NewAveragerTC(tc, ts)}
}

// Respond feeds one sample and returns the new output.
func (p *PT2) Respond(x float64) float64 {
	return p.second.Respond(p.first.Respond(x))
}

// Output returns the current output.
func (p *PT2) Output() float64 { return p.second.Output() }

// Settle forces both stages to v.
func (p *PT2) Settle(v float64) {
	p.first.Settle(v)
	p.second.Settle(v)
}

// Differentiator returns the backward difference of its input divided by
// the sample period. The first sample yields zero.
type Differentiator struct {
	invTs   float64
	last    float64
	primed  bool
	current float64
}

// NewDifferentiator returns a differentiator for sample period ts (s).
func NewDifferentiator(ts float64) Differentiator {
	return Differentiator{invTs: 1 / ts}
}

// Respond feeds one sample and returns the rate of change.
func (d *Differentiator) Respond(x float64) float64 {
	if !d.primed {
		d.primed = true
		d.last = x
		d.current = 0
		return 0
	}
	d.current = (x - d.last) * d.invTs
	d.last = x
	return d.current
}

// Output returns the most recent rate of change.
func (d *Differentiator) Output() float64 { return d.current }
