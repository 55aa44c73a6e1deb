package navigator

// Handoff passes output records from the navigator to readers. It holds at
// most one record; publishing replaces an unread record, so readers always
// see the latest completed cycle and never a partially written one.
//
// There must be a single publisher. Any number of goroutines may read, but
// each record is delivered to exactly one of them.
type Handoff struct {
	ch chan Output
}

// NewHandoff returns an empty handoff.
func NewHandoff() *Handoff {
	return &Handoff{ch: make(chan Output, 1)}
}

// Publish stores o, dropping any record not yet taken. It never blocks.
func (h *Handoff) Publish(o Output) {
	for {
		select {
		case h.ch <- o:
			return
		default:
		}
		// full: drop the stale record and retry
		select {
		case <-h.ch:
		default:
		}
	}
}

// C returns the channel readers receive from. It is closed by Close.
func (h *Handoff) C() <-chan Output { return h.ch }

// Latest takes the pending record without blocking.
func (h *Handoff) Latest() (Output, bool) {
	select {
	case o, ok := <-h.ch:
		return o, ok
	default:
		return Output{}, false
	}
}

// Close ends the stream. Publish must not be called afterwards.
func (h *Handoff) Close() { close(h.ch) }
