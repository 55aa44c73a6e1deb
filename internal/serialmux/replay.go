package serialmux

import (
	"bufio"
	"bytes"
	"io"
	"sync"
	"time"
)

// ReplayPort plays a recorded log back as if it were the sensor bridge,
// releasing one line per interval. Commands written to it are kept for
// inspection. An interval of zero replays as fast as the reader allows.
type ReplayPort struct {
	r        *bufio.Reader
	src      io.Closer
	interval time.Duration
	ticker   *time.Ticker
	pending  []byte

	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	written bytes.Buffer
}

// NewReplayPort returns a port replaying src.
func NewReplayPort(src io.ReadCloser, interval time.Duration) *ReplayPort {
	p := &ReplayPort{
		r:        bufio.NewReader(src),
		src:      src,
		interval: interval,
		done:     make(chan struct{}),
	}
	if interval > 0 {
		p.ticker = time.NewTicker(interval)
	}
	return p
}

// Read returns at most one line per interval. It is not safe for
// concurrent use; the mux has a single reader.
func (p *ReplayPort) Read(b []byte) (int, error) {
	if len(p.pending) == 0 {
		if err := p.wait(); err != nil {
			return 0, err
		}
		line, err := p.r.ReadBytes('\n')
		if len(line) == 0 {
			return 0, err
		}
		if line[len(line)-1] != '\n' {
			line = append(line, '\n')
		}
		p.pending = line
	}
	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

func (p *ReplayPort) wait() error {
	if p.ticker == nil {
		select {
		case <-p.done:
			return io.EOF
		default:
			return nil
		}
	}
	select {
	case <-p.done:
		return io.EOF
	case <-p.ticker.C:
		return nil
	}
}

// Write records a command.
func (p *ReplayPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.Write(b)
}

// Commands returns everything written to the port so far.
func (p *ReplayPort) Commands() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.String()
}

// Close stops the replay and closes the underlying reader.
func (p *ReplayPort) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		if p.ticker != nil {
			p.ticker.Stop()
		}
		err = p.src.Close()
	})
	return err
}
