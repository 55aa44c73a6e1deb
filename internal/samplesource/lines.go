package samplesource

import (
	"context"
	"io"
	"strings"

	"github.com/banshee-data/vario.report/internal/monitoring"
)

// LineSource decodes samples from a channel of text lines, typically a
// serial mux subscription. Blank, comment and header lines are ignored as
// in CSVSource; undecodable lines are logged and skipped. A closed channel
// ends the stream with io.EOF.
type LineSource struct {
	lines   <-chan string
	skipped int
}

// NewLineSource returns a source reading from lines.
func NewLineSource(lines <-chan string) *LineSource {
	return &LineSource{lines: lines}
}

// Next implements Source.
func (l *LineSource) Next(ctx context.Context) (Sample, error) {
	for {
		select {
		case <-ctx.Done():
			return Sample{}, ctx.Err()
		case line, ok := <-l.lines:
			if !ok {
				return Sample{}, io.EOF
			}
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "t,") {
				continue
			}
			s, err := ParseLine(line)
			if err != nil {
				l.skipped++
				monitoring.Logf("samplesource: skipping line: %v", err)
				continue
			}
			return s, nil
		}
	}
}

// Skipped returns the number of lines that failed to decode.
func (l *LineSource) Skipped() int { return l.skipped }
