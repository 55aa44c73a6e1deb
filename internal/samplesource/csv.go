package samplesource

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// CSVSource reads samples from a recorded log. Blank lines and lines
// starting with '#' are skipped, as is a header line starting with "t,".
type CSVSource struct {
	scanner *bufio.Scanner
	line    int
}

// NewCSVSource returns a source reading from r.
func NewCSVSource(r io.Reader) *CSVSource {
	return &CSVSource{scanner: bufio.NewScanner(r)}
}

// Next implements Source.
func (c *CSVSource) Next(ctx context.Context) (Sample, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Sample{}, err
		}
		if !c.scanner.Scan() {
			if err := c.scanner.Err(); err != nil {
				return Sample{}, fmt.Errorf("read line %d: %w", c.line+1, err)
			}
			return Sample{}, io.EOF
		}
		c.line++
		text := strings.TrimSpace(c.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, "t,") {
			continue
		}
		s, err := ParseLine(text)
		if err != nil {
			return Sample{}, fmt.Errorf("line %d: %w", c.line, err)
		}
		return s, nil
	}
}

// Line returns the number of lines consumed so far.
func (c *CSVSource) Line() int { return c.line }
