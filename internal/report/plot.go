package report

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/vario.report/internal/navigator"
	"github.com/banshee-data/vario.report/internal/units"
)

const (
	plotWidth  = 14 * vg.Inch
	plotHeight = 6 * vg.Inch
)

var (
	tasColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	insColor = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
	avgColor = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
)

func newVarioPlot(outs []navigator.Output, title, unit string) (*plot.Plot, error) {
	if len(outs) == 0 {
		return nil, fmt.Errorf("no output records to plot")
	}
	tas := make(plotter.XYs, len(outs))
	ins := make(plotter.XYs, len(outs))
	avg := make(plotter.XYs, len(outs))
	for i, o := range outs {
		t := o.Time.Seconds()
		tas[i] = plotter.XY{X: t, Y: units.ConvertVario(o.VarioTAS, unit)}
		ins[i] = plotter.XY{X: t, Y: units.ConvertVario(o.VarioINS, unit)}
		avg[i] = plotter.XY{X: t, Y: units.ConvertVario(o.VarioAveraged, unit)}
	}

	p := plot.New()
	if title == "" {
		title = "Vario"
	}
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = fmt.Sprintf("Climb (%s)", units.VarioLabel(unit))
	p.Add(plotter.NewGrid())

	for _, s := range []struct {
		name  string
		xys   plotter.XYs
		color color.Color
		width vg.Length
	}{
		{"vario TAS", tas, tasColor, vg.Points(1)},
		{"vario INS", ins, insColor, vg.Points(1)},
		{"averaged", avg, avgColor, vg.Points(2)},
	} {
		line, err := plotter.NewLine(s.xys)
		if err != nil {
			return nil, fmt.Errorf("%s line: %w", s.name, err)
		}
		line.Color = s.color
		line.Width = s.width
		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	p.Legend.Top = true
	return p, nil
}

// SavePlot writes a plot of the varios to path; the extension picks the
// format (png, svg, pdf).
func SavePlot(path string, outs []navigator.Output, title, unit string) error {
	p, err := newVarioPlot(outs, title, unit)
	if err != nil {
		return err
	}
	return p.Save(plotWidth, plotHeight, path)
}

// WritePlot writes a PNG plot of the varios to w.
func WritePlot(w io.Writer, outs []navigator.Output, title, unit string) error {
	p, err := newVarioPlot(outs, title, unit)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
