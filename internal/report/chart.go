package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/vario.report/internal/ahrs"
	"github.com/banshee-data/vario.report/internal/navigator"
	"github.com/banshee-data/vario.report/internal/units"
)

// DefaultMaxPoints bounds the points per series handed to the browser.
const DefaultMaxPoints = 3000

// ChartOptions controls RenderChart.
type ChartOptions struct {
	Title     string
	Units     string
	MaxPoints int
}

// stride returns the decimation step that keeps n samples under max.
func stride(n, max int) int {
	if max <= 0 {
		max = DefaultMaxPoints
	}
	if n <= max {
		return 1
	}
	return (n + max - 1) / max
}

// RenderChart writes an HTML page with the varios and the flight mode on
// one chart and altitude and airspeed on a second.
func RenderChart(w io.Writer, outs []navigator.Output, o ChartOptions) error {
	if len(outs) == 0 {
		return fmt.Errorf("no output records to chart")
	}
	step := stride(len(outs), o.MaxPoints)

	var (
		xs                       []string
		tasVario, insVario, avg  []opts.LineData
		unc, circling, alt, tasS []opts.LineData
	)
	for i := 0; i < len(outs); i += step {
		r := outs[i]
		xs = append(xs, fmt.Sprintf("%.1f", r.Time.Seconds()))
		tasVario = append(tasVario, opts.LineData{Value: units.ConvertVario(r.VarioTAS, o.Units)})
		insVario = append(insVario, opts.LineData{Value: units.ConvertVario(r.VarioINS, o.Units)})
		avg = append(avg, opts.LineData{Value: units.ConvertVario(r.VarioAveraged, o.Units)})
		unc = append(unc, opts.LineData{Value: units.ConvertVario(-r.VarioUncompensated, o.Units)})
		mode := 0
		if r.Mode == ahrs.Circling {
			mode = 1
		}
		circling = append(circling, opts.LineData{Value: mode})
		alt = append(alt, opts.LineData{Value: units.ConvertAltitude(r.Altitude, o.Units)})
		tasS = append(tasS, opts.LineData{Value: units.ConvertSpeed(r.TAS, o.Units)})
	}

	title := o.Title
	if title == "" {
		title = "Flight"
	}
	lineOpts := charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})

	varios := charts.NewLine()
	varios.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("vario (%s), %d records", units.VarioLabel(o.Units), len(outs))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: units.VarioLabel(o.Units)}),
	)
	varios.ExtendYAxis(opts.YAxis{Name: "circling", Min: 0, Max: 1, Show: opts.Bool(false)})
	varios.SetXAxis(xs).
		AddSeries("vario TAS", tasVario, lineOpts).
		AddSeries("vario INS", insVario, lineOpts).
		AddSeries("averaged", avg, lineOpts).
		AddSeries("uncompensated", unc, lineOpts).
		AddSeries("circling", circling,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false), Step: "end", YAxisIndex: 1}),
		)

	flight := charts.NewLine()
	flight.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Altitude and airspeed"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithYAxisOpts(opts.YAxis{Name: units.AltitudeLabel(o.Units)}),
	)
	flight.ExtendYAxis(opts.YAxis{Name: units.SpeedLabel(o.Units)})
	flight.SetXAxis(xs).
		AddSeries("altitude", alt, lineOpts).
		AddSeries("TAS", tasS, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false), YAxisIndex: 1}))

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(varios, flight)
	return page.Render(w)
}
