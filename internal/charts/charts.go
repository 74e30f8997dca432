// Package charts renders dashboard chart images with go-chart.
package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"ricevute/internal/stats"
)

// DailySeriesPNG renders the selected month's daily spend as bars with
// the cumulative running total as a continuous line. Returns nil bytes
// when the month has no spend at all, so callers can skip empty charts.
func DailySeriesPNG(v stats.Views) ([]byte, error) {
	if v.MonthSpend.Cents == 0 {
		return nil, nil
	}

	xs := make([]float64, len(v.Daily))
	daily := make([]float64, len(v.Daily))
	cumulative := make([]float64, len(v.Daily))
	for i, p := range v.Daily {
		xs[i] = float64(p.Day)
		daily[i] = p.Amount.Euros()
		cumulative[i] = p.Cumulative.Euros()
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Spending %s", v.Cursor),
		Width:  900,
		Height: 420,
		Background: chart.Style{
			Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(val any) string {
				return fmt.Sprintf("%.0f", val.(float64))
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(val any) string {
				return fmt.Sprintf("%.0f€", val.(float64))
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Daily",
				XValues: xs,
				YValues: daily,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					FillColor:   chart.ColorBlue.WithAlpha(60),
				},
			},
			chart.ContinuousSeries{
				Name:    "Cumulative",
				XValues: xs,
				YValues: cumulative,
				Style: chart.Style{
					StrokeColor:     chart.ColorGreen,
					StrokeDashArray: []float64{4, 2},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render daily series chart: %w", err)
	}
	return buf.Bytes(), nil
}

// BreakdownPNG renders a breakdown rollup as a bar chart, one bar per
// group in the order the rollup produced.
func BreakdownPNG(title string, entries []stats.BreakdownEntry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, len(entries))
	for i, e := range entries {
		bars[i] = chart.Value{Label: e.Name, Value: e.Total.Euros()}
	}

	graph := chart.BarChart{
		Title:  title,
		Width:  700,
		Height: 420,
		Background: chart.Style{
			Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
			FillColor: chart.ColorWhite,
		},
		BarWidth: 70,
		Bars:     bars,
		YAxis: chart.YAxis{
			ValueFormatter: func(val any) string {
				return fmt.Sprintf("%.0f€", val.(float64))
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render breakdown chart: %w", err)
	}
	return buf.Bytes(), nil
}
