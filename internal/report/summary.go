package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/bmilog/internal/bmi"
	"github.com/verte-zerg/bmilog/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a trend series.
type Summary struct {
	Count    int
	First    model.Point
	Latest   model.Point
	Min      float64
	Max      float64
	Mean     float64
	Change   float64
	Category model.Category
	Color    model.Color
}

// Summarize computes summary figures. An empty series yields a zero Summary.
func Summarize(points []model.Point) Summary {
	if len(points) == 0 {
		return Summary{}
	}
	s := Summary{
		Count:  len(points),
		First:  points[0],
		Latest: points[len(points)-1],
		Min:    points[0].BMI,
		Max:    points[0].BMI,
	}
	var sum float64
	for _, p := range points {
		sum += p.BMI
		if p.BMI < s.Min {
			s.Min = p.BMI
		}
		if p.BMI > s.Max {
			s.Max = p.BMI
		}
	}
	s.Mean = sum / float64(len(points))
	s.Change = s.Latest.BMI - s.First.BMI
	s.Category, s.Color = bmi.Classify(s.Latest.BMI)
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := valueRange(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = clamp(idx, 0, len(sparkChars)-1)
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints summary lines for a report.
func RenderSummary(w io.Writer, r Report) error {
	if len(r.Points) == 0 {
		_, err := fmt.Fprintf(w, "No data found for %s.\n", r.Name)
		return err
	}
	s := r.Summary
	lines := []string{
		fmt.Sprintf("BMI history for %s", r.Name),
		fmt.Sprintf("Measurements: %d (%s to %s)", s.Count, s.First.Date, s.Latest.Date),
		fmt.Sprintf("Latest: %.1f %s", s.Latest.BMI, s.Category),
		fmt.Sprintf("Change: %+.1f", s.Change),
		fmt.Sprintf("Min/Avg/Max: %.1f / %.1f / %.1f", s.Min, s.Mean, s.Max),
		fmt.Sprintf("Trend: %s", Sparkline(Values(r.Points))),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTrend plots raw and smoothed BMI sized to a given total width.
func RenderTrend(w io.Writer, r Report, totalWidth, height int, useColor bool) error {
	if len(r.Points) == 0 {
		return nil
	}
	series := []Series{{Name: "BMI", Values: Values(r.Points)}}
	if len(r.Points) > 1 && !sameValues(r.Smoothed, series[0].Values) {
		series = append(series, Series{Name: "Moving avg", Values: r.Smoothed})
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeries(w, fmt.Sprintf("BMI Trend for %s", r.Name), series, PlotOptions{
		Width:      width,
		Height:     height,
		ForceColor: useColor,
		StartLabel: r.Points[0].Date,
		EndLabel:   r.Points[len(r.Points)-1].Date,
	})
}

// RenderHistoryTable prints every measurement with its category.
func RenderHistoryTable(w io.Writer, points []model.Point) error {
	if len(points) == 0 {
		_, err := fmt.Fprintln(w, "No measurements found.")
		return err
	}
	headers := []string{"#", "Date", "BMI", "Category"}
	rows := make([][]string, 0, len(points))
	for i, c := range Categorize(points) {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			c.Date,
			fmt.Sprintf("%.1f", c.BMI),
			string(c.Category),
		})
	}
	for _, line := range FormatTable(headers, rows, map[int]bool{0: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func sameValues(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func valueRange(values []float64) (float64, float64) {
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, v := range values {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.IsInf(minVal, 1) {
		return 0, 0
	}
	return minVal, maxVal
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
