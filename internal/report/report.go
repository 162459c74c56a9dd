// Package report derives trend series, summaries and export tables from history.
package report

import (
	"context"
	"strconv"

	"github.com/verte-zerg/bmilog/internal/bmi"
	"github.com/verte-zerg/bmilog/internal/model"
)

// Loader reads the persisted history. Reports never write.
type Loader interface {
	Load(ctx context.Context) (model.History, error)
}

// Table is a flat export projection with a header row.
type Table struct {
	Header []string
	Rows   []model.Point
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// Records returns the header followed by rows formatted as strings.
// BMI values keep full precision.
func (t Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), t.Header...))
	for _, p := range t.Rows {
		out = append(out, []string{p.Date, strconv.FormatFloat(p.BMI, 'f', -1, 64)})
	}
	return out
}

// Trend returns name's measurements as (date, bmi) pairs in stored order.
// An unknown name yields an empty, non-nil series.
func Trend(h model.History, name string) []model.Point {
	entries := h[name]
	points := make([]model.Point, 0, len(entries))
	for _, m := range entries {
		points = append(points, model.Point{Date: m.Date, BMI: m.BMI})
	}
	return points
}

// ExportTable projects name's history into a Date/BMI table.
func ExportTable(h model.History, name string) Table {
	return Table{
		Header: []string{"Date", "BMI"},
		Rows:   Trend(h, name),
	}
}

// Report contains precomputed data for history rendering.
type Report struct {
	Name     string
	Points   []model.Point
	Smoothed []float64
	Summary  Summary
}

// BuildReport loads history and prepares the report for one person.
func BuildReport(ctx context.Context, loader Loader, cfg model.ReportConfig) (Report, error) {
	history, err := loader.Load(ctx)
	if err != nil {
		return Report{}, err
	}
	points := Trend(history, cfg.Name)
	return Report{
		Name:     cfg.Name,
		Points:   points,
		Smoothed: MovingAverage(Values(points), cfg.Window),
		Summary:  Summarize(points),
	}, nil
}

// Values extracts BMI values from points.
func Values(points []model.Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.BMI
	}
	return out
}

// Categorized pairs a point with its derived category.
type Categorized struct {
	model.Point
	Category model.Category
	Color    model.Color
}

// Categorize recomputes the category of every point.
func Categorize(points []model.Point) []Categorized {
	out := make([]Categorized, len(points))
	for i, p := range points {
		cat, color := bmi.Classify(p.BMI)
		out[i] = Categorized{Point: p, Category: cat, Color: color}
	}
	return out
}
