package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/bmilog/internal/model"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{20, 21, 22, 21, 20}},
		{Name: "B", Values: []float64{20, 20, 21, 22, 23}},
	}, PlotOptions{Width: 30, Height: 4, StartLabel: "2024-01-01", EndLabel: "2024-01-05"})
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Test Plot", "Legend:", "23.0", "20.0", "2024-01-01", "2024-01-05"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes for non-terminal writer")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if expectedMin := 1 + 4 + 1 + 1; len(lines) < expectedMin {
		t.Fatalf("expected at least %d lines of output, got %d", expectedMin, len(lines))
	}
}

func TestPlotSeriesEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "Empty", []Series{{Name: "A"}}, PlotOptions{Width: 10}); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPlotWidthFor(t *testing.T) {
	axisWidth := axisLabelWidth + len([]rune(axisSeparator))
	if got := PlotWidthFor(80); got != 80-axisWidth {
		t.Fatalf("expected width %d, got %d", 80-axisWidth, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}

func TestResampleSeries(t *testing.T) {
	if got := resampleSeries([]float64{1, 3}, 3); got[1] != 2 {
		t.Fatalf("expected interpolated midpoint, got %v", got)
	}
	if got := resampleSeries([]float64{1, 3, 5, 7}, 2); got[0] != 2 || got[1] != 6 {
		t.Fatalf("expected bucket averages, got %v", got)
	}
	if got := resampleSeries([]float64{4}, 3); got[2] != 4 {
		t.Fatalf("expected repeated value, got %v", got)
	}
}

func TestRenderTrendSinglePoint(t *testing.T) {
	var buf bytes.Buffer
	r := Report{
		Name:     "Alice",
		Points:   []model.Point{{Date: "2024-01-01", BMI: 22}},
		Smoothed: []float64{22},
	}
	if err := RenderTrend(&buf, r, 40, 4, false); err != nil {
		t.Fatalf("RenderTrend failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "BMI Trend for Alice") {
		t.Fatalf("missing title:\n%s", out)
	}
	if strings.Contains(out, "Moving avg") {
		t.Fatalf("single point should not plot a moving average:\n%s", out)
	}
}

func TestRenderSummaryNoData(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, Report{Name: "Carol"}); err != nil {
		t.Fatalf("RenderSummary failed: %v", err)
	}
	if buf.String() != "No data found for Carol.\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
