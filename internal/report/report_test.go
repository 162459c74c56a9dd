package report

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/bmilog/internal/model"
)

type staticLoader struct {
	history model.History
	err     error
}

func (l staticLoader) Load(context.Context) (model.History, error) {
	return l.history, l.err
}

func aliceHistory() model.History {
	return model.History{
		"Alice": {
			{Date: "2024-03-02", BMI: 24.1},
			{Date: "2024-03-01", BMI: 23.4},
			{Date: "2024-03-05", BMI: 25.2},
		},
		"Bob": {{Date: "2024-03-01", BMI: 31}},
	}
}

func TestTrendKeepsStoredOrder(t *testing.T) {
	want := []model.Point{
		{Date: "2024-03-02", BMI: 24.1},
		{Date: "2024-03-01", BMI: 23.4},
		{Date: "2024-03-05", BMI: 25.2},
	}
	if diff := cmp.Diff(want, Trend(aliceHistory(), "Alice")); diff != "" {
		t.Fatalf("trend mismatch (-want +got):\n%s", diff)
	}
}

func TestTrendUnknownNameIsEmpty(t *testing.T) {
	got := Trend(aliceHistory(), "alice")
	require.NotNil(t, got)
	require.Empty(t, got)
	require.Empty(t, Trend(nil, "Alice"))
}

func TestTrendDoesNotAliasHistory(t *testing.T) {
	h := aliceHistory()
	points := Trend(h, "Alice")
	points[0].BMI = 99
	require.Equal(t, 24.1, h["Alice"][0].BMI)
}

func TestExportTable(t *testing.T) {
	table := ExportTable(aliceHistory(), "Alice")
	require.Equal(t, []string{"Date", "BMI"}, table.Header)
	require.Equal(t, Trend(aliceHistory(), "Alice"), table.Rows)
	require.Equal(t, [][]string{
		{"Date", "BMI"},
		{"2024-03-02", "24.1"},
		{"2024-03-01", "23.4"},
		{"2024-03-05", "25.2"},
	}, table.Records())

	empty := ExportTable(aliceHistory(), "Carol")
	require.True(t, empty.Empty())
	require.Equal(t, []string{"Date", "BMI"}, empty.Header)
}

func TestBuildReport(t *testing.T) {
	r, err := BuildReport(context.Background(), staticLoader{history: aliceHistory()}, model.ReportConfig{Name: "Alice", Window: 2})
	require.NoError(t, err)
	require.Len(t, r.Points, 3)
	require.Len(t, r.Smoothed, 3)
	require.InDelta(t, (24.1+23.4)/2, r.Smoothed[1], 1e-9)
	require.InDelta(t, (23.4+25.2)/2, r.Smoothed[2], 1e-9)
	require.Equal(t, 3, r.Summary.Count)
	require.Equal(t, model.CategoryOverweight, r.Summary.Category)
}

func TestBuildReportPropagatesLoadError(t *testing.T) {
	boom := errors.New("corrupt")
	_, err := BuildReport(context.Background(), staticLoader{err: boom}, model.ReportConfig{Name: "Alice"})
	require.ErrorIs(t, err, boom)
}

func TestSummarize(t *testing.T) {
	s := Summarize(Trend(aliceHistory(), "Alice"))
	require.Equal(t, 3, s.Count)
	require.Equal(t, "2024-03-02", s.First.Date)
	require.Equal(t, "2024-03-05", s.Latest.Date)
	require.Equal(t, 23.4, s.Min)
	require.Equal(t, 25.2, s.Max)
	require.InDelta(t, (24.1+23.4+25.2)/3, s.Mean, 1e-9)
	require.InDelta(t, 1.1, s.Change, 1e-9)
	require.Equal(t, model.ColorOrange, s.Color)

	require.Equal(t, Summary{}, Summarize(nil))
}

func TestMovingAverage(t *testing.T) {
	require.Equal(t, []float64{1, 1.5, 2.5, 3.5}, MovingAverage([]float64{1, 2, 3, 4}, 2))
	require.Equal(t, []float64{1, 2}, MovingAverage([]float64{1, 2}, 0))
	require.Empty(t, MovingAverage(nil, 3))
}

func TestSparkline(t *testing.T) {
	require.Equal(t, "", Sparkline(nil))
	require.Equal(t, "+++", Sparkline([]float64{5, 5, 5}))
	line := Sparkline([]float64{1, 2, 3})
	require.Len(t, line, 3)
	require.Equal(t, byte(' '), line[0])
	require.Equal(t, byte('@'), line[2])
}

func TestCategorize(t *testing.T) {
	got := Categorize([]model.Point{{Date: "2024-01-01", BMI: 17}, {Date: "2024-01-02", BMI: 30}})
	require.Equal(t, model.CategoryUnderweight, got[0].Category)
	require.Equal(t, model.CategoryObese, got[1].Category)
}
