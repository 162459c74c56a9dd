package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/bmilog/internal/model"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Name", "BMI", "Count"}
	rows := [][]string{
		{"Alice", "22.9", "12"},
		{"Zoë", "8.0", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := FormatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Name   BMI Count" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Alice 22.9    12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Zoë    8.0     3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := FormatTable([]string{"Name", "BMI"}, [][]string{{"太郎", "21.0"}, {"Al", "30.5"}}, map[int]bool{1: true})
	if lines[1] != "太郎 21.0" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "Al   30.5" {
		t.Fatalf("unexpected narrow row: %q", lines[2])
	}
}

func TestRenderHistoryTable(t *testing.T) {
	var buf bytes.Buffer
	err := RenderHistoryTable(&buf, []model.Point{{Date: "2024-01-01", BMI: 22.86}, {Date: "2024-01-02", BMI: 31.04}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Date", "Category", "22.9", "Normal weight", "31.0", "Obese"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
