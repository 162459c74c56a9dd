package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/bmilog/internal/model"
)

func sampleTable() Table {
	return ExportTable(model.History{
		"Alice": {
			{Date: "2024-03-01", BMI: 22.857142857142858},
			{Date: "2024-03-02", BMI: 23},
		},
	}, "Alice")
}

func TestWriteExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, sampleTable(), FormatCSV))
	require.Equal(t, "Date,BMI\n2024-03-01,22.857142857142858\n2024-03-02,23\n", buf.String())
}

func TestWriteExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, sampleTable(), FormatJSON))
	require.JSONEq(t, `[{"date":"2024-03-01","bmi":22.857142857142858},{"date":"2024-03-02","bmi":23}]`, buf.String())
}

func TestWriteExportYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, sampleTable(), FormatYAML))
	require.Equal(t, "- date: \"2024-03-01\"\n  bmi: 22.857142857142858\n- date: \"2024-03-02\"\n  bmi: 23\n", buf.String())
}

func TestWriteExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteExport(&buf, ExportTable(model.History{}, "Nobody"), FormatCSV)
	require.ErrorIs(t, err, ErrNoData)
	require.Zero(t, buf.Len())
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name, path, want string
	}{
		{"", "out.csv", FormatCSV},
		{"", "out.JSON", FormatJSON},
		{"", "out.yml", FormatYAML},
		{"", "", FormatCSV},
		{"YAML", "out.csv", FormatYAML},
		{"json", "", FormatJSON},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.name, tc.path)
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}
	_, err := ParseFormat("xml", "")
	require.Error(t, err)
}
