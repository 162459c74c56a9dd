package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/bmilog/internal/model"
)

// ErrNoData is returned when there is nothing to export.
var ErrNoData = errors.New("no data to export")

// Export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseFormat normalizes a format name, inferring it from a file extension
// when name is empty.
func ParseFormat(name, path string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		lower := strings.ToLower(path)
		switch {
		case strings.HasSuffix(lower, ".json"):
			return FormatJSON, nil
		case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
			return FormatYAML, nil
		default:
			return FormatCSV, nil
		}
	}
	switch name {
	case FormatCSV, FormatJSON:
		return name, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (use csv, json or yaml)", name)
	}
}

// WriteExport serializes t to w. Empty tables return ErrNoData without writing.
func WriteExport(w io.Writer, t Table, format string) error {
	if t.Empty() {
		return ErrNoData
	}
	switch format {
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(t.Records()); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(measurements(t)); err != nil {
			return fmt.Errorf("failed to write json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(measurements(t)); err != nil {
			return fmt.Errorf("failed to write yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to write yaml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func measurements(t Table) []model.Measurement {
	out := make([]model.Measurement, len(t.Rows))
	for i, p := range t.Rows {
		out[i] = model.Measurement{Date: p.Date, BMI: p.BMI}
	}
	return out
}
