package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/bmilog/internal/model"
)

func TestFileStoreWritesReadableJSON(t *testing.T) {
	dir := t.TempDir()
	st := NewFileStore(dir, nil)
	ctx := context.Background()
	require.NoError(t, st.Append(ctx, "Alice", model.Measurement{Date: "2024-05-01", BMI: 22.5}))

	data, err := os.ReadFile(filepath.Join(dir, historyFileName))
	require.NoError(t, err)
	want := "{\n    \"Alice\": [\n        {\n            \"date\": \"2024-05-01\",\n            \"bmi\": 22.5\n        }\n    ]\n}\n"
	require.Equal(t, want, string(data))
}

func TestFileStoreMalformedHistory(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{oops"},
		{"empty file", ""},
		{"array top level", `[{"date":"2024-01-01","bmi":20}]`},
		{"null top level", `null`},
		{"entries not a list", `{"Alice": {"date":"2024-01-01","bmi":20}}`},
		{"null entries", `{"Alice": null}`},
		{"missing bmi", `{"Alice": [{"date":"2024-01-01"}]}`},
		{"bad date", `{"Alice": [{"date":"01/02/2024","bmi":20}]}`},
		{"zero bmi", `{"Alice": [{"date":"2024-01-01","bmi":0}]}`},
		{"unknown field", `{"Alice": [{"date":"2024-01-01","bmi":20,"note":"x"}]}`},
		{"empty name", `{"": [{"date":"2024-01-01","bmi":20}]}`},
		{"trailing data", `{"Alice": []} {}`},
		{"duplicate name", `{"Alice": [{"date":"2024-01-01","bmi":20},{"date":"2024-01-02","bmi":21}], "Alice": [{"date":"2024-01-03","bmi":22}]}`},
		{"unclosed object", `{"Alice": []`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, historyFileName)
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))
			st := NewFileStore(dir, nil)

			_, err := st.Load(context.Background())
			var readErr *ReadError
			require.True(t, errors.As(err, &readErr), "expected ReadError, got %v", err)
			require.Equal(t, path, readErr.Path)

			err = st.Append(context.Background(), "Bob", model.Measurement{Date: "2024-01-01", BMI: 20})
			require.True(t, errors.As(err, &readErr))
			data, rerr := os.ReadFile(path)
			require.NoError(t, rerr)
			require.Equal(t, tc.content, string(data), "corrupt file must not be overwritten")
		})
	}
}

func TestFileStoreMalformedSettings(t *testing.T) {
	for _, content := range []string{`{"theme":"purple"}`, `{}`, `"dark"`, `{"theme":"dark","font":"x"}`} {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, settingsFileName), []byte(content), 0o644))
		_, err := NewFileStore(dir, nil).LoadSettings(context.Background())
		var readErr *ReadError
		require.True(t, errors.As(err, &readErr), "content %s: got %v", content, err)
	}
}

func TestFileStoreFailedWriteKeepsPriorState(t *testing.T) {
	dir := t.TempDir()
	st := NewFileStore(dir, nil)
	ctx := context.Background()
	require.NoError(t, st.Append(ctx, "Alice", model.Measurement{Date: "2024-01-01", BMI: 21}))
	path := filepath.Join(dir, historyFileName)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	renameFile = func(string, string) error { return errors.New("disk full") }
	t.Cleanup(func() { renameFile = os.Rename })

	err = st.Append(ctx, "Alice", model.Measurement{Date: "2024-01-02", BMI: 22})
	var writeErr *WriteError
	require.True(t, errors.As(err, &writeErr), "expected WriteError, got %v", err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must be cleaned up")

	err = st.Clear(ctx, "Alice")
	require.True(t, errors.As(err, &writeErr))
	history, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, history["Alice"], 1)
}

func TestFileStoreCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := NewFileStore(t.TempDir(), nil)
	_, err := st.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, st.Append(ctx, "Alice", model.Measurement{Date: "2024-01-01", BMI: 20}), context.Canceled)
	require.ErrorIs(t, st.Clear(ctx, "Alice"), context.Canceled)
}

func TestFileStoreSettingsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	require.NoError(t, NewFileStore(dir, nil).SaveSettings(ctx, model.Settings{Theme: model.ThemeDark}))
	settings, err := NewFileStore(dir, nil).LoadSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, model.ThemeDark, settings.Theme)
}
