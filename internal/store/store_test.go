package store

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/bmilog/internal/model"
)

func backends(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		BackendJSON: func(t *testing.T) Store {
			st, err := Open(Options{Backend: BackendJSON, Dir: t.TempDir()})
			require.NoError(t, err)
			return st
		},
		BackendSQLite: func(t *testing.T) Store {
			st, err := Open(Options{Backend: BackendSQLite, Dir: t.TempDir()})
			require.NoError(t, err)
			t.Cleanup(func() {
				_ = st.Close()
			})
			return st
		},
	}
}

func TestStoreContract(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("empty load", func(t *testing.T) {
				st := open(t)
				history, err := st.Load(context.Background())
				require.NoError(t, err)
				require.Empty(t, history)
			})
			t.Run("append preserves order", func(t *testing.T) {
				testAppendPreservesOrder(t, open(t))
			})
			t.Run("clear", func(t *testing.T) {
				testClear(t, open(t))
			})
			t.Run("settings", func(t *testing.T) {
				testSettings(t, open(t))
			})
			t.Run("rejects invalid measurement", func(t *testing.T) {
				st := open(t)
				ctx := context.Background()
				require.ErrorIs(t, st.Append(ctx, "Alice", model.Measurement{Date: "2024-01-01", BMI: 0}), ErrInvalidRecord)
				require.ErrorIs(t, st.Append(ctx, "Alice", model.Measurement{Date: "yesterday", BMI: 20}), ErrInvalidRecord)
				require.ErrorIs(t, st.Append(ctx, "  ", model.Measurement{Date: "2024-01-01", BMI: 20}), ErrInvalidRecord)
				history, err := st.Load(ctx)
				require.NoError(t, err)
				require.Empty(t, history)
			})
		})
	}
}

func testAppendPreservesOrder(t *testing.T, st Store) {
	ctx := context.Background()
	entries := []model.Measurement{
		{Date: "2024-03-02", BMI: 22.5},
		{Date: "2024-03-01", BMI: 23.1},
		{Date: "2024-03-01", BMI: 22.857142857142858},
	}
	for i, m := range entries {
		require.NoError(t, st.Append(ctx, "Alice", m))
		history, err := st.Load(ctx)
		require.NoError(t, err)
		got := history["Alice"]
		if diff := cmp.Diff(entries[:i+1], got); diff != "" {
			t.Fatalf("history mismatch after append %d (-want +got):\n%s", i, diff)
		}
	}
	require.NoError(t, st.Append(ctx, "alice", model.Measurement{Date: "2024-03-03", BMI: 30}))
	history, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Len(t, history["Alice"], 3)
	require.Len(t, history["alice"], 1)
}

func testClear(t *testing.T, st Store) {
	ctx := context.Background()
	require.NoError(t, st.Append(ctx, "Alice", model.Measurement{Date: "2024-01-01", BMI: 21}))
	require.NoError(t, st.Append(ctx, "Bob", model.Measurement{Date: "2024-01-01", BMI: 27}))

	require.NoError(t, st.Clear(ctx, "Alice"))
	history, err := st.Load(ctx)
	require.NoError(t, err)
	_, ok := history["Alice"]
	require.False(t, ok)
	require.Len(t, history["Bob"], 1)

	require.NoError(t, st.Clear(ctx, "Alice"))
	require.NoError(t, st.Clear(ctx, "Nobody"))
	require.ErrorIs(t, st.Clear(ctx, " "), ErrInvalidRecord)
	history, err = st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func testSettings(t *testing.T, st Store) {
	ctx := context.Background()
	settings, err := st.LoadSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, model.ThemeLight, settings.Theme)

	require.NoError(t, st.SaveSettings(ctx, model.Settings{Theme: model.ThemeDark}))
	settings, err = st.LoadSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, model.ThemeDark, settings.Theme)

	require.NoError(t, st.SaveSettings(ctx, model.Settings{Theme: model.ThemeLight}))
	settings, err = st.LoadSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, model.ThemeLight, settings.Theme)

	require.ErrorIs(t, st.SaveSettings(ctx, model.Settings{Theme: "blue"}), ErrInvalidRecord)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(Options{Backend: "csv", Dir: t.TempDir()})
	require.Error(t, err)
	_, err = Open(Options{Backend: BackendJSON})
	require.Error(t, err)
}
