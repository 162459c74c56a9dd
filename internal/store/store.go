// Package store persists measurement history and settings.
package store

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/bmilog/internal/model"
)

const (
	// BackendJSON keeps history and settings in human-readable JSON files.
	BackendJSON = "json"
	// BackendSQLite keeps history and settings in a single SQLite database.
	BackendSQLite = "sqlite"
)

// Store is the history and settings persistence contract. Every call is a
// self-contained read or read-modify-write; nothing is cached in memory.
type Store interface {
	Load(ctx context.Context) (model.History, error)
	Append(ctx context.Context, name string, m model.Measurement) error
	Clear(ctx context.Context, name string) error
	LoadSettings(ctx context.Context) (model.Settings, error)
	SaveSettings(ctx context.Context, s model.Settings) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	Dir     string
	Logger  *zap.Logger
}

// Open returns the store for the configured backend.
func Open(opts Options) (Store, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("storage directory is empty")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendJSON:
		return NewFileStore(opts.Dir, logger), nil
	case BackendSQLite:
		return OpenSQLite(opts.Dir, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (use %q or %q)", opts.Backend, BackendJSON, BackendSQLite)
	}
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRecord)
	}
	return nil
}

func validateMeasurement(m model.Measurement) error {
	if _, err := time.Parse(model.DateLayout, m.Date); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidRecord, m.Date)
	}
	if math.IsNaN(m.BMI) || math.IsInf(m.BMI, 0) || m.BMI <= 0 {
		return fmt.Errorf("%w: bmi %v must be a positive number", ErrInvalidRecord, m.BMI)
	}
	return nil
}

func validateSettings(s model.Settings) error {
	if !s.Theme.Valid() {
		return fmt.Errorf("%w: theme %q must be %q or %q", ErrInvalidRecord, s.Theme, model.ThemeLight, model.ThemeDark)
	}
	return nil
}
