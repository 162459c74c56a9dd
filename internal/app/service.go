// Package app exposes the measurement use cases consumed by the CLI and TUI.
package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/bmilog/internal/bmi"
	"github.com/verte-zerg/bmilog/internal/model"
	"github.com/verte-zerg/bmilog/internal/report"
	"github.com/verte-zerg/bmilog/internal/store"
)

// Result is the outcome of a successful submission.
type Result struct {
	Measurement model.Measurement
	BMI         float64
	Category    model.Category
	Color       model.Color
}

// Label formats the result the way it is shown to the user.
func (r Result) Label() string {
	return fmt.Sprintf("%.1f %s", r.BMI, r.Category)
}

// Service wires validation, the BMI engine and the history store.
type Service struct {
	store  store.Store
	now    func() time.Time
	logger *zap.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the date source used to stamp measurements.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service backed by st.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates raw input, computes and classifies the BMI and appends
// it to name's history.
func (s *Service) Submit(ctx context.Context, name, rawWeight, rawHeight string) (Result, error) {
	name, err := requireName(name)
	if err != nil {
		return Result{}, err
	}
	weight, err := parsePositive("weight", rawWeight)
	if err != nil {
		return Result{}, err
	}
	rawH, err := parsePositive("height", rawHeight)
	if err != nil {
		return Result{}, err
	}
	height := bmi.NormalizeHeight(rawH)

	value := bmi.Compute(weight, height)
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return Result{}, &ValidationError{Field: "height", Reason: "enter a valid height"}
	}
	category, color := bmi.Classify(value)
	m := model.NewMeasurement(s.now(), value)
	if err := s.store.Append(ctx, name, m); err != nil {
		return Result{}, fmt.Errorf("failed to save measurement: %w", err)
	}
	s.logger.Info("measurement recorded",
		zap.String("name", name),
		zap.String("date", m.Date),
		zap.Float64("bmi", value),
		zap.String("category", string(category)))
	return Result{Measurement: m, BMI: value, Category: category, Color: color}, nil
}

// Trend returns name's (date, bmi) series in submission order.
func (s *Service) Trend(ctx context.Context, name string) ([]model.Point, error) {
	history, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return report.Trend(history, strings.TrimSpace(name)), nil
}

// ExportRows returns the Date/BMI export table for name.
func (s *Service) ExportRows(ctx context.Context, name string) (report.Table, error) {
	history, err := s.store.Load(ctx)
	if err != nil {
		return report.Table{}, err
	}
	return report.ExportTable(history, strings.TrimSpace(name)), nil
}

// Report builds the history report for cfg.Name.
func (s *Service) Report(ctx context.Context, cfg model.ReportConfig) (report.Report, error) {
	cfg.Name = strings.TrimSpace(cfg.Name)
	return report.BuildReport(ctx, s.store, cfg)
}

// ClearHistory deletes all measurements for name.
func (s *Service) ClearHistory(ctx context.Context, name string) error {
	name, err := requireName(name)
	if err != nil {
		return err
	}
	if err := s.store.Clear(ctx, name); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	s.logger.Info("history cleared", zap.String("name", name))
	return nil
}

// Names lists everyone with stored history, sorted.
func (s *Service) Names(ctx context.Context) ([]string, error) {
	history, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(history))
	for name := range history {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Theme returns the persisted theme.
func (s *Service) Theme(ctx context.Context) (model.Theme, error) {
	settings, err := s.store.LoadSettings(ctx)
	if err != nil {
		return "", err
	}
	return settings.Theme, nil
}

// SetTheme persists theme.
func (s *Service) SetTheme(ctx context.Context, theme model.Theme) error {
	if !theme.Valid() {
		return &ValidationError{Field: "theme", Reason: fmt.Sprintf("use %q or %q", model.ThemeLight, model.ThemeDark)}
	}
	if err := s.store.SaveSettings(ctx, model.Settings{Theme: theme}); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	s.logger.Debug("theme saved", zap.String("theme", string(theme)))
	return nil
}

// ToggleTheme flips light and dark and returns the new theme.
func (s *Service) ToggleTheme(ctx context.Context) (model.Theme, error) {
	current, err := s.Theme(ctx)
	if err != nil {
		return "", err
	}
	next := current.Toggled()
	if err := s.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "name", Reason: "enter a name"}
	}
	return name, nil
}

func parsePositive(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Field: field, Reason: "enter numeric values only"}
	}
	if v <= 0 {
		return 0, &ValidationError{Field: field, Reason: "must be greater than zero"}
	}
	return v, nil
}
