package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/verte-zerg/bmilog/internal/model"
)

const (
	historyFileName  = "history.json"
	settingsFileName = "settings.json"
	filePerm         = 0o644
)

// FileStore keeps history and settings as indented JSON files.
type FileStore struct {
	historyPath  string
	settingsPath string
	logger       *zap.Logger
}

// NewFileStore returns a JSON store rooted at dir. Files are created on first write.
func NewFileStore(dir string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{
		historyPath:  filepath.Join(dir, historyFileName),
		settingsPath: filepath.Join(dir, settingsFileName),
		logger:       logger,
	}
}

// HistoryPath returns the history file location.
func (s *FileStore) HistoryPath() string {
	return s.historyPath
}

// Close implements Store. There are no long-lived handles.
func (s *FileStore) Close() error {
	return nil
}

// Load reads the history file. A missing file yields an empty history.
func (s *FileStore) Load(ctx context.Context) (model.History, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return model.History{}, nil
		}
		return nil, &ReadError{Path: s.historyPath, Err: err}
	}
	history, err := decodeHistory(data)
	if err != nil {
		return nil, &ReadError{Path: s.historyPath, Err: err}
	}
	s.logger.Debug("history loaded", zap.String("path", s.historyPath), zap.Int("people", len(history)))
	return history, nil
}

// Append adds m to the end of name's measurements and rewrites the file.
func (s *FileStore) Append(ctx context.Context, name string, m model.Measurement) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := validateMeasurement(m); err != nil {
		return err
	}
	history, err := s.Load(ctx)
	if err != nil {
		return err
	}
	history[name] = append(history[name], m)
	if err := s.writeHistory(history); err != nil {
		return err
	}
	s.logger.Debug("measurement appended",
		zap.String("name", name),
		zap.String("date", m.Date),
		zap.Int("entries", len(history[name])))
	return nil
}

// Clear removes every measurement for name. Unknown names are a no-op.
func (s *FileStore) Clear(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	history, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if _, ok := history[name]; !ok {
		return nil
	}
	delete(history, name)
	if err := s.writeHistory(history); err != nil {
		return err
	}
	s.logger.Debug("history cleared", zap.String("name", name))
	return nil
}

// LoadSettings reads the settings file, returning defaults when absent.
func (s *FileStore) LoadSettings(ctx context.Context) (model.Settings, error) {
	if err := ctx.Err(); err != nil {
		return model.Settings{}, err
	}
	data, err := os.ReadFile(s.settingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultSettings(), nil
		}
		return model.Settings{}, &ReadError{Path: s.settingsPath, Err: err}
	}
	var settings model.Settings
	if err := decodeStrict(data, &settings); err != nil {
		return model.Settings{}, &ReadError{Path: s.settingsPath, Err: err}
	}
	if err := validateSettings(settings); err != nil {
		return model.Settings{}, &ReadError{Path: s.settingsPath, Err: err}
	}
	return settings, nil
}

// SaveSettings overwrites the settings file.
func (s *FileStore) SaveSettings(ctx context.Context, settings model.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateSettings(settings); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "    ")
	if err != nil {
		return &WriteError{Path: s.settingsPath, Err: err}
	}
	if err := writeFileAtomic(s.settingsPath, append(data, '\n'), filePerm); err != nil {
		return &WriteError{Path: s.settingsPath, Err: err}
	}
	s.logger.Debug("settings saved", zap.String("theme", string(settings.Theme)))
	return nil
}

func (s *FileStore) writeHistory(history model.History) error {
	data, err := json.MarshalIndent(history, "", "    ")
	if err != nil {
		return &WriteError{Path: s.historyPath, Err: err}
	}
	if err := writeFileAtomic(s.historyPath, append(data, '\n'), filePerm); err != nil {
		return &WriteError{Path: s.historyPath, Err: err}
	}
	return nil
}

// diskMeasurement uses pointers so missing fields are detected.
type diskMeasurement struct {
	Date *string  `json:"date"`
	BMI  *float64 `json:"bmi"`
}

func decodeHistory(data []byte) (model.History, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: history must be a JSON object", ErrInvalidRecord)
	}
	history := model.History{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected token %v", ErrInvalidRecord, tok)
		}
		if err := validateName(name); err != nil {
			return nil, err
		}
		if _, dup := history[name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidRecord, name)
		}
		var msg json.RawMessage
		if err := dec.Decode(&msg); err != nil {
			return nil, fmt.Errorf("%w: entries for %q: %v", ErrInvalidRecord, name, err)
		}
		entries, err := decodeEntries(name, msg)
		if err != nil {
			return nil, err
		}
		history[name] = entries
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrInvalidRecord)
	}
	return history, nil
}

func decodeEntries(name string, msg json.RawMessage) ([]model.Measurement, error) {
	if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
		return nil, fmt.Errorf("%w: entries for %q must be a list", ErrInvalidRecord, name)
	}
	var entries []diskMeasurement
	if err := decodeStrict(msg, &entries); err != nil {
		return nil, fmt.Errorf("entries for %q: %w", name, err)
	}
	out := make([]model.Measurement, 0, len(entries))
	for i, e := range entries {
		if e.Date == nil || e.BMI == nil {
			return nil, fmt.Errorf("%w: entry %d for %q is missing date or bmi", ErrInvalidRecord, i, name)
		}
		m := model.Measurement{Date: *e.Date, BMI: *e.BMI}
		if err := validateMeasurement(m); err != nil {
			return nil, fmt.Errorf("entry %d for %q: %w", i, name, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after JSON value", ErrInvalidRecord)
	}
	return nil
}
