package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/verte-zerg/bmilog/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const sqliteFileName = "bmilog.db"

// SQLiteStore keeps history and settings in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// OpenSQLite opens or creates the database in dir and applies migrations.
func OpenSQLite(dir string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	path := filepath.Join(dir, sqliteFileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	st := &SQLiteStore{db: db, path: path, logger: logger}
	if err := st.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			logger.Warn("failed to close db after migration error", zap.Error(cerr))
		}
		return nil, &ReadError{Path: path, Err: err}
	}
	return st, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS measurements (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			date TEXT NOT NULL,
			bmi REAL NOT NULL CHECK (bmi > 0)
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_measurements_name ON measurements(name, id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Load returns every person's measurements ordered by insertion.
func (s *SQLiteStore) Load(ctx context.Context) (model.History, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, date, bmi FROM measurements ORDER BY id ASC`)
	if err != nil {
		return nil, &ReadError{Path: s.path, Err: err}
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logger.Warn("failed to close rows", zap.Error(cerr))
		}
	}()

	history := model.History{}
	for rows.Next() {
		var name string
		var m model.Measurement
		if err := rows.Scan(&name, &m.Date, &m.BMI); err != nil {
			return nil, &ReadError{Path: s.path, Err: err}
		}
		if err := validateName(name); err != nil {
			return nil, &ReadError{Path: s.path, Err: err}
		}
		if err := validateMeasurement(m); err != nil {
			return nil, &ReadError{Path: s.path, Err: fmt.Errorf("entry for %q: %w", name, err)}
		}
		history[name] = append(history[name], m)
	}
	if err := rows.Err(); err != nil {
		return nil, &ReadError{Path: s.path, Err: err}
	}
	return history, nil
}

// Append stores m as the newest measurement for name in one transaction.
func (s *SQLiteStore) Append(ctx context.Context, name string, m model.Measurement) (err error) {
	if err := validateName(name); err != nil {
		return err
	}
	if err := validateMeasurement(m); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &WriteError{Path: s.path, Err: err}
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				s.logger.Warn("failed to roll back append", zap.Error(rerr))
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO measurements (name, date, bmi) VALUES (?, ?, ?)`,
		name, m.Date, m.BMI,
	); err != nil {
		return &WriteError{Path: s.path, Err: err}
	}
	if err = tx.Commit(); err != nil {
		return &WriteError{Path: s.path, Err: err}
	}
	s.logger.Debug("measurement appended", zap.String("name", name), zap.String("date", m.Date))
	return nil
}

// Clear deletes every measurement for name.
func (s *SQLiteStore) Clear(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM measurements WHERE name = ?`, name)
	if err != nil {
		return &WriteError{Path: s.path, Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.logger.Debug("history cleared", zap.String("name", name), zap.Int64("entries", n))
	}
	return nil
}

// LoadSettings returns the stored settings or defaults when unset.
func (s *SQLiteStore) LoadSettings(ctx context.Context) (model.Settings, error) {
	var theme string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = 'theme'`).Scan(&theme)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, &ReadError{Path: s.path, Err: err}
	}
	settings := model.Settings{Theme: model.Theme(theme)}
	if err := validateSettings(settings); err != nil {
		return model.Settings{}, &ReadError{Path: s.path, Err: err}
	}
	return settings, nil
}

// SaveSettings upserts the settings record.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings model.Settings) error {
	if err := validateSettings(settings); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES ('theme', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		string(settings.Theme),
	); err != nil {
		return &WriteError{Path: s.path, Err: err}
	}
	return nil
}
