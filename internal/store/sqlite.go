// Package store provides storage backends for MealNudge.
//
// This file implements the SQLite-backed store for engine state.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/Forkful/MealNudge/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("SQLiteStore.NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLiteStore migrations applied")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetCursor(catalog string) (int, error) {
	var position int
	err := s.db.QueryRow(`SELECT position FROM rotation_cursors WHERE catalog = ?`, catalog).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		slog.Error("SQLiteStore.GetCursor failed", "error", err, "catalog", catalog)
		return 0, fmt.Errorf("failed to read cursor for %s: %w", catalog, err)
	}
	return position, nil
}

func (s *SQLiteStore) SetCursor(catalog string, position int) error {
	_, err := s.db.Exec(`INSERT INTO rotation_cursors (catalog, position, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(catalog) DO UPDATE SET position = excluded.position, updated_at = CURRENT_TIMESTAMP`, catalog, position)
	if err != nil {
		slog.Error("SQLiteStore.SetCursor failed", "error", err, "catalog", catalog, "position", position)
		return fmt.Errorf("failed to save cursor for %s: %w", catalog, err)
	}
	slog.Debug("SQLiteStore.SetCursor succeeded", "catalog", catalog, "position", position)
	return nil
}

func (s *SQLiteStore) getSetting(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM engine_settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) setSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO engine_settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, key, value)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) GetQuietHours() (models.QuietHoursSettings, error) {
	value, found, err := s.getSetting(settingQuietHours)
	if err != nil {
		slog.Error("SQLiteStore.GetQuietHours failed", "error", err)
		return models.DefaultQuietHours(), err
	}
	if !found {
		return models.DefaultQuietHours(), nil
	}
	return decodeQuietHours(value)
}

func (s *SQLiteStore) SetQuietHours(settings models.QuietHoursSettings) error {
	value, err := encodeQuietHours(settings)
	if err != nil {
		return err
	}
	if err := s.setSetting(settingQuietHours, value); err != nil {
		slog.Error("SQLiteStore.SetQuietHours failed", "error", err)
		return err
	}
	slog.Debug("SQLiteStore.SetQuietHours succeeded", "enabled", settings.Enabled)
	return nil
}

func (s *SQLiteStore) GetAuthorizationState() (models.AuthorizationState, error) {
	value, found, err := s.getSetting(settingAuthorization)
	if err != nil {
		slog.Error("SQLiteStore.GetAuthorizationState failed", "error", err)
		return models.AuthorizationNotDetermined, err
	}
	if !found {
		return models.AuthorizationNotDetermined, nil
	}
	return models.AuthorizationState(value), nil
}

func (s *SQLiteStore) SetAuthorizationState(state models.AuthorizationState) error {
	if err := s.setSetting(settingAuthorization, string(state)); err != nil {
		slog.Error("SQLiteStore.SetAuthorizationState failed", "error", err, "state", state)
		return err
	}
	slog.Debug("SQLiteStore.SetAuthorizationState succeeded", "state", state)
	return nil
}

func (s *SQLiteStore) UpsertPending(req models.NotificationRequest) error {
	payload, err := encodeRequest(req)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO pending_notifications (identifier, payload_json) VALUES (?, ?)
		ON CONFLICT(identifier) DO UPDATE SET payload_json = excluded.payload_json`, req.Identifier, payload)
	if err != nil {
		slog.Error("SQLiteStore.UpsertPending failed", "error", err, "identifier", req.Identifier)
		return fmt.Errorf("failed to save pending request %s: %w", req.Identifier, err)
	}
	return nil
}

func (s *SQLiteStore) DeletePending(identifier string) error {
	_, err := s.db.Exec(`DELETE FROM pending_notifications WHERE identifier = ?`, identifier)
	if err != nil {
		slog.Error("SQLiteStore.DeletePending failed", "error", err, "identifier", identifier)
		return fmt.Errorf("failed to delete pending request %s: %w", identifier, err)
	}
	return nil
}

func (s *SQLiteStore) ListPending() ([]models.NotificationRequest, error) {
	rows, err := s.db.Query(`SELECT payload_json FROM pending_notifications ORDER BY identifier`)
	if err != nil {
		slog.Error("SQLiteStore.ListPending query failed", "error", err)
		return nil, fmt.Errorf("failed to query pending requests: %w", err)
	}
	defer rows.Close()

	var out []models.NotificationRequest
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan pending row: %w", err)
		}
		req, err := decodeRequest(payload)
		if err != nil {
			// A corrupt row is skipped, not fatal: the reminder is simply
			// re-created on the next scheduling event.
			slog.Warn("SQLiteStore.ListPending skipping corrupt row", "error", err)
			continue
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending rows: %w", err)
	}
	slog.Debug("SQLiteStore.ListPending succeeded", "count", len(out))
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
