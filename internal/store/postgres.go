// Package store provides storage backends for MealNudge.
//
// This file implements the PostgreSQL-backed store for engine state.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/Forkful/MealNudge/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run Postgres migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgresStore migrations applied")

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) GetCursor(catalog string) (int, error) {
	var position int
	err := s.db.QueryRow(`SELECT position FROM rotation_cursors WHERE catalog = $1`, catalog).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		slog.Error("PostgresStore.GetCursor failed", "error", err, "catalog", catalog)
		return 0, fmt.Errorf("failed to read cursor for %s: %w", catalog, err)
	}
	return position, nil
}

func (s *PostgresStore) SetCursor(catalog string, position int) error {
	_, err := s.db.Exec(`INSERT INTO rotation_cursors (catalog, position, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (catalog) DO UPDATE SET position = EXCLUDED.position, updated_at = NOW()`, catalog, position)
	if err != nil {
		slog.Error("PostgresStore.SetCursor failed", "error", err, "catalog", catalog, "position", position)
		return fmt.Errorf("failed to save cursor for %s: %w", catalog, err)
	}
	slog.Debug("PostgresStore.SetCursor succeeded", "catalog", catalog, "position", position)
	return nil
}

func (s *PostgresStore) getSetting(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM engine_settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, true, nil
}

func (s *PostgresStore) setSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO engine_settings (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, key, value)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) GetQuietHours() (models.QuietHoursSettings, error) {
	value, found, err := s.getSetting(settingQuietHours)
	if err != nil {
		slog.Error("PostgresStore.GetQuietHours failed", "error", err)
		return models.DefaultQuietHours(), err
	}
	if !found {
		return models.DefaultQuietHours(), nil
	}
	return decodeQuietHours(value)
}

func (s *PostgresStore) SetQuietHours(settings models.QuietHoursSettings) error {
	value, err := encodeQuietHours(settings)
	if err != nil {
		return err
	}
	if err := s.setSetting(settingQuietHours, value); err != nil {
		slog.Error("PostgresStore.SetQuietHours failed", "error", err)
		return err
	}
	slog.Debug("PostgresStore.SetQuietHours succeeded", "enabled", settings.Enabled)
	return nil
}

func (s *PostgresStore) GetAuthorizationState() (models.AuthorizationState, error) {
	value, found, err := s.getSetting(settingAuthorization)
	if err != nil {
		slog.Error("PostgresStore.GetAuthorizationState failed", "error", err)
		return models.AuthorizationNotDetermined, err
	}
	if !found {
		return models.AuthorizationNotDetermined, nil
	}
	return models.AuthorizationState(value), nil
}

func (s *PostgresStore) SetAuthorizationState(state models.AuthorizationState) error {
	if err := s.setSetting(settingAuthorization, string(state)); err != nil {
		slog.Error("PostgresStore.SetAuthorizationState failed", "error", err, "state", state)
		return err
	}
	slog.Debug("PostgresStore.SetAuthorizationState succeeded", "state", state)
	return nil
}

func (s *PostgresStore) UpsertPending(req models.NotificationRequest) error {
	payload, err := encodeRequest(req)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO pending_notifications (identifier, payload_json) VALUES ($1, $2)
		ON CONFLICT (identifier) DO UPDATE SET payload_json = EXCLUDED.payload_json`, req.Identifier, payload)
	if err != nil {
		slog.Error("PostgresStore.UpsertPending failed", "error", err, "identifier", req.Identifier)
		return fmt.Errorf("failed to save pending request %s: %w", req.Identifier, err)
	}
	return nil
}

func (s *PostgresStore) DeletePending(identifier string) error {
	_, err := s.db.Exec(`DELETE FROM pending_notifications WHERE identifier = $1`, identifier)
	if err != nil {
		slog.Error("PostgresStore.DeletePending failed", "error", err, "identifier", identifier)
		return fmt.Errorf("failed to delete pending request %s: %w", identifier, err)
	}
	return nil
}

func (s *PostgresStore) ListPending() ([]models.NotificationRequest, error) {
	rows, err := s.db.Query(`SELECT payload_json FROM pending_notifications ORDER BY identifier`)
	if err != nil {
		slog.Error("PostgresStore.ListPending query failed", "error", err)
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
			slog.Warn("PostgresStore.ListPending skipping corrupt row", "error", err)
			continue
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending rows: %w", err)
	}
	slog.Debug("PostgresStore.ListPending succeeded", "count", len(out))
	return out, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
