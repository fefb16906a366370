package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// SQLite is a Persister backed by a local SQLite database. Records are
// stored as JSON documents keyed by id, so fields added or removed by
// newer engine versions round out tolerantly: unknown stored fields are
// dropped on read, missing fields take their zero defaults.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens the database at path and applies the schema.
// Safe to call repeatedly.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// SQLite supports one writer at a time; the engine is single-writer
	// anyway, so one connection avoids SQLITE_BUSY entirely.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("executing %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// UpsertPrevision inserts or replaces a prevision document.
func (s *SQLite) UpsertPrevision(ctx context.Context, p model.Prevision) error {
	return s.upsert(ctx, "previsions", p.ID, p)
}

// DeletePrevision removes a prevision document. Deleting an absent id is
// not an error.
func (s *SQLite) DeletePrevision(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM previsions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting prevision %s: %w", id, err)
	}
	return nil
}

// ListPrevisions returns all stored previsions in insertion order.
func (s *SQLite) ListPrevisions(ctx context.Context) ([]model.Prevision, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM previsions ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing previsions: %w", err)
	}
	defer rows.Close()

	var out []model.Prevision
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning prevision: %w", err)
		}
		var p model.Prevision
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return nil, fmt.Errorf("decoding prevision: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpsertMouvement inserts or replaces a mouvement document.
func (s *SQLite) UpsertMouvement(ctx context.Context, m model.Mouvement) error {
	return s.upsert(ctx, "mouvements", m.ID, m)
}

// DeleteMouvement removes a mouvement document.
func (s *SQLite) DeleteMouvement(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM mouvements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting mouvement %s: %w", id, err)
	}
	return nil
}

// ListMouvements returns all stored mouvements in insertion order.
func (s *SQLite) ListMouvements(ctx context.Context) ([]model.Mouvement, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM mouvements ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing mouvements: %w", err)
	}
	defer rows.Close()

	var out []model.Mouvement
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning mouvement: %w", err)
		}
		var m model.Mouvement
		if err := json.Unmarshal([]byte(doc), &m); err != nil {
			return nil, fmt.Errorf("decoding mouvement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SaveSettings writes the settings singleton.
func (s *SQLite) SaveSettings(ctx context.Context, settings model.Settings) error {
	return s.upsertSingleton(ctx, "settings", settings)
}

// LoadSettings reads the settings singleton; ok is false when none was
// ever saved.
func (s *SQLite) LoadSettings(ctx context.Context) (model.Settings, bool, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM settings WHERE id = 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Settings{}, false, nil
	}
	if err != nil {
		return model.Settings{}, false, fmt.Errorf("loading settings: %w", err)
	}
	var settings model.Settings
	if err := json.Unmarshal([]byte(doc), &settings); err != nil {
		return model.Settings{}, false, fmt.Errorf("decoding settings: %w", err)
	}
	return settings, true, nil
}

// SaveSyncState writes the sync bookkeeping singleton.
func (s *SQLite) SaveSyncState(ctx context.Context, state model.SyncState) error {
	return s.upsertSingleton(ctx, "sync_state", state)
}

// LoadSyncState reads the sync bookkeeping; an absent row is an empty state.
func (s *SQLite) LoadSyncState(ctx context.Context) (model.SyncState, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM sync_state WHERE id = 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SyncState{}, nil
	}
	if err != nil {
		return model.SyncState{}, fmt.Errorf("loading sync state: %w", err)
	}
	var state model.SyncState
	if err := json.Unmarshal([]byte(doc), &state); err != nil {
		return model.SyncState{}, fmt.Errorf("decoding sync state: %w", err)
	}
	return state, nil
}

func (s *SQLite) upsert(ctx context.Context, table, id string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s %s: %w", table, id, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+table+` (id, doc) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET doc = excluded.doc`,
		id, string(doc))
	if err != nil {
		return fmt.Errorf("upserting %s %s: %w", table, id, err)
	}
	return nil
}

func (s *SQLite) upsertSingleton(ctx context.Context, table string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", table, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+table+` (id, doc) VALUES (1, ?) ON CONFLICT(id) DO UPDATE SET doc = excluded.doc`,
		string(doc))
	if err != nil {
		return fmt.Errorf("saving %s: %w", table, err)
	}
	return nil
}
