package main

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Storage keys shared with the rest of the extension surface. The three keys
// live side by side in one store with no schema versioning.
const (
	userIDKey    = "userId"
	authTokenKey = "authToken"
	draftKey     = "jobFormData"
)

// keyValueStore is the persistent store capability handed to the popup. The
// sqlite implementation below is the real one; tests substitute an in-memory
// fake. SetMany must make all of its writes visible together so that a
// concurrent reader never observes half a session.
type keyValueStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	SetMany(values map[string]string) error
	Remove(keys ...string) error
	Close() error
}

type popupStore struct {
	db   *sql.DB
	path string
}

func openPopupStore(dir string) (*popupStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	sqlitePath := filepath.Join(dir, "popup.sqlite")
	db, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		return nil, err
	}
	if err := migratePopupStore(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &popupStore{db: db, path: sqlitePath}, nil
}

func migratePopupStore(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("popup store migration failed: %w", err)
		}
	}
	return nil
}

func (s *popupStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *popupStore) Get(key string) (string, bool, error) {
	if s == nil || s.db == nil {
		return "", false, nil
	}
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *popupStore) Set(key, value string) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.Exec(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`, key, value)
	return err
}

// SetMany writes all pairs in a single transaction. A reader sees either none
// or all of them.
func (s *popupStore) SetMany(values map[string]string) error {
	if s == nil || s.db == nil || len(values) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for key, value := range values {
		if _, err := stmt.Exec(key, value); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Remove deletes the given keys. Removing an absent key is not an error.
func (s *popupStore) Remove(keys ...string) error {
	if s == nil || s.db == nil || len(keys) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`DELETE FROM kv WHERE key = ?`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, key := range keys {
		if _, err := stmt.Exec(key); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
