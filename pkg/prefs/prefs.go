// Package prefs is a namespaced integer key/value store on SQLite.
package prefs

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS prefs (
	namespace TEXT NOT NULL,
	key       TEXT NOT NULL,
	value     INTEGER NOT NULL,
	PRIMARY KEY (namespace, key)
)`

// DB holds every preference namespace of the application.
type DB struct {
	db *sql.DB
}

// Open opens or creates the preferences database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open preferences: %w", err)
	}

	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", schema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize preferences: %w", err)
		}
	}

	log.Printf("Preferences opened: %s", path)
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Namespace returns a view restricted to one namespace.
func (d *DB) Namespace(name string) *Namespace {
	return &Namespace{db: d.db, name: name}
}

// Erase deletes every namespace.
func (d *DB) Erase() error {
	if _, err := d.db.Exec(`DELETE FROM prefs`); err != nil {
		return fmt.Errorf("failed to erase preferences: %w", err)
	}
	return nil
}

// Namespaces lists the namespaces that hold at least one key.
func (d *DB) Namespaces() ([]string, error) {
	rows, err := d.db.Query(`SELECT DISTINCT namespace FROM prefs ORDER BY namespace`)
	if err != nil {
		return nil, fmt.Errorf("failed to list namespaces: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Namespace is a group of keys.
type Namespace struct {
	db   *sql.DB
	name string
}

// Name returns the namespace name.
func (n *Namespace) Name() string {
	return n.name
}

// GetInt returns the value of key, or def if it is not set.
func (n *Namespace) GetInt(key string, def int) (int, error) {
	var v int
	err := n.db.QueryRow(`SELECT value FROM prefs WHERE namespace = ? AND key = ?`, n.name, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("failed to read %s/%s: %w", n.name, key, err)
	}
	return v, nil
}

// PutInt sets key to v.
func (n *Namespace) PutInt(key string, v int) error {
	return n.PutInts(map[string]int{key: v})
}

// PutInts sets several keys atomically.
func (n *Namespace) PutInts(values map[string]int) error {
	tx, err := n.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for key, v := range values {
		_, err := tx.Exec(`INSERT INTO prefs (namespace, key, value) VALUES (?, ?, ?)
			ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value`, n.name, key, v)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("failed to write %s/%s: %v, rollback error: %w", n.name, key, err, rbErr)
			}
			return fmt.Errorf("failed to write %s/%s: %w", n.name, key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Remove deletes key.
func (n *Namespace) Remove(key string) error {
	if _, err := n.db.Exec(`DELETE FROM prefs WHERE namespace = ? AND key = ?`, n.name, key); err != nil {
		return fmt.Errorf("failed to remove %s/%s: %w", n.name, key, err)
	}
	return nil
}

// Clear deletes every key of the namespace.
func (n *Namespace) Clear() error {
	if _, err := n.db.Exec(`DELETE FROM prefs WHERE namespace = ?`, n.name); err != nil {
		return fmt.Errorf("failed to clear %s: %w", n.name, err)
	}
	return nil
}
