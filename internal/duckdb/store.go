// Package duckdb exports framing statistics into a DuckDB database so that
// runs over many samples can be compared with SQL.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding framing statistics.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS framing_runs (
		sample VARCHAR PRIMARY KEY,
		created TIMESTAMP,
		input VARCHAR,
		input_size BIGINT,
		input_mtime TIMESTAMP,
		annotation VARCHAR,
		annotation_size BIGINT,
		annotation_mtime TIMESTAMP,
		records BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS outcome_counts (
		sample VARCHAR,
		outcome VARCHAR,
		reads BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS frame_length (
		sample VARCHAR,
		length_bin VARCHAR,
		frame BIGINT,
		reads BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS metagene (
		sample VARCHAR,
		anchor VARCHAR,
		vs_anchor BIGINT,
		length_bin VARCHAR,
		reads BIGINT
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
