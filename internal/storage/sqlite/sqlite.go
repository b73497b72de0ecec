// Package sqlite provides a SQLite-backed implementation of the
// storage.Store document contract.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/jmhart/crewlog/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store with one generic documents table.
// Documents are stored as JSON text; equality queries go through
// json_extract so any top-level field can act as a secondary index.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Writers from concurrent requests queue instead of failing fast.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Put upserts a document, bumping its version.
func (s *SQLiteStore) Put(ctx context.Context, collection, id string, body []byte) error {
	if !json.Valid(body) {
		return fmt.Errorf("document %s/%s: body is not valid JSON", collection, id)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, body, version) VALUES (?, ?, ?, 1)
		ON CONFLICT (collection, id)
		DO UPDATE SET body = excluded.body, version = documents.version + 1`,
		collection, id, string(body),
	)
	if err != nil {
		return fmt.Errorf("failed to put document %s/%s: %w", collection, id, err)
	}
	return nil
}

// CheckAndPut writes only if the stored version matches expectedVersion.
// expectedVersion 0 requires the document to be new.
func (s *SQLiteStore) CheckAndPut(ctx context.Context, collection, id string, body []byte, expectedVersion int64) error {
	if !json.Valid(body) {
		return fmt.Errorf("document %s/%s: body is not valid JSON", collection, id)
	}

	if expectedVersion == 0 {
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO documents (collection, id, body, version) VALUES (?, ?, ?, 1)",
			collection, id, string(body),
		)
		if err != nil {
			// A unique constraint violation means someone created it first.
			return fmt.Errorf("%w: %s/%s already exists", storage.ErrConflict, collection, id)
		}
		return nil
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET body = ?, version = version + 1
		WHERE collection = ? AND id = ? AND version = ?`,
		string(body), collection, id, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s not at version %d", storage.ErrConflict, collection, id, expectedVersion)
	}
	return nil
}

// Get retrieves a document by id.
func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (storage.Document, error) {
	doc := storage.Document{ID: id}
	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT body, version FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	).Scan(&body, &doc.Version)
	if err == sql.ErrNoRows {
		return storage.Document{}, fmt.Errorf("%w: %s/%s", storage.ErrNotFound, collection, id)
	}
	if err != nil {
		return storage.Document{}, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}
	doc.Body = []byte(body)
	return doc, nil
}

// QueryEq returns all documents whose top-level field equals value.
func (s *SQLiteStore) QueryEq(ctx context.Context, collection, field, value string) ([]storage.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, body, version FROM documents
		WHERE collection = ? AND json_extract(body, '$.' || ?) = ?`,
		collection, field, value,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s by %s: %w", collection, field, err)
	}
	defer rows.Close()

	var docs []storage.Document
	for rows.Next() {
		var doc storage.Document
		var body string
		if err := rows.Scan(&doc.ID, &body, &doc.Version); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.Body = []byte(body)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

// List returns every document in a collection.
func (s *SQLiteStore) List(ctx context.Context, collection string) ([]storage.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, body, version FROM documents WHERE collection = ?",
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []storage.Document
	for rows.Next() {
		var doc storage.Document
		var body string
		if err := rows.Scan(&doc.ID, &body, &doc.Version); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.Body = []byte(body)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

// Delete removes a document. Absent ids are a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}
	return nil
}
