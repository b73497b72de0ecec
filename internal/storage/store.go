// Package storage provides the document-store abstraction CrewLog persists
// into, and the group adapter built on top of it.
package storage

import (
	"context"
	"errors"
)

// Collections used by CrewLog.
const (
	CollectionGroups     = "groups"
	CollectionIdentities = "identities"
)

var (
	// ErrNotFound is returned when no document exists under the given id.
	ErrNotFound = errors.New("document not found")

	// ErrConflict is returned by CheckAndPut when the stored version does
	// not match the caller's expected version. The caller must re-read and
	// re-apply its change.
	ErrConflict = errors.New("version conflict")
)

// Document is a stored JSON document plus its write version.
type Document struct {
	ID      string
	Version int64
	Body    []byte
}

// Store defines the document-store contract.
// This abstraction allows swapping storage backends (SQLite, Postgres,
// a hosted document store) without changing the layers above.
//
// Writes replace the whole document; there is no server-side array-append
// primitive. Concurrent read-modify-write cycles are guarded by the version
// passed to CheckAndPut, not by transactions spanning calls.
type Store interface {
	// Put upserts a document, replacing any existing body and bumping the
	// version.
	Put(ctx context.Context, collection, id string, body []byte) error

	// CheckAndPut writes only if the stored version equals expectedVersion
	// (0 means "must not exist yet"). Returns ErrConflict otherwise.
	CheckAndPut(ctx context.Context, collection, id string, body []byte, expectedVersion int64) error

	// Get retrieves a document by id. Returns ErrNotFound if absent.
	Get(ctx context.Context, collection, id string) (Document, error)

	// QueryEq returns all documents whose top-level string field equals
	// value.
	QueryEq(ctx context.Context, collection, field, value string) ([]Document, error)

	// List returns every document in a collection. Membership lookups scan
	// and filter in memory; member identity lives inside the document, not
	// in a top-level field.
	List(ctx context.Context, collection string) ([]Document, error)

	// Delete removes a document. Deleting an absent id is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Close releases any resources held by the store.
	Close() error
}
