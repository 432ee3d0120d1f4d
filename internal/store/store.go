// Package store defines the persistence service the rest of the app is
// written against: named collections of schemaless documents, addressed by
// field-equality filters. Implementations live in the postgres and memory
// subpackages and are injected once at startup.
package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("document not found")

// Filter matches documents whose fields equal every entry. The "id" key is
// special-cased by implementations to the store-assigned identifier.
type Filter map[string]any

// Document is one stored record. Reads always carry the assigned id under
// the "id" key as an opaque string.
type Document map[string]any

type Store interface {
	FindMany(ctx context.Context, collection string, filter Filter) ([]Document, error)
	FindOne(ctx context.Context, collection string, filter Filter) (Document, error)
	// Insert persists doc and returns the assigned id.
	Insert(ctx context.Context, collection string, doc Document) (string, error)
	// Update merges fields into every matching document and reports how many
	// matched. Zero matches is not an error at this layer.
	Update(ctx context.Context, collection string, filter Filter, fields map[string]any) (int64, error)
	// Delete removes a single matching document, ErrNotFound when none match.
	Delete(ctx context.Context, collection string, filter Filter) error
	// DeleteMany removes every match and reports the count; zero is fine.
	DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error)
}
