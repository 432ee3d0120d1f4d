// Package repo implements the owner-scoped CRUD engine shared by all five
// resource collections. Every read, update and delete filters on both the
// record id and the owner id, so a record owned by someone else is
// indistinguishable from one that does not exist.
//
// Updates are last-write-wins: a single filtered merge, no version token.
// Two concurrent updates to the same record may overwrite one another.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/prodsmart/backend/internal/domain/resource"
	"github.com/prodsmart/backend/internal/store"
)

var ErrNotFound = errors.New("resource not found")

type Repository struct {
	docs store.Store
	desc resource.Descriptor
	now  func() time.Time
}

func New(docs store.Store, desc resource.Descriptor) *Repository {
	return &Repository{
		docs: docs,
		desc: desc,
		now:  time.Now,
	}
}

func (r *Repository) List(ctx context.Context, ownerID string) ([]store.Document, error) {
	return r.docs.FindMany(ctx, r.desc.Name, store.Filter{"user_id": ownerID})
}

func (r *Repository) Create(ctx context.Context, ownerID string, payload map[string]any) (store.Document, error) {
	doc := store.Document{"user_id": ownerID}

	for _, f := range r.desc.Fields {
		if v, ok := payload[f]; ok {
			doc[f] = v
		}
	}

	if err := r.desc.Required(doc); err != nil {
		return nil, err
	}

	r.desc.Defaults(doc, r.now().UTC())

	id, err := r.docs.Insert(ctx, r.desc.Name, doc)

	if err != nil {
		return nil, err
	}

	doc["id"] = id

	return doc, nil
}

func (r *Repository) Update(ctx context.Context, ownerID, id string, payload map[string]any) (store.Document, error) {
	owned := store.Filter{"id": id, "user_id": ownerID}

	fields := make(map[string]any)

	for _, f := range r.desc.Mutable {
		if v, ok := payload[f]; ok {
			fields[f] = v
		}
	}

	// nothing whitelisted to change: still confirm the record exists for
	// this owner and return it untouched
	if len(fields) == 0 {
		return r.findOwned(ctx, owned)
	}

	matched, err := r.docs.Update(ctx, r.desc.Name, owned, fields)

	if err != nil {
		return nil, err
	}

	if matched == 0 {
		return nil, ErrNotFound
	}

	return r.findOwned(ctx, owned)
}

func (r *Repository) Delete(ctx context.Context, ownerID, id string) error {
	err := r.docs.Delete(ctx, r.desc.Name, store.Filter{"id": id, "user_id": ownerID})

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}

		return err
	}

	return nil
}

func (r *Repository) DeleteAll(ctx context.Context, ownerID string) (int64, error) {
	return r.docs.DeleteMany(ctx, r.desc.Name, store.Filter{"user_id": ownerID})
}

func (r *Repository) findOwned(ctx context.Context, owned store.Filter) (store.Document, error) {
	doc, err := r.docs.FindOne(ctx, r.desc.Name, owned)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return doc, nil
}
