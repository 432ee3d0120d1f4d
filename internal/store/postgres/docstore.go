package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prodsmart/backend/internal/observability"
	"github.com/prodsmart/backend/internal/store"
)

// DocStore keeps every collection in one documents table with a JSONB body.
// Field-equality filters compile to JSONB containment, so the owner filter
// and any other predicate take the same path.
type DocStore struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewPool(dbURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)

	if err != nil {
		return nil, err
	}

	cfg.MaxConns = 5

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)

	if err != nil {
		return nil, err
	}

	err = pool.Ping(ctx)

	if err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// metrics may be nil (tests).
func New(pool *pgxpool.Pool, metrics *observability.Prom) *DocStore {
	return &DocStore{
		pool:    pool,
		metrics: metrics,
	}
}

func (s *DocStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			collection text  NOT NULL,
			data       jsonb NOT NULL
		)`)

	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS documents_collection_owner_idx
		ON documents (collection, (data ->> 'user_id'))`)

	return err
}

func (s *DocStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *DocStore) FindMany(ctx context.Context, collection string, filter store.Filter) ([]store.Document, error) {
	cond, args, err := buildWhere(collection, filter)

	if err != nil {
		return nil, err
	}

	var out []store.Document

	err = s.observe("find_many", func() error {
		rows, err := s.pool.Query(ctx, `SELECT id, data FROM documents WHERE `+cond+` ORDER BY id`, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]store.Document, 0)

		for rows.Next() {
			doc, err := scanDocument(rows)

			if err != nil {
				return err
			}

			out = append(out, doc)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *DocStore) FindOne(ctx context.Context, collection string, filter store.Filter) (store.Document, error) {
	cond, args, err := buildWhere(collection, filter)

	if err != nil {
		return nil, err
	}

	var doc store.Document

	err = s.observe("find_one", func() error {
		row := s.pool.QueryRow(ctx, `SELECT id, data FROM documents WHERE `+cond+` LIMIT 1`, args...)

		doc, err = scanDocument(row)

		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}

		return nil, err
	}

	return doc, nil
}

func (s *DocStore) Insert(ctx context.Context, collection string, doc store.Document) (string, error) {
	body, err := marshalBody(doc)

	if err != nil {
		return "", err
	}

	var id string

	err = s.observe("insert", func() error {
		return s.pool.QueryRow(ctx,
			`INSERT INTO documents (collection, data) VALUES ($1, $2) RETURNING id`,
			collection, body,
		).Scan(&id)
	})

	if err != nil {
		return "", err
	}

	return id, nil
}

func (s *DocStore) Update(ctx context.Context, collection string, filter store.Filter, fields map[string]any) (int64, error) {
	cond, args, err := buildWhere(collection, filter)

	if err != nil {
		return 0, err
	}

	patch, err := json.Marshal(fields)

	if err != nil {
		return 0, err
	}

	args = append(args, patch)

	var matched int64

	err = s.observe("update", func() error {
		tag, err := s.pool.Exec(ctx,
			fmt.Sprintf(`UPDATE documents SET data = data || $%d WHERE `, len(args))+cond,
			args...)

		if err != nil {
			return err
		}

		matched = tag.RowsAffected()

		return nil
	})

	if err != nil {
		return 0, err
	}

	return matched, nil
}

func (s *DocStore) Delete(ctx context.Context, collection string, filter store.Filter) error {
	cond, args, err := buildWhere(collection, filter)

	if err != nil {
		return err
	}

	return s.observe("delete", func() error {
		tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE `+cond, args...)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return store.ErrNotFound
		}

		return nil
	})
}

func (s *DocStore) DeleteMany(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	cond, args, err := buildWhere(collection, filter)

	if err != nil {
		return 0, err
	}

	var deleted int64

	err = s.observe("delete_many", func() error {
		tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE `+cond, args...)

		if err != nil {
			return err
		}

		deleted = tag.RowsAffected()

		return nil
	})

	if err != nil {
		return 0, err
	}

	return deleted, nil
}

func (s *DocStore) observe(op string, fn func() error) error {
	if s.metrics == nil {
		return fn()
	}

	return s.metrics.ObserveStore(op, fn)
}

// buildWhere compiles a filter into "collection = $1 [AND id = $2] [AND data @> $n]".
// The id key addresses the primary key column; every other key goes through
// JSONB containment.
func buildWhere(collection string, filter store.Filter) (string, []interface{}, error) {
	cond := "collection = $1"
	args := []interface{}{collection}
	pos := 2

	rest := make(map[string]any, len(filter))

	for k, v := range filter {
		if k == "id" {
			// text comparison so a malformed id is a non-match, not a cast error
			cond += fmt.Sprintf(" AND id::text = $%d", pos)
			args = append(args, v)
			pos++
			continue
		}

		rest[k] = v
	}

	if len(rest) > 0 {
		body, err := json.Marshal(rest)

		if err != nil {
			return "", nil, err
		}

		cond += fmt.Sprintf(" AND data @> $%d", pos)
		args = append(args, body)
	}

	return cond, args, nil
}

func marshalBody(doc store.Document) ([]byte, error) {
	// the id column is authoritative; never persist it inside the body
	if _, ok := doc["id"]; ok {
		clean := make(store.Document, len(doc))

		for k, v := range doc {
			if k == "id" {
				continue
			}
			clean[k] = v
		}

		doc = clean
	}

	return json.Marshal(doc)
}

func scanDocument(row pgx.Row) (store.Document, error) {
	var id string
	var body []byte

	err := row.Scan(&id, &body)

	if err != nil {
		return nil, err
	}

	doc := store.Document{}

	err = json.Unmarshal(body, &doc)

	if err != nil {
		return nil, err
	}

	doc["id"] = id

	return doc, nil
}
