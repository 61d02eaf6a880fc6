package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"matha-service/internal/app"
	"matha-service/internal/domain"
)

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DocumentStore keeps every collection in one JSONB table:
//
//	documents(collection text, id text, data jsonb, PRIMARY KEY (collection, id))
//
// Filters use containment (data @> ...) and ties in ordering fall back to id.
type DocumentStore struct {
	pool *pgxpool.Pool
}

func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string, out any) error {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DocumentStore) Find(ctx context.Context, collection string, q app.Query, out any) error {
	sql, args, err := buildFind(collection, q)
	if err != nil {
		return err
	}
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}
	defer rows.Close()

	docs := make([]json.RawMessage, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("scan %s: %w", collection, err)
		}
		docs = append(docs, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}

	payload, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", collection, err)
	}
	return nil
}

func (s *DocumentStore) Upsert(ctx context.Context, collection, id string, doc any) error {
	if id == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrValidation)
	}
	data, err := withID(doc, id)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)
ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data`,
		collection, id, data)
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DocumentStore) Increment(ctx context.Context, collection, id string, inc map[string]int, set map[string]any) error {
	sql, args, err := buildIncrement(collection, id, inc, set)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("increment %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func buildFind(collection string, q app.Query) (string, []any, error) {
	var b strings.Builder
	args := []any{collection}
	b.WriteString(`SELECT data FROM documents WHERE collection = $1`)

	if len(q.Filters) > 0 {
		match := make(map[string]any, len(q.Filters))
		for _, f := range q.Filters {
			if !fieldName.MatchString(f.Field) {
				return "", nil, fmt.Errorf("%w: invalid field %q", domain.ErrValidation, f.Field)
			}
			match[f.Field] = f.Value
		}
		payload, err := json.Marshal(match)
		if err != nil {
			return "", nil, fmt.Errorf("encode filter: %w", err)
		}
		args = append(args, string(payload))
		fmt.Fprintf(&b, ` AND data @> $%d::jsonb`, len(args))
	}

	if q.OrderBy != "" {
		if !fieldName.MatchString(q.OrderBy) {
			return "", nil, fmt.Errorf("%w: invalid field %q", domain.ErrValidation, q.OrderBy)
		}
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		fmt.Fprintf(&b, ` ORDER BY data->'%s' %s, id`, q.OrderBy, dir)
	} else {
		b.WriteString(` ORDER BY id`)
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, ` LIMIT $%d`, len(args))
	}
	return b.String(), args, nil
}

func buildIncrement(collection, id string, inc map[string]int, set map[string]any) (string, []any, error) {
	args := []any{collection, id}
	expr := "data"

	fields := make([]string, 0, len(inc))
	for field := range inc {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if !fieldName.MatchString(field) {
			return "", nil, fmt.Errorf("%w: invalid field %q", domain.ErrValidation, field)
		}
		args = append(args, inc[field])
		expr = fmt.Sprintf(`jsonb_set(%s, '{%s}', to_jsonb(COALESCE((data->>'%s')::bigint, 0) + $%d::bigint))`,
			expr, field, field, len(args))
	}

	if len(set) > 0 {
		for field := range set {
			if !fieldName.MatchString(field) {
				return "", nil, fmt.Errorf("%w: invalid field %q", domain.ErrValidation, field)
			}
		}
		payload, err := json.Marshal(set)
		if err != nil {
			return "", nil, fmt.Errorf("encode fields: %w", err)
		}
		args = append(args, string(payload))
		expr = fmt.Sprintf(`%s || $%d::jsonb`, expr, len(args))
	}

	sql := fmt.Sprintf(`UPDATE documents SET data = %s WHERE collection = $1 AND id = $2`, expr)
	return sql, args, nil
}

func withID(doc any, id string) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", err
	}
	fields["id"] = id
	out, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
