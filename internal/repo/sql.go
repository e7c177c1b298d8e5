package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// builder creates Postgres-flavoured statements.
var builder = entsql.Dialect(dialect.Postgres)

func query(ctx context.Context, conn dialect.ExecQuerier, q entsql.Querier, dst any) error {
	stmt, args := q.Query()
	var rows entsql.Rows
	if err := conn.Query(ctx, stmt, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	return entsql.ScanSlice(rows, dst)
}

func first[T any](ctx context.Context, conn dialect.ExecQuerier, sel *entsql.Selector, label string) (*T, error) {
	var out []*T
	if err := query(ctx, conn, sel.Limit(1), &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, &NotFoundError{label: label}
	}
	return out[0], nil
}

func count(ctx context.Context, conn dialect.ExecQuerier, sel *entsql.Selector) (int, error) {
	stmt, args := sel.Count().Query()
	var rows entsql.Rows
	if err := conn.Query(ctx, stmt, args, &rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	return entsql.ScanInt(rows)
}

func exec(ctx context.Context, conn dialect.ExecQuerier, q entsql.Querier) (int64, error) {
	stmt, args := q.Query()
	var res sql.Result
	if err := conn.Exec(ctx, stmt, args, &res); err != nil {
		return 0, wrapConstraint(err)
	}
	return res.RowsAffected()
}

func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

func jsonb(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal json column: %w", err)
	}
	return b, nil
}

func uuidArgs(ids []uuid.UUID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func page(sel *entsql.Selector, limit, offset int) *entsql.Selector {
	if limit > 0 {
		sel.Limit(limit)
	}
	if offset > 0 {
		sel.Offset(offset)
	}
	return sel
}
