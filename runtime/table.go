package runtime

import (
	"context"
	"database/sql"
	"errors"
)

// ErrUnbound is returned when a Table is used before BindTable attached it
// to a Context.
var ErrUnbound = errors.New("sqlproc: table is not bound to a context")

// Table is an entity-set accessor declared on a user context. The generator
// resolves the accessor for an entity type by matching the Table's item type
// against the method's result type, falling back to the pluralized type name.
type Table[T any] struct {
	ctx *Context
}

// BindTable attaches a Table to the given context:
//
//	app := &AppContext{Context: *c, People: runtime.BindTable[Person](c)}
func BindTable[T any](c *Context) Table[T] {
	return Table[T]{ctx: c}
}

// Raw starts a raw-query-and-map execution with the given command text and
// bound arguments.
func (t Table[T]) Raw(query string, args ...any) *RawQuery[T] {
	return &RawQuery[T]{ctx: t.ctx, query: query, args: args}
}

// RawQuery is a prepared raw-query-and-map invocation produced by Table.Raw.
type RawQuery[T any] struct {
	ctx   *Context
	query string
	args  []any
}

// All executes the query and maps every result row into a slice.
func (q *RawQuery[T]) All(ctx context.Context) ([]T, error) {
	if q.ctx == nil || q.ctx.dbx == nil {
		return nil, ErrUnbound
	}
	var out []T
	if err := q.ctx.dbx.SelectContext(ctx, &out, q.query, q.args...); err != nil {
		return nil, err
	}
	return out, nil
}

// First executes the query and maps the first result row. When the result
// set is empty it returns the zero value of T, not an error.
func (q *RawQuery[T]) First(ctx context.Context) (T, error) {
	var out T
	if q.ctx == nil || q.ctx.dbx == nil {
		return out, ErrUnbound
	}
	err := q.ctx.dbx.GetContext(ctx, &out, q.query, q.args...)
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, nil
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// FirstPtr is First for pointer-shaped results: it returns nil when the
// result set is empty.
func (q *RawQuery[T]) FirstPtr(ctx context.Context) (*T, error) {
	if q.ctx == nil || q.ctx.dbx == nil {
		return nil, ErrUnbound
	}
	var out T
	err := q.ctx.dbx.GetContext(ctx, &out, q.query, q.args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
