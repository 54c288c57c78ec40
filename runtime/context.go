// Package runtime is the support library imported by sqlproc-generated code.
//
// It provides the data-access context that generated code resolves
// connections from, the Table accessor used by the ORM-backed
// materialization strategy, and the null-sentinel helpers shared by
// parameter binding and row scanning.
package runtime

import (
	"database/sql"

	"github.com/huandu/xstrings"
	"github.com/jmoiron/sqlx"
)

// Context is the base data-access context. User-defined contexts embed it
// and declare Table fields for the entity sets they expose:
//
//	type AppContext struct {
//		runtime.Context
//		People runtime.Table[Person]
//	}
//
// The generator treats any carrier field whose type derives from Context as
// the ORM-context field and obtains the underlying connection through DB().
type Context struct {
	dbx *sqlx.DB
}

// Open opens a database handle and wraps it in a Context. Column names are
// matched to struct fields by snake_case, the same convention the generator
// uses for external parameter names.
func Open(driverName, dsn string) (*Context, error) {
	dbx, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	dbx.MapperFunc(xstrings.ToSnakeCase)
	return &Context{dbx: dbx}, nil
}

// Wrap adapts an existing *sql.DB into a Context. The driver name is needed
// by the underlying mapper to pick the bind variable style.
func Wrap(db *sql.DB, driverName string) *Context {
	dbx := sqlx.NewDb(db, driverName)
	dbx.MapperFunc(xstrings.ToSnakeCase)
	return &Context{dbx: dbx}
}

// DB returns the underlying connection handle. Generated code calls this
// when a strategy needs a raw connection from an ORM-context field.
func (c *Context) DB() *sql.DB {
	if c.dbx == nil {
		return nil
	}
	return c.dbx.DB
}

// Close closes the underlying database handle.
func (c *Context) Close() error {
	if c.dbx == nil {
		return nil
	}
	return c.dbx.Close()
}
