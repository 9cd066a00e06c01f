// Package dialect defines the database dialect abstraction shared by the
// generation core and the runtime pieces it emits. pgapigen targets
// PostgreSQL only (see spec Non-goals), so this package carries a single
// dialect constant rather than a dispatch table, but keeps the
// Driver/Tx/ExecQuerier interface shapes so the runtime packages built on
// top of database/sql never depend on *sql.DB directly.
package dialect

import "context"

// Postgres is the only supported dialect name.
const Postgres = "postgres"

// ExecQuerier is implemented by both Driver and Tx.
type ExecQuerier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is a dialect-aware database driver.
type Driver interface {
	ExecQuerier
	Tx(ctx context.Context) (Tx, error)
	Close() error
	Dialect() string
}

// Tx adds transaction control to a Driver.
type Tx interface {
	Driver
	Commit() error
	Rollback() error
}
