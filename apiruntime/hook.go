package apiruntime

import (
	"context"

	"github.com/pgapigen/pgapigen/dialect/sql"
)

// OnRequest is the signature of a user-supplied per-request hook, named in
// a project's Config.OnRequestHookImport. Neither Resource nor the
// generated route handlers call an OnRequest hook, so a configured hook
// does not run.
type OnRequest func(ctx context.Context, conn *sql.Driver) error

// NoopHook is an OnRequest that does nothing.
func NoopHook(context.Context, *sql.Driver) error { return nil }
