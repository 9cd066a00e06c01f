package sql

import (
	"fmt"
	"strconv"
	"strings"
)

// Builder accumulates a SQL fragment together with its positional bind
// parameters. It is the single choke point through which every predicate,
// filter, and sort clause in this module produces SQL: identifiers are
// always double-quoted and values are always appended as a new positional
// placeholder, never spliced into the fragment as text. This is the
// SQL-injection invariant the filter compiler and the runtime include
// loader both depend on.
type Builder struct {
	sb   strings.Builder
	args []any
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// Ident appends a double-quoted SQL identifier. Identifiers are never
// taken from user input without first passing a column allow-list check
// upstream (see the filter package); Ident itself only quotes, it does not
// validate.
func (b *Builder) Ident(name string) *Builder {
	b.sb.WriteByte('"')
	b.sb.WriteString(strings.ReplaceAll(name, `"`, `""`))
	b.sb.WriteByte('"')
	return b
}

// Table appends a possibly schema-qualified, double-quoted table
// reference, e.g. "public"."books".
func (b *Builder) Table(schema, name string) *Builder {
	if schema != "" {
		b.Ident(schema)
		b.sb.WriteByte('.')
	}
	return b.Ident(name)
}

// Arg appends a new positional placeholder ($N) bound to v.
func (b *Builder) Arg(v any) *Builder {
	b.args = append(b.args, v)
	b.sb.WriteByte('$')
	b.sb.WriteString(strconv.Itoa(len(b.args)))
	return b
}

// WriteString appends a literal SQL keyword/operator fragment. Never call
// this with untrusted text; it exists for syntax ("=", "AND", "(", ...).
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// WriteByte appends a single literal byte.
func (b *Builder) WriteByte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Join appends each element, writing sep between them.
func (b *Builder) Join(sep string, els []func(*Builder)) *Builder {
	for i, el := range els {
		if i > 0 {
			b.WriteString(sep)
		}
		el(b)
	}
	return b
}

// String returns the accumulated SQL fragment.
func (b *Builder) String() string { return b.sb.String() }

// Args returns the positional bind parameters collected so far, in order.
func (b *Builder) Args() []any { return b.args }

// Len reports the number of bind parameters collected so far.
func (b *Builder) Len() int { return len(b.args) }

// Query is the result of compiling a predicate, sort clause, or statement:
// a parameterized SQL fragment and its positional argument vector.
type Query struct {
	Query string
	Args  []any
}

// Build runs fn against a fresh Builder and returns the resulting Query.
func Build(fn func(*Builder)) Query {
	b := NewBuilder()
	fn(b)
	return Query{Query: b.String(), Args: b.Args()}
}

// Placeholder returns the positional placeholder syntax ("$1", "$2", ...)
// used throughout this module; Postgres is the only supported dialect.
func Placeholder(pos int) string { return fmt.Sprintf("$%d", pos) }
