// Package vector extends list queries with similarity ordering over vector
// columns, composing with the filter package's compiled predicate rather
// than replacing it.
package vector

import (
	"fmt"

	"github.com/pgapigen/pgapigen"
	"github.com/pgapigen/pgapigen/dialect/sql"
)

// Metric is a supported vector distance function.
type Metric string

const (
	Cosine     Metric = "cosine"
	L2         Metric = "l2"
	InnerProduct Metric = "inner"
)

// operator returns the pgvector distance operator for m.
func (m Metric) operator() (string, error) {
	switch m {
	case Cosine:
		return "<=>", nil
	case L2:
		return "<->", nil
	case InnerProduct:
		return "<#>", nil
	default:
		return "", fmt.Errorf("unsupported metric %q", m)
	}
}

// Search describes a request-time vector query: order target-column rows
// by distance to Query, optionally cut off at MaxDistance.
type Search struct {
	Column      string
	Query       []float64
	Metric      Metric
	MaxDistance *float64
}

// Validate checks Search against its validation rules (non-empty query
// vector, known metric) without touching the database.
func (s Search) Validate() error {
	if s.Column == "" {
		return pgapigen.NewValidationError("vector", "field is required")
	}
	if len(s.Query) == 0 {
		return pgapigen.NewValidationError("vector", "query vector must not be empty")
	}
	if _, err := s.Metric.operator(); err != nil {
		return pgapigen.NewValidationError("vector", err.Error())
	}
	return nil
}

// DistanceExpr appends the projected "_distance" column expression (without
// its alias) to b, binding the query vector as a single parameter in
// pgvector's literal array text form.
func (s Search) DistanceExpr(b *sql.Builder) error {
	op, err := s.Metric.operator()
	if err != nil {
		return err
	}
	b.Ident(s.Column).WriteString(" " + op + " ").Arg(literal(s.Query))
	return nil
}

// ThresholdPredicate returns a predicate combinable via sql.And with the
// compiled filter, comparing the same distance expression against
// MaxDistance; it returns nil when no threshold is configured.
func (s Search) ThresholdPredicate() func(*sql.Builder) {
	if s.MaxDistance == nil {
		return nil
	}
	return func(b *sql.Builder) {
		if err := s.DistanceExpr(b); err != nil {
			return
		}
		b.WriteString(" <= ").Arg(*s.MaxDistance)
	}
}

// literal renders a vector as pgvector's "[1,2,3]" input literal.
func literal(v []float64) string {
	s := "["
	for i, f := range v {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%g", f)
	}
	return s + "]"
}
