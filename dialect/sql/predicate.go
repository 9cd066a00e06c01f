package sql

import "strings"

// Base predicates. These are what the filter compiler emits for each leaf
// of a Filter tree. Every predicate here either writes no value at all or
// writes it through Builder.Arg, never as a spliced string — this is the
// enforcement point for the SQL-injection invariant.

// FieldEQ returns a predicate testing field equality. A nil v renders as
// "IS NULL" per the filter-equivalence rule.
func FieldEQ(name string, v any) func(*Builder) {
	if v == nil {
		return FieldIsNull(name)
	}
	return func(b *Builder) {
		b.Ident(name).WriteString(" = ")
		b.Arg(v)
	}
}

// FieldNEQ returns a predicate testing field inequality. A nil v renders
// as "IS NOT NULL" per the filter-equivalence rule.
func FieldNEQ(name string, v any) func(*Builder) {
	if v == nil {
		return FieldNotNull(name)
	}
	return func(b *Builder) {
		b.Ident(name).WriteString(" <> ")
		b.Arg(v)
	}
}

// FieldGT, FieldGTE, FieldLT, FieldLTE return ordered-comparison predicates.
func FieldGT(name string, v any) func(*Builder)  { return cmpOp(name, ">", v) }
func FieldGTE(name string, v any) func(*Builder) { return cmpOp(name, ">=", v) }
func FieldLT(name string, v any) func(*Builder)  { return cmpOp(name, "<", v) }
func FieldLTE(name string, v any) func(*Builder) { return cmpOp(name, "<=", v) }

func cmpOp(name, op string, v any) func(*Builder) {
	return func(b *Builder) {
		b.Ident(name).WriteString(" " + op + " ")
		b.Arg(v)
	}
}

// FieldIn returns a predicate testing set membership. An empty vs renders
// the constant predicate "false", per the filter compiler's rule for empty
// $in.
func FieldIn(name string, vs ...any) func(*Builder) {
	if len(vs) == 0 {
		return func(b *Builder) { b.WriteString("false") }
	}
	return func(b *Builder) {
		b.Ident(name).WriteString(" = ANY(")
		b.Arg(vs)
		b.WriteString(")")
	}
}

// FieldNotIn returns a predicate testing set non-membership. An empty vs
// renders the constant predicate "true", per the filter compiler's rule
// for empty $nin.
func FieldNotIn(name string, vs ...any) func(*Builder) {
	if len(vs) == 0 {
		return func(b *Builder) { b.WriteString("true") }
	}
	return func(b *Builder) {
		b.WriteString("NOT (")
		b.Ident(name).WriteString(" = ANY(")
		b.Arg(vs)
		b.WriteString("))")
	}
}

// FieldIsNull returns a predicate testing that the field is SQL NULL.
func FieldIsNull(name string) func(*Builder) {
	return func(b *Builder) { b.Ident(name).WriteString(" IS NULL") }
}

// FieldNotNull returns a predicate testing that the field is not SQL NULL.
func FieldNotNull(name string) func(*Builder) {
	return func(b *Builder) { b.Ident(name).WriteString(" IS NOT NULL") }
}

// FieldContains, FieldHasPrefix, FieldHasSuffix render as a LIKE predicate
// with SQL wildcard characters escaped out of the user value so that the
// operator's intent — substring/prefix/suffix — cannot be widened by a
// caller-supplied "%" or "_".
func FieldContains(name, v string) func(*Builder)  { return likeOp(name, "LIKE", "%"+escapeLike(v)+"%") }
func FieldHasPrefix(name, v string) func(*Builder) { return likeOp(name, "LIKE", escapeLike(v)+"%") }
func FieldHasSuffix(name, v string) func(*Builder) { return likeOp(name, "LIKE", "%"+escapeLike(v)) }

// FieldContainsFold is the case-insensitive ($ilike) form of FieldContains.
func FieldContainsFold(name, v string) func(*Builder) {
	return likeOp(name, "ILIKE", "%"+escapeLike(v)+"%")
}

// FieldEqualFold compares two text values case-insensitively.
func FieldEqualFold(name, v string) func(*Builder) {
	return func(b *Builder) {
		b.WriteString("lower(")
		b.Ident(name)
		b.WriteString(") = lower(")
		b.Arg(v)
		b.WriteString(")")
	}
}

// escapeLike escapes LIKE/ILIKE metacharacters in a user-supplied value so
// it is matched literally once embedded between wildcards.
func escapeLike(v string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(v)
}

func likeOp(name, op, pattern string) func(*Builder) {
	return func(b *Builder) {
		b.Ident(name).WriteString(" " + op + " ")
		b.Arg(pattern)
		b.WriteString(` ESCAPE '\'`)
	}
}

// And groups predicates with the AND operator. An empty ps renders the
// constant predicate "true".
func And(ps ...func(*Builder)) func(*Builder) {
	if len(ps) == 0 {
		return func(b *Builder) { b.WriteString("true") }
	}
	return func(b *Builder) {
		b.WriteByte('(')
		for i, p := range ps {
			if i > 0 {
				b.WriteString(" AND ")
			}
			p(b)
		}
		b.WriteByte(')')
	}
}

// Or groups predicates with the OR operator. An empty ps renders the
// constant predicate "false".
func Or(ps ...func(*Builder)) func(*Builder) {
	if len(ps) == 0 {
		return func(b *Builder) { b.WriteString("false") }
	}
	return func(b *Builder) {
		b.WriteByte('(')
		for i, p := range ps {
			if i > 0 {
				b.WriteString(" OR ")
			}
			p(b)
		}
		b.WriteByte(')')
	}
}

// Not negates a predicate.
func Not(p func(*Builder)) func(*Builder) {
	return func(b *Builder) {
		b.WriteString("NOT (")
		p(b)
		b.WriteByte(')')
	}
}
