package runtime

import "database/sql"

// sql.Null is the single "database null" sentinel used on every path:
// parameter binding, output read-back, and row scanning all go through the
// helpers below rather than comparing against driver-specific values.

// NullIfNil maps a nil pointer to SQL NULL and dereferences otherwise.
// Generated code uses it as the null guard for nullable In parameters.
func NullIfNil[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// NullFrom builds the bound value for an InOut parameter: nil maps to the
// invalid (NULL) sentinel, a non-nil pointer to its value.
func NullFrom[T any](p *T) sql.Null[T] {
	if p == nil {
		return sql.Null[T]{}
	}
	return sql.Null[T]{V: *p, Valid: true}
}

// NullPtr converts a scanned sentinel back into an optional value: NULL
// becomes nil, anything else a pointer to a fresh copy of the value.
func NullPtr[T any](n sql.Null[T]) *T {
	if !n.Valid {
		return nil
	}
	v := n.V
	return &v
}
