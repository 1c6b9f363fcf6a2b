// Package optional provides the tri-state value of a field in a partial
// update: absent, explicitly null, or set.
package optional

import "github.com/oapi-codegen/nullable"

// Field is the tri-state value of a key in a partial update.
// The zero value means the key was absent.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Of returns a field holding v
func Of[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null returns a field that was explicitly null
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// HasValue reports whether the key was present with a non-null value
func (f Field[T]) HasValue() bool {
	return f.Set && !f.Null
}

// Ptr returns nil for null and a pointer to the value otherwise.
// Callers check Set first.
func (f Field[T]) Ptr() *T {
	if f.Null {
		return nil
	}
	v := f.Value
	return &v
}

// FromNullable converts a decoded JSON field
func FromNullable[T any](n nullable.Nullable[T]) Field[T] {
	return Map(n, func(v T) T { return v })
}

// Map converts a decoded JSON field, applying fn to a present value
func Map[T, U any](n nullable.Nullable[T], fn func(T) U) Field[U] {
	switch {
	case !n.IsSpecified():
		return Field[U]{}
	case n.IsNull():
		return Null[U]()
	default:
		return Of(fn(n.MustGet()))
	}
}
