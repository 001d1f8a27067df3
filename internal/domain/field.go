package domain

import (
	"bytes"
	"encoding/json"
)

// Field records whether a JSON member was present in the payload, independent of its value.
// A member sent as null is Set with a zero Value.
type Field[T any] struct {
	Set   bool
	Value T
	null  bool
}

// Some returns a Field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// IsNull reports whether the member was present with a JSON null.
func (f Field[T]) IsNull() bool {
	return f.Set && f.null
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.Value = zero
		f.null = true
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.Value)
}
