package cryptox

import "github.com/dmitrijs2005/secretkeeper/internal/common"

// Sizes of the raw key material accepted by NewCipher.
const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// IVSize is the length of the configured IV and of every GCM nonce.
	IVSize = 16
)

// SafeValue holds a value that passed a validation predicate at construction.
//
// An invalid SafeValue never hands out its value: Value returns
// common.ErrorValidation instead of a zero or truncated value. The zero
// SafeValue is invalid.
type SafeValue[T any] struct {
	value T
	valid bool
}

// NewSafeValue evaluates isValid once and captures v only if it holds.
// A nil predicate yields an invalid value.
func NewSafeValue[T any](v T, isValid func(T) bool) SafeValue[T] {
	if isValid == nil || !isValid(v) {
		return SafeValue[T]{}
	}
	return SafeValue[T]{value: v, valid: true}
}

// Valid reports whether the predicate held at construction.
func (s SafeValue[T]) Valid() bool {
	return s.valid
}

// Value returns the wrapped value, or common.ErrorValidation if the
// instance is invalid.
func (s SafeValue[T]) Value() (T, error) {
	if !s.valid {
		var zero T
		return zero, common.ErrorValidation
	}
	return s.value, nil
}

// NewKey wraps a key string that must be exactly KeySize bytes long.
func NewKey(s string) SafeValue[string] {
	return NewSafeValue(s, hasLen(KeySize))
}

// NewIV wraps an IV string that must be exactly IVSize bytes long.
func NewIV(s string) SafeValue[string] {
	return NewSafeValue(s, hasLen(IVSize))
}

func hasLen(n int) func(string) bool {
	return func(s string) bool { return len(s) == n }
}
