// Package storage provides the byte-string key-value stores that hold
// submitted feedback. Every backend offers the same two operations the form
// needs: read a key, overwrite a key.
package storage

import (
	"context"
)

// KV is an opaque key-value store of byte strings
type KV interface {
	// Get returns the value stored under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set overwrites the value stored under key
	Set(ctx context.Context, key string, value []byte) error

	// Close releases the underlying resources
	Close() error
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
