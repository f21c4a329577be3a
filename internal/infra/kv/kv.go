// Package kv defines the key/value backend the store persists JSON documents in.
package kv

import (
	"context"
	"errors"
)

var ErrQuotaExceeded = errors.New("kv: quota exceeded")

// Backend is a flat string-keyed byte store. Implementations must be safe for
// concurrent use.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
