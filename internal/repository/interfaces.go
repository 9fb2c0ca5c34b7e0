package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when a key is absent.
var ErrNotFound = errors.New("key not found")

type (
	// KVStore is a persistent key-value store holding opaque values.
	// Writes are whole-value overwrites; the last write wins.
	KVStore interface {
		Get(ctx context.Context, key string) ([]byte, error)
		Set(ctx context.Context, key string, value []byte) error
		Delete(ctx context.Context, key string) error
		Close() error
	}

	// Pinger is implemented by stores backed by a remote service.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
