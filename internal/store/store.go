// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"fmt"
)

// Well-known keys.
const (
	KeyTradeLogs = "pcr_trade_logs"
	KeyCapital   = "capital"
)

// KVStore is a durable key-value store holding whole blobs per key.
type KVStore interface {
	// Get returns the value for key, or errors.ErrKeyNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set overwrites the value for key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Lifecycle
	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options configures Open.
type Options struct {
	Backend       string
	Path          string // sqlite database file
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open creates the store selected by opts.Backend.
func Open(ctx context.Context, opts Options) (KVStore, error) {
	switch opts.Backend {
	case "", BackendSQLite:
		s, err := NewSQLiteStore(opts.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendRedis:
		s, err := NewRedisStore(ctx, RedisConfig{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			Prefix:   opts.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", opts.Backend)
	}
}
