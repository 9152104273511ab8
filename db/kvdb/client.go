package kvdb

import (
	"context"
	"errors"
	"time"
)

// Client is the key-value backend used for persisted state
type Client interface {
	Init() error
	Close() error
	GetConf() *Conf

	//---- Key Ops ----

	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, keys ...string) (int64, error)
	// Expire sets/updates expiration for a key
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) // found & updated, err

	//---- Single-value Ops ----

	// Set stores value. expiration 0 = no expiry
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error) // val, found, err
}

var ErrNotSupported = errors.New("kvdb: operation not supported")
