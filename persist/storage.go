// Package persist saves the whitelisted state slices across restarts.
//
// A Persistor watches the store and writes the latest snapshot to a Storage
// backend on a fixed interval. Backends exist for the kvdb and sqldb clients.
package persist

import (
	"context"
	"errors"
)

// ErrNoStorage is returned by NewPersistor when storage is nil
var ErrNoStorage = errors.New("persist: nil storage")

// Storage is a single-key blob store
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, bool, error) // payload, found, err
	Save(ctx context.Context, key string, payload []byte) error
	Remove(ctx context.Context, key string) error
}
