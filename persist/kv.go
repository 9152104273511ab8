package persist

import (
	"context"
	"time"

	"github.com/zeptools/gw-dispatch/db/kvdb"
)

// KVStorage keeps payloads in a key-value database.
// A zero TTL keeps them forever
type KVStorage struct {
	Client kvdb.Client
	TTL    time.Duration
}

// Ensure KVStorage implements Storage
var _ Storage = (*KVStorage)(nil)

func NewKVStorage(client kvdb.Client, ttl time.Duration) *KVStorage {
	return &KVStorage{Client: client, TTL: ttl}
}

func (s *KVStorage) Load(ctx context.Context, key string) ([]byte, bool, error) {
	return s.Client.Get(ctx, key)
}

func (s *KVStorage) Save(ctx context.Context, key string, payload []byte) error {
	return s.Client.Set(ctx, key, payload, s.TTL)
}

func (s *KVStorage) Remove(ctx context.Context, key string) error {
	_, err := s.Client.Delete(ctx, key)
	return err
}
