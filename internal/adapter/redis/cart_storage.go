package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tiendalia/cart-service/internal/repository"
)

const cartKeyPrefix = "cart:"

// cartStorageFactory scopes the engine's fixed storage key per session. The
// cart engine always reads and writes a single key; this adapter owns the
// session namespacing so the contract seen by the engine stays flat.
type cartStorageFactory struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartStorageFactory(client *redis.Client, ttl time.Duration) repository.CartStorageFactory {
	return &cartStorageFactory{client: client, ttl: ttl}
}

func (f *cartStorageFactory) ForSession(sessionID string) repository.CartStorage {
	return &cartStorage{client: f.client, sessionID: sessionID, ttl: f.ttl}
}

type cartStorage struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
}

func (s *cartStorage) key(key string) string {
	return cartKeyPrefix + s.sessionID + ":" + key
}

func (s *cartStorage) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cart state for session %s: %w", s.sessionID, err)
	}
	return data, nil
}

func (s *cartStorage) Write(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cart state for session %s: %w", s.sessionID, err)
	}
	return nil
}
