// Package redisstore keeps session-scoped entries in Redis with a TTL.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/idilsaglam/hotelres/internal/store"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "hotelres:"

// Store is a store.Store whose entries expire ttl after their last write.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps client. A ttl of zero keeps entries forever.
func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, redisKey(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func redisKey(key string) string {
	return keyPrefix + key
}
