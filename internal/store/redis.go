// internal/store/redis.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"email-dispatch/internal/common/config"
)

// RedisStore keeps each document as a hash keyed "<collection>:<id>" with
// JSON-encoded field values. HSet gives the partial-update semantics the
// status write-back contract requires.
type RedisStore struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed document store.
func NewRedis(cfg config.RedisConfig) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return &RedisStore{client: rdb}
}

// NewRedisWithClient wraps an existing client (tests, shared pools).
func NewRedisWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping tests the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Client returns the underlying *redis.Client for collaborators that share
// the connection (the trigger consumer).
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func docKey(collection, id string) string {
	return collection + ":" + id
}

// Get loads a document. Absent documents yield (nil, nil).
func (s *RedisStore) Get(ctx context.Context, collection, id string) (Document, error) {
	raw, err := s.client.HGetAll(ctx, docKey(collection, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", docKey(collection, id), err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	doc := make(Document, len(raw))
	for field, val := range raw {
		var decoded interface{}
		if err := json.Unmarshal([]byte(val), &decoded); err != nil {
			// Legacy writers stored plain strings; keep them as-is.
			decoded = val
		}
		doc[field] = decoded
	}
	return doc, nil
}

// Update merges fields into the document without touching other fields.
func (s *RedisStore) Update(ctx context.Context, collection, id string, fields Document) error {
	if len(fields) == 0 {
		return nil
	}

	pairs := make([]interface{}, 0, len(fields)*2)
	for field, val := range fields {
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("encode field %q: %w", field, err)
		}
		pairs = append(pairs, field, string(encoded))
	}

	if err := s.client.HSet(ctx, docKey(collection, id), pairs...).Err(); err != nil {
		return fmt.Errorf("update document %s: %w", docKey(collection, id), err)
	}
	return nil
}
