// Package kv stores session records in a key-value backend.
package kv

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/espanolfacil/academy/core/session"
)

// Key returns the storage key of a browser context's session record.
func Key(prefix, contextID string) string {
	return prefix + ":" + contextID + ":" + session.SessionKey
}

// Open connects to the redis server at url.
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

// RedisBackend keeps session records in redis, each expiring after ttl.
type RedisBackend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ session.Backend = (*RedisBackend)(nil) // interface compliance check

func NewRedisBackend(client *redis.Client, prefix string, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix, ttl: ttl}
}

func (b *RedisBackend) Record(contextID string) session.Store {
	return &redisRecord{backend: b, key: Key(b.prefix, contextID)}
}

type redisRecord struct {
	backend *RedisBackend
	key     string
}

func (r *redisRecord) Get(ctx context.Context) ([]byte, error) {
	data, err := r.backend.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, session.ErrNoRecord
		}
		return nil, errors.Wrap(err, "redis get")
	}
	return data, nil
}

func (r *redisRecord) Set(ctx context.Context, data []byte) error {
	return errors.Wrap(r.backend.client.Set(ctx, r.key, data, r.backend.ttl).Err(), "redis set")
}

func (r *redisRecord) Delete(ctx context.Context) error {
	return errors.Wrap(r.backend.client.Del(ctx, r.key).Err(), "redis del")
}
