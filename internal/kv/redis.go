package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shelf-go/internal/shelf"
)

// DefaultRedisPrefix namespaces shelf keys inside a shared Redis database.
const DefaultRedisPrefix = "shelf:"

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // prepended to every key
	Timeout  time.Duration // per-operation timeout, also used for the initial ping
}

// RedisStore keeps each key as a Redis string under Prefix+key.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis store requires an address")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultRedisPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.Timeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	})

	s := NewRedisStoreFromClient(client, opts.Prefix, opts.Timeout)
	ctx, cancel := s.context()
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}
	return s, nil
}

// NewRedisStoreFromClient wraps an existing client. The store takes ownership
// of the client and closes it on Close.
func NewRedisStoreFromClient(client *redis.Client, prefix string, timeout time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, timeout: timeout}
}

func (s *RedisStore) Get(key string) ([]byte, error) {
	ctx, cancel := s.context()
	defer cancel()

	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shelf.ErrKeyNotFound
		}
		return nil, fmt.Errorf("reading %s from redis: %w", key, err)
	}
	return data, nil
}

func (s *RedisStore) Set(key string, value []byte) error {
	ctx, cancel := s.context()
	defer cancel()

	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("writing %s to redis: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(key string) error {
	ctx, cancel := s.context()
	defer cancel()

	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("deleting %s from redis: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Compile-time check that RedisStore implements shelf.Store interface
var _ shelf.Store = (*RedisStore)(nil)
