// Package redis provides a Redis-backed persistent cache tier.
//
// Values are gzip-compressed JSON. Write times are tracked in a sorted set so
// old entries can be pruned without scanning every key.
package redis

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/krisalay/msea-cache/storage"
)

const timestampsKey = "msea:timestamps"

// Config holds the connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	UseTLS   bool
}

// Store persists cache entries in Redis.
type Store struct {
	client *redis.Client
}

// New connects a Store. The connection is lazy; use Ping to check it.
func New(cfg Config) *Store {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	return &Store{client: redis.NewClient(opts)}
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("get cache entry: %w", err)
	}

	decompressed, err := decompress(val)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	if decompressed == nil {
		return nil, storage.ErrNotFound
	}
	return decompressed, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	compressed, err := compress(value)
	if err != nil {
		return fmt.Errorf("failed to compress: %w", err)
	}

	if err := s.client.Set(ctx, key, compressed, 0).Err(); err != nil {
		return fmt.Errorf("set cache entry: %w", err)
	}

	return s.client.ZAdd(ctx, timestampsKey, redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: key,
	}).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return s.client.ZRem(ctx, timestampsKey, key).Err()
}

// Keys walks the keyspace with SCAN so large stores never block the server.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan cache keys: %w", err)
	}
	return keys, nil
}

// DeleteOlderThan removes entries written before now-olderThan.
func (s *Store) DeleteOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).Unix()

	keys, err := s.client.ZRangeByScore(ctx, timestampsKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", cutoff),
	}).Result()
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	n, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, err
	}

	members := make([]any, len(keys))
	for i, k := range keys {
		members[i] = k
	}
	return n, s.client.ZRem(ctx, timestampsKey, members...).Err()
}

func compress(data []byte) ([]byte, error) {
	var b bytes.Buffer
	w := gzip.NewWriter(&b)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

var (
	_ storage.Store  = (*Store)(nil)
	_ storage.Pruner = (*Store)(nil)
)
