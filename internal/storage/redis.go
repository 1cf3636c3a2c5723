// Package storage provides key-value storage engines for authclient.
package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/yndnr/authclient/internal/telemetry/logger"
)

// RedisEngine implements KVEngine on a Redis server.
type RedisEngine struct {
	rdb    *redis.Client
	prefix string
	logger logger.Logger
}

// NewRedisEngine connects to Redis and verifies the connection with PING.
func NewRedisEngine(ctx context.Context, cfg RedisConfig, log logger.Logger) (*RedisEngine, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis: addr is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}

	log.Debug("redis engine connected", "addr", cfg.Addr, "db", cfg.DB)

	return &RedisEngine{rdb: rdb, prefix: cfg.Prefix, logger: log}, nil
}

func (e *RedisEngine) key(k string) string {
	return e.prefix + k
}

// GetMany reads all keys with a single MGET.
func (e *RedisEngine) GetMany(ctx context.Context, keys ...string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = e.key(k)
	}

	vals, err := e.rdb.MGet(ctx, full...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: mget: %w", err)
	}

	out := make(map[string][]byte, len(keys))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[keys[i]] = []byte(s)
		}
	}
	return out, nil
}

// Apply commits the batch inside MULTI/EXEC.
func (e *RedisEngine) Apply(ctx context.Context, b *Batch) error {
	_, err := e.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, op := range b.Ops() {
			switch op.Kind {
			case OpSet:
				pipe.Set(ctx, e.key(op.Key), op.Value, 0)
			case OpDelete:
				pipe.Del(ctx, e.key(op.Key))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: apply batch: %w", err)
	}
	return nil
}

// Close closes the client.
func (e *RedisEngine) Close() error {
	return e.rdb.Close()
}
