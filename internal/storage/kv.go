// Package storage provides key-value storage engines for authclient.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yndnr/authclient/internal/telemetry/logger"
)

// ErrClosed is returned by engines used after Close.
var ErrClosed = errors.New("kv engine closed")

// KVEngine defines the interface for key-value storage.
//
// Implementation requirements:
//   - Thread-safe: concurrent reads/writes must be safe
//   - Apply is atomic: readers observe all of a batch or none of it
//   - GetMany reads all keys from one consistent view
//   - Deleting a missing key is not an error
type KVEngine interface {
	// GetMany retrieves several keys at once. Missing keys are absent
	// from the result map.
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)

	// Apply commits all operations in b atomically.
	Apply(ctx context.Context, b *Batch) error

	// Close releases the engine.
	Close() error
}

// OpKind is the kind of a batch operation.
type OpKind int

const (
	OpSet OpKind = iota
	OpDelete
)

// Op is one batch operation.
type Op struct {
	Kind  OpKind
	Key   string
	Value []byte
}

// Batch groups writes that must land together.
type Batch struct {
	ops []Op
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Set queues a write of value under key.
func (b *Batch) Set(key string, value []byte) *Batch {
	b.ops = append(b.ops, Op{Kind: OpSet, Key: key, Value: value})
	return b
}

// Delete queues removal of key.
func (b *Batch) Delete(key string) *Batch {
	b.ops = append(b.ops, Op{Kind: OpDelete, Key: key})
	return b
}

// Ops returns the queued operations in order.
func (b *Batch) Ops() []Op {
	return b.ops
}

// Len returns the number of queued operations.
func (b *Batch) Len() int {
	return len(b.ops)
}

// Engine names accepted by KVConfig.Engine.
const (
	EngineBadger = "badger"
	EngineRedis  = "redis"
	EngineMemory = "memory"
)

// KVConfig configures a KV engine.
type KVConfig struct {
	// Engine specifies the KV engine type ("badger", "redis", "memory").
	// Default: "badger"
	Engine string

	// Dir is the storage directory (badger only).
	Dir string

	Badger BadgerConfig
	Redis  RedisConfig
}

// BadgerConfig contains Badger-specific tuning parameters.
type BadgerConfig struct {
	// GCInterval is the interval between automatic value log GC runs.
	// Default: 10m
	GCInterval time.Duration

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5
	GCThreshold float64

	// SyncWrites enables fsync after each write.
	// Default: true, session writes are rare and must survive a crash.
	SyncWrites bool
}

// RedisConfig configures the Redis engine.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Prefix is prepended to every key. Default: "authclient:"
	Prefix string
}

// DefaultKVConfig returns the default KV configuration.
func DefaultKVConfig(dir string) KVConfig {
	return KVConfig{
		Engine: EngineBadger,
		Dir:    dir,
		Badger: DefaultBadgerConfig(),
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "authclient:",
		},
	}
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:  10 * time.Minute,
		GCThreshold: 0.5,
		SyncWrites:  true,
	}
}

// Open creates the engine selected by cfg.Engine.
func Open(ctx context.Context, cfg KVConfig, log logger.Logger) (KVEngine, error) {
	if log == nil {
		log = logger.Default()
	}

	switch cfg.Engine {
	case "", EngineBadger:
		return NewBadgerEngine(cfg, log)
	case EngineRedis:
		return NewRedisEngine(ctx, cfg.Redis, log)
	case EngineMemory:
		return NewMemoryEngine(), nil
	default:
		return nil, fmt.Errorf("storage: unknown engine %q", cfg.Engine)
	}
}
