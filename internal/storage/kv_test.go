package storage

import (
	"context"
	"sync"
	"testing"
)

// getOne reads key through GetMany.
func getOne(t *testing.T, engine KVEngine, key string) ([]byte, bool) {
	t.Helper()
	vals, err := engine.GetMany(context.Background(), key)
	if err != nil {
		t.Fatalf("GetMany(%s) error = %v", key, err)
	}
	v, ok := vals[key]
	return v, ok
}

// runEngineContract exercises the behavior every KVEngine must share.
func runEngineContract(t *testing.T, engine KVEngine) {
	t.Helper()
	ctx := context.Background()

	t.Run("Set and Get", func(t *testing.T) {
		if err := engine.Apply(ctx, NewBatch().Set("k1", []byte("v1"))); err != nil {
			t.Fatal(err)
		}

		got, ok := getOne(t, engine, "k1")
		if !ok || string(got) != "v1" {
			t.Errorf("Get(k1) = %q, want %q", got, "v1")
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		if v, ok := getOne(t, engine, "missing"); ok {
			t.Errorf("Get(missing) = %q, want absent", v)
		}
	})

	t.Run("Batch writes land together", func(t *testing.T) {
		b := NewBatch().Set("token", []byte("abc")).Set("user", []byte(`{"username":"alice"}`))
		if b.Len() != 2 {
			t.Fatalf("Len() = %d, want 2", b.Len())
		}
		if err := engine.Apply(ctx, b); err != nil {
			t.Fatal(err)
		}

		got, err := engine.GetMany(ctx, "token", "user", "missing")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("GetMany() returned %d keys, want 2", len(got))
		}
		if string(got["token"]) != "abc" {
			t.Errorf("token = %q, want %q", got["token"], "abc")
		}
		if _, ok := got["missing"]; ok {
			t.Error("GetMany() should omit missing keys")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := engine.Apply(ctx, NewBatch().Delete("token").Delete("user")); err != nil {
			t.Fatal(err)
		}
		got, err := engine.GetMany(ctx, "token", "user")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("GetMany() after delete = %v, want empty", got)
		}
	})

	t.Run("Delete missing key", func(t *testing.T) {
		if err := engine.Apply(ctx, NewBatch().Delete("never-set")); err != nil {
			t.Errorf("Apply(delete missing) error = %v", err)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := engine.Apply(ctx, NewBatch().Set("ow", []byte("one"))); err != nil {
			t.Fatal(err)
		}
		if err := engine.Apply(ctx, NewBatch().Set("ow", []byte("two"))); err != nil {
			t.Fatal(err)
		}
		if got, _ := getOne(t, engine, "ow"); string(got) != "two" {
			t.Errorf("Get(ow) = %q, want %q", got, "two")
		}
	})

	t.Run("Concurrent pair writes stay consistent", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				v := []byte{byte('a' + i)}
				if err := engine.Apply(ctx, NewBatch().Set("pa", v).Set("pb", v)); err != nil {
					t.Errorf("Apply() error = %v", err)
				}
			}(i)
		}
		wg.Wait()

		got, err := engine.GetMany(ctx, "pa", "pb")
		if err != nil {
			t.Fatal(err)
		}
		if string(got["pa"]) != string(got["pb"]) {
			t.Errorf("pair diverged: pa=%q pb=%q", got["pa"], got["pb"])
		}
	})
}

func TestOpen_UnknownEngine(t *testing.T) {
	cfg := DefaultKVConfig(t.TempDir())
	cfg.Engine = "etcd"

	if _, err := Open(context.Background(), cfg, nil); err == nil {
		t.Error("Open() with unknown engine should fail")
	}
}

func TestOpen_Memory(t *testing.T) {
	cfg := DefaultKVConfig("")
	cfg.Engine = EngineMemory

	engine, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	if _, ok := engine.(*MemoryEngine); !ok {
		t.Errorf("Open() = %T, want *MemoryEngine", engine)
	}
}

func TestDefaultKVConfig(t *testing.T) {
	cfg := DefaultKVConfig("/tmp/x")

	if cfg.Engine != EngineBadger {
		t.Errorf("Engine = %q, want %q", cfg.Engine, EngineBadger)
	}
	if !cfg.Badger.SyncWrites {
		t.Error("SyncWrites should default to true")
	}
	if cfg.Redis.Prefix != "authclient:" {
		t.Errorf("Redis.Prefix = %q, want %q", cfg.Redis.Prefix, "authclient:")
	}
}
