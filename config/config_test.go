package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store != StoreSQLite || cfg.WritePolicy != WriteThrough {
		t.Fatalf("store/policy = %q/%q", cfg.Store, cfg.WritePolicy)
	}
	if cfg.HTTPClientTimeout != 10*time.Second {
		t.Fatalf("client timeout = %v", cfg.HTTPClientTimeout)
	}
	if cfg.MemoryShards != 4 || cfg.WriteBackBuffer != 1024 {
		t.Fatalf("shards/buffer = %d/%d", cfg.MemoryShards, cfg.WriteBackBuffer)
	}
	if cfg.CoalesceFetches {
		t.Fatal("coalescing should be off by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MSEA_API_KEY", "key")
	t.Setenv("MSEA_STORE", " Redis ")
	t.Setenv("MSEA_REDIS_DB", "2")
	t.Setenv("MSEA_WRITE_POLICY", "BACK")
	t.Setenv("MSEA_COALESCE_FETCHES", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "key" || cfg.Store != StoreRedis || cfg.RedisDB != 2 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.WritePolicy != WriteBack || !cfg.CoalesceFetches {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"store":      {"MSEA_STORE": "postgres"},
		"policy":     {"MSEA_WRITE_POLICY": "around"},
		"shards":     {"MSEA_MEMORY_SHARDS": "0"},
		"buffer":     {"MSEA_WRITE_BACK_BUFFER": "-1"},
		"sqlitePath": {"MSEA_SQLITE_PATH": " "},
		"duration":   {"MSEA_HTTP_CLIENT_TIMEOUT": "soon"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
