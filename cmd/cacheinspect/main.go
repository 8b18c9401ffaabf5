// Command cacheinspect inspects and prunes records in the persistent tier.
//
//	cacheinspect -kind character
//	cacheinspect -kind guild -show <oguild_id>
//	cacheinspect -purge-older-than 24h
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	cache "github.com/krisalay/msea-cache"
	"github.com/krisalay/msea-cache/app"
	"github.com/krisalay/msea-cache/config"
	"github.com/krisalay/msea-cache/engine"
	"github.com/krisalay/msea-cache/storage"
	"github.com/krisalay/msea-cache/types"
)

func main() {
	kind := flag.String("kind", "all", "character, guild or all")
	show := flag.String("show", "", "print the persisted record for this id")
	purge := flag.Duration("purge-older-than", 0, "delete entries written before now minus this duration")
	flag.Parse()

	if err := run(*kind, *show, *purge); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(kind, show string, purge time.Duration) error {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()
	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	if purge > 0 {
		pruner, ok := store.(storage.Pruner)
		if !ok {
			return fmt.Errorf("store %q cannot prune by age", cfg.Store)
		}
		n, err := pruner.DeleteOlderThan(ctx, purge)
		if err != nil {
			return fmt.Errorf("purge: %w", err)
		}
		fmt.Printf("PURGED  → %d entries older than %s\n", n, purge)
		return nil
	}

	kinds := []types.Kind{types.KindCharacter, types.KindGuild}
	switch kind {
	case "all":
	case string(types.KindCharacter), string(types.KindGuild):
		kinds = []types.Kind{types.Kind(kind)}
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}

	eng := engine.NewCacheEngine(nil, nil, nil)
	for _, k := range kinds {
		tc := cache.NewTieredCache(k, nil, store, nil, nil)

		if show != "" {
			rec, ok := tc.GetPersisted(ctx, show)
			if !ok {
				continue
			}
			out, _ := json.MarshalIndent(rec, "", "  ")
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("\n==================== %s ====================\n", k)
		for _, id := range tc.ListIDs(ctx) {
			rec, ok := tc.GetPersisted(ctx, id)
			if !ok {
				fmt.Printf("%-40s  unreadable\n", id)
				continue
			}
			state := "fresh"
			if eng.IsExpired(rec) {
				state = "stale"
			}
			left := rec.CacheExpiry.Sub(eng.Now()).Truncate(time.Second)
			fmt.Printf("%-40s  %-5s  updated %s  expires in %s\n", id, state, rec.LastUpdated.Format(time.RFC3339), left)
		}
	}

	if show != "" {
		return fmt.Errorf("no persisted record for %q", show)
	}
	return nil
}
