package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/omnimarket/omnimarket/internal/app"
	"github.com/omnimarket/omnimarket/internal/catalog"
	"github.com/omnimarket/omnimarket/internal/masterdata/branches"
	"github.com/omnimarket/omnimarket/internal/platform/kv"
	"github.com/omnimarket/omnimarket/internal/settings"
)

func main() {
	force := flag.Bool("force", false, "overwrite documents that already exist")
	flag.Parse()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	codec, err := kv.CodecByName(cfg.StoreCodec)
	if err != nil {
		log.Fatalf("codec: %v", err)
	}
	ctx := context.Background()
	store, err := kv.Open(ctx, cfg.StoreOptions())
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer func() { _ = kv.Close(store) }()

	steps := []struct {
		key  string
		name string
		run  func() error
	}{
		{kv.KeyProducts, "starter catalog", func() error {
			return catalog.NewRepository(store, codec).SaveAll(ctx, catalog.StarterProducts())
		}},
		{kv.KeyBranches, "branches", func() error {
			return branches.NewRepository(store, codec).SaveAll(ctx, branches.DefaultBranches())
		}},
		{kv.KeyAppConfig, "app config", func() error {
			_, err := settings.NewService(store, codec).SaveAppConfig(ctx, settings.DefaultAppConfig())
			return err
		}},
		{kv.KeyLowStockThreshold, "low stock threshold", func() error {
			return settings.NewService(store, codec).SetLowStockThreshold(ctx, settings.DefaultLowStockThreshold)
		}},
	}
	for _, step := range steps {
		exists, err := present(ctx, store, step.key)
		if err != nil {
			log.Fatalf("check %s: %v", step.name, err)
		}
		if exists && !*force {
			fmt.Printf("→ %s already present, skipping\n", step.name)
			continue
		}
		fmt.Printf("→ Seeding %s...\n", step.name)
		if err := step.run(); err != nil {
			log.Fatalf("seed %s: %v", step.name, err)
		}
	}
	fmt.Printf("✓ seeded %s store\n", cfg.StoreDriver)
}

func present(ctx context.Context, store kv.Store, key string) (bool, error) {
	_, err := store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
