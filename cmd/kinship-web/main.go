package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kinshiphq/kinship/internal/catalog"
	"github.com/kinshiphq/kinship/internal/config"
	"github.com/kinshiphq/kinship/internal/server"
	"github.com/kinshiphq/kinship/internal/storage"
	"github.com/kinshiphq/kinship/internal/storage/postgres"
	"github.com/kinshiphq/kinship/internal/storage/sqlite"
)

func main() {
	configPath := flag.String("config", "", "Path to connections config file (default: config/connections.json)")
	flag.Parse()

	// If no config path specified, use default if it exists
	if *configPath == "" {
		defaultPath := "config/connections.json"
		if _, err := os.Stat(defaultPath); err == nil {
			*configPath = defaultPath
			log.Printf("Using connections config: %s", defaultPath)
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	catalogs, watcher, err := loadCatalog(cfg)
	if err != nil {
		log.Fatalf("Failed to load relationship type catalog: %v", err)
	}
	if watcher != nil {
		if err := watcher.Start(); err != nil {
			log.Printf("Warning: catalog overrides will not hot-reload: %v", err)
		} else {
			defer watcher.Stop()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, _ := server.Start(ctx, cfg, store, catalogs, *configPath)
	log.Printf("Kinship Web UI running at http://%s", addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}

// openStore opens the default backend selected by KINSHIP_STORAGE_ENGINE.
func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.StorageEngine == "postgresql" {
		return postgres.New(cfg.Storage.PostgresDSN)
	}
	return sqlite.New(cfg.Storage.DataPath + "/kinship.db")
}

// loadCatalog builds the relationship type catalog: the built-in types,
// optionally merged with a YAML overrides file that can hot-reload.
func loadCatalog(cfg *config.Config) (*catalog.Store, *catalog.Watcher, error) {
	if cfg.Catalog.OverridesPath == "" {
		return catalog.NewStore(catalog.Default()), nil, nil
	}

	cat, err := catalog.LoadFile(cfg.Catalog.OverridesPath)
	if err != nil {
		return nil, nil, err
	}
	store := catalog.NewStore(cat)

	if !cfg.Catalog.WatchOverrides {
		return store, nil, nil
	}
	return store, catalog.NewWatcher(cfg.Catalog.OverridesPath, store), nil
}
