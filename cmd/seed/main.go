package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/agenthands/trustrank/internal/config"
	"github.com/agenthands/trustrank/internal/graph"
	"github.com/agenthands/trustrank/internal/kvstore"
)

// Loads a snapshot JSON file into the Badger store under the configured
// graph key. Run before starting the server; they cannot share the store
// directory while both are open.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	file := flag.String("file", "testdata/graph.json", "snapshot JSON file")
	flag.Parse()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Warning: could not load %s: %v. Using defaults", cfgPath, err)
		cfg = config.Default()
	}
	if cfg.Store.Path == "" {
		log.Fatal("store.path must be set to seed a persistent store")
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read snapshot file: %v", err)
	}

	var snap graph.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		log.Fatalf("Snapshot file is not a valid graph: %v", err)
	}

	store, err := kvstore.NewBadgerStore(cfg.Store.Path, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	if err := store.SetWithTTL(context.Background(), cfg.Store.GraphKey, raw, 0); err != nil {
		log.Fatalf("Failed to write snapshot: %v", err)
	}

	log.Printf("Seeded %d entities and %d relations under key %q",
		len(snap.Entities), len(snap.Relations), cfg.Store.GraphKey)
}
