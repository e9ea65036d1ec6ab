package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/agenthands/trustrank/internal/kvstore"
)

// Loader reads the whole-graph snapshot from the shared store. The snapshot
// is opaque and atomic: one key, one read, no partial state.
type Loader struct {
	store  kvstore.Store
	key    string
	logger *slog.Logger
}

func NewLoader(store kvstore.Store, key string, logger *slog.Logger) *Loader {
	return &Loader{
		store:  store,
		key:    key,
		logger: logger.WithGroup("graph"),
	}
}

func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	raw, err := l.store.Get(ctx, l.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph snapshot under '%s': %w", l.key, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse graph snapshot: %w", err)
	}

	l.logger.Debug("loaded graph snapshot",
		"entities", len(snap.Entities),
		"relations", len(snap.Relations),
	)
	return &snap, nil
}
