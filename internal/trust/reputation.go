package trust

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/agenthands/trustrank/internal/graph"
	"github.com/agenthands/trustrank/internal/kvstore"
)

// ReputationCacheKey is versioned; bump the suffix whenever the vector
// schema or the algorithm parameters change so stale vectors are ignored.
const ReputationCacheKey = "trustrank:reputation:v2"

// ReputationCacheTTL bounds how stale a cached vector may be relative to the
// live graph.
const ReputationCacheTTL = 8 * time.Hour

// Engine computes and caches the per-entity reputation vector.
type Engine struct {
	store  kvstore.Store
	logger *slog.Logger
}

func NewEngine(store kvstore.Store, logger *slog.Logger) *Engine {
	return &Engine{store: store, logger: logger.WithGroup("reputation")}
}

// Reputation returns the reputation vector for the snapshot, consulting the
// cache first. Cache read and write failures are swallowed; the engine
// always falls through to a fresh compute.
func (e *Engine) Reputation(ctx context.Context, snap *graph.Snapshot) map[string]float64 {
	if raw, err := e.store.Get(ctx, ReputationCacheKey); err == nil {
		var cached map[string]float64
		jsonErr := json.Unmarshal(raw, &cached)
		if jsonErr == nil {
			return cached
		}
		e.logger.Warn("discarding unreadable reputation cache entry", "error", jsonErr)
	}

	vector := ComputeReputation(snap)

	if raw, err := json.Marshal(vector); err == nil {
		if err := e.store.SetWithTTL(ctx, ReputationCacheKey, raw, ReputationCacheTTL); err != nil {
			e.logger.Warn("failed to write reputation cache", "error", err)
		}
	}
	return vector
}

// ComputeReputation runs damped propagation over the trust-typed edge subset
// and min-max normalizes the result into [0,1]. Deterministic for a given
// snapshot: same input, same vector.
func ComputeReputation(snap *graph.Snapshot) map[string]float64 {
	names := make([]string, 0, len(snap.Entities))
	present := make(map[string]bool, len(snap.Entities))
	for _, ent := range snap.Entities {
		names = append(names, ent.Name)
		present[ent.Name] = true
	}
	if len(names) == 0 {
		return map[string]float64{}
	}

	type inEdge struct {
		source string
		weight float64
	}

	// Precompute out-degrees and inbound edge lists once; the iteration loop
	// only walks these indices.
	outDeg := make(map[string]int, len(names))
	inEdges := make(map[string][]inEdge, len(names))
	for _, rel := range snap.Relations {
		weight, trusted := RelationWeights[rel.Relation]
		if !trusted || !present[rel.Source] || !present[rel.Target] {
			continue
		}
		outDeg[rel.Source]++
		inEdges[rel.Target] = append(inEdges[rel.Target], inEdge{source: rel.Source, weight: weight})
	}

	scores := make(map[string]float64, len(names))
	for _, name := range names {
		scores[name] = 1.0
	}

	for iter := 0; iter < MaxIterations; iter++ {
		next := make(map[string]float64, len(names))
		maxDelta := 0.0
		for _, name := range names {
			sum := 0.0
			for _, in := range inEdges[name] {
				deg := outDeg[in.source]
				if deg < 1 {
					deg = 1
				}
				sum += scores[in.source] / float64(deg) * in.weight
			}
			next[name] = (1 - Damping) + Damping*sum
			if delta := math.Abs(next[name] - scores[name]); delta > maxDelta {
				maxDelta = delta
			}
		}
		scores = next
		if maxDelta < Epsilon {
			break
		}
	}

	// Min-max normalize. A degenerate range means no trust edges moved
	// anything; everyone lands on 0.5.
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, name := range names {
		if scores[name] < lo {
			lo = scores[name]
		}
		if scores[name] > hi {
			hi = scores[name]
		}
	}
	if hi-lo < 1e-4 {
		for _, name := range names {
			scores[name] = 0.5
		}
		return scores
	}
	for _, name := range names {
		scores[name] = round4((scores[name] - lo) / (hi - lo))
	}
	return scores
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
