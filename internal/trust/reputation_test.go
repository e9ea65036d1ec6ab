package trust

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/trustrank/internal/graph"
	"github.com/agenthands/trustrank/internal/kvstore"
)

func snapshotOf(names []string, rels []graph.Relation) *graph.Snapshot {
	snap := &graph.Snapshot{Relations: rels}
	for _, n := range names {
		snap.Entities = append(snap.Entities, graph.Entity{Name: n, Created: time.Now()})
	}
	return snap
}

func TestComputeReputation_NoTrustEdges(t *testing.T) {
	snap := snapshotOf([]string{"a", "b", "c"}, nil)
	vector := ComputeReputation(snap)

	assert.Equal(t, map[string]float64{"a": 0.5, "b": 0.5, "c": 0.5}, vector)
}

func TestComputeReputation_NonTrustLabelsIgnored(t *testing.T) {
	snap := snapshotOf([]string{"a", "b"}, []graph.Relation{
		{Source: "a", Target: "b", Relation: "mentions"},
	})
	vector := ComputeReputation(snap)

	// No trust-typed edges means the degenerate branch.
	assert.Equal(t, 0.5, vector["a"])
	assert.Equal(t, 0.5, vector["b"])
}

func TestComputeReputation_EndorsedEntityRanksHigher(t *testing.T) {
	snap := snapshotOf([]string{"a", "b", "c"}, []graph.Relation{
		{Source: "a", Target: "c", Relation: "trusts"},
		{Source: "b", Target: "c", Relation: "trusts"},
	})
	vector := ComputeReputation(snap)

	assert.Greater(t, vector["c"], vector["a"])
	assert.Greater(t, vector["c"], vector["b"])
	assert.Equal(t, 1.0, vector["c"])
	assert.Equal(t, 0.0, vector["a"])
}

func TestComputeReputation_DanglingRelationsSkipped(t *testing.T) {
	snap := snapshotOf([]string{"a", "b"}, []graph.Relation{
		{Source: "ghost", Target: "a", Relation: "trusts"},
		{Source: "a", Target: "nowhere", Relation: "trusts"},
	})
	vector := ComputeReputation(snap)

	assert.Len(t, vector, 2)
	assert.NotContains(t, vector, "ghost")
}

func TestComputeReputation_Bounded(t *testing.T) {
	snap := snapshotOf([]string{"a", "b", "c", "d"}, []graph.Relation{
		{Source: "a", Target: "b", Relation: "trusts"},
		{Source: "b", Target: "c", Relation: "endorsed_by"},
		{Source: "c", Target: "d", Relation: "built"},
		{Source: "d", Target: "a", Relation: "uses"},
	})
	vector := ComputeReputation(snap)

	for name, score := range vector {
		assert.GreaterOrEqual(t, score, 0.0, name)
		assert.LessOrEqual(t, score, 1.0, name)
	}
}

func TestComputeReputation_Idempotent(t *testing.T) {
	snap := snapshotOf([]string{"a", "b", "c", "d", "e"}, []graph.Relation{
		{Source: "a", Target: "b", Relation: "trusts"},
		{Source: "c", Target: "b", Relation: "verified_by"},
		{Source: "d", Target: "e", Relation: "collaborates_with"},
		{Source: "e", Target: "b", Relation: "depends_on"},
	})

	first := ComputeReputation(snap)
	second := ComputeReputation(snap)
	assert.Equal(t, first, second)
}

func TestEngine_CachesVector(t *testing.T) {
	store := kvstore.NewMemoryStore()
	defer store.Close()
	engine := NewEngine(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	snap := snapshotOf([]string{"a", "b"}, []graph.Relation{
		{Source: "a", Target: "b", Relation: "trusts"},
	})

	vector := engine.Reputation(ctx, snap)
	assert.Equal(t, 1.0, vector["b"])

	raw, err := store.Get(ctx, ReputationCacheKey)
	require.NoError(t, err)
	var cached map[string]float64
	require.NoError(t, json.Unmarshal(raw, &cached))
	assert.Equal(t, vector, cached)
}

func TestEngine_ServesStaleCacheOverFreshGraph(t *testing.T) {
	store := kvstore.NewMemoryStore()
	defer store.Close()
	engine := NewEngine(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	stale := map[string]float64{"a": 0.9}
	raw, _ := json.Marshal(stale)
	require.NoError(t, store.SetWithTTL(ctx, ReputationCacheKey, raw, ReputationCacheTTL))

	snap := snapshotOf([]string{"a", "b"}, nil)
	vector := engine.Reputation(ctx, snap)
	assert.Equal(t, stale, vector)
}

func TestEngine_RecoversFromCorruptCache(t *testing.T) {
	store := kvstore.NewMemoryStore()
	defer store.Close()
	engine := NewEngine(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	require.NoError(t, store.SetWithTTL(ctx, ReputationCacheKey, []byte("{not json"), ReputationCacheTTL))

	snap := snapshotOf([]string{"a"}, nil)
	vector := engine.Reputation(ctx, snap)
	assert.Equal(t, 0.5, vector["a"])
}
