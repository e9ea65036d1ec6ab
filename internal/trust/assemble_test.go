package trust

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/trustrank/internal/graph"
	"github.com/agenthands/trustrank/internal/screen"
)

func TestTierFor_Cutoffs(t *testing.T) {
	cases := []struct {
		score float64
		tier  string
	}{
		{0.0, "unknown"},
		{0.19, "unknown"},
		{0.20, "new"},
		{0.39, "new"},
		{0.40, "emerging"},
		{0.59, "emerging"},
		{0.60, "established"},
		{0.79, "established"},
		{0.80, "trusted"},
		{0.94, "trusted"},
		{0.95, "verified"},
		{1.0, "verified"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.tier, TierFor(tc.score), "score %v", tc.score)
	}
}

func TestRecommend(t *testing.T) {
	assert.Equal(t, RecommendProceed, Recommend(0.50, nil))
	assert.Equal(t, RecommendCaution, Recommend(0.25, nil))
	assert.Equal(t, RecommendInsufficientData, Recommend(0.24, nil))
	assert.Equal(t, RecommendProceed, Recommend(0.9, &screen.Result{Verdict: screen.VerdictSuspicious}))

	// MALICIOUS vetoes regardless of score.
	assert.Equal(t, RecommendAvoid, Recommend(0.99, &screen.Result{Verdict: screen.VerdictMalicious}))
}

func TestAssemble_KnownEntity(t *testing.T) {
	now := time.Now().UTC()
	snap := &graph.Snapshot{
		Entities: []graph.Entity{
			{Name: "a", Created: now.AddDate(-1, 0, 0)},
			{Name: "b", Created: now.AddDate(-1, 0, 0)},
			{Name: "c", Created: now.AddDate(-1, 0, 0)},
		},
		Relations: []graph.Relation{
			{Source: "b", Target: "a", Relation: "trusts"},
			{Source: "c", Target: "a", Relation: "endorsed_by"},
			{Source: "a", Target: "c", Relation: "uses"},
			{Source: "b", Target: "a", Relation: "mentions"},
		},
	}
	reputation := map[string]float64{"a": 1.0, "b": 0.0, "c": 0.3}

	report := Assemble(snap.Find("a"), snap, reputation, nil, now)

	assert.True(t, report.Found)
	assert.Equal(t, "a", report.Entity)
	require.NotNil(t, report.Rank)
	assert.Equal(t, 1, report.Rank.Position)
	assert.Equal(t, 3, report.Rank.Total)

	require.NotNil(t, report.TrustNetwork)
	assert.Equal(t, []NetworkRef{
		{Agent: "b", Relation: "trusts"},
		{Agent: "c", Relation: "endorsed_by"},
	}, report.TrustNetwork.TrustedBy)
	assert.Equal(t, []NetworkRef{
		{Agent: "c", Relation: "uses"},
	}, report.TrustNetwork.Trusts)

	assert.Equal(t, TierFor(report.TrustScore), report.Tier)
	assert.GreaterOrEqual(t, report.Rank.Position, 1)
	assert.LessOrEqual(t, report.Rank.Position, report.Rank.Total)
}

func TestRank_TiesKeepSnapshotOrder(t *testing.T) {
	now := time.Now().UTC()
	snap := &graph.Snapshot{
		Entities: []graph.Entity{
			{Name: "first", Created: now},
			{Name: "second", Created: now},
			{Name: "third", Created: now},
		},
	}
	reputation := map[string]float64{"first": 0.5, "second": 0.5, "third": 0.5}

	assert.Equal(t, 1, rankOf("first", snap, reputation).Position)
	assert.Equal(t, 2, rankOf("second", snap, reputation).Position)
	assert.Equal(t, 3, rankOf("third", snap, reputation).Position)
}

func TestAssembleUnknown(t *testing.T) {
	report := AssembleUnknown("NoSuchAgent", nil)
	assert.False(t, report.Found)
	assert.Equal(t, 0.05, report.TrustScore)
	assert.Equal(t, "unknown", report.Tier)
	assert.Equal(t, RecommendInsufficientData, report.Recommendation)
	assert.Nil(t, report.Breakdown)
	assert.Nil(t, report.Rank)
	assert.Nil(t, report.TrustNetwork)
}

func TestAssembleUnknown_Malicious(t *testing.T) {
	report := AssembleUnknown("NoSuchAgent", &screen.Result{Verdict: screen.VerdictMalicious})
	assert.Equal(t, 0.0, report.TrustScore)
	assert.Equal(t, RecommendAvoid, report.Recommendation)
}
