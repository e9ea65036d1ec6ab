package trust

import (
	"sort"
	"time"

	"github.com/agenthands/trustrank/internal/graph"
	"github.com/agenthands/trustrank/internal/screen"
)

// Rank is the 1-based position of an entity among all entities ordered by
// reputation descending.
type Rank struct {
	Position int `json:"position"`
	Total    int `json:"total"`
}

// NetworkRef names one edge of the trust neighborhood.
type NetworkRef struct {
	Agent    string `json:"agent"`
	Relation string `json:"relation"`
}

// Network is the trust neighborhood of an entity.
type Network struct {
	TrustedBy []NetworkRef `json:"trusted_by"`
	Trusts    []NetworkRef `json:"trusts"`
}

// Report is the scoring result for one entity, without the payment echo; the
// server attaches that.
type Report struct {
	Entity         string         `json:"entity"`
	Found          bool           `json:"found"`
	TrustScore     float64        `json:"trust_score"`
	Tier           string         `json:"tier"`
	Recommendation string         `json:"recommendation"`
	Breakdown      *Breakdown     `json:"breakdown,omitempty"`
	Signals        *Signals       `json:"signals,omitempty"`
	Rank           *Rank          `json:"rank,omitempty"`
	TrustNetwork   *Network       `json:"trust_network,omitempty"`
	Safety         *screen.Result `json:"safety"`
}

// Recommend maps a score and the safety verdict onto an action. A MALICIOUS
// verdict vetoes unconditionally.
func Recommend(score float64, safety *screen.Result) string {
	if safety != nil && safety.Verdict == screen.VerdictMalicious {
		return RecommendAvoid
	}
	switch {
	case score >= ProceedCutoff:
		return RecommendProceed
	case score >= CautionCutoff:
		return RecommendCaution
	default:
		return RecommendInsufficientData
	}
}

// Assemble produces the full report for a known entity.
func Assemble(entity *graph.Entity, snap *graph.Snapshot, reputation map[string]float64, safety *screen.Result, now time.Time) *Report {
	score, breakdown, signals := Score(entity, snap, reputation, safety, now)
	rank := rankOf(entity.Name, snap, reputation)
	network := neighborhood(entity.Name, snap)

	return &Report{
		Entity:         entity.Name,
		Found:          true,
		TrustScore:     score,
		Tier:           TierFor(score),
		Recommendation: Recommend(score, safety),
		Breakdown:      &breakdown,
		Signals:        &signals,
		Rank:           rank,
		TrustNetwork:   network,
		Safety:         safety,
	}
}

// AssembleUnknown produces the reduced report for an entity absent from the
// snapshot.
func AssembleUnknown(name string, safety *screen.Result) *Report {
	score := 0.05
	recommendation := RecommendInsufficientData
	if safety != nil && safety.Verdict == screen.VerdictMalicious {
		score = 0
		recommendation = RecommendAvoid
	}
	return &Report{
		Entity:         name,
		Found:          false,
		TrustScore:     score,
		Tier:           "unknown",
		Recommendation: recommendation,
		Safety:         safety,
	}
}

// rankOf sorts entity names by reputation descending, ties broken by the
// snapshot's entity order, and returns the 1-based position.
func rankOf(name string, snap *graph.Snapshot, reputation map[string]float64) *Rank {
	names := make([]string, len(snap.Entities))
	for i, ent := range snap.Entities {
		names[i] = ent.Name
	}
	sort.SliceStable(names, func(i, j int) bool {
		return reputation[names[i]] > reputation[names[j]]
	})
	for i, n := range names {
		if n == name {
			return &Rank{Position: i + 1, Total: len(names)}
		}
	}
	return &Rank{Position: len(names), Total: len(names)}
}

func neighborhood(name string, snap *graph.Snapshot) *Network {
	network := &Network{TrustedBy: []NetworkRef{}, Trusts: []NetworkRef{}}
	for _, rel := range snap.Relations {
		if _, trusted := RelationWeights[rel.Relation]; !trusted {
			continue
		}
		if rel.Target == name {
			network.TrustedBy = append(network.TrustedBy, NetworkRef{Agent: rel.Source, Relation: rel.Relation})
		}
		if rel.Source == name {
			network.Trusts = append(network.Trusts, NetworkRef{Agent: rel.Target, Relation: rel.Relation})
		}
	}
	return network
}
