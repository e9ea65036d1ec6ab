package trust

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/agenthands/trustrank/internal/graph"
	"github.com/agenthands/trustrank/internal/screen"
)

// Breakdown holds the seven weighted components, each rounded to four
// decimals. The weighted sum reconstructs the composite score.
type Breakdown struct {
	PageRank           float64 `json:"pagerank"`
	ObservationDensity float64 `json:"observation_density"`
	AgeFactor          float64 `json:"age_factor"`
	WalletActivity     float64 `json:"wallet_activity"`
	AttestationFactor  float64 `json:"attestation_factor"`
	RelationFactor     float64 `json:"relation_factor"`
	SafetyFactor       float64 `json:"safety_factor"`
}

// Signals is the raw-signal report behind the breakdown.
type Signals struct {
	Observations       int     `json:"observations"`
	AgeDays            float64 `json:"age_days"`
	SignedObservations int     `json:"signed_observations"`
	TrustRelationsIn   int     `json:"trust_relations_in"`
	TrustRelationsOut  int     `json:"trust_relations_out"`
	TotalRelations     int     `json:"total_relations"`
}

var (
	txCountRe = regexp.MustCompile(`(\d+)\s+transactions`)
	firstTxRe = regexp.MustCompile(`first on-chain transaction:\s*(\d{4}-\d{2}-\d{2})`)
)

// Score combines graph reputation, temporal signals, attestation signals and
// on-chain-activity signals into a single scalar plus its breakdown.
func Score(entity *graph.Entity, snap *graph.Snapshot, reputation map[string]float64, safety *screen.Result, now time.Time) (float64, Breakdown, Signals) {
	var active []string
	signed := 0
	for _, obs := range entity.Observations {
		if !obs.Active(now) {
			continue
		}
		active = append(active, obs.Text)
		if obs.Signed() {
			signed++
		}
	}

	ageDays := now.Sub(entity.Created).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}

	trustIn, trustOut, total := 0, 0, 0
	for _, rel := range snap.Relations {
		if rel.Source != entity.Name && rel.Target != entity.Name {
			continue
		}
		total++
		if _, trusted := RelationWeights[rel.Relation]; !trusted {
			continue
		}
		if rel.Target == entity.Name {
			trustIn++
		}
		if rel.Source == entity.Name {
			trustOut++
		}
	}

	pagerank := reputation[entity.Name]

	obsDensity := 1 - math.Exp(-float64(len(active))/8)
	ageFactor := 1 - math.Exp(-ageDays/25)
	wallet := walletActivity(active, now)

	attestation := 0.0
	if signed > 0 {
		attestation = math.Min(1, 0.5+0.1*float64(signed))
	}

	relFactor := math.Min(1, float64(total)/10)

	safetyFactor := 1.0
	if safety != nil {
		switch safety.Verdict {
		case screen.VerdictMalicious:
			safetyFactor = 0.0
		case screen.VerdictSuspicious:
			safetyFactor = 0.3
		}
	}

	breakdown := Breakdown{
		PageRank:           round4(pagerank),
		ObservationDensity: round4(obsDensity),
		AgeFactor:          round4(ageFactor),
		WalletActivity:     round4(wallet),
		AttestationFactor:  round4(attestation),
		RelationFactor:     round4(relFactor),
		SafetyFactor:       round4(safetyFactor),
	}

	composite := WeightPageRank*pagerank +
		WeightObsDensity*obsDensity +
		WeightAgeFactor*ageFactor +
		WeightWalletActs*wallet +
		WeightAttestation*attestation +
		WeightRelations*relFactor +
		WeightSafety*safetyFactor

	signals := Signals{
		Observations:       len(active),
		AgeDays:            math.Round(ageDays*10) / 10,
		SignedObservations: signed,
		TrustRelationsIn:   trustIn,
		TrustRelationsOut:  trustOut,
		TotalRelations:     total,
	}

	return round4(composite), breakdown, signals
}

// walletActivity extracts on-chain signals from the active observation texts
// by substring pattern. Malformed texts contribute zero; parsing never fails
// the request.
func walletActivity(texts []string, now time.Time) float64 {
	score := 0.0

	for _, text := range texts {
		if strings.Contains(text, "on-chain activity:") && strings.Contains(text, "transactions") {
			if m := txCountRe.FindStringSubmatch(text); m != nil {
				if txCount, err := strconv.Atoi(m[1]); err == nil {
					score += (1 - math.Exp(-float64(txCount)/50)) * 0.7
				}
			}
			break
		}
	}

	for _, text := range texts {
		if strings.Contains(text, "on-chain") &&
			(strings.Contains(text, "ETH balance") || strings.Contains(text, "USDC balance")) {
			score += 0.15
			break
		}
	}

	for _, text := range texts {
		if !strings.Contains(text, "first on-chain transaction:") {
			continue
		}
		if m := firstTxRe.FindStringSubmatch(text); m != nil {
			if firstTx, err := time.Parse("2006-01-02", m[1]); err == nil {
				firstTxDays := now.Sub(firstTx).Hours() / 24
				if firstTxDays < 0 {
					firstTxDays = 0
				}
				score += math.Min(0.15, firstTxDays/730)
			}
		}
		break
	}

	return math.Max(0, math.Min(1, score))
}
