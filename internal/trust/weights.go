package trust

// RelationWeights maps trust-bearing relation labels to their propagation
// weight. Labels outside this table are ignored by the reputation engine but
// still count toward total connectedness.
var RelationWeights = map[string]float64{
	"trusts":            1.0,
	"endorsed_by":       0.9,
	"verified_by":       0.9,
	"collaborates_with": 0.7,
	"depends_on":        0.6,
	"implements":        0.6,
	"built":             0.8,
	"uses":              0.5,
}

// Damped-propagation parameters.
const (
	Damping       = 0.85
	MaxIterations = 50
	Epsilon       = 0.001
)

// Composite component weights. These sum to 1.0.
const (
	WeightPageRank    = 0.25
	WeightObsDensity  = 0.15
	WeightAgeFactor   = 0.15
	WeightWalletActs  = 0.20
	WeightAttestation = 0.10
	WeightRelations   = 0.10
	WeightSafety      = 0.05
)

// Tier cutoffs over the composite score, low to high.
const (
	TierNewCutoff         = 0.20
	TierEmergingCutoff    = 0.40
	TierEstablishedCutoff = 0.60
	TierTrustedCutoff     = 0.80
	TierVerifiedCutoff    = 0.95
)

// Recommendation cutoffs.
const (
	ProceedCutoff = 0.50
	CautionCutoff = 0.25
)

const (
	RecommendProceed          = "PROCEED"
	RecommendCaution          = "CAUTION"
	RecommendInsufficientData = "INSUFFICIENT_DATA"
	RecommendAvoid            = "AVOID"
)

// TierFor maps a composite score onto its tier label.
func TierFor(score float64) string {
	switch {
	case score < TierNewCutoff:
		return "unknown"
	case score < TierEmergingCutoff:
		return "new"
	case score < TierEstablishedCutoff:
		return "emerging"
	case score < TierTrustedCutoff:
		return "established"
	case score < TierVerifiedCutoff:
		return "trusted"
	default:
		return "verified"
	}
}
