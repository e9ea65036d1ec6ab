package payment

// x402 constants. Amounts are integer strings in the asset's base unit;
// USDC is 6-decimal, so "10000" is one cent.
const (
	X402Version       = 2
	SchemeExact       = "exact"
	NetworkBase       = "eip155:8453"
	NetworkSolana     = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"
	PriceBaseUnits    = "10000"
	PriceDisplay      = "0.01"
	PriceCurrency     = "USDC"
	MaxTimeoutSeconds = 300

	// Canonical USDC mints on each network.
	AssetBaseUSDC   = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	AssetSolanaUSDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

// Option is one accepted way to pay.
type Option struct {
	Scheme            string         `json:"scheme"`
	Network           string         `json:"network"`
	Amount            string         `json:"amount"`
	Asset             string         `json:"asset"`
	PayTo             string         `json:"payTo"`
	MaxTimeoutSeconds int            `json:"maxTimeoutSeconds"`
	Extra             map[string]any `json:"extra,omitempty"`
}

// Resource describes what the payment buys.
type Resource struct {
	URL         string `json:"url"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// Requirements is the 402 body advertising the accepted payment options.
type Requirements struct {
	X402Version int            `json:"x402Version"`
	Accepts     []Option       `json:"accepts"`
	Resource    Resource       `json:"resource"`
	Description string         `json:"description"`
	Extensions  map[string]any `json:"extensions,omitempty"`
}

// Addresses are the service's receiving addresses, from configuration.
type Addresses struct {
	EVMPayTo       string
	SolanaPayTo    string
	SolanaFeePayer string
}

const serviceDescription = "Trust score for a named agent in the knowledge graph. One query per payment."

// BuildRequirements constructs the requirement document for a scoring
// request, echoing the request URL as the resource.
func BuildRequirements(resourceURL string, addr Addresses) *Requirements {
	evm := Option{
		Scheme:            SchemeExact,
		Network:           NetworkBase,
		Amount:            PriceBaseUnits,
		Asset:             AssetBaseUSDC,
		PayTo:             addr.EVMPayTo,
		MaxTimeoutSeconds: MaxTimeoutSeconds,
		Extra: map[string]any{
			"name":    "USDC",
			"version": "2",
		},
	}
	solana := Option{
		Scheme:            SchemeExact,
		Network:           NetworkSolana,
		Amount:            PriceBaseUnits,
		Asset:             AssetSolanaUSDC,
		PayTo:             addr.SolanaPayTo,
		MaxTimeoutSeconds: MaxTimeoutSeconds,
		Extra: map[string]any{
			"feePayer": addr.SolanaFeePayer,
			"decimals": 6,
		},
	}

	return &Requirements{
		X402Version: X402Version,
		Accepts:     []Option{evm, solana},
		Resource: Resource{
			URL:         resourceURL,
			Description: serviceDescription,
			MimeType:    "application/json",
		},
		Description: serviceDescription,
		Extensions: map[string]any{
			"bazaar": map[string]any{
				"info": map[string]any{
					"input": map[string]any{
						"entity":  "Orac",
						"context": "Evaluating Orac before delegating a build task",
					},
					"output": map[string]any{
						"entity":         "Orac",
						"found":          true,
						"trust_score":    0.8412,
						"tier":           "trusted",
						"recommendation": "PROCEED",
					},
				},
				"schema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"entity":  map[string]any{"type": "string", "description": "Agent name to score"},
						"context": map[string]any{"type": "string", "description": "Optional free-text context for the query"},
					},
					"required": []string{"entity"},
				},
			},
		},
	}
}

// Receipt is the payment echo attached to every successful response.
type Receipt struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Payer    string `json:"payer"`
}

func NewReceipt(payer string) Receipt {
	return Receipt{Amount: PriceDisplay, Currency: PriceCurrency, Payer: payer}
}
