package payment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// proofHeaders, in lookup order. The first present header wins.
var proofHeaders = []string{"Payment-Signature", "X-Payment"}

// Failure is a payment rejection with a client-facing reason. Every Failure
// maps to a 402.
type Failure struct {
	Reason string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("payment failed: %s", f.Reason)
}

// truncate bounds facilitator bodies before they reach an error string.
func truncate(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		return s[:200]
	}
	return s
}

// Gate verifies and settles a presented payment proof against the
// facilitator. Verify strictly precedes settle; settle strictly precedes any
// side-effectful response.
type Gate struct {
	facilitator *FacilitatorClient
	addresses   Addresses
	logger      *slog.Logger
}

func NewGate(facilitator *FacilitatorClient, addresses Addresses, logger *slog.Logger) *Gate {
	return &Gate{
		facilitator: facilitator,
		addresses:   addresses,
		logger:      logger.WithGroup("payment"),
	}
}

// Requirements builds the 402 document for an unpaid request.
func (g *Gate) Requirements(resourceURL string) *Requirements {
	return BuildRequirements(resourceURL, g.addresses)
}

// ProofFromHeaders returns the presented proof, or "" when the request is
// unpaid.
func (g *Gate) ProofFromHeaders(header http.Header) string {
	for _, name := range proofHeaders {
		if v := header.Get(name); v != "" {
			return v
		}
	}
	return ""
}

// Charge decodes the proof, picks the matching requirement, verifies, then
// settles. On success it returns the payer identity from the verify
// response. Every error path returns a *Failure.
func (g *Gate) Charge(ctx context.Context, proof string, resourceURL string) (string, *Failure) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(proof))
	if err != nil {
		return "", &Failure{Reason: "payment_error: " + err.Error()}
	}

	var envelope map[string]any
	if err := json.Unmarshal(decoded, &envelope); err != nil {
		return "", &Failure{Reason: "payment_error: " + err.Error()}
	}

	version := X402Version
	if v, ok := envelope["x402Version"].(float64); ok {
		version = int(v)
	}

	requirements := BuildRequirements(resourceURL, g.addresses)
	selected := selectOption(envelope, requirements.Accepts)

	body := settleRequest{
		X402Version:         version,
		PaymentPayload:      envelope,
		PaymentRequirements: selected,
	}

	status, verifyBody, err := g.facilitator.Verify(ctx, body)
	if err != nil {
		return "", &Failure{Reason: "payment_error: " + err.Error()}
	}
	if status < 200 || status >= 300 {
		return "", &Failure{Reason: "Verify: " + truncate(verifyBody)}
	}

	var verify VerifyResponse
	if err := json.Unmarshal(verifyBody, &verify); err != nil {
		return "", &Failure{Reason: "payment_error: " + err.Error()}
	}
	if !verify.IsValid {
		reason := verify.InvalidReason
		if reason == "" {
			reason = "payment proof rejected"
		}
		return "", &Failure{Reason: reason}
	}

	status, settleBody, err := g.facilitator.Settle(ctx, body)
	if err != nil {
		return "", &Failure{Reason: "payment_error: " + err.Error()}
	}
	if status < 200 || status >= 300 {
		return "", &Failure{Reason: "Settle: " + truncate(settleBody)}
	}

	var settled map[string]any
	if err := json.Unmarshal(settleBody, &settled); err != nil {
		return "", &Failure{Reason: "payment_error: " + err.Error()}
	}

	g.logger.Info("payment settled", "network", selected.Network, "payer", verify.Payer)
	return verify.Payer, nil
}

// selectOption classifies the proof by shape: a payload with a transaction
// and no authorization is Solana, anything else is EVM. When no offered
// option matches the family, the first option is used.
func selectOption(envelope map[string]any, accepts []Option) Option {
	payload, _ := envelope["payload"].(map[string]any)
	_, hasTx := payload["transaction"]
	_, hasAuth := payload["authorization"]

	family := "eip155"
	if hasTx && !hasAuth {
		family = "solana"
	}

	for _, opt := range accepts {
		if strings.HasPrefix(opt.Network, family) {
			return opt
		}
	}
	return accepts[0]
}
