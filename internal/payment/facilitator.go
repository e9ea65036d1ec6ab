package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// FacilitatorClient talks to the remote payment facilitator. The facilitator
// owns all cryptography and on-chain settlement; this client only moves
// JSON. Outbound calls share a token-bucket limiter so a burst of scoring
// requests cannot hammer the remote service.
type FacilitatorClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewFacilitatorClient builds a client with the given per-call timeout. A
// timeout that is not positive or exceeds the advertised maxTimeoutSeconds
// is replaced by 30 seconds.
func NewFacilitatorClient(baseURL string, timeout time.Duration) *FacilitatorClient {
	if timeout <= 0 || timeout > MaxTimeoutSeconds*time.Second {
		timeout = 30 * time.Second
	}
	return &FacilitatorClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(20), 40),
	}
}

// VerifyResponse is the facilitator's answer to /verify.
type VerifyResponse struct {
	IsValid       bool   `json:"isValid"`
	Payer         string `json:"payer,omitempty"`
	InvalidReason string `json:"invalidReason,omitempty"`
}

// settleRequest is the shared wire body for /verify and /settle.
type settleRequest struct {
	X402Version         int    `json:"x402Version"`
	PaymentPayload      any    `json:"paymentPayload"`
	PaymentRequirements Option `json:"paymentRequirements"`
}

// post sends one facilitator call and returns the status and raw body.
// Transport errors are returned wrapped with the path; status handling is the
// caller's.
func (c *FacilitatorClient) post(ctx context.Context, path string, body settleRequest) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("facilitator %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("facilitator %s: %w", path, err)
	}
	return resp.StatusCode, respBody, nil
}

func (c *FacilitatorClient) Verify(ctx context.Context, body settleRequest) (int, []byte, error) {
	return c.post(ctx, "/verify", body)
}

func (c *FacilitatorClient) Settle(ctx context.Context, body settleRequest) (int, []byte, error) {
	return c.post(ctx, "/settle", body)
}
