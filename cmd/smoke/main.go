package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const baseURL = "http://localhost:8080"

// Manual smoke run against a locally running server. Checks the unpaid flow
// end to end; set PAYMENT_PROOF to also exercise a paid scoring call.
func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Smoke Test...")

	fmt.Println("1. Health...")
	if !check("GET", "/health", nil, nil, http.StatusOK, http.StatusServiceUnavailable) {
		fmt.Println("FAILED: health endpoint unreachable")
		os.Exit(1)
	}

	fmt.Println("2. Unpaid score request (expect 402 with requirements)...")
	payload := map[string]any{"entity": "Orac"}
	if !check("POST", "/v1/score", payload, nil, http.StatusPaymentRequired) {
		fmt.Println("FAILED: unpaid request did not return 402")
		os.Exit(1)
	}

	proof := os.Getenv("PAYMENT_PROOF")
	if proof == "" {
		fmt.Println("3. Skipping paid request (set PAYMENT_PROOF to enable)")
		fmt.Println("Smoke Test PASSED")
		return
	}

	fmt.Println("3. Paid score request...")
	headers := map[string]string{"Payment-Signature": proof}
	if !check("POST", "/v1/score", payload, headers, http.StatusOK) {
		fmt.Println("FAILED: paid request")
		os.Exit(1)
	}

	fmt.Println("Smoke Test PASSED")
}

func check(method, path string, payload map[string]any, headers map[string]string, wantStatus ...int) bool {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("marshal error: %v\n", err)
			return false
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("request error: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("call error: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<12))
	fmt.Printf("   %s %s -> %d %s\n", method, path, resp.StatusCode, truncate(raw))

	for _, want := range wantStatus {
		if resp.StatusCode == want {
			return true
		}
	}
	return false
}

func truncate(b []byte) string {
	s := string(b)
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
