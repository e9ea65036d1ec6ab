package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/trustrank/internal/payment"
)

// handleIndex is content-negotiated: JSON only when the client explicitly
// prefers it and does not also accept HTML; everyone else gets the landing
// page.
func (s *Server) handleIndex(c *gin.Context) {
	accept := c.GetHeader("Accept")
	wantsJSON := strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")

	if wantsJSON {
		c.JSON(http.StatusOK, gin.H{
			"service":     "TrustRank",
			"description": "Paid trust scoring over the agent knowledge graph",
			"pricing": gin.H{
				"amount":   payment.PriceDisplay,
				"currency": payment.PriceCurrency,
				"networks": []string{payment.NetworkBase, payment.NetworkSolana},
			},
			"endpoints": gin.H{
				"POST /v1/score": "Score a named agent (x402 payment required)",
				"GET /health":    "Service and graph health",
			},
			"tiers": gin.H{
				"unknown":     "score < 0.20",
				"new":         "0.20 - 0.40",
				"emerging":    "0.40 - 0.60",
				"established": "0.60 - 0.80",
				"trusted":     "0.80 - 0.95",
				"verified":    "score >= 0.95",
			},
			"data_source": "agent knowledge graph snapshot, refreshed upstream",
			"author":      "AgentHands",
		})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(landingHTML))
}

const landingHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>TrustRank — Agent Trust Scoring</title>
<meta property="og:title" content="TrustRank">
<meta property="og:description" content="Pay-per-query trust scores for software agents. $0.01 USDC per lookup.">
<meta property="og:type" content="website">
<style>
body { font-family: -apple-system, sans-serif; max-width: 640px; margin: 4rem auto; padding: 0 1rem; color: #1a1a1a; }
code { background: #f4f4f4; padding: 2px 6px; border-radius: 4px; }
</style>
</head>
<body>
<h1>TrustRank</h1>
<p>Composite trust scores for agents in the knowledge graph. Each query costs
$0.01 USDC, paid per request over x402 on Base or Solana.</p>
<p>POST <code>{"entity": "AgentName", "context": "optional"}</code> to
<code>/v1/score</code> with a payment header. An unpaid request returns the
payment requirements.</p>
</body>
</html>
`

// handleHealth reads the graph live so the page reflects what scoring
// requests would actually see.
func (s *Server) handleHealth(c *gin.Context) {
	snap, err := s.Loader.Load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "degraded",
			"error":     "knowledge graph unavailable",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"graph": gin.H{
			"entities":  len(snap.Entities),
			"relations": len(snap.Relations),
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
