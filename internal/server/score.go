package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/trustrank/internal/payment"
	"github.com/agenthands/trustrank/internal/ratelimit"
	"github.com/agenthands/trustrank/internal/screen"
	"github.com/agenthands/trustrank/internal/trust"
)

type scoreRequest struct {
	Entity  string `json:"entity"`
	Context string `json:"context"`
}

type scoreResponse struct {
	*trust.Report
	Payment payment.Receipt `json:"payment"`
}

// handleScore is the paid pipeline: rate limit, payment gate, body parse,
// graph load, optional screening, reputation, composite score, assembly.
// Settlement strictly precedes the scoring response: the response is the
// commitment.
func (s *Server) handleScore(c *gin.Context) {
	ip := clientIP(c)
	if !s.Limiter.Allow(c.Request.Context(), ip) {
		c.Header("Retry-After", fmt.Sprintf("%d", ratelimit.RetryAfterSeconds))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "Rate limit exceeded",
			"retry_after": ratelimit.RetryAfterSeconds,
		})
		return
	}

	resourceURL := requestURL(c)

	proof := s.Gate.ProofFromHeaders(c.Request.Header)
	if proof == "" {
		c.JSON(http.StatusPaymentRequired, s.Gate.Requirements(resourceURL))
		return
	}

	payer, failure := s.Gate.Charge(c.Request.Context(), proof, resourceURL)
	if failure != nil {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":  "Payment failed",
			"reason": failure.Reason,
		})
		return
	}

	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Entity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: entity"})
		return
	}

	snap, err := s.Loader.Load(c.Request.Context())
	if err != nil {
		s.Logger.Error("graph load failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "knowledge graph unavailable"})
		return
	}

	var safety *screen.Result
	if req.Context != "" {
		safety = screen.Classify(req.Context)
	}

	now := time.Now().UTC()

	var report *trust.Report
	if entity := snap.Find(req.Entity); entity != nil {
		reputation := s.Reputation.Reputation(c.Request.Context(), snap)
		report = trust.Assemble(entity, snap, reputation, safety, now)
	} else {
		report = trust.AssembleUnknown(req.Entity, safety)
	}

	c.Header("X-Payment-Confirmed", "true")
	c.JSON(http.StatusOK, scoreResponse{
		Report:  report,
		Payment: payment.NewReceipt(payer),
	})
}

func requestURL(c *gin.Context) string {
	scheme := "https"
	if c.Request.TLS == nil {
		scheme = "http"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, c.Request.URL.Path)
}
