package server

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agenthands/trustrank/internal/config"
	"github.com/agenthands/trustrank/internal/graph"
	"github.com/agenthands/trustrank/internal/kvstore"
	"github.com/agenthands/trustrank/internal/payment"
	"github.com/agenthands/trustrank/internal/ratelimit"
	"github.com/agenthands/trustrank/internal/trust"
)

type Server struct {
	Config     *config.Config
	Store      kvstore.Store
	Loader     *graph.Loader
	Reputation *trust.Engine
	Gate       *payment.Gate
	Limiter    *ratelimit.Limiter
	Logger     *slog.Logger
}

func NewServer() *Server {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Warning: could not load %s: %v. Using defaults", cfgPath, err)
		cfg = config.Default()
	}

	// Override config with env vars if present (simple override logic)
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("GRAPH_KEY"); v != "" {
		cfg.Store.GraphKey = v
	}
	if v := os.Getenv("FACILITATOR_URL"); v != "" {
		cfg.Payment.FacilitatorURL = v
	}
	if v := os.Getenv("PAY_TO_EVM"); v != "" {
		cfg.Payment.EVMPayTo = v
	}
	if v := os.Getenv("PAY_TO_SOLANA"); v != "" {
		cfg.Payment.SolanaPayTo = v
	}

	var store kvstore.Store
	if cfg.Store.Path != "" {
		store, err = kvstore.NewBadgerStore(cfg.Store.Path, logger)
		if err != nil {
			log.Fatalf("Failed to open store: %v", err)
		}
	} else {
		log.Println("No store path configured, using in-memory store")
		store = kvstore.NewMemoryStore()
	}

	return NewServerWith(cfg, store, logger)
}

// NewServerWith wires the request pipeline over an existing store. Tests use
// this with the in-memory store and a stub facilitator.
func NewServerWith(cfg *config.Config, store kvstore.Store, logger *slog.Logger) *Server {
	facilitator := payment.NewFacilitatorClient(
		cfg.Payment.FacilitatorURL,
		time.Duration(cfg.Payment.TimeoutSeconds)*time.Second,
	)
	addresses := payment.Addresses{
		EVMPayTo:       cfg.Payment.EVMPayTo,
		SolanaPayTo:    cfg.Payment.SolanaPayTo,
		SolanaFeePayer: cfg.Payment.SolanaFeePayer,
	}

	return &Server{
		Config:     cfg,
		Store:      store,
		Loader:     graph.NewLoader(store, cfg.Store.GraphKey, logger),
		Reputation: trust.NewEngine(store, logger),
		Gate:       payment.NewGate(facilitator, addresses, logger),
		Limiter:    ratelimit.NewLimiter(store, cfg.RateLimit.Limit, cfg.RateLimit.WindowSeconds, cfg.RateLimit.Bypass, logger),
		Logger:     logger,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}))
	r.Use(s.requestLog())
	r.Use(cors())

	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	r.GET("/", s.handleIndex)
	r.GET("/health", s.handleHealth)
	r.POST("/v1/score", s.handleScore)

	return r
}

// cors attaches the allow headers to every response and short-circuits
// preflight with a 204 on any path.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Payment-Signature, X-Payment")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.New().String()
		c.Set("request_id", requestID)

		c.Next()

		s.Logger.Info("request",
			"id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", clientIP(c),
		)
	}
}

// clientIP prefers the edge proxy's header over anything derivable locally.
func clientIP(c *gin.Context) string {
	if ip := c.GetHeader("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
