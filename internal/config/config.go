package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port string `toml:"port"`
}

type StoreConfig struct {
	// Path is the Badger directory. Empty means the in-memory store.
	Path     string `toml:"path"`
	GraphKey string `toml:"graph_key"`
}

type PaymentConfig struct {
	FacilitatorURL string `toml:"facilitator_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	EVMPayTo       string `toml:"evm_pay_to"`
	SolanaPayTo    string `toml:"solana_pay_to"`
	SolanaFeePayer string `toml:"solana_fee_payer"`
}

type RateLimitConfig struct {
	Limit         int      `toml:"limit"`
	WindowSeconds int      `toml:"window_seconds"`
	Bypass        []string `toml:"bypass"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Store     StoreConfig     `toml:"store"`
	Payment   PaymentConfig   `toml:"payment"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Store: StoreConfig{
			GraphKey: "knowledge_graph",
		},
		Payment: PaymentConfig{
			FacilitatorURL: "https://x402.org/facilitator",
			TimeoutSeconds: 30,
		},
		RateLimit: RateLimitConfig{
			Limit:         100,
			WindowSeconds: 3600,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}
