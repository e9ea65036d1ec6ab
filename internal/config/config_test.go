package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[server]
port = "9090"

[store]
path = "/tmp/store"
graph_key = "graph:v3"

[payment]
facilitator_url = "https://facilitator.test"
evm_pay_to = "0xdead"

[ratelimit]
limit = 5
bypass = ["127.0.0.1"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "graph:v3", cfg.Store.GraphKey)
	assert.Equal(t, "https://facilitator.test", cfg.Payment.FacilitatorURL)
	assert.Equal(t, "0xdead", cfg.Payment.EVMPayTo)
	assert.Equal(t, 5, cfg.RateLimit.Limit)
	assert.Equal(t, []string{"127.0.0.1"}, cfg.RateLimit.Bypass)

	// Unset fields keep their defaults.
	assert.Equal(t, 30, cfg.Payment.TimeoutSeconds)
	assert.Equal(t, 3600, cfg.RateLimit.WindowSeconds)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("does/not/exist.toml")
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "knowledge_graph", cfg.Store.GraphKey)
	assert.Equal(t, 100, cfg.RateLimit.Limit)
}
