package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wordlens/wordlens/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
providers:
  default:
    kind: "openai_compatible"
    model: "test-model"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3600, cfg.Cache.DefaultTTLSeconds)
	assert.Equal(t, 10000, cfg.Cache.MaxKeys)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.InDelta(t, 0.7, cfg.Search.DefaultThreshold, 1e-9)
	assert.Equal(t, 86400, cfg.TTL.DefinitionSeconds)
	assert.Equal(t, 600, cfg.TTL.SearchSeconds)
}

func TestEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_WL_PORT", "7070")
	os.Unsetenv("TEST_WL_MISSING")

	path := writeConfig(t, `
server:
  port: "${TEST_WL_PORT:-8080}"
  log_level: "${TEST_WL_MISSING:-debug}"
  environment: "${TEST_WL_ALSO_MISSING}"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "", cfg.Server.Environment)
}

func TestProviderLookupIsCaseInsensitive(t *testing.T) {
	path := writeConfig(t, `
providers:
  Default:
    kind: "anthropic"
    model: "claude-test"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	p, ok := cfg.GetProvider("DEFAULT")
	require.True(t, ok)
	assert.Equal(t, models.ProviderAnthropic, p.Kind)

	name, p, ok := cfg.DefaultProvider()
	require.True(t, ok)
	assert.Equal(t, "default", name)
	assert.Equal(t, "claude-test", p.Model)
}

func TestDefaultProviderFallsBackToSoleEntry(t *testing.T) {
	path := writeConfig(t, `
providers:
  ollama:
    kind: "openai_compatible"
    model: "llama-test"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	name, p, ok := cfg.DefaultProvider()
	require.True(t, ok)
	assert.Equal(t, "ollama", name)
	assert.Equal(t, "llama-test", p.Model)
}

func TestRejectsNonYAMLExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestRejectsPathTraversal(t *testing.T) {
	_, err := LoadFromFile("../../etc/config.yaml")
	assert.Error(t, err)
}

func TestIsProduction(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Environment = "Production"
	assert.True(t, cfg.IsProduction())

	cfg.Server.Environment = "development"
	assert.False(t, cfg.IsProduction())
}
