package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbrillhart19/vapor/backend/pkg/errors"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("NEO4J_URI", "bolt://localhost:7687")
	t.Setenv("NEO4J_USER", "neo4j")
	t.Setenv("NEO4J_PW", "secret")
	t.Setenv("STEAM_API_KEY", "key123")
	t.Setenv("STEAM_ID", "7656119")
}

func TestLoad_AppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "neo4j", cfg.Neo4jDatabase)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaHost)
	assert.Equal(t, "embeddinggemma", cfg.OllamaEmbeddingModel)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_ReadsOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("OLLAMA_LLM", "llama3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "llama3", cfg.OllamaLLMModel)
}

func TestValidate_RequiresSteamCredentials(t *testing.T) {
	cfg := &Config{
		Neo4jURI:      "bolt://localhost:7687",
		Neo4jUser:     "neo4j",
		Neo4jPassword: "secret",
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STEAM_API_KEY")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConfig))
	var missing *errors.ErrConfigMissingRequired
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "STEAM_API_KEY", missing.Field)

	cfg.SteamAPIKey = "key"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STEAM_ID")

	cfg.SteamID = "7656119"
	assert.NoError(t, cfg.Validate())
}

func TestLoad_WrapsTypedValidationError(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STEAM_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConfig))
}
