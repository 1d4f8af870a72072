package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/bbrillhart19/vapor/backend/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	// Steam
	SteamAPIKey string
	SteamID     string // Steam ID of the primary user the graph is anchored on

	// Ollama
	OllamaHost           string
	OllamaEmbeddingModel string
	OllamaLLMModel       string
	OllamaAPIKey         string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  getEnv("ENV", "development"),
		Neo4jURI:             getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:            getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:        getEnv("NEO4J_PW", "password"),
		Neo4jDatabase:        getEnv("NEO4J_DATABASE", "neo4j"),
		SteamAPIKey:          getEnv("STEAM_API_KEY", ""),
		SteamID:              getEnv("STEAM_ID", ""),
		OllamaHost:           getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "embeddinggemma"),
		OllamaLLMModel:       getEnv("OLLAMA_LLM", "qwen3"),
		OllamaAPIKey:         getEnv("OLLAMA_API_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return errors.NewConfigMissingRequired("NEO4J_URI")
	}
	if c.Neo4jUser == "" {
		return errors.NewConfigMissingRequired("NEO4J_USER")
	}
	if c.Neo4jPassword == "" {
		return errors.NewConfigMissingRequired("NEO4J_PW")
	}
	if c.SteamAPIKey == "" {
		return errors.NewConfigMissingRequired("STEAM_API_KEY")
	}
	if c.SteamID == "" {
		return errors.NewConfigMissingRequired("STEAM_ID")
	}
	// Ollama host/models have workable local defaults
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
