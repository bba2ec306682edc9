package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Storage locations
	DocDir    string
	IndexDir  string
	StaticDir string

	// Embedding service (OpenAI-compatible API)
	EmbedBaseURL string
	EmbedModel   string
	EmbedTimeout time.Duration

	// Generation service (Ollama)
	OllamaURL      string
	GenModel       string
	GenTimeout     time.Duration
	GenTemperature float64

	// Upload limits
	MaxUploadBytes int64

	// Retrieval
	ChunkSize int
	TopK      int
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8000"),

		DocDir:    envOr("DOC_DIR", "./documents"),
		IndexDir:  envOr("INDEX_DIR", "./index_db"),
		StaticDir: envOr("STATIC_DIR", "./web"),

		EmbedBaseURL: envOr("EMBED_BASE_URL", "http://localhost:11434/v1"),
		EmbedModel:   envOr("EMBED_MODEL", "nomic-embed-text"),
		EmbedTimeout: envDuration("EMBED_TIMEOUT", 60*time.Second),

		OllamaURL:      envOr("OLLAMA_URL", "http://localhost:11434"),
		GenModel:       envOr("GEN_MODEL", "qwen2.5:0.5b"),
		GenTimeout:     envDuration("GEN_TIMEOUT", 120*time.Second),
		GenTemperature: envFloat("GEN_TEMPERATURE", 0.2),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		ChunkSize: envInt("CHUNK_SIZE", 512),
		TopK:      envInt("TOP_K", 3),
	}

	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = 60 * time.Second
	}
	if cfg.GenTimeout <= 0 {
		cfg.GenTimeout = 120 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 512
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DocDir == "" {
		return fmt.Errorf("DOC_DIR must not be empty")
	}
	if c.IndexDir == "" {
		return fmt.Errorf("INDEX_DIR must not be empty")
	}
	if c.EmbedBaseURL == "" {
		return fmt.Errorf("EMBED_BASE_URL must not be empty")
	}
	if c.OllamaURL == "" {
		return fmt.Errorf("OLLAMA_URL must not be empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
