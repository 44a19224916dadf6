package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.SummarizerHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, "qwen2.5:3b", cfg.SummarizerModel)
	assert.Equal(t, 5, cfg.MaxSummaryTags)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://gpu-box:8000"),
		WithEmbeddingModel("text-embedding-3-small"),
		WithSummarizerModel("gpt-4o-mini"),
		WithMaxSummaryTags(3),
	)

	assert.Equal(t, "http://gpu-box:8000", cfg.EmbeddingHost)
	assert.Equal(t, "http://gpu-box:8000", cfg.SummarizerHost)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, "gpt-4o-mini", cfg.SummarizerModel)
	assert.Equal(t, 3, cfg.MaxSummaryTags)
}

func TestNormalizeAddsV1Suffix(t *testing.T) {
	cfg := NewConfig(WithHost("http://localhost:8080"))
	cfg.Normalize()
	assert.Equal(t, "http://localhost:8080/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:8080/v1", cfg.SummarizerHost)

	cfg = NewConfig(WithHost("http://localhost:8080/v1"))
	cfg.Normalize()
	assert.Equal(t, "http://localhost:8080/v1", cfg.EmbeddingHost)
}

func TestValidateRejectsIncompleteConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty embedding host", func(c *Config) { c.EmbeddingHost = "" }},
		{"empty summarizer host", func(c *Config) { c.SummarizerHost = "" }},
		{"empty embedding model", func(c *Config) { c.EmbeddingModel = "" }},
		{"empty summarizer model", func(c *Config) { c.SummarizerModel = "" }},
		{"zero tag cap", func(c *Config) { c.MaxSummaryTags = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
