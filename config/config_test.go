package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/lectio/ai"
	"github.com/poiesic/lectio/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ai.APITypeOpenAI, cfg.AI.APIType)
	assert.Equal(t, "qwen2.5:3b", cfg.AI.ChatModel)
	assert.Equal(t, "embedding", cfg.Index.EmbeddingField)
	assert.Equal(t, 50, cfg.Index.VectorK)
	assert.Equal(t, "en-us", cfg.Search.QueryLanguage)
	assert.Equal(t, "lexicon", cfg.Search.QuerySpeller)
	assert.Equal(t, 4, cfg.Batch.PoolSize)

	defaults, err := cfg.RetrievalDefaults()
	require.NoError(t, err)
	assert.Equal(t, core.DefaultRetrievalOptions(), defaults)
}

func TestParse(t *testing.T) {
	t.Setenv("LECTIO_TEST_KEY", "secret")
	t.Setenv("HOME", "/home/tester")

	cfg, err := Parse([]byte(`
ai:
  api_type: azure
  api_version: "2024-02-01"
  api_key: ${LECTIO_TEST_KEY}
  host: https://contoso.openai.azure.com/
  embedding_host: https://embeddings.openai.azure.com
  chat_model: gpt-35-turbo
  chat_deployment: chat
  embedding_model: embedding
  embedding_dimensions: 1536
  retry_delay: 250ms
index:
  path: ${HOME}/index
  vector_k: 10
search:
  query_language: pt-br
defaults:
  top: 5
  semantic_ranker: true
  minimum_reranker_score: 2
prompts:
  chat_system: "You answer questions about contracts."
  query_few_shots:
    - user: How do I pay?
      assistant: payment method
batch:
  pool_size: 8
`))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.AI.APIKey)
	assert.Equal(t, "/home/tester/index", cfg.Index.Path)
	assert.Equal(t, 10, cfg.Index.VectorK)
	assert.Equal(t, "embedding", cfg.Index.EmbeddingField)
	assert.Equal(t, "pt-br", cfg.Search.QueryLanguage)
	assert.Equal(t, "lexicon", cfg.Search.QuerySpeller)
	assert.Equal(t, 8, cfg.Batch.PoolSize)
	assert.Equal(t, "You answer questions about contracts.", cfg.Prompts.ChatSystem)
	assert.Equal(t, []core.FewShotExample{{User: "How do I pay?", Assistant: "payment method"}}, cfg.Prompts.QueryFewShots)

	aiConfig := cfg.AIConfig()
	require.NoError(t, aiConfig.Validate())
	assert.Equal(t, ai.APITypeAzure, aiConfig.APIType)
	assert.Equal(t, "https://contoso.openai.azure.com", aiConfig.ChatHost)
	assert.Equal(t, "https://embeddings.openai.azure.com", aiConfig.EmbeddingHost)
	assert.Equal(t, "chat", aiConfig.DeploymentOrModel())
	assert.Equal(t, 1536, aiConfig.EmbeddingDimensions)
	assert.Equal(t, 250*time.Millisecond, aiConfig.RetryDelay)
	assert.Equal(t, 3, aiConfig.MaxRetries)

	defaults, err := cfg.RetrievalDefaults()
	require.NoError(t, err)
	assert.Equal(t, 5, defaults.Top)
	assert.True(t, defaults.UseSemanticRanker)
	assert.Equal(t, 2.0, defaults.MinimumRerankerScore)
	assert.Equal(t, core.RetrievalModeHybrid, defaults.Mode)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse([]byte("# nothing configured\n"))
	require.NoError(t, err)
	assert.Equal(t, Default().AI, cfg.AI)
}

func TestParseDefaultVariable(t *testing.T) {
	t.Setenv("LECTIO_UNSET_KEY", "")
	cfg, err := Parse([]byte("ai:\n  api_key: ${LECTIO_UNSET_KEY:-none}\n"))
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.AI.APIKey)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown key", yaml: "ai:\n  temperature: 0.5\n"},
		{name: "malformed yaml", yaml: "ai: [\n"},
		{name: "unknown api type", yaml: "ai:\n  api_type: bedrock\n"},
		{name: "azure without version", yaml: "ai:\n  api_type: azure\n"},
		{name: "bad override", yaml: "defaults:\n  retrieval_mode: keyword\n"},
		{name: "unknown override", yaml: "defaults:\n  use_gpt4v: true\n"},
		{name: "bad pool size", yaml: "batch:\n  pool_size: 0\n"},
		{name: "bad vector k", yaml: "index:\n  vector_k: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("requires LECTIO_CONFIG", func(t *testing.T) {
		t.Setenv(EnvConfig, "")
		_, err := Load()
		assert.ErrorIs(t, err, ErrConfigNotSet)
	})

	t.Run("reads the named file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lectio.yaml")
		require.NoError(t, os.WriteFile(path, []byte("index:\n  path: /srv/lectio\n"), 0o644))
		t.Setenv(EnvConfig, path)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "/srv/lectio", cfg.Index.Path)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
