package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, APITypeOpenAI, cfg.APIType)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.ChatHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, "qwen2.5:3b", cfg.ChatModel)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.ChatHost)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.ChatHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithChatHost("http://chat:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://chat:9090/v1", cfg.ChatHost)
	})

	t.Run("with azure settings", func(t *testing.T) {
		cfg := NewConfig(
			WithAPIType(APITypeAzure),
			WithAPIVersion("2024-02-01"),
			WithAPIKey("secret"),
			WithHost("https://contoso.openai.azure.com/"),
			WithChatModel("gpt-35-turbo"),
			WithChatDeployment("chat"),
			WithEmbeddingModel("embeddings"),
			WithEmbeddingDimensions(1536),
			WithRetries(5, 10*time.Millisecond),
		)

		require.NoError(t, cfg.Validate())
		assert.Equal(t, "https://contoso.openai.azure.com", cfg.ChatHost)
		assert.Equal(t, "chat", cfg.DeploymentOrModel())
		assert.Equal(t, 1536, cfg.EmbeddingDimensions)
		assert.Equal(t, 5, cfg.MaxRetries)
		assert.Equal(t, "secret", cfg.APIKey)
	})
}

func TestConfigDeploymentOrModel(t *testing.T) {
	cfg := NewConfig(WithChatModel("gpt-4"))
	assert.Equal(t, "gpt-4", cfg.DeploymentOrModel())

	cfg.ChatDeployment = "gpt4-prod"
	assert.Equal(t, "gpt4-prod", cfg.DeploymentOrModel())
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name              string
		apiType           string
		embeddingHost     string
		chatHost          string
		expectedEmbedding string
		expectedChat      string
	}{
		{
			name:              "already has /v1",
			embeddingHost:     "http://localhost:11434/v1",
			chatHost:          "http://localhost:11434/v1",
			expectedEmbedding: "http://localhost:11434/v1",
			expectedChat:      "http://localhost:11434/v1",
		},
		{
			name:              "missing /v1",
			embeddingHost:     "http://localhost:11434",
			chatHost:          "http://localhost:11434",
			expectedEmbedding: "http://localhost:11434/v1",
			expectedChat:      "http://localhost:11434/v1",
		},
		{
			name:              "has trailing slash",
			embeddingHost:     "http://localhost:11434/",
			chatHost:          "http://localhost:11434/v1/",
			expectedEmbedding: "http://localhost:11434/v1",
			expectedChat:      "http://localhost:11434/v1",
		},
		{
			name:              "empty hosts",
			expectedEmbedding: "",
			expectedChat:      "",
		},
		{
			name:              "azure hosts keep their path",
			apiType:           APITypeAzure,
			embeddingHost:     "https://contoso.openai.azure.com/",
			chatHost:          "https://contoso.openai.azure.com",
			expectedEmbedding: "https://contoso.openai.azure.com",
			expectedChat:      "https://contoso.openai.azure.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				APIType:       tt.apiType,
				EmbeddingHost: tt.embeddingHost,
				ChatHost:      tt.chatHost,
			}

			cfg.Normalize()

			assert.Equal(t, tt.expectedEmbedding, cfg.EmbeddingHost)
			assert.Equal(t, tt.expectedChat, cfg.ChatHost)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			EmbeddingHost:  "http://localhost:11434",
			ChatHost:       "http://localhost:11434",
			EmbeddingModel: "embeddinggemma",
			ChatModel:      "qwen2.5:3b",
			MaxRetries:     1,
		}
	}

	t.Run("valid config", func(t *testing.T) {
		cfg := valid()

		err := cfg.Validate()
		assert.NoError(t, err)

		// Should also normalize
		assert.Equal(t, APITypeOpenAI, cfg.APIType)
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.ChatHost)
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{name: "missing embedding host", mutate: func(c *Config) { c.EmbeddingHost = "" }, message: "EmbeddingHost"},
		{name: "missing chat host", mutate: func(c *Config) { c.ChatHost = "" }, message: "ChatHost"},
		{name: "missing embedding model", mutate: func(c *Config) { c.EmbeddingModel = "" }, message: "EmbeddingModel"},
		{name: "missing chat model", mutate: func(c *Config) { c.ChatModel = "" }, message: "ChatModel"},
		{name: "unknown api type", mutate: func(c *Config) { c.APIType = "bedrock" }, message: "APIType"},
		{name: "azure without version", mutate: func(c *Config) { c.APIType = APITypeAzure }, message: "APIVersion"},
		{name: "negative dimensions", mutate: func(c *Config) { c.EmbeddingDimensions = -1 }, message: "EmbeddingDimensions"},
		{name: "zero retries", mutate: func(c *Config) { c.MaxRetries = 0 }, message: "MaxRetries"},
		{name: "negative delay", mutate: func(c *Config) { c.RetryDelay = -time.Second }, message: "RetryDelay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
