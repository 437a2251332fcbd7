package openai

import (
	"testing"

	"github.com/poiesic/lectio/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		_, err := NewProvider(ai.NewConfig(ai.WithAPIType("bedrock")))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "APIType")
	})

	t.Run("builds both clients", func(t *testing.T) {
		provider, err := NewProvider(ai.NewConfig(ai.WithHost("http://localhost:11434")))
		require.NoError(t, err)
		assert.NotNil(t, provider.Embedder())
		assert.NotNil(t, provider.ChatModel())
		assert.NoError(t, provider.Close())
	})
}
