package openai

import (
	"github.com/poiesic/lectio/ai"
	"github.com/tmc/langchaingo/llms/openai"
)

// clientOptions builds the langchaingo options shared by chat and embedding
// clients for the given host.
func clientOptions(config *ai.Config, host string) []openai.Option {
	token := config.APIKey
	if token == "" {
		// Local OpenAI-compatible services don't require authentication
		token = "none"
	}
	opts := []openai.Option{
		openai.WithBaseURL(host),
		openai.WithToken(token),
	}
	if config.APIType == ai.APITypeAzure {
		opts = append(opts,
			openai.WithAPIType(openai.APITypeAzure),
			openai.WithAPIVersion(config.APIVersion),
		)
	}
	return opts
}
