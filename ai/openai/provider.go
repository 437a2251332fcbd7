// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"log/slog"

	"github.com/poiesic/lectio/ai"
)

// Provider serves embeddings and chat completions from one
// OpenAI-compatible configuration. Azure deployments are addressed by
// ChatDeployment when set.
type Provider struct {
	config    *ai.Config
	embedder  *Embedder
	chatModel *ChatModel
	logger    *slog.Logger
}

// NewProvider validates config and builds both clients.
//
// Returns ai.AIProvider rather than *Provider so callers depend only on the
// collaborator interfaces.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}
	chatModel, err := newChatModel(config)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "openai-provider")
	logger.Debug("AI provider ready",
		"api_type", config.APIType,
		"chat_host", config.ChatHost,
		"chat", config.DeploymentOrModel(),
		"embedding_host", config.EmbeddingHost,
		"embedding_model", config.EmbeddingModel)

	return &Provider{
		config:    config,
		embedder:  embedder,
		chatModel: chatModel,
		logger:    logger,
	}, nil
}

// Embedder returns the embedding client.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// ChatModel returns the chat completion client.
func (p *Provider) ChatModel() ai.ChatModel {
	return p.chatModel
}

// Close is a no-op; the HTTP clients hold no resources that need releasing.
func (p *Provider) Close() error {
	p.logger.Debug("closing AI provider")
	return nil
}
