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


// Package lectio answers questions over a passage index with a language
// model. Service wires the passage store, the model services and the ask
// and chat approaches from a single configuration.
package lectio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/lectio/ai"
	"github.com/poiesic/lectio/ai/openai"
	"github.com/poiesic/lectio/approach"
	"github.com/poiesic/lectio/config"
	"github.com/poiesic/lectio/core"
	"github.com/poiesic/lectio/search"
	"github.com/poiesic/lectio/storage"
	"github.com/poiesic/lectio/storage/badger"
)

// Approach names accepted by Service.Runner.
const (
	ApproachAsk  = "ask"
	ApproachChat = "chat"
)

var (
	// ErrConfigRequired is returned when no configuration is supplied.
	ErrConfigRequired = errors.New("config is required")

	// ErrRepositoryRequired is returned when no passage repository is supplied.
	ErrRepositoryRequired = errors.New("passage repository is required")

	// ErrAIProviderRequired is returned when no AI provider is supplied.
	ErrAIProviderRequired = errors.New("AI provider is required")

	// ErrUnknownApproach is returned for approach names other than ask and chat.
	ErrUnknownApproach = errors.New("unknown approach")
)

// Service answers requests with the ask and chat approaches over one
// passage repository and AI provider, and owns both.
type Service struct {
	repo     storage.PassageRepository
	provider ai.AIProvider
	ask      *approach.Ask
	chat     *approach.Chat
	poolSize int
	logger   *slog.Logger
}

// Open opens the passage index at cfg.Index.Path and connects to the
// configured model services. The returned Service owns both.
func Open(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	repo, err := badger.OpenPassageRepository(cfg.Index.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	provider, err := openai.NewProvider(cfg.AIConfig())
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to create AI provider: %w", err)
	}

	svc, err := New(repo, provider, cfg)
	if err != nil {
		provider.Close()
		repo.Close()
		return nil, err
	}
	return svc, nil
}

// New builds a Service over an existing repository and provider.
// Closing the Service closes both.
func New(repo storage.PassageRepository, provider ai.AIProvider, cfg *config.Config) (*Service, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	index, err := search.NewLocalIndex(repo)
	if err != nil {
		return nil, err
	}
	searcher, err := search.NewSearcher(index,
		search.WithQueryLanguage(cfg.Search.QueryLanguage),
		search.WithQuerySpeller(cfg.Search.QuerySpeller),
	)
	if err != nil {
		return nil, err
	}

	defaults, err := cfg.RetrievalDefaults()
	if err != nil {
		return nil, err
	}
	common := []approach.Option{
		approach.WithChatModel(cfg.AI.ChatModel),
		approach.WithChatDeployment(cfg.AI.ChatDeployment),
		approach.WithEmbeddingField(cfg.Index.EmbeddingField),
		approach.WithVectorK(cfg.Index.VectorK),
		approach.WithDefaults(defaults),
	}

	askOpts := append([]approach.Option{approach.WithSystemTemplate(cfg.Prompts.AskSystem)}, common...)
	if len(cfg.Prompts.AskFewShots) > 0 {
		askOpts = append(askOpts, approach.WithFewShots(cfg.Prompts.AskFewShots))
	}
	ask, err := approach.NewAsk(provider, searcher, askOpts...)
	if err != nil {
		return nil, err
	}

	chatOpts := append([]approach.Option{
		approach.WithSystemTemplate(cfg.Prompts.ChatSystem),
		approach.WithQueryTemplate(cfg.Prompts.Query),
	}, common...)
	if len(cfg.Prompts.QueryFewShots) > 0 {
		chatOpts = append(chatOpts, approach.WithFewShots(cfg.Prompts.QueryFewShots))
	}
	chat, err := approach.NewChat(provider, searcher, chatOpts...)
	if err != nil {
		return nil, err
	}

	return &Service{
		repo:     repo,
		provider: provider,
		ask:      ask,
		chat:     chat,
		poolSize: cfg.Batch.PoolSize,
		logger:   slog.Default().With("component", "lectio"),
	}, nil
}

// Close releases the model services and the passage index.
func (s *Service) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if err := s.repo.Close(); err != nil {
		s.logger.Error("error closing passage repository", "err", err)
		return err
	}
	return nil
}

// Repository returns the passage repository.
func (s *Service) Repository() storage.PassageRepository {
	return s.repo
}

// Ask answers the last user message of req with the ask approach.
func (s *Service) Ask(ctx context.Context, req approach.Request) (*approach.Response, error) {
	return s.ask.Run(ctx, req)
}

// Chat answers the last user message of req with the chat approach.
func (s *Service) Chat(ctx context.Context, req approach.Request) (*approach.Response, error) {
	return s.chat.Run(ctx, req)
}

// Search runs the retrieval step alone for text.
func (s *Service) Search(ctx context.Context, text string, overrides map[string]any) ([]core.SearchResult, error) {
	return s.ask.Retrieve(ctx, text, overrides)
}

// SearchWithMonitor is Search reporting each search stage to monitor.
func (s *Service) SearchWithMonitor(ctx context.Context, text string, overrides map[string]any, monitor search.SearchMonitor) ([]core.SearchResult, error) {
	return s.ask.RetrieveWithMonitor(ctx, text, overrides, monitor)
}

// Runner returns the approach registered under name.
func (s *Service) Runner(name string) (approach.Runner, error) {
	switch name {
	case ApproachAsk:
		return s.ask, nil
	case ApproachChat:
		return s.chat, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownApproach, name)
	}
}

// Batch answers requests concurrently with the named approach using the
// configured pool size.
func (s *Service) Batch(ctx context.Context, name string, requests []approach.Request) ([]approach.BatchResult, error) {
	runner, err := s.Runner(name)
	if err != nil {
		return nil, err
	}
	return approach.RunBatch(ctx, runner, requests, s.poolSize)
}
