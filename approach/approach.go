package approach

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/lectio/ai"
	"github.com/poiesic/lectio/core"
	"github.com/poiesic/lectio/prompt"
	"github.com/poiesic/lectio/search"
	"github.com/poiesic/lectio/tokens"
)

const (
	// ResponseTokenLimit caps the answer completion and is reserved out of
	// the model's token limit when the answer prompt is built.
	ResponseTokenLimit = 1024

	// QueryResponseTokenLimit caps the query generation completion.
	QueryResponseTokenLimit = 100

	// DefaultEmbeddingField is the vector field searched by vector queries.
	DefaultEmbeddingField = "embedding"

	// DefaultVectorK is the number of nearest neighbours requested per
	// vector query.
	DefaultVectorK = 50

	// DefaultChatModel is used for tokenization when no model is configured.
	DefaultChatModel = "gpt-35-turbo"
)

// Runner answers a single request.
type Runner interface {
	Run(ctx context.Context, req Request) (*Response, error)
}

// settings is shared by Ask and Chat. It is read-only after construction.
type settings struct {
	chatModel      ai.ChatModel
	embedder       ai.Embedder
	searcher       *search.Searcher
	counter        prompt.TokenCounter
	model          string
	deployment     string
	tokenLimit     int
	embeddingField string
	vectorK        int
	defaults       core.RetrievalOptions
	systemTemplate string
	queryTemplate  string
	fewShots       []core.FewShotExample
	logger         *slog.Logger
}

// Option configures an Ask or Chat.
type Option func(*settings) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithChatModel sets the model used for tokenization and token limits.
// Default is DefaultChatModel.
func WithChatModel(model string) Option {
	return func(s *settings) error {
		if model == "" {
			return fmt.Errorf("chat model cannot be empty")
		}
		s.model = model
		return nil
	}
}

// WithChatDeployment records the deployment name reported in thoughts.
func WithChatDeployment(deployment string) Option {
	return func(s *settings) error {
		s.deployment = deployment
		return nil
	}
}

// WithTokenLimit overrides the prompt token limit looked up for the model.
func WithTokenLimit(limit int) Option {
	return func(s *settings) error {
		if limit <= ResponseTokenLimit {
			return fmt.Errorf("token limit must exceed %d, got %d", ResponseTokenLimit, limit)
		}
		s.tokenLimit = limit
		return nil
	}
}

// WithTokenCounter replaces the tiktoken based estimator.
func WithTokenCounter(counter prompt.TokenCounter) Option {
	return func(s *settings) error {
		if counter == nil {
			return fmt.Errorf("token counter cannot be nil")
		}
		s.counter = counter
		return nil
	}
}

// WithEmbeddingField sets the vector field name used in vector queries.
// Default is DefaultEmbeddingField.
func WithEmbeddingField(field string) Option {
	return func(s *settings) error {
		if field == "" {
			return fmt.Errorf("embedding field cannot be empty")
		}
		s.embeddingField = field
		return nil
	}
}

// WithVectorK sets the neighbours requested per vector query.
// Default is DefaultVectorK.
func WithVectorK(k int) Option {
	return func(s *settings) error {
		if k < 1 {
			return fmt.Errorf("vector k must be positive, got %d", k)
		}
		s.vectorK = k
		return nil
	}
}

// WithDefaults sets the retrieval options that request overrides apply to.
// Default is core.DefaultRetrievalOptions().
func WithDefaults(opts core.RetrievalOptions) Option {
	return func(s *settings) error {
		if err := core.ValidateRetrievalOptions(opts); err != nil {
			return err
		}
		s.defaults = opts
		return nil
	}
}

// WithSystemTemplate replaces the default system prompt template.
// Requests can still inject into or replace it with the prompt_template override.
func WithSystemTemplate(template string) Option {
	return func(s *settings) error {
		if template != "" {
			s.systemTemplate = template
		}
		return nil
	}
}

// WithQueryTemplate replaces the system prompt used to derive search
// queries. Only Chat derives queries.
func WithQueryTemplate(template string) Option {
	return func(s *settings) error {
		if template != "" {
			s.queryTemplate = template
		}
		return nil
	}
}

// WithFewShots replaces the sample exchanges. For Ask they precede the
// question; for Chat they precede the query generation prompt.
func WithFewShots(examples []core.FewShotExample) Option {
	return func(s *settings) error {
		s.fewShots = append([]core.FewShotExample(nil), examples...)
		return nil
	}
}

func newSettings(provider ai.AIProvider, searcher *search.Searcher, systemTemplate string,
	fewShots []core.FewShotExample, component string, opts []Option) (*settings, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	s := &settings{
		chatModel:      provider.ChatModel(),
		embedder:       provider.Embedder(),
		searcher:       searcher,
		model:          DefaultChatModel,
		embeddingField: DefaultEmbeddingField,
		vectorK:        DefaultVectorK,
		defaults:       core.DefaultRetrievalOptions(),
		systemTemplate: systemTemplate,
		queryTemplate:  prompt.QueryPromptTemplate,
		fewShots:       fewShots,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.counter == nil {
		s.counter = tokens.NewEstimator()
	}
	if s.tokenLimit == 0 {
		s.tokenLimit = tokens.TokenLimitOrDefault(s.model)
	}
	s.logger = s.logger.With("component", component)
	return s, nil
}

// prepare validates req and applies its overrides to the defaults.
func (s *settings) prepare(req Request) (core.RetrievalOptions, error) {
	if err := req.Validate(); err != nil {
		return core.RetrievalOptions{}, err
	}
	opts, err := core.ParseOverrides(s.defaults, req.Overrides)
	if err != nil {
		return core.RetrievalOptions{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return opts, nil
}

// Retrieve runs the retrieval step alone: text is searched with the
// defaults plus overrides, exactly as a request would be, and the filtered
// results are returned.
func (s *settings) Retrieve(ctx context.Context, text string, overrides map[string]any) ([]core.SearchResult, error) {
	return s.RetrieveWithMonitor(ctx, text, overrides, nil)
}

// RetrieveWithMonitor is Retrieve reporting each search stage to monitor.
func (s *settings) RetrieveWithMonitor(ctx context.Context, text string, overrides map[string]any, monitor search.SearchMonitor) ([]core.SearchResult, error) {
	opts, err := core.ParseOverrides(s.defaults, overrides)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	_, results, err := s.retrieve(ctx, text, opts, monitor)
	return results, err
}

// retrieve searches for text according to opts. Vector queries embed text
// first.
func (s *settings) retrieve(ctx context.Context, text string, opts core.RetrievalOptions, monitor search.SearchMonitor) (search.Query, []core.SearchResult, error) {
	q := search.Query{
		Top:                  opts.Top,
		Filter:               search.Filter{ExcludeCategory: opts.ExcludeCategory},
		UseSemanticRanker:    opts.UseSemanticRanker,
		UseSemanticCaptions:  opts.UseSemanticCaptions,
		MinimumSearchScore:   opts.MinimumSearchScore,
		MinimumRerankerScore: opts.MinimumRerankerScore,
	}
	if opts.Mode.HasText() {
		q.Text = text
	}
	if opts.Mode.HasVectors() {
		vector, err := s.embedder.EmbedText(ctx, text)
		if err != nil {
			s.logger.Error("failed to embed query", "err", err)
			return q, nil, fmt.Errorf("%w: embedding: %w", ErrServiceUnavailable, err)
		}
		q.Vectors = []core.VectorQuery{{Vector: vector, Fields: s.embeddingField, K: s.vectorK}}
	}

	results, err := s.searcher.SearchWithMonitor(ctx, q, monitor)
	if err != nil {
		s.logger.Error("search failed", "err", err)
		return q, nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	return q, results, nil
}

func (s *settings) complete(ctx context.Context, messages []core.Message, opts ai.CompletionOptions) (*ai.Completion, error) {
	completion, err := s.chatModel.Complete(ctx, messages, opts)
	if err != nil {
		s.logger.Error("completion failed", "err", err)
		return nil, fmt.Errorf("%w: completion: %w", ErrServiceUnavailable, err)
	}
	return completion, nil
}

func (s *settings) modelProps() map[string]any {
	props := map[string]any{"model": s.model}
	if s.deployment != "" {
		props["deployment"] = s.deployment
	}
	return props
}

func searchProps(q search.Query) map[string]any {
	var filter any
	if !q.Filter.IsZero() {
		filter = q.Filter.String()
	}
	return map[string]any{
		"use_semantic_captions": q.UseSemanticCaptions,
		"use_semantic_ranker":   q.UseSemanticRanker,
		"use_text_search":       q.Text != "",
		"use_vector_search":     len(q.Vectors) > 0,
		"top":                   q.Top,
		"filter":                filter,
	}
}

func searchThoughts(title, query string, q search.Query, results []core.SearchResult) []core.ThoughtStep {
	if results == nil {
		results = []core.SearchResult{}
	}
	return []core.ThoughtStep{
		{Title: title, Description: query, Props: searchProps(q)},
		{Title: "Search results", Description: results},
	}
}

func promptThought(title string, messages []core.Message, props map[string]any) core.ThoughtStep {
	return core.ThoughtStep{Title: title, Description: messages, Props: props}
}
