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


package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/lectio/core"
)

// Query is a single retrieval with its score thresholds.
type Query struct {
	Top int
	// Text is the full text query; empty means none.
	Text                 string
	Filter               Filter
	Vectors              []core.VectorQuery
	UseSemanticRanker    bool
	UseSemanticCaptions  bool
	MinimumSearchScore   float64
	MinimumRerankerScore float64
}

// Searcher retrieves results from a Client and filters them by score.
type Searcher struct {
	client   Client
	language string
	speller  string
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithQueryLanguage sets the language sent with semantic queries.
// Default is "en-us".
func WithQueryLanguage(language string) Option {
	return func(s *Searcher) error {
		s.language = language
		return nil
	}
}

// WithQuerySpeller sets the speller sent with semantic queries.
// Default is "lexicon".
func WithQuerySpeller(speller string) Option {
	return func(s *Searcher) error {
		s.speller = speller
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(client Client, opts ...Option) (*Searcher, error) {
	if client == nil {
		return nil, ErrClientRequired
	}

	s := &Searcher{
		client:   client,
		language: "en-us",
		speller:  "lexicon",
		logger:   slog.Default().With("component", "searcher"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search retrieves and filters results for q.
func (s *Searcher) Search(ctx context.Context, q Query) ([]core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, q, nil)
}

// SearchWithMonitor retrieves and filters results for q with monitoring.
// The returned results are the client's results, in the client's order,
// minus those rejected by the score thresholds.
func (s *Searcher) SearchWithMonitor(ctx context.Context, q Query, monitor SearchMonitor) ([]core.SearchResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if q.Top <= 0 {
		return nil, fmt.Errorf("%w: top must be greater than 0", ErrInvalidQuery)
	}

	monitor.Start(q)

	seq, err := s.client.Search(ctx, s.request(q))
	if err != nil {
		s.logger.Error("search request failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrSearchUnavailable, err)
	}

	retrieved := 0
	results := make([]core.SearchResult, 0, q.Top)
	for result, err := range seq {
		if err != nil {
			s.logger.Error("reading search results failed", "retrieved", retrieved, "err", err)
			return nil, fmt.Errorf("%w: %w", ErrSearchUnavailable, err)
		}
		retrieved++
		if Accept(result, q.MinimumSearchScore, q.MinimumRerankerScore) {
			results = append(results, result)
		} else {
			monitor.Rejected(result)
		}
	}
	monitor.AfterRetrieval(retrieved)

	s.logger.Debug("search finished", "retrieved", retrieved, "kept", len(results))
	monitor.Finish(results)

	return results, nil
}

// request builds the client call. The semantic ranker only runs with a text
// query and captions only with the ranker.
func (s *Searcher) request(q Query) *Request {
	req := &Request{
		Filter:  q.Filter,
		Vectors: q.Vectors,
		Top:     q.Top,
	}
	if q.Text != "" {
		text := q.Text
		req.Text = &text
		if q.UseSemanticRanker {
			req.UseSemanticRanker = true
			req.UseSemanticCaptions = q.UseSemanticCaptions
			req.Language = s.language
			req.Speller = s.speller
		}
	}
	return req
}

// Accept reports whether a result clears both thresholds. A missing
// reranker score is judged on the search score alone.
func Accept(result core.SearchResult, minimumSearchScore, minimumRerankerScore float64) bool {
	if result.Score < minimumSearchScore {
		return false
	}
	return result.RerankerScore == nil || *result.RerankerScore >= minimumRerankerScore
}

// FilterResults returns the results that Accept keeps, in order.
func FilterResults(results []core.SearchResult, minimumSearchScore, minimumRerankerScore float64) []core.SearchResult {
	kept := make([]core.SearchResult, 0, len(results))
	for _, result := range results {
		if Accept(result, minimumSearchScore, minimumRerankerScore) {
			kept = append(kept, result)
		}
	}
	return kept
}

// SourcesContent renders results as "sourcepage: text" lines. With
// useCaptions set, results that carry captions use their caption texts
// joined by spaces with citation markers removed. Line breaks are flattened.
func SourcesContent(results []core.SearchResult, useCaptions bool) []string {
	sources := make([]string, 0, len(results))
	for _, result := range results {
		text := result.Content
		if useCaptions && len(result.Captions) > 0 {
			texts := make([]string, 0, len(result.Captions))
			for _, caption := range result.Captions {
				texts = append(texts, strings.Join(strings.Fields(stripCitations(caption.Text)), " "))
			}
			text = strings.Join(texts, " ")
		}
		sources = append(sources, result.SourcePage+": "+noNewlines(text))
	}
	return sources
}
