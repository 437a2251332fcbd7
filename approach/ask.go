package approach

import (
	"context"
	"strings"

	"github.com/poiesic/lectio/ai"
	"github.com/poiesic/lectio/prompt"
	"github.com/poiesic/lectio/search"
)

// Ask answers a single question by searching for it and reading the
// results. Earlier messages in the request are ignored.
type Ask struct {
	*settings
}

// NewAsk creates a retrieve-then-read approach.
func NewAsk(provider ai.AIProvider, searcher *search.Searcher, opts ...Option) (*Ask, error) {
	s, err := newSettings(provider, searcher, prompt.AskSystemTemplate, prompt.AskFewShots, "ask", opts)
	if err != nil {
		return nil, err
	}
	return &Ask{settings: s}, nil
}

// Run answers the last user message of req.
func (a *Ask) Run(ctx context.Context, req Request) (*Response, error) {
	opts, err := a.prepare(req)
	if err != nil {
		return nil, err
	}
	question := req.question()
	a.logger.Debug("answering question", "length", len(question), "mode", opts.Mode)

	query, results, err := a.retrieve(ctx, question, opts, nil)
	if err != nil {
		return nil, err
	}
	sources := search.SourcesContent(results, query.UseSemanticCaptions)

	userContent := question + "\nSources:\n" + strings.Join(sources, "\n")
	systemPrompt := prompt.SystemPrompt(a.systemTemplate, opts.PromptTemplate, "")
	messages := prompt.BuildMessages(a.counter, systemPrompt, a.model, nil, userContent,
		a.tokenLimit-ResponseTokenLimit, a.fewShots)

	completion, err := a.complete(ctx, messages, ai.CompletionOptions{
		Temperature: opts.Temperature,
		MaxTokens:   ResponseTokenLimit,
		N:           1,
	})
	if err != nil {
		return nil, err
	}

	thoughts := searchThoughts("Search using user query", question, query, results)
	thoughts = append(thoughts, promptThought("Prompt to generate answer", messages, a.modelProps()))

	return &Response{
		Answer:            completion.FirstContent(),
		FollowupQuestions: []string{},
		DataPoints:        DataPoints{Text: sources},
		Thoughts:          thoughts,
		SessionState:      req.SessionState,
	}, nil
}
