package approach

import (
	"context"
	"strings"

	"github.com/poiesic/lectio/ai"
	"github.com/poiesic/lectio/core"
	"github.com/poiesic/lectio/prompt"
	"github.com/poiesic/lectio/search"
)

// Chat answers the latest question of a conversation. The model first
// derives a search query from the conversation, then answers from the
// retrieved sources with as much history as fits.
type Chat struct {
	*settings
}

// NewChat creates a chat-read-retrieve-read approach.
func NewChat(provider ai.AIProvider, searcher *search.Searcher, opts ...Option) (*Chat, error) {
	s, err := newSettings(provider, searcher, prompt.ChatSystemTemplate, prompt.QueryFewShots, "chat", opts)
	if err != nil {
		return nil, err
	}
	return &Chat{settings: s}, nil
}

// Run answers the last user message of req in the context of the messages
// before it.
func (c *Chat) Run(ctx context.Context, req Request) (*Response, error) {
	opts, err := c.prepare(req)
	if err != nil {
		return nil, err
	}
	question := req.question()
	history := req.history()
	c.logger.Debug("answering chat turn", "history", len(history), "mode", opts.Mode)

	// Step 1: derive a search query from the conversation.
	queryMessages := prompt.BuildMessages(c.counter, c.queryTemplate, c.model, history,
		"Generate search query for: "+question, c.tokenLimit-len(question), c.fewShots)
	queryCompletion, err := c.complete(ctx, queryMessages, ai.CompletionOptions{
		Temperature: 0,
		MaxTokens:   QueryResponseTokenLimit,
		N:           1,
		Tools:       []ai.Tool{SearchSourcesTool},
	})
	if err != nil {
		return nil, err
	}
	queryText := DeriveQuery(queryCompletion, question)
	c.logger.Debug("derived search query", "query", queryText)

	// Step 2: retrieve sources for the query.
	query, results, err := c.retrieve(ctx, queryText, opts, nil)
	if err != nil {
		return nil, err
	}
	sources := search.SourcesContent(results, query.UseSemanticCaptions)

	// Step 3: answer from the sources and the conversation.
	followupPrompt := ""
	if opts.SuggestFollowupQuestions {
		followupPrompt = prompt.FollowupQuestionsPrompt
	}
	systemPrompt := prompt.SystemPrompt(c.systemTemplate, opts.PromptTemplate, followupPrompt)
	userContent := question + "\n\nSources:\n" + strings.Join(sources, "\n")
	messages := prompt.BuildMessages(c.counter, systemPrompt, c.model, history, userContent,
		c.tokenLimit-ResponseTokenLimit, nil)

	completion, err := c.complete(ctx, messages, ai.CompletionOptions{
		Temperature: opts.Temperature,
		MaxTokens:   ResponseTokenLimit,
		N:           1,
	})
	if err != nil {
		return nil, err
	}

	answer := completion.FirstContent()
	followups := []string{}
	if opts.SuggestFollowupQuestions {
		answer, followups = ExtractFollowups(answer)
	}

	thoughts := []core.ThoughtStep{promptThought("Prompt to generate search query", queryMessages, c.modelProps())}
	thoughts = append(thoughts, searchThoughts("Search using generated search query", queryText, query, results)...)
	thoughts = append(thoughts, promptThought("Prompt to generate answer", messages, c.modelProps()))

	return &Response{
		Answer:            answer,
		FollowupQuestions: followups,
		DataPoints:        DataPoints{Text: sources},
		Thoughts:          thoughts,
		SessionState:      req.SessionState,
	}, nil
}
