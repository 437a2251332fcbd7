package openai

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/lectio/ai"
	"github.com/poiesic/lectio/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChatModel implements ai.ChatModel using OpenAI-compatible chat completion APIs.
type ChatModel struct {
	llm        llms.Model
	model      string
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// newChatModel is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newChatModel(config *ai.Config) (*ChatModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	opts := append(clientOptions(config, config.ChatHost), openai.WithModel(config.DeploymentOrModel()))
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}

	return newChatModelWith(llm, config), nil
}

func newChatModelWith(llm llms.Model, config *ai.Config) *ChatModel {
	return &ChatModel{
		llm:        llm,
		model:      config.DeploymentOrModel(),
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
		logger:     slog.Default().With("component", "openai-chat"),
	}
}

// NewChatModel creates a new chat model using the provided configuration.
//
// Returns ai.ChatModel interface to enforce abstraction.
func NewChatModel(config *ai.Config) (ai.ChatModel, error) {
	return newChatModel(config)
}

// Complete sends messages to the chat completion service.
// Failing calls are retried with exponential backoff.
func (c *ChatModel) Complete(ctx context.Context, messages []core.Message, opts ai.CompletionOptions) (*ai.Completion, error) {
	model := c.model
	if opts.Model != "" {
		model = opts.Model
	}
	c.logger.Debug("requesting chat completion", "model", model, "messages", len(messages), "tools", len(opts.Tools))

	content := toMessageContent(messages)
	callOpts := toCallOptions(model, opts)

	var resp *llms.ContentResponse
	err := ai.RetryWithBackoff(ctx, func() error {
		var err error
		resp, err = c.llm.GenerateContent(ctx, content, callOpts...)
		return err
	}, c.maxRetries, c.retryDelay)
	if err != nil {
		c.logger.Error("chat completion failed", "model", model, "err", err)
		return nil, err
	}

	if resp == nil || len(resp.Choices) == 0 {
		return nil, ai.ErrNoChoices
	}

	return toCompletion(model, resp), nil
}

func toMessageContent(messages []core.Message) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		var role llms.ChatMessageType
		switch msg.Role {
		case core.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case core.RoleAssistant:
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeHuman
		}
		content = append(content, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}
	return content
}

func toCallOptions(model string, opts ai.CompletionOptions) []llms.CallOption {
	callOpts := []llms.CallOption{
		llms.WithModel(model),
		llms.WithTemperature(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}
	if opts.N > 0 {
		callOpts = append(callOpts, llms.WithN(opts.N))
	}
	if len(opts.Tools) > 0 {
		tools := make([]llms.Tool, 0, len(opts.Tools))
		for _, tool := range opts.Tools {
			tools = append(tools, llms.Tool{
				Type: "function",
				Function: &llms.FunctionDefinition{
					Name:        tool.Name,
					Description: tool.Description,
					Parameters:  tool.Parameters,
				},
			})
		}
		callOpts = append(callOpts, llms.WithTools(tools))
	}
	return callOpts
}

func toCompletion(model string, resp *llms.ContentResponse) *ai.Completion {
	completion := &ai.Completion{
		Model:   model,
		Choices: make([]ai.Choice, 0, len(resp.Choices)),
	}
	usageSet := false
	for _, choice := range resp.Choices {
		if choice == nil {
			continue
		}
		converted := ai.Choice{
			Content:      choice.Content,
			FinishReason: choice.StopReason,
		}
		for _, call := range choice.ToolCalls {
			if call.FunctionCall == nil {
				continue
			}
			converted.ToolCalls = append(converted.ToolCalls, ai.ToolCall{
				ID:        call.ID,
				Name:      call.FunctionCall.Name,
				Arguments: repairJSON(call.FunctionCall.Arguments),
			})
		}
		// Older servers answer with the legacy function_call field
		if len(converted.ToolCalls) == 0 && choice.FuncCall != nil {
			converted.ToolCalls = append(converted.ToolCalls, ai.ToolCall{
				Name:      choice.FuncCall.Name,
				Arguments: repairJSON(choice.FuncCall.Arguments),
			})
		}
		completion.Choices = append(completion.Choices, converted)
		// Usage covers the whole response; servers report it on the first choice
		if !usageSet {
			completion.Usage = usageFrom(choice.GenerationInfo)
			usageSet = true
		}
	}
	return completion
}

func usageFrom(info map[string]any) ai.Usage {
	return ai.Usage{
		PromptTokens:     intFrom(info, "PromptTokens"),
		CompletionTokens: intFrom(info, "CompletionTokens"),
		TotalTokens:      intFrom(info, "TotalTokens"),
	}
}

func intFrom(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
