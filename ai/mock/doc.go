// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.ChatModel,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	embeddings, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockChat := mock.NewMockChatModel()
//	mockChat.CompleteFunc = func(ctx context.Context, msgs []core.Message, opts ai.CompletionOptions) (*ai.Completion, error) {
//	    return mock.ToolCallCompletion("search_sources", `{"search_query":"health plans"}`), nil
//	}
//
//	// Inspect what the model was sent
//	calls := mockChat.Calls()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockChatModel: Answers "Mock answer for: <last user message>"
//   - MockProvider: Aggregates mock embedder and chat model
//
// Both mocks are safe for concurrent use.
package mock
