package approach

import "errors"

var (
	// ErrAIProviderRequired is returned when no AI provider is supplied.
	ErrAIProviderRequired = errors.New("AI provider is required")

	// ErrSearcherRequired is returned when no searcher is supplied.
	ErrSearcherRequired = errors.New("searcher is required")

	// ErrRunnerRequired is returned when RunBatch is called without a runner.
	ErrRunnerRequired = errors.New("runner is required")

	// ErrInvalidRequest indicates a request that failed validation.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrServiceUnavailable wraps failures of the search, embedding or
	// completion services.
	ErrServiceUnavailable = errors.New("service unavailable")
)
