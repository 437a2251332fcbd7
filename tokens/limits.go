package tokens

import "fmt"

// DefaultTokenLimit is the context window assumed for unknown models.
const DefaultTokenLimit = 4000

var tokenLimits = map[string]int{
	"gpt-35-turbo":      4000,
	"gpt-3.5-turbo":     4000,
	"gpt-35-turbo-16k":  16000,
	"gpt-3.5-turbo-16k": 16000,
	"gpt-4":             8100,
	"gpt-4-32k":         32000,
	"gpt-4v":            128000,
	"gpt-4o":            128000,
	"gpt-4o-mini":       128000,
}

// TokenLimit returns the context window of a model.
func TokenLimit(modelID string) (int, error) {
	limit, ok := tokenLimits[modelID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownModel, modelID)
	}
	return limit, nil
}

// TokenLimitOrDefault returns the context window of a model, or
// DefaultTokenLimit when the model is unknown.
func TokenLimitOrDefault(modelID string) int {
	limit, err := TokenLimit(modelID)
	if err != nil {
		return DefaultTokenLimit
	}
	return limit
}
