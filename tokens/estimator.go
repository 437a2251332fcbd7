package tokens

import (
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/poiesic/lectio/core"
)

// TokensPerMessage is the fixed overhead charged for every chat message.
const TokensPerMessage = 3

const fallbackEncoding = "cl100k_base"

// modelAliases maps Azure deployment model names to tiktoken model names.
var modelAliases = map[string]string{
	"gpt-35-turbo":     "gpt-3.5-turbo",
	"gpt-35-turbo-16k": "gpt-3.5-turbo-16k",
	"gpt-4v":           "gpt-4",
	"gpt-4-32k":        "gpt-4",
}

// encoder counts the tokens in a string.
type encoder func(text string) int

// Estimator counts tokens for chat messages. It is safe for concurrent use.
// Encodings are resolved lazily and cached per model.
type Estimator struct {
	mu       sync.Mutex
	encoders map[string]encoder
	logger   *slog.Logger
}

// NewEstimator creates an estimator with an empty encoding cache.
func NewEstimator() *Estimator {
	return &Estimator{
		encoders: make(map[string]encoder),
		logger:   slog.Default().With("component", "token-estimator"),
	}
}

// Estimate returns the token count of an ordered message sequence.
// Adding a message never lowers the estimate.
func (e *Estimator) Estimate(messages []core.Message, modelID string) int {
	encode := e.encoderFor(modelID)
	total := 0
	for _, msg := range messages {
		total += countMessage(encode, msg)
	}
	return total
}

// CountMessage returns the token count of a single message.
func (e *Estimator) CountMessage(msg core.Message, modelID string) int {
	return countMessage(e.encoderFor(modelID), msg)
}

// CountText returns the token count of bare text.
func (e *Estimator) CountText(text, modelID string) int {
	return e.encoderFor(modelID)(text)
}

func countMessage(encode encoder, msg core.Message) int {
	return TokensPerMessage + encode(string(msg.Role)) + encode(msg.Content)
}

func (e *Estimator) encoderFor(modelID string) encoder {
	e.mu.Lock()
	defer e.mu.Unlock()

	if enc, ok := e.encoders[modelID]; ok {
		return enc
	}
	enc := e.loadEncoder(modelID)
	e.encoders[modelID] = enc
	return enc
}

func (e *Estimator) loadEncoder(modelID string) encoder {
	name := modelID
	if alias, ok := modelAliases[modelID]; ok {
		name = alias
	}

	tk, err := tiktoken.EncodingForModel(name)
	if err != nil {
		e.logger.Debug("no model specific encoding, using fallback", "model", modelID, "encoding", fallbackEncoding)
		tk, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		e.logger.Warn("token encoding unavailable, approximating", "model", modelID, "err", err)
		return ApproximateTokens
	}
	return func(text string) int {
		if text == "" {
			return 0
		}
		return len(tk.Encode(text, nil, nil))
	}
}

// ApproximateTokens estimates tokens as one per four runes, rounded up.
func ApproximateTokens(text string) int {
	n := 0
	for range text {
		n++
	}
	return (n + 3) / 4
}
