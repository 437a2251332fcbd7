package tokens

import "errors"

var (
	// ErrUnknownModel is returned when a model has no known context window.
	ErrUnknownModel = errors.New("unknown model")
)
