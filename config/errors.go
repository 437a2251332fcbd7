package config

import "errors"

var (
	// ErrConfigNotSet is returned by Load when LECTIO_CONFIG is unset.
	ErrConfigNotSet = errors.New("LECTIO_CONFIG environment variable not set")

	// ErrInvalidConfig wraps validation failures.
	ErrInvalidConfig = errors.New("invalid config")
)
