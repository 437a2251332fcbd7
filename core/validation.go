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


package core

import (
	"fmt"
)

// ParseRole converts a raw role name into a Role.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if err := ValidateRole(role); err != nil {
		return "", err
	}
	return role, nil
}

// ValidateRole validates that a Role has a known value.
func ValidateRole(role Role) error {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRole, string(role))
	}
}

// ValidateMessage validates a Message according to domain rules.
//
// Validation rules:
//   - Role must be system, user or assistant
//
// Empty content is allowed; models may legitimately return it.
func ValidateMessage(msg Message) error {
	if err := ValidateRole(msg.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	return nil
}

// ValidatePassage validates a Passage before it is stored.
//
// Validation rules:
//   - Content must not be empty
//   - SourcePage must not be empty
//
// NOT validated:
//   - ID (derived from content when empty)
//   - Embedding (text-only passages are allowed)
func ValidatePassage(p *Passage) error {
	if p == nil {
		return fmt.Errorf("%w: passage is nil", ErrInvalidPassage)
	}
	if p.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPassage, ErrEmptyContent)
	}
	if p.SourcePage == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPassage, ErrEmptySourcePage)
	}
	return nil
}

// ValidateRetrievalOptions validates RetrievalOptions.
//
// Validation rules:
//   - Mode must be text, vectors or hybrid
//   - Top must be greater than 0
//   - MinimumSearchScore and MinimumRerankerScore must not be negative
//   - Temperature must be within [0, 2]
func ValidateRetrievalOptions(opts RetrievalOptions) error {
	switch opts.Mode {
	case RetrievalModeText, RetrievalModeVectors, RetrievalModeHybrid:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidRetrievalOptions, ErrInvalidRetrievalMode, string(opts.Mode))
	}
	if opts.Top <= 0 {
		return fmt.Errorf("%w: top must be greater than 0, got %d", ErrInvalidRetrievalOptions, opts.Top)
	}
	if opts.MinimumSearchScore < 0 {
		return fmt.Errorf("%w: minimum search score must not be negative", ErrInvalidRetrievalOptions)
	}
	if opts.MinimumRerankerScore < 0 {
		return fmt.Errorf("%w: minimum reranker score must not be negative", ErrInvalidRetrievalOptions)
	}
	if opts.Temperature < 0 || opts.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be between 0 and 2, got %v", ErrInvalidRetrievalOptions, opts.Temperature)
	}
	return nil
}
