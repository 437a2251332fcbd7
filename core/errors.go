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

import "errors"

// Domain validation errors
var (
	// ErrInvalidMessage indicates a Message failed validation.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrInvalidRole indicates a role outside system, user and assistant.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidPassage indicates a Passage failed validation.
	ErrInvalidPassage = errors.New("invalid passage")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptySourcePage indicates a passage without a source page label.
	ErrEmptySourcePage = errors.New("source page cannot be empty")

	// ErrInvalidRetrievalOptions indicates RetrievalOptions failed validation.
	ErrInvalidRetrievalOptions = errors.New("invalid retrieval options")

	// ErrInvalidRetrievalMode indicates an unknown retrieval mode.
	ErrInvalidRetrievalMode = errors.New("invalid retrieval mode")
)
