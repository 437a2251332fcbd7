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
	"encoding/binary"
	"strconv"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored passages.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// String renders the ID as fixed-width lowercase hex.
func (id ID) String() string {
	s := strconv.FormatUint(uint64(id), 16)
	for len(s) < 16 {
		s = "0" + s
	}
	return s
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat message. Sequences of messages are in
// chronological order and are rebuilt rather than mutated.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// SystemMessage returns a message with the system role.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage returns a message with the user role.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage returns a message with the assistant role.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// String renders the message the way it appears in prompt thoughts.
func (m Message) String() string {
	return "{'role': '" + string(m.Role) + "', 'content': '" + m.Content + "'}"
}

// FewShotExample is a fixed sample exchange placed after the system prompt
// to steer the model's response style.
type FewShotExample struct {
	User      string `json:"user" yaml:"user"`
	Assistant string `json:"assistant" yaml:"assistant"`
}

// Caption is an extractive excerpt of a search result chosen by the
// semantic ranker.
type Caption struct {
	Text       string `json:"text"`
	Highlights string `json:"highlights,omitempty"`
}

// SearchResult is a single ranked hit returned by the search service.
// RerankerScore and Captions are nil when the semantic ranker did not run.
type SearchResult struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	SourcePage    string    `json:"sourcepage"`
	Category      string    `json:"category,omitempty"`
	Score         float64   `json:"score"`
	RerankerScore *float64  `json:"reranker_score,omitempty"`
	Captions      []Caption `json:"captions,omitempty"`
}

// VectorQuery asks the search service for the K nearest neighbours of
// Vector over the named vector Fields.
type VectorQuery struct {
	Vector []float32 `json:"-"`
	Fields string    `json:"fields"`
	K      int       `json:"k"`
}

// Passage is a stored document chunk that can be retrieved.
// A zero ID is replaced by a content hash when the passage is stored.
type Passage struct {
	ID         ID
	Content    string
	SourcePage string
	Category   string
	Embedding  []float32
}

// ThoughtStep records one diagnostic step of answering a request.
type ThoughtStep struct {
	Title       string         `json:"title"`
	Description any            `json:"description"`
	Props       map[string]any `json:"props,omitempty"`
}

// ModelAnswer is the raw text produced by the completion service.
type ModelAnswer struct {
	RawText string
}

// PromptBudget is the token ceiling for system prompt, few-shots, history
// and the current user turn.
type PromptBudget struct {
	MaxTokens int
}
