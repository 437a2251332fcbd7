package approach

import (
	"fmt"
	"strings"

	"github.com/poiesic/lectio/core"
)

// Request is one question with its conversation.
// The last message is the question being asked and must come from the user.
type Request struct {
	Messages     []core.Message `json:"messages" yaml:"messages"`
	Overrides    map[string]any `json:"overrides,omitempty" yaml:"overrides,omitempty"`
	SessionState any            `json:"session_state,omitempty" yaml:"session_state,omitempty"`
}

// Validate checks the request shape. It does not look at Overrides;
// those are checked when they are applied to the defaults.
func (r Request) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("%w: no messages", ErrInvalidRequest)
	}
	for i, msg := range r.Messages {
		if err := core.ValidateMessage(msg); err != nil {
			return fmt.Errorf("%w: message %d: %w", ErrInvalidRequest, i, err)
		}
	}
	last := r.Messages[len(r.Messages)-1]
	if last.Role != core.RoleUser {
		return fmt.Errorf("%w: last message must come from the user, got %q", ErrInvalidRequest, last.Role)
	}
	if strings.TrimSpace(last.Content) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, core.ErrEmptyContent)
	}
	return nil
}

// question returns the content of the last message.
func (r Request) question() string {
	return r.Messages[len(r.Messages)-1].Content
}

// history returns the conversation before the question.
func (r Request) history() []core.Message {
	return r.Messages[:len(r.Messages)-1]
}

// DataPoints holds the source snippets the answer was grounded on.
type DataPoints struct {
	Text []string `json:"text"`
}

// Response is the answer to a Request.
type Response struct {
	Answer            string             `json:"answer"`
	FollowupQuestions []string           `json:"followup_questions"`
	DataPoints        DataPoints         `json:"data_points"`
	Thoughts          []core.ThoughtStep `json:"thoughts"`
	SessionState      any                `json:"session_state"`
}
