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


// Package approach answers questions over the passage index.
//
// Two orchestrations are provided:
//
//   - Ask: retrieve-then-read. The last user message is the search query;
//     the retrieved sources and a fixed sample exchange are sent to the
//     model in one prompt.
//   - Chat: chat-read-retrieve-read. The model first turns the conversation
//     into a search query through the search_sources tool, then answers
//     using the sources and as much history as fits the token budget.
//
// Both implement Runner, so RunBatch can answer many requests concurrently
// on a worker pool.
//
// # Usage
//
//	chat, err := approach.NewChat(provider, searcher,
//	    approach.WithChatModel("gpt-35-turbo"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := chat.Run(ctx, approach.Request{
//	    Messages:  []core.Message{core.UserMessage("What is the payment method?")},
//	    Overrides: map[string]any{"suggest_followup_questions": true},
//	})
//
// Service failures from the search, embedding or completion collaborators
// are returned wrapped in ErrServiceUnavailable. Malformed requests are
// returned wrapped in ErrInvalidRequest. Nothing is retried here; retries
// belong to the ai/openai transport.
package approach
