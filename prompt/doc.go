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


// Package prompt assembles the message sequences sent to the chat model.
//
// BuildMessages turns a system prompt, optional few-shot examples, the
// conversation history and the current user turn into an ordered message
// list that fits a token budget. History is kept newest first and dropped in
// whole turns, so a user question is never separated from its answer.
//
// The package also carries the default prompt templates used by the ask and
// chat approaches, and SystemPrompt, which applies per-request overrides to
// them.
package prompt
