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


// Package tokens estimates model token counts for chat messages and
// reports per-model context windows.
//
// Counting uses the tiktoken BPE tables. Azure deployment names such as
// "gpt-35-turbo" are mapped to their OpenAI equivalents, and unknown models
// share the cl100k_base encoding. When a table cannot be loaded (for example
// when the host has no network access and no cache), counting degrades to a
// rune-length approximation so callers always get a usable estimate.
package tokens
