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


// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// This package implements the ai.AIProvider interface using the langchaingo
// library to communicate with OpenAI, Azure OpenAI or OpenAI-compatible
// services (such as Ollama, LocalAI, or vLLM).
//
// # Usage
//
//	config := ai.DefaultConfig()
//	// Or customize:
//	config := ai.NewConfig(
//	    ai.WithAPIType(ai.APITypeAzure),
//	    ai.WithAPIVersion("2024-06-01"),
//	    ai.WithHost("https://example.openai.azure.com"),
//	    ai.WithChatModel("gpt-35-turbo"),
//	    ai.WithChatDeployment("chat"),
//	)
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	// Use the services
//	vector, err := provider.Embedder().EmbedText(ctx, "sample text")
//	completion, err := provider.ChatModel().Complete(ctx, messages, ai.CompletionOptions{
//	    Temperature: 0,
//	    MaxTokens:   100,
//	    Tools:       tools,
//	})
//
// Tool call arguments are passed through a lenient JSON repair step before
// they are returned, since smaller models often drop the opening quote of a key.
package openai
