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


// Package config loads lectio application configuration from YAML.
//
// Configuration is read from a single file named by the --config flag or
// the LECTIO_CONFIG environment variable. Values not present in the file
// keep the defaults returned by Default. ${VAR} and ${VAR:-default}
// references in the index path and API key are expanded from the
// environment, so secrets need not live in the file.
//
// Example:
//
//	ai:
//	  api_type: azure
//	  api_version: "2024-02-01"
//	  api_key: ${AZURE_OPENAI_KEY}
//	  host: https://contoso.openai.azure.com
//	  chat_model: gpt-35-turbo
//	  chat_deployment: chat
//	  embedding_model: embedding
//	index:
//	  path: ${HOME}/.local/share/lectio/index
//	defaults:
//	  top: 5
//	  semantic_ranker: true
//	  prompt_template: ">>> Answer in the language of the question."
package config
