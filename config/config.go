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


package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/poiesic/lectio/ai"
	"github.com/poiesic/lectio/core"
	"gopkg.in/yaml.v3"
)

// EnvConfig names the environment variable read by Load.
const EnvConfig = "LECTIO_CONFIG"

// Config is the application configuration.
type Config struct {
	// AI configures the embedding and chat services.
	AI AIConfig `yaml:"ai"`

	// Index configures the passage index.
	Index IndexConfig `yaml:"index"`

	// Search configures requests to the search collaborator.
	Search SearchConfig `yaml:"search"`

	// Defaults are request overrides applied to the built-in retrieval
	// defaults. Keys are the same as per-request overrides.
	Defaults map[string]any `yaml:"defaults,omitempty"`

	// Prompts replaces the built-in prompt templates and few-shot examples.
	Prompts PromptsConfig `yaml:"prompts"`

	// Batch configures the batch runner.
	Batch BatchConfig `yaml:"batch"`
}

// AIConfig configures the OpenAI-compatible services.
type AIConfig struct {
	// APIType is "openai" or "azure".
	APIType    string `yaml:"api_type"`
	APIVersion string `yaml:"api_version"`
	APIKey     string `yaml:"api_key"`

	// Host sets both service hosts. EmbeddingHost and ChatHost take
	// precedence when set.
	Host          string `yaml:"host"`
	EmbeddingHost string `yaml:"embedding_host"`
	ChatHost      string `yaml:"chat_host"`

	EmbeddingModel      string `yaml:"embedding_model"`
	EmbeddingDimensions int    `yaml:"embedding_dimensions"`
	ChatModel           string `yaml:"chat_model"`
	ChatDeployment      string `yaml:"chat_deployment"`

	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// IndexConfig configures the passage index.
type IndexConfig struct {
	// Path is the badger directory holding the passages.
	Path string `yaml:"path"`

	// EmbeddingField is the vector field named in vector queries.
	// Default: embedding
	EmbeddingField string `yaml:"embedding_field"`

	// VectorK is the number of neighbours per vector query.
	// Default: 50
	VectorK int `yaml:"vector_k"`
}

// SearchConfig configures search requests.
type SearchConfig struct {
	// QueryLanguage is sent with text queries. Default: en-us
	QueryLanguage string `yaml:"query_language"`

	// QuerySpeller is sent with text queries. Default: lexicon
	QuerySpeller string `yaml:"query_speller"`
}

// PromptsConfig replaces built-in prompts. Empty values keep the built-ins.
type PromptsConfig struct {
	AskSystem     string                `yaml:"ask_system"`
	ChatSystem    string                `yaml:"chat_system"`
	Query         string                `yaml:"query"`
	AskFewShots   []core.FewShotExample `yaml:"ask_few_shots,omitempty"`
	QueryFewShots []core.FewShotExample `yaml:"query_few_shots,omitempty"`
}

// BatchConfig configures the batch runner.
type BatchConfig struct {
	// PoolSize is the number of requests answered concurrently. Default: 4
	PoolSize int `yaml:"pool_size"`
}

// Default returns the configuration used as the base for every file.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		AI: AIConfig{
			APIType:        aiDefaults.APIType,
			APIKey:         aiDefaults.APIKey,
			Host:           aiDefaults.ChatHost,
			EmbeddingModel: aiDefaults.EmbeddingModel,
			ChatModel:      aiDefaults.ChatModel,
			MaxRetries:     aiDefaults.MaxRetries,
			RetryDelay:     aiDefaults.RetryDelay,
		},
		Index: IndexConfig{
			Path:           "${HOME}/.lectio/index",
			EmbeddingField: "embedding",
			VectorK:        50,
		},
		Search: SearchConfig{
			QueryLanguage: "en-us",
			QuerySpeller:  "lexicon",
		},
		Batch: BatchConfig{
			PoolSize: 4,
		},
	}
}

// Load loads configuration from the file named by LECTIO_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvConfig)
	if path == "" {
		return nil, fmt.Errorf("%w; set it to the path of your lectio.yaml or use --config", ErrConfigNotSet)
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path on top of Default and validates it.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML configuration on top of Default and validates it.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) expandVariables() {
	c.Index.Path = expandVars(c.Index.Path)
	c.AI.APIKey = expandVars(c.AI.APIKey)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} from the environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.AIConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Index.Path == "" {
		errs = append(errs, errors.New("index.path is required"))
	}
	if c.Index.EmbeddingField == "" {
		errs = append(errs, errors.New("index.embedding_field is required"))
	}
	if c.Index.VectorK < 1 {
		errs = append(errs, fmt.Errorf("index.vector_k must be positive, got %d", c.Index.VectorK))
	}
	if c.Batch.PoolSize < 1 {
		errs = append(errs, fmt.Errorf("batch.pool_size must be positive, got %d", c.Batch.PoolSize))
	}
	if _, err := c.RetrievalDefaults(); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// AIConfig returns the service configuration for ai/openai.
func (c *Config) AIConfig() *ai.Config {
	embeddingHost, chatHost := c.AI.Host, c.AI.Host
	if c.AI.EmbeddingHost != "" {
		embeddingHost = c.AI.EmbeddingHost
	}
	if c.AI.ChatHost != "" {
		chatHost = c.AI.ChatHost
	}
	return ai.NewConfig(
		ai.WithAPIType(c.AI.APIType),
		ai.WithAPIVersion(c.AI.APIVersion),
		ai.WithAPIKey(c.AI.APIKey),
		ai.WithEmbeddingHost(embeddingHost),
		ai.WithChatHost(chatHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithEmbeddingDimensions(c.AI.EmbeddingDimensions),
		ai.WithChatModel(c.AI.ChatModel),
		ai.WithChatDeployment(c.AI.ChatDeployment),
		ai.WithRetries(c.AI.MaxRetries, c.AI.RetryDelay),
	)
}

// RetrievalDefaults returns the built-in retrieval defaults with the
// configured defaults applied.
func (c *Config) RetrievalDefaults() (core.RetrievalOptions, error) {
	return core.ParseOverrides(core.DefaultRetrievalOptions(), c.Defaults)
}
