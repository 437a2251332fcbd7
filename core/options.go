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
	"math"
	"sort"
)

// RetrievalMode selects which query kinds are sent to the search service.
type RetrievalMode string

const (
	RetrievalModeText    RetrievalMode = "text"
	RetrievalModeVectors RetrievalMode = "vectors"
	RetrievalModeHybrid  RetrievalMode = "hybrid"
)

// HasText reports whether the mode issues a full-text query.
func (m RetrievalMode) HasText() bool {
	return m == RetrievalModeText || m == RetrievalModeHybrid
}

// HasVectors reports whether the mode issues vector queries.
func (m RetrievalMode) HasVectors() bool {
	return m == RetrievalModeVectors || m == RetrievalModeHybrid
}

// RetrievalOptions holds the per-request settings for retrieval and answer
// generation. A value is built once per request and never shared.
type RetrievalOptions struct {
	Mode                     RetrievalMode
	Top                      int
	MinimumSearchScore       float64
	MinimumRerankerScore     float64
	UseSemanticRanker        bool
	UseSemanticCaptions      bool
	ExcludeCategory          string
	Temperature              float64
	PromptTemplate           string
	SuggestFollowupQuestions bool
}

// DefaultRetrievalOptions returns the options used when a request carries
// no overrides.
func DefaultRetrievalOptions() RetrievalOptions {
	return RetrievalOptions{
		Mode:                 RetrievalModeHybrid,
		Top:                  3,
		MinimumSearchScore:   0.030,
		MinimumRerankerScore: 3.0,
		Temperature:          0.3,
	}
}

// Override keys accepted by ParseOverrides.
const (
	OverrideRetrievalMode            = "retrieval_mode"
	OverrideTop                      = "top"
	OverrideMinimumSearchScore       = "minimum_search_score"
	OverrideMinimumRerankerScore     = "minimum_reranker_score"
	OverrideSemanticRanker           = "semantic_ranker"
	OverrideSemanticCaptions         = "semantic_captions"
	OverrideExcludeCategory          = "exclude_category"
	OverrideTemperature              = "temperature"
	OverridePromptTemplate           = "prompt_template"
	OverrideSuggestFollowupQuestions = "suggest_followup_questions"
)

// ParseOverrides applies loosely typed request overrides (as decoded from
// JSON or YAML) on top of base and validates the result. Unknown keys and
// values of the wrong shape are rejected.
func ParseOverrides(base RetrievalOptions, overrides map[string]any) (RetrievalOptions, error) {
	opts := base

	// Deterministic order keeps error messages stable.
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := overrides[key]
		if value == nil {
			continue
		}
		var err error
		switch key {
		case OverrideRetrievalMode:
			var s string
			s, err = asString(value)
			opts.Mode = RetrievalMode(s)
		case OverrideTop:
			opts.Top, err = asInt(value)
		case OverrideMinimumSearchScore:
			opts.MinimumSearchScore, err = asFloat(value)
		case OverrideMinimumRerankerScore:
			opts.MinimumRerankerScore, err = asFloat(value)
		case OverrideSemanticRanker:
			opts.UseSemanticRanker, err = asBool(value)
		case OverrideSemanticCaptions:
			opts.UseSemanticCaptions, err = asBool(value)
		case OverrideExcludeCategory:
			opts.ExcludeCategory, err = asString(value)
		case OverrideTemperature:
			opts.Temperature, err = asFloat(value)
		case OverridePromptTemplate:
			opts.PromptTemplate, err = asString(value)
		case OverrideSuggestFollowupQuestions:
			opts.SuggestFollowupQuestions, err = asBool(value)
		default:
			return RetrievalOptions{}, fmt.Errorf("%w: unknown override %q", ErrInvalidRetrievalOptions, key)
		}
		if err != nil {
			return RetrievalOptions{}, fmt.Errorf("%w: %s: %w", ErrInvalidRetrievalOptions, key, err)
		}
	}

	if err := ValidateRetrievalOptions(opts); err != nil {
		return RetrievalOptions{}, err
	}
	return opts, nil
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected bool, got %T", v)
	}
	return b, nil
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected integer, got %v", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}
