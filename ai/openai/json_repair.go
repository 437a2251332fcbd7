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


package openai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	// `{search_query": ...` and `, top": ...`
	halfQuotedKey = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)":`)

	// `{search_query: ...}`
	bareKey = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// repairJSON fixes tool call arguments that small models commonly get
// wrong: markdown fences around the object and keys missing one or both
// quotes. Arguments that are already valid, or that cannot be repaired,
// are returned unchanged.
func repairJSON(s string) string {
	if json.Valid([]byte(s)) {
		return s
	}

	candidate := stripFence(strings.TrimSpace(s))
	if json.Valid([]byte(candidate)) {
		return candidate
	}

	candidate = halfQuotedKey.ReplaceAllString(candidate, `$1"$2":`)
	if json.Valid([]byte(candidate)) {
		return candidate
	}

	candidate = bareKey.ReplaceAllString(candidate, `$1"$2":`)
	if json.Valid([]byte(candidate)) {
		return candidate
	}
	return s
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	body := strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	body = strings.TrimPrefix(body, "json")
	return strings.TrimSpace(body)
}
