package approach

import (
	"encoding/json"
	"strings"

	"github.com/poiesic/lectio/ai"
)

// SearchSourcesToolName is the tool the model calls with its search query.
const SearchSourcesToolName = "search_sources"

// noQuery is what the query prompt asks the model to return when it cannot
// produce a search query.
const noQuery = "0"

// SearchSourcesTool is sent with the query generation completion.
var SearchSourcesTool = ai.Tool{
	Name:        SearchSourcesToolName,
	Description: "Retrieve sources from the search index",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"search_query": map[string]any{
				"type":        "string",
				"description": "Query string to retrieve documents from the search index, e.g. 'What is the payment method?'",
			},
		},
		"required": []string{"search_query"},
	},
}

type searchSourcesArguments struct {
	SearchQuery string `json:"search_query"`
}

// DeriveQuery extracts the search query from the model's search_sources
// tool call on the first choice. It returns fallback when the completion
// has no such call, when the arguments cannot be parsed, or when the query
// is empty or "0". It never fails.
func DeriveQuery(completion *ai.Completion, fallback string) string {
	if completion == nil || len(completion.Choices) == 0 {
		return fallback
	}
	for _, call := range completion.Choices[0].ToolCalls {
		if call.Name != SearchSourcesToolName {
			continue
		}
		query, ok := parseSearchQuery(call.Arguments)
		if ok {
			return query
		}
	}
	return fallback
}

func parseSearchQuery(arguments string) (string, bool) {
	var args searchSourcesArguments
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", false
	}
	query := strings.TrimSpace(args.SearchQuery)
	if query == "" || query == noQuery {
		return "", false
	}
	return query, true
}
