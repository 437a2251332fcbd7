package search

import (
	"context"
	"iter"
	"strings"

	"github.com/poiesic/lectio/core"
)

// Client is the search collaborator. It returns a lazily produced, finite
// sequence of results ranked by its own ordering. The sequence may be
// consumed once.
type Client interface {
	Search(ctx context.Context, req *Request) (iter.Seq2[core.SearchResult, error], error)
}

// Request is a single call to a Client.
type Request struct {
	// Text is the full text query; nil searches vectors only.
	Text                *string
	Filter              Filter
	Vectors             []core.VectorQuery
	Top                 int
	UseSemanticRanker   bool
	UseSemanticCaptions bool
	Language            string
	Speller             string
}

// Filter restricts which passages may be returned.
type Filter struct {
	ExcludeCategory string
}

// IsZero reports whether the filter restricts nothing.
func (f Filter) IsZero() bool {
	return f.ExcludeCategory == ""
}

// String renders the filter as an OData expression, or "" when empty.
func (f Filter) String() string {
	if f.ExcludeCategory == "" {
		return ""
	}
	return "category ne '" + strings.ReplaceAll(f.ExcludeCategory, "'", "''") + "'"
}

// Allows reports whether a passage in category passes the filter.
func (f Filter) Allows(category string) bool {
	return f.ExcludeCategory == "" || category != f.ExcludeCategory
}
