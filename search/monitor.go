package search

import (
	"github.com/poiesic/lectio/core"
)

// SearchMonitor receives callbacks at each stage of a search.
type SearchMonitor interface {
	Start(query Query)
	AfterRetrieval(count int)
	Rejected(result core.SearchResult)
	Finish(results []core.SearchResult)
}

type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ Query) {}
func (n *noopMonitor) AfterRetrieval(_ int) {}
func (n *noopMonitor) Rejected(_ core.SearchResult) {}
func (n *noopMonitor) Finish(_ []core.SearchResult) {}
