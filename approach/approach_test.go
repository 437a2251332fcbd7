package approach

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/poiesic/lectio/ai/mock"
	"github.com/poiesic/lectio/core"
	"github.com/poiesic/lectio/search"
	"github.com/poiesic/lectio/storage/badger"
	"github.com/poiesic/lectio/tokens"
	"github.com/stretchr/testify/require"
)

const paymentSource = "contract02.pdf#page=3: The payment will be made via deposit in bank account held by the supplier company."

// approxCounter avoids loading tiktoken encodings in tests.
type approxCounter struct{}

func (approxCounter) Estimate(messages []core.Message, modelID string) int {
	total := 0
	for _, msg := range messages {
		total += tokens.TokensPerMessage + tokens.ApproximateTokens(msg.Content)
	}
	return total
}

type failingClient struct{}

func (failingClient) Search(ctx context.Context, req *search.Request) (iter.Seq2[core.SearchResult, error], error) {
	return nil, errors.New("search service down")
}

type fixture struct {
	provider *mock.MockProvider
	embedder *mock.MockEmbedder
	chat     *mock.MockChatModel
	searcher *search.Searcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	_, err = repo.AddPassages(context.Background(),
		&core.Passage{
			ID:         1,
			Content:    "The payment will be made via deposit in bank account held by the supplier company.",
			SourcePage: "contract02.pdf#page=3",
			Category:   "contracts",
			Embedding:  []float32{1, 0, 0},
		},
		&core.Passage{
			ID:         2,
			Content:    "The first clause deals with hiring of a specialized cleaning company.",
			SourcePage: "contract02.pdf#page=1",
			Category:   "contracts",
			Embedding:  []float32{0, 1, 0},
		},
		&core.Passage{
			ID:         3,
			Content:    "Employees must follow the dress code.",
			SourcePage: "handbook.pdf#page=7",
			Category:   "internal",
			Embedding:  []float32{0, 0, 1},
		},
	)
	require.NoError(t, err)

	index, err := search.NewLocalIndex(repo)
	require.NoError(t, err)
	searcher, err := search.NewSearcher(index)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0, 0, 1}, nil
	}
	chat := mock.NewMockChatModel()
	provider := mock.NewMockProviderWithServices(embedder, chat).(*mock.MockProvider)

	return &fixture{provider: provider, embedder: embedder, chat: chat, searcher: searcher}
}

func thoughtTitles(resp *Response) []string {
	titles := make([]string, len(resp.Thoughts))
	for i, thought := range resp.Thoughts {
		titles[i] = thought.Title
	}
	return titles
}
