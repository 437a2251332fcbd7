package search

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"log/slog"
	"math"
	"slices"

	"github.com/poiesic/lectio/core"
	"github.com/poiesic/lectio/storage"
)

const (
	// rrfK is the rank offset of reciprocal rank fusion.
	rrfK = 60

	// MaxRerankerScore is the top of the semantic ranker scale.
	MaxRerankerScore = 4.0

	// rerankWindow is how many fused results the semantic ranker considers.
	rerankWindow = 50

	// maxCaptions is the number of caption sentences per result.
	maxCaptions = 2
)

// LocalIndex is a Client backed by a passage repository.
type LocalIndex struct {
	repo   storage.PassageRepository
	logger *slog.Logger
}

var _ Client = (*LocalIndex)(nil)

// LocalOption configures a LocalIndex.
type LocalOption func(*LocalIndex) error

// WithIndexLogger sets a custom logger.
// Default is slog.Default().
func WithIndexLogger(logger *slog.Logger) LocalOption {
	return func(x *LocalIndex) error {
		if logger == nil {
			logger = slog.Default()
		}
		x.logger = logger
		return nil
	}
}

// NewLocalIndex creates a search client over repo.
func NewLocalIndex(repo storage.PassageRepository, opts ...LocalOption) (*LocalIndex, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	x := &LocalIndex{
		repo:   repo,
		logger: slog.Default().With("component", "local-index"),
	}
	for _, opt := range opts {
		if err := opt(x); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// ranked is a passage with its score from one ranking.
type ranked struct {
	passage *core.Passage
	score   float64
}

// Search ranks stored passages for req. Passages excluded by the filter
// never take part in ranking.
func (x *LocalIndex) Search(ctx context.Context, req *Request) (iter.Seq2[core.SearchResult, error], error) {
	if req == nil || req.Top <= 0 {
		return nil, fmt.Errorf("%w: top must be greater than 0", ErrInvalidQuery)
	}
	hasText := req.Text != nil
	if !hasText && len(req.Vectors) == 0 {
		return nil, fmt.Errorf("%w: no text or vector query", ErrInvalidQuery)
	}

	var rankings [][]ranked

	if hasText {
		ranking, err := x.rankText(ctx, *req.Text, req.Filter)
		if err != nil {
			return nil, err
		}
		rankings = append(rankings, ranking)
	}

	for _, vq := range req.Vectors {
		ranking, err := x.rankVector(ctx, vq, req.Filter, req.Top)
		if err != nil {
			return nil, err
		}
		rankings = append(rankings, ranking)
	}

	fused := fuse(rankings)

	var terms []string
	if hasText {
		terms = queryTerms(*req.Text)
	}

	results := make([]core.SearchResult, 0, min(len(fused), req.Top))
	if req.UseSemanticRanker && hasText {
		window := fused[:min(len(fused), rerankWindow)]
		reranked := make([]core.SearchResult, 0, len(window))
		for _, r := range window {
			result := toResult(r)
			score := MaxRerankerScore * termCoverage(r.passage.Content+" "+r.passage.SourcePage, terms)
			result.RerankerScore = &score
			if req.UseSemanticCaptions {
				result.Captions = captions(r.passage.Content, terms)
			}
			reranked = append(reranked, result)
		}
		slices.SortStableFunc(reranked, func(a, b core.SearchResult) int {
			return cmp.Compare(*b.RerankerScore, *a.RerankerScore)
		})
		results = append(results, reranked[:min(len(reranked), req.Top)]...)
	} else {
		for _, r := range fused[:min(len(fused), req.Top)] {
			results = append(results, toResult(r))
		}
	}

	x.logger.Debug("local search", "text", hasText, "vectors", len(req.Vectors), "filter", req.Filter.String(), "results", len(results))

	return func(yield func(core.SearchResult, error) bool) {
		for _, result := range results {
			if err := ctx.Err(); err != nil {
				yield(core.SearchResult{}, err)
				return
			}
			if !yield(result, nil) {
				return
			}
		}
	}, nil
}

// rankText scores every allowed passage with BM25 and returns the matches
// best first.
func (x *LocalIndex) rankText(ctx context.Context, text string, filter Filter) ([]ranked, error) {
	var passages []*core.Passage
	var documents []string
	err := x.repo.ScanPassages(ctx, func(p *core.Passage) error {
		if filter.Allows(p.Category) {
			passages = append(passages, p)
			documents = append(documents, p.Content+" "+p.SourcePage)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	terms := queryTerms(text)
	if len(terms) == 0 {
		return nil, nil
	}

	index := newBM25Index(documents)
	var ranking []ranked
	for i, passage := range passages {
		if score := index.score(i, terms); score > 0 {
			ranking = append(ranking, ranked{passage: passage, score: score})
		}
	}
	sortRanking(ranking)
	return ranking, nil
}

// rankVector returns the k passages nearest to the query vector.
func (x *LocalIndex) rankVector(ctx context.Context, vq core.VectorQuery, filter Filter, top int) ([]ranked, error) {
	k := vq.K
	if k <= 0 {
		k = top
	}

	matches, err := x.repo.FindSimilar(ctx, vq.Vector, -math.MaxFloat32, -1)
	if err != nil {
		return nil, err
	}

	ranking := make([]ranked, 0, k)
	for _, match := range matches {
		if len(ranking) == k {
			break
		}
		if !filter.Allows(match.Passage.Category) {
			continue
		}
		ranking = append(ranking, ranked{passage: match.Passage, score: float64(match.Score)})
	}
	return ranking, nil
}

// fuse merges rankings. A single ranking keeps its own scores; several are
// combined by reciprocal rank fusion.
func fuse(rankings [][]ranked) []ranked {
	if len(rankings) == 1 {
		return rankings[0]
	}

	scores := make(map[core.ID]float64)
	passages := make(map[core.ID]*core.Passage)
	var order []core.ID
	for _, ranking := range rankings {
		for rank, r := range ranking {
			id := r.passage.ID
			if _, seen := passages[id]; !seen {
				passages[id] = r.passage
				order = append(order, id)
			}
			scores[id] += 1.0 / float64(rrfK+rank+1)
		}
	}

	fused := make([]ranked, 0, len(order))
	for _, id := range order {
		fused = append(fused, ranked{passage: passages[id], score: scores[id]})
	}
	sortRanking(fused)
	return fused
}

// sortRanking orders best first, breaking ties by passage ID.
func sortRanking(ranking []ranked) {
	slices.SortStableFunc(ranking, func(a, b ranked) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.passage.ID, b.passage.ID)
	})
}

// captions picks the sentences with the most query terms, in text order.
func captions(content string, terms []string) []core.Caption {
	sentences := splitSentences(content)
	if len(sentences) == 0 {
		return nil
	}

	type candidate struct {
		position int
		overlap  int
	}
	candidates := make([]candidate, len(sentences))
	for i, sentence := range sentences {
		candidates[i] = candidate{position: i, overlap: termOverlap(sentence, terms)}
	}
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(b.overlap, a.overlap)
	})
	candidates = candidates[:min(len(candidates), maxCaptions)]
	slices.SortFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(a.position, b.position)
	})

	out := make([]core.Caption, 0, len(candidates))
	for _, c := range candidates {
		sentence := sentences[c.position]
		out = append(out, core.Caption{
			Text:       sentence,
			Highlights: highlight(sentence, terms),
		})
	}
	return out
}

func toResult(r ranked) core.SearchResult {
	return core.SearchResult{
		ID:         r.passage.ID.String(),
		Content:    r.passage.Content,
		SourcePage: r.passage.SourcePage,
		Category:   r.passage.Category,
		Score:      r.score,
	}
}
