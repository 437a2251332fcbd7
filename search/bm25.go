package search

import (
	"math"
)

// BM25 parameters (Okapi variant, standard values).
const (
	bm25K1      = 1.2
	bm25B       = 0.75
	bm25Epsilon = 0.25
)

// bm25Index scores a fixed set of documents against text queries.
// It is immutable after construction.
type bm25Index struct {
	termFrequencies []map[string]int
	lengths         []int
	averageLength   float64
	idf             map[string]float64
}

// newBM25Index builds an index over documents. Each document is scored as a
// whole; callers concatenate the fields they want searchable.
func newBM25Index(documents []string) *bm25Index {
	index := &bm25Index{
		termFrequencies: make([]map[string]int, len(documents)),
		lengths:         make([]int, len(documents)),
		idf:             make(map[string]float64),
	}

	documentFrequency := make(map[string]int)
	total := 0
	for i, document := range documents {
		tokens := tokenizeAndFilter(document)
		index.lengths[i] = len(tokens)
		total += len(tokens)

		frequencies := make(map[string]int)
		for _, token := range tokens {
			if frequencies[token] == 0 {
				documentFrequency[token]++
			}
			frequencies[token]++
		}
		index.termFrequencies[i] = frequencies
	}

	if len(documents) > 0 {
		index.averageLength = float64(total) / float64(len(documents))
	}

	// Terms present in every document still contribute a little
	count := float64(len(documents))
	for term, frequency := range documentFrequency {
		idf := math.Log(1 + (count-float64(frequency)+0.5)/(float64(frequency)+0.5))
		if idf <= 0 {
			idf = bm25Epsilon
		}
		index.idf[term] = idf
	}

	return index
}

// score returns the BM25 score of document i for the query terms.
func (x *bm25Index) score(i int, terms []string) float64 {
	if x.averageLength == 0 {
		return 0
	}
	frequencies := x.termFrequencies[i]
	length := float64(x.lengths[i])

	var score float64
	for _, term := range terms {
		idf, ok := x.idf[term]
		if !ok {
			continue
		}
		tf := float64(frequencies[term])
		if tf == 0 {
			continue
		}
		numerator := tf * (bm25K1 + 1)
		denominator := tf + bm25K1*(1-bm25B+bm25B*length/x.averageLength)
		score += idf * numerator / denominator
	}
	return score
}
