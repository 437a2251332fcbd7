package search

import (
	"regexp"
	"slices"
	"strings"
)

// Stop words ignored when matching query terms
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "what": true, "which": true, "my": true, "or": true,
}

var (
	wordPattern     = regexp.MustCompile(`[\p{L}\p{N}]+`)
	citationPattern = regexp.MustCompile(`\[[^\]]*\]`)
	sentenceEnd     = regexp.MustCompile(`[.!?]+\s+|\n+`)
)

// tokenizeAndFilter splits text into lowercase words and removes stop words
// and single characters.
func tokenizeAndFilter(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	filtered := words[:0]
	for _, word := range words {
		if len([]rune(word)) > 1 && !stopWords[word] {
			filtered = append(filtered, word)
		}
	}
	return filtered
}

// queryTerms returns the distinct filtered words of a query in order.
func queryTerms(query string) []string {
	var terms []string
	for _, word := range tokenizeAndFilter(query) {
		if !slices.Contains(terms, word) {
			terms = append(terms, word)
		}
	}
	return terms
}

// termCoverage returns the fraction of terms that occur in text.
func termCoverage(text string, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	return float64(termOverlap(text, terms)) / float64(len(terms))
}

// termOverlap counts how many of terms occur in text.
func termOverlap(text string, terms []string) int {
	words := make(map[string]bool)
	for _, word := range tokenizeAndFilter(text) {
		words[word] = true
	}
	count := 0
	for _, term := range terms {
		if words[term] {
			count++
		}
	}
	return count
}

// splitSentences breaks text at sentence punctuation and line breaks.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		sentence := strings.TrimSpace(text[start:loc[1]])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = loc[1]
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// highlight wraps words of text that match terms in <em> tags.
func highlight(text string, terms []string) string {
	set := make(map[string]bool, len(terms))
	for _, term := range terms {
		set[term] = true
	}
	return wordPattern.ReplaceAllStringFunc(text, func(word string) string {
		if set[strings.ToLower(word)] {
			return "<em>" + word + "</em>"
		}
		return word
	})
}

// stripCitations removes bracketed citation markers such as [1].
func stripCitations(text string) string {
	return citationPattern.ReplaceAllString(text, "")
}

// noNewlines flattens line breaks to spaces.
func noNewlines(text string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
}
