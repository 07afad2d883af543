package vectorizer

import (
	"regexp"
	"strings"
)

// tokenPattern matches word tokens of at least two characters, the same
// shape a TF-IDF vocabulary is usually built from.
var tokenPattern = regexp.MustCompile(`[a-z0-9_]{2,}`)

// Tokenize lowercases text and extracts word tokens, dropping English
// stopwords.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if !stopwords[tok] {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// stopwords is a compact English stopword list. Terms here never enter
// the vocabulary, so they cannot crowd out discriminative resume terms
// under the vocabulary cap.
var stopwords = func() map[string]bool {
	words := []string{
		"about", "above", "after", "again", "all", "also", "am", "an", "and",
		"any", "are", "as", "at", "be", "because", "been", "before", "being",
		"below", "between", "both", "but", "by", "can", "could", "did", "do",
		"does", "doing", "down", "during", "each", "few", "for", "from",
		"further", "had", "has", "have", "having", "he", "her", "here",
		"hers", "him", "his", "how", "if", "in", "into", "is", "it", "its",
		"just", "me", "more", "most", "my", "no", "nor", "not", "now", "of",
		"off", "on", "once", "only", "or", "other", "our", "ours", "out",
		"over", "own", "same", "she", "should", "so", "some", "such", "than",
		"that", "the", "their", "theirs", "them", "then", "there", "these",
		"they", "this", "those", "through", "to", "too", "under", "until",
		"up", "very", "was", "we", "were", "what", "when", "where", "which",
		"while", "who", "whom", "why", "will", "with", "would", "you",
		"your", "yours",
	}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}()
