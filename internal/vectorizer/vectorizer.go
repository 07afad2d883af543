// Package vectorizer implements the fixed-vocabulary TF-IDF projection
// that turns document and query text into dense feature vectors. The
// model is fitted once over the whole corpus at build time and persisted
// so query-time transforms use exactly the weights the vector index was
// built with.
package vectorizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/avsrecruit/talentsearch/internal/artifact"
)

// ErrNotFitted is returned by Transform before a model has been fitted
// or loaded. Callers treat the vector signal as empty rather than
// aborting retrieval.
var ErrNotFitted = errors.New("vectorizer not fitted")

// ModelFile is the fitted vectorizer artifact name inside the parsed
// data directory.
const ModelFile = "vectorizer.json"

// Vectorizer projects text into a fixed-size TF-IDF space. A zero value
// is unfitted; Fit or Load must run before Transform.
type Vectorizer struct {
	maxFeatures int
	vocab       map[string]int
	terms       []string
	idf         []float32
}

// New creates an unfitted vectorizer whose vocabulary is capped at
// maxFeatures terms.
func New(maxFeatures int) *Vectorizer {
	return &Vectorizer{maxFeatures: maxFeatures}
}

// Fitted reports whether the model has a vocabulary.
func (v *Vectorizer) Fitted() bool { return v.vocab != nil }

// Dimension returns the fitted vector length, zero before fitting.
func (v *Vectorizer) Dimension() int { return len(v.terms) }

// Fit trains the vocabulary and IDF weights over the corpus. The top
// maxFeatures terms by corpus-wide frequency are kept; within the cap,
// vocabulary positions are assigned alphabetically so rebuilds from an
// unchanged corpus produce identical models. Re-fitting replaces the
// model in place; vectors issued by the previous model are incompatible
// with indexes built from the new one.
func (v *Vectorizer) Fit(corpus []string) {
	termFreq := make(map[string]int)
	docFreq := make(map[string]int)

	for _, doc := range corpus {
		seen := make(map[string]bool)
		for _, tok := range Tokenize(doc) {
			termFreq[tok]++
			if !seen[tok] {
				seen[tok] = true
				docFreq[tok]++
			}
		}
	}

	candidates := make([]string, 0, len(termFreq))
	for term := range termFreq {
		candidates = append(candidates, term)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if termFreq[candidates[i]] != termFreq[candidates[j]] {
			return termFreq[candidates[i]] > termFreq[candidates[j]]
		}
		return candidates[i] < candidates[j]
	})
	if v.maxFeatures > 0 && len(candidates) > v.maxFeatures {
		candidates = candidates[:v.maxFeatures]
	}
	sort.Strings(candidates)

	n := len(corpus)
	v.terms = candidates
	v.vocab = make(map[string]int, len(candidates))
	v.idf = make([]float32, len(candidates))
	for i, term := range candidates {
		v.vocab[term] = i
		// Smoothed IDF, never zero, so every vocabulary term contributes.
		v.idf[i] = float32(math.Log(float64(1+n)/float64(1+docFreq[term])) + 1)
	}
}

// Transform projects text into the fitted TF-IDF space. The output is
// not normalized; the vector index normalizes on insert and the
// retriever normalizes queries, so inner product equals cosine.
func (v *Vectorizer) Transform(text string) ([]float32, error) {
	if !v.Fitted() {
		return nil, ErrNotFitted
	}

	vec := make([]float32, len(v.terms))
	for _, tok := range Tokenize(text) {
		if i, ok := v.vocab[tok]; ok {
			vec[i] += v.idf[i]
		}
	}
	return vec, nil
}

// model is the serialized form of a fitted vectorizer.
type model struct {
	MaxFeatures int       `json:"max_features"`
	Terms       []string  `json:"terms"`
	IDF         []float32 `json:"idf"`
}

// Save persists the fitted model atomically.
func (v *Vectorizer) Save(path string) error {
	if !v.Fitted() {
		return fmt.Errorf("saving vectorizer: %w", ErrNotFitted)
	}

	data, err := json.Marshal(model{
		MaxFeatures: v.maxFeatures,
		Terms:       v.terms,
		IDF:         v.idf,
	})
	if err != nil {
		return fmt.Errorf("encoding vectorizer: %w", err)
	}
	return artifact.WriteFile(path, data, 0o644)
}

// Load reads a previously fitted model from disk.
func Load(path string) (*Vectorizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vectorizer %s: %w", path, err)
	}

	var m model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding vectorizer %s: %w", path, err)
	}
	if len(m.Terms) != len(m.IDF) {
		return nil, fmt.Errorf("decoding vectorizer %s: %d terms but %d idf weights", path, len(m.Terms), len(m.IDF))
	}

	v := &Vectorizer{
		maxFeatures: m.MaxFeatures,
		terms:       m.Terms,
		idf:         m.IDF,
		vocab:       make(map[string]int, len(m.Terms)),
	}
	for i, term := range m.Terms {
		v.vocab[term] = i
	}
	return v, nil
}
