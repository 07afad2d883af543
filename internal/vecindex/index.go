// Package vecindex implements a flat inner-product similarity index
// over L2-normalized feature vectors. The index is immutable once
// built; a corpus change means a full rebuild, which matches a resume
// pool that is updated in batches rather than streamed.
package vecindex

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDimensionMismatch is returned by Build when input vectors do not
// share one dimensionality. The build is fatal and produces nothing; a
// previously built index stays untouched.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Hit is one search result: a candidate and its cosine similarity.
type Hit struct {
	CandidateID string
	Score       float32
}

// Index holds one normalized vector per candidate, row i belonging to
// ids[i]. That row alignment is the invariant everything else depends
// on: the vector file and the id list are rebuilt together and never
// mixed across versions.
type Index struct {
	dim  int
	ids  []string
	data []float32 // row-major, len = dim * len(ids)
}

// New returns an empty, unbuilt index. Searching it yields no results.
func New() *Index {
	return &Index{}
}

// Len returns the number of indexed candidates.
func (ix *Index) Len() int { return len(ix.ids) }

// Dimension returns the vector dimensionality, zero when unbuilt.
func (ix *Index) Dimension() int { return ix.dim }

// IDs returns the row-ordered candidate IDs.
func (ix *Index) IDs() []string { return ix.ids }

// Build populates the index from parallel id and vector slices. Every
// vector is L2-normalized on insert; an all-zero vector stays zero and
// can never become a nontrivial nearest neighbour.
func (ix *Index) Build(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("%w: %d ids but %d vectors", ErrDimensionMismatch, len(ids), len(vectors))
	}
	if len(vectors) == 0 {
		ix.dim, ix.ids, ix.data = 0, nil, nil
		return nil
	}

	dim := len(vectors[0])
	for i, vec := range vectors {
		if len(vec) != dim {
			return fmt.Errorf("%w: row %d has %d dimensions, want %d", ErrDimensionMismatch, i, len(vec), dim)
		}
	}

	data := make([]float32, 0, dim*len(vectors))
	for _, vec := range vectors {
		row := make([]float32, dim)
		copy(row, vec)
		normalize(row)
		data = append(data, row...)
	}

	ix.dim = dim
	ix.ids = append([]string(nil), ids...)
	ix.data = data
	return nil
}

// Search returns at most k candidates ordered by descending inner
// product; ties keep insertion order. An empty or unbuilt index returns
// no results, never an error. The query is normalized before scoring so
// the inner product is cosine similarity.
func (ix *Index) Search(query []float32, k int) []Hit {
	if ix.Len() == 0 || k <= 0 || len(query) != ix.dim {
		return nil
	}

	q := make([]float32, ix.dim)
	copy(q, query)
	normalize(q)

	hits := make([]Hit, ix.Len())
	for i := range ix.ids {
		row := ix.data[i*ix.dim : (i+1)*ix.dim]
		var dot float32
		for j, x := range row {
			dot += x * q[j]
		}
		hits[i] = Hit{CandidateID: ix.ids[i], Score: dot}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}

// normalize scales v to unit length in place. Zero vectors stay zero.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
