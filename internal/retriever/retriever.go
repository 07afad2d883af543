package retriever

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/avsrecruit/talentsearch/internal/config"
	"github.com/avsrecruit/talentsearch/internal/keyword"
	"github.com/avsrecruit/talentsearch/internal/profile"
	"github.com/avsrecruit/talentsearch/internal/vecindex"
	"github.com/avsrecruit/talentsearch/internal/vectorizer"
)

// Options are the tunable knobs of score fusion. Zero values fall back
// to the shipped defaults so a zero Options is usable.
type Options struct {
	// VectorOversample multiplies k for the vector signal so filtering
	// and fusion have headroom to reorder.
	VectorOversample int
	// KeywordBonus is added to a candidate's vector score when the
	// keyword signal agrees.
	KeywordBonus float64
	// KeywordBaseScore seeds candidates found only by keyword match.
	KeywordBaseScore float64
}

// OptionsFromConfig maps the retrieval configuration onto Options.
func OptionsFromConfig(rc config.RetrievalConfig) Options {
	return Options{
		VectorOversample: rc.VectorOversample,
		KeywordBonus:     rc.KeywordBonus,
		KeywordBaseScore: rc.KeywordBaseScore,
	}
}

func (o Options) withDefaults() Options {
	if o.VectorOversample < 1 {
		o.VectorOversample = 2
	}
	if o.KeywordBonus == 0 {
		o.KeywordBonus = 0.2
	}
	if o.KeywordBaseScore == 0 {
		o.KeywordBaseScore = 0.4
	}
	return o
}

// Retriever combines the vector and keyword signals over the profile
// store. It holds no open file handles between calls: the keyword store
// opens its artifact per query and the vector index is an immutable
// in-memory snapshot, so a rebuild followed by a reload swaps cleanly.
type Retriever struct {
	profiles *profile.Store
	model    *vectorizer.Vectorizer
	index    *vecindex.Index
	keywords *keyword.Store
	opts     Options
}

// New assembles a retriever from already loaded components. model and
// index may be nil; the retriever then serves keyword-only results.
func New(profiles *profile.Store, model *vectorizer.Vectorizer, index *vecindex.Index, keywords *keyword.Store, opts Options) *Retriever {
	return &Retriever{
		profiles: profiles,
		model:    model,
		index:    index,
		keywords: keywords,
		opts:     opts.withDefaults(),
	}
}

// Load builds a retriever from the artifacts on disk. Missing or
// unreadable vector artifacts degrade to keyword-only search with a
// logged warning instead of failing; the keyword store handles its own
// missing artifact at query time.
func Load(profiles *profile.Store, parsedDir, indexDir string, opts Options) *Retriever {
	var model *vectorizer.Vectorizer
	if m, err := vectorizer.Load(filepath.Join(parsedDir, vectorizer.ModelFile)); err != nil {
		log.Printf("retriever: vector model unavailable, keyword-only search: %v", err)
	} else {
		model = m
	}

	var index *vecindex.Index
	if ix, err := vecindex.Load(
		filepath.Join(indexDir, vecindex.VectorsFile),
		filepath.Join(indexDir, vecindex.MetaFile),
	); err != nil {
		log.Printf("retriever: vector index unavailable, keyword-only search: %v", err)
	} else {
		index = ix
	}

	keywords := keyword.NewStore(filepath.Join(indexDir, keyword.DatabaseFile))
	return New(profiles, model, index, keywords, opts)
}

// Search runs the hybrid query and returns at most k profiles, best
// fused score first, with SearchScore set on each. An empty query
// yields an empty result. Filters are validated before any index is
// consulted; candidates whose stored profile has vanished since the
// last index build are dropped.
func (r *Retriever) Search(ctx context.Context, query string, k int, filters *Filters) ([]*profile.CandidateProfile, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", ErrMalformedFilter, k)
	}
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return []*profile.CandidateProfile{}, nil
	}

	var (
		vecHits []vecindex.Hit
		kwHits  []keyword.Hit
	)
	var g errgroup.Group
	g.Go(func() error {
		vecHits = r.vectorHits(query, k*r.opts.VectorOversample)
		return nil
	})
	g.Go(func() error {
		hits, err := r.keywords.Search(query, k)
		if err != nil {
			// Keyword failures degrade to vector-only rather than
			// failing the whole search.
			log.Printf("retriever: keyword signal unavailable: %v", err)
			return nil
		}
		kwHits = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]*profile.CandidateProfile, 0, len(vecHits)+len(kwHits))
	for _, s := range r.fuse(vecHits, kwHits) {
		p, err := r.profiles.Get(s.id)
		if errors.Is(err, profile.ErrNotFound) {
			log.Printf("retriever: dropping stale candidate reference %s", s.id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("hydrating candidate %s: %w", s.id, err)
		}
		if !filters.Matches(p) {
			continue
		}
		p.SearchScore = s.score
		results = append(results, p)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SearchScore > results[j].SearchScore
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (r *Retriever) vectorHits(query string, n int) []vecindex.Hit {
	if r.model == nil || r.index == nil || r.index.Len() == 0 {
		return nil
	}
	qv, err := r.model.Transform(query)
	if err != nil {
		log.Printf("retriever: vector signal unavailable: %v", err)
		return nil
	}
	return r.index.Search(qv, n)
}

type fusedHit struct {
	id    string
	score float64
}

// fuse merges the two signals into per-candidate scores. Vector scores
// seed; a keyword hit on a seeded candidate adds a fixed bonus; a
// candidate only the keyword signal found enters at the base score.
// The result depends only on the hit sets, never on which signal
// finished first.
func (r *Retriever) fuse(vecHits []vecindex.Hit, kwHits []keyword.Hit) []fusedHit {
	order := make([]string, 0, len(vecHits)+len(kwHits))
	scores := make(map[string]float64, len(vecHits)+len(kwHits))

	for _, h := range vecHits {
		if _, seen := scores[h.CandidateID]; seen {
			continue
		}
		scores[h.CandidateID] = float64(h.Score)
		order = append(order, h.CandidateID)
	}
	for _, h := range kwHits {
		if _, seen := scores[h.CandidateID]; seen {
			scores[h.CandidateID] += r.opts.KeywordBonus
			continue
		}
		scores[h.CandidateID] = r.opts.KeywordBaseScore
		order = append(order, h.CandidateID)
	}

	fused := make([]fusedHit, len(order))
	for i, id := range order {
		fused[i] = fusedHit{id: id, score: scores[id]}
	}
	return fused
}
