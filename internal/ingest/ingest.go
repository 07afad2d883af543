package ingest

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/avsrecruit/talentsearch/internal/profile"
	"github.com/avsrecruit/talentsearch/internal/progress"
	"github.com/avsrecruit/talentsearch/internal/vectorizer"
	"github.com/avsrecruit/talentsearch/internal/walker"
)

// candidateNamespace seeds deterministic candidate ids, so re-running
// ingestion over the same corpus updates profiles in place instead of
// duplicating them.
var candidateNamespace = uuid.MustParse("7f1c5b1e-4a02-4d9b-9f63-2a8c41d0b7ae")

// minTextLen is the minimum extracted text length for a candidate to be
// worth parsing.
const minTextLen = 50

// Config controls one ingestion run.
type Config struct {
	// ResumesDir is the corpus root, laid out as <role>/<candidate>/docs.
	ResumesDir string
	// ParsedDir receives profile JSON, vector files and the fitted model.
	ParsedDir string
	// Include and Exclude are glob filters applied to corpus files.
	Include []string
	Exclude []string
	// MaxFeatures bounds the vectorizer vocabulary.
	MaxFeatures int
}

// Summary reports what an ingestion run did.
type Summary struct {
	CandidatesFound int      `json:"candidates_found"`
	DocumentsRead   int      `json:"documents_read"`
	Parsed          int      `json:"parsed"`
	Skipped         int      `json:"skipped"`
	Errors          []string `json:"errors,omitempty"`
}

// Pipeline scans the resume corpus, extracts one profile per candidate
// directory, fits the vectorizer over the whole corpus and writes every
// artifact into the parsed directory.
type Pipeline struct {
	cfg      Config
	profiles *profile.Store
	validate *validator.Validate
	reporter progress.Reporter
}

// New builds an ingestion pipeline writing through the given profile
// store. A nil reporter disables progress output.
func New(cfg Config, profiles *profile.Store, reporter progress.Reporter) *Pipeline {
	if reporter == nil {
		reporter = &nopReporter{}
	}
	return &Pipeline{
		cfg:      cfg,
		profiles: profiles,
		validate: validator.New(),
		reporter: reporter,
	}
}

type candidateDocs struct {
	role      string
	candidate string
	docs      []walker.Document
}

// Run executes the pipeline. Candidates whose documents cannot be read
// or whose extracted profile fails validation are skipped and counted,
// never fatal.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	docs, err := walker.Walk(walker.Config{
		Root:    p.cfg.ResumesDir,
		Include: p.cfg.Include,
		Exclude: p.cfg.Exclude,
	})
	if err != nil {
		return nil, err
	}

	groups := groupByCandidate(docs)
	summary := &Summary{CandidatesFound: len(groups)}

	p.reporter.Start(len(groups))
	defer p.reporter.Finish()

	type parsed struct {
		prof *profile.CandidateProfile
		text string
	}
	var results []parsed

	for i, g := range groups {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		p.reporter.Update(i+1, g.role+"/"+g.candidate)

		text, read := p.readDocuments(g, summary)
		summary.DocumentsRead += read
		if len(text) < minTextLen {
			summary.Skipped++
			continue
		}

		prof := p.buildProfile(g, text)
		if err := p.validate.Struct(prof); err != nil {
			log.Printf("ingest: skipping %s/%s: %v", g.role, g.candidate, err)
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s/%s: %v", g.role, g.candidate, err))
			continue
		}

		results = append(results, parsed{prof: prof, text: text})
	}

	if len(results) == 0 {
		return summary, nil
	}

	// Fit the model over the whole corpus, then persist profiles and
	// their vectors. The model must be written before the vectors so a
	// crashed run never leaves vectors without the model that produced
	// them.
	corpus := make([]string, len(results))
	for i, r := range results {
		corpus[i] = r.prof.SearchText()
	}
	model := vectorizer.New(p.cfg.MaxFeatures)
	model.Fit(corpus)
	if err := model.Save(filepath.Join(p.cfg.ParsedDir, vectorizer.ModelFile)); err != nil {
		return summary, fmt.Errorf("saving vectorizer model: %w", err)
	}

	for _, r := range results {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		vec, err := model.Transform(r.prof.SearchText())
		if err != nil {
			return summary, fmt.Errorf("vectorizing %s: %w", r.prof.CandidateID, err)
		}
		if err := p.profiles.Save(r.prof); err != nil {
			return summary, fmt.Errorf("saving profile %s: %w", r.prof.CandidateID, err)
		}
		vecPath := filepath.Join(p.cfg.ParsedDir, r.prof.CandidateID+VectorExt)
		if err := WriteVector(vecPath, vec); err != nil {
			return summary, fmt.Errorf("saving vector %s: %w", r.prof.CandidateID, err)
		}
		summary.Parsed++
	}

	return summary, nil
}

// readDocuments concatenates the text of every document for one
// candidate. Unreadable files are logged and skipped.
func (p *Pipeline) readDocuments(g candidateDocs, summary *Summary) (string, int) {
	var parts []string
	read := 0
	for _, d := range g.docs {
		data, err := os.ReadFile(d.Path)
		if err != nil {
			log.Printf("ingest: reading %s: %v", d.RelPath, err)
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", d.RelPath, err))
			continue
		}
		parts = append(parts, string(data))
		read++
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n")), read
}

func (p *Pipeline) buildProfile(g candidateDocs, text string) *profile.CandidateProfile {
	ex := Extract(text)
	return &profile.CandidateProfile{
		CandidateID:       CandidateID(g.role, g.candidate),
		Name:              humanize(g.candidate),
		RoleCategory:      humanize(g.role),
		Titles:            []string{humanize(g.role)},
		Skills:            ex.Skills,
		ExperienceYears:   ex.ExperienceYears,
		Education:         ex.Education,
		Email:             ex.Email,
		Phone:             ex.Phone,
		LinkedIn:          ex.LinkedIn,
		Location:          ex.Location,
		WorkAuthorization: ex.WorkAuthorization,
		Availability:      ex.Availability,
		ResumeSnippet:     ex.Snippet,
		SourceFile:        filepath.Base(g.docs[0].Path),
		ParsedDate:        time.Now().Format(time.RFC3339),
		Status:            "New",
		Stage:             profile.StageUploaded,
	}
}

// CandidateID derives the stable id for a role/candidate directory
// pair.
func CandidateID(role, candidate string) string {
	id := uuid.NewSHA1(candidateNamespace, []byte(role+"/"+candidate))
	return profile.IDPrefix + hex.EncodeToString(id[:6])
}

// groupByCandidate buckets walked documents per candidate directory,
// in deterministic order.
func groupByCandidate(docs []walker.Document) []candidateDocs {
	byKey := make(map[string]*candidateDocs)
	var keys []string
	for _, d := range docs {
		key := d.Role + "/" + d.Candidate
		g, ok := byKey[key]
		if !ok {
			g = &candidateDocs{role: d.Role, candidate: d.Candidate}
			byKey[key] = g
			keys = append(keys, key)
		}
		g.docs = append(g.docs, d)
	}
	sort.Strings(keys)

	groups := make([]candidateDocs, len(keys))
	for i, key := range keys {
		groups[i] = *byKey[key]
	}
	return groups
}

// humanize turns a directory name like "software_engineer" into
// "Software Engineer".
func humanize(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

type nopReporter struct{}

func (*nopReporter) Start(int)          {}
func (*nopReporter) Update(int, string) {}
func (*nopReporter) Finish()            {}
