// Package keyword implements the lexical half of hybrid retrieval: an
// SQLite FTS5 table with one row per candidate over the indexed profile
// fields. Rebuilds are wholesale: a fresh database file is written and
// renamed over the live one, so a serving reader never observes a
// half-built table.
package keyword

import (
	"database/sql"
	"fmt"
	"os"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/avsrecruit/talentsearch/internal/artifact"
	"github.com/avsrecruit/talentsearch/internal/profile"
)

// DatabaseFile is the keyword artifact name inside the index directory.
const DatabaseFile = "keywords.sqlite"

// Hit is one keyword match. Rank is the bm25 value (lower is better);
// it orders hits but is never numerically fused with vector scores.
type Hit struct {
	CandidateID string
	Rank        float64
}

// Store manages the keyword index artifact at a fixed path. It holds no
// open connection: every search opens the current artifact, so a rename
// by a rebuild is picked up without coordination.
type Store struct {
	path string
}

// NewStore creates a keyword store over the given database path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the artifact path.
func (s *Store) Path() string { return s.path }

const schema = `
CREATE VIRTUAL TABLE profiles_fts USING fts5(
    candidate_id,
    name,
    role_category,
    titles,
    skills,
    location,
    work_authorization,
    resume_snippet,
    email,
    phone,
    experience_years UNINDEXED,
    source_file UNINDEXED
);`

// Rebuild replaces the keyword index wholesale from the given profiles.
// The new table is written into a temporary database file and renamed
// into place only after every row is committed.
func (s *Store) Rebuild(profiles []*profile.CandidateProfile) error {
	tmpPath := s.path + ".rebuild"
	os.Remove(tmpPath)

	db, err := sql.Open("sqlite", tmpPath)
	if err != nil {
		return fmt.Errorf("opening keyword rebuild database: %w", err)
	}

	if err := s.populate(db, profiles); err != nil {
		db.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing keyword rebuild database: %w", err)
	}

	return artifact.Replace(tmpPath, s.path)
}

func (s *Store) populate(db *sql.DB, profiles []*profile.CandidateProfile) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating keyword table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning keyword insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO profiles_fts (
		candidate_id, name, role_category, titles, skills,
		location, work_authorization, resume_snippet,
		email, phone, experience_years, source_file
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing keyword insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range profiles {
		_, err := stmt.Exec(
			p.CandidateID,
			p.Name,
			p.RoleCategory,
			strings.Join(p.Titles, " "),
			strings.Join(p.SkillNames(), " "),
			p.Location,
			p.WorkAuthorization,
			p.ResumeSnippet,
			p.Email,
			p.Phone,
			p.ExperienceYears,
			p.SourceFile,
		)
		if err != nil {
			return fmt.Errorf("inserting keyword row %s: %w", p.CandidateID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing keyword rows: %w", err)
	}
	return nil
}

// queryToken extracts plain word tokens from a raw query, dropping any
// FTS syntax (quotes, operators, parentheses) a user might paste in.
var queryToken = regexp.MustCompile(`[a-zA-Z0-9]+`)

// MatchExpr turns free query text into an FTS5 match expression using
// token-overlap (OR) semantics: a row matches if it contains any query
// token. This trades precision for recall; the fusion stage
// rewards candidates the vector signal agrees on, so the keyword signal
// is better off casting a wide net than insisting on exact phrases.
func MatchExpr(query string) string {
	tokens := queryToken.FindAllString(query, -1)
	if len(tokens) == 0 {
		return ""
	}
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = `"` + tok + `"`
	}
	return strings.Join(quoted, " OR ")
}

// Search returns up to k candidates whose indexed fields match the
// query, best bm25 rank first. A missing artifact, a missing table or a
// query with no usable tokens all yield zero results rather than an
// error: the hybrid retriever degrades to vector-only in those cases.
func (s *Store) Search(query string, k int) ([]Hit, error) {
	expr := MatchExpr(query)
	if expr == "" || k <= 0 {
		return nil, nil
	}

	if _, err := os.Stat(s.path); err != nil {
		return nil, nil
	}

	db, err := sql.Open("sqlite", s.path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening keyword database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT candidate_id, bm25(profiles_fts)
		FROM profiles_fts
		WHERE profiles_fts MATCH ?
		ORDER BY bm25(profiles_fts)
		LIMIT ?`, expr, k)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return nil, nil
		}
		return nil, fmt.Errorf("keyword query: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.CandidateID, &h.Rank); err != nil {
			return nil, fmt.Errorf("scanning keyword hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
