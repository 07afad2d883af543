package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/avsrecruit/talentsearch/internal/artifact"
)

// ErrNotFound is returned when no profile exists for a candidate ID.
// The retriever treats this as a stale index reference and drops the
// single result rather than failing the query.
var ErrNotFound = errors.New("profile not found")

// Store is a flat directory of one JSON file per candidate, addressable
// by candidate ID. The ingestion pipeline is the only writer; the
// serving side reads only.
type Store struct {
	dir string
}

// NewStore creates a profile store over the given directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(candidateID string) string {
	return filepath.Join(s.dir, candidateID+".json")
}

// Get loads the profile for the given candidate ID.
func (s *Store) Get(candidateID string) (*CandidateProfile, error) {
	data, err := os.ReadFile(s.path(candidateID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, candidateID)
		}
		return nil, fmt.Errorf("reading profile %s: %w", candidateID, err)
	}

	var p CandidateProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding profile %s: %w", candidateID, err)
	}
	return &p, nil
}

// IDs returns all candidate IDs in sorted filename order. The ordering
// is what makes repeated index rebuilds deterministic.
func (s *Store) IDs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading profile directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		// The vectorizer model lives in the same directory; only
		// candidate files count.
		if !strings.HasPrefix(name, IDPrefix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// List loads every profile in sorted candidate ID order.
func (s *Store) List() ([]*CandidateProfile, error) {
	ids, err := s.IDs()
	if err != nil {
		return nil, err
	}

	profiles := make([]*CandidateProfile, 0, len(ids))
	for _, id := range ids {
		p, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Count returns the number of stored profiles.
func (s *Store) Count() (int, error) {
	ids, err := s.IDs()
	return len(ids), err
}

// Save writes a profile atomically. Only the ingestion pipeline calls
// this; the transient search score is stripped before persisting.
func (s *Store) Save(p *CandidateProfile) error {
	if p.CandidateID == "" {
		return fmt.Errorf("saving profile: candidate_id is empty")
	}

	persisted := *p
	persisted.SearchScore = 0

	data, err := json.MarshalIndent(&persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding profile %s: %w", p.CandidateID, err)
	}
	return artifact.WriteFile(s.path(p.CandidateID), data, 0o644)
}

// RoleCategories returns the distinct role categories across the corpus,
// sorted. Used by vacancy auto-creation and the KPI dashboard.
func (s *Store) RoleCategories() ([]string, error) {
	profiles, err := s.List()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var roles []string
	for _, p := range profiles {
		if p.RoleCategory != "" && !seen[p.RoleCategory] {
			seen[p.RoleCategory] = true
			roles = append(roles, p.RoleCategory)
		}
	}
	sort.Strings(roles)
	return roles, nil
}
