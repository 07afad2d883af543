// Package walker traverses a resume corpus laid out as
// <root>/<role>/<candidate>/<documents...> and emits one Document per
// readable file, applying include/exclude glob filters along the way.
package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Document is a single file discovered under a candidate directory.
type Document struct {
	// Role is the role-category directory the candidate sits under.
	Role string
	// Candidate is the candidate directory name.
	Candidate string
	// Path is the absolute path to the file.
	Path string
	// RelPath is the path relative to the corpus root, slash-separated.
	RelPath string
	// Size is the file size in bytes.
	Size int64
}

// Config controls a corpus walk.
type Config struct {
	// Root is the corpus root directory.
	Root string
	// Include holds glob patterns; when non-empty only matching files
	// are emitted.
	Include []string
	// Exclude holds glob patterns for files to skip, on top of
	// DefaultExcludes.
	Exclude []string
}

// Walk traverses the corpus and returns documents grouped implicitly by
// role and candidate, in deterministic sorted order. Files that sit
// directly under the root or under a role directory (outside any
// candidate directory) are skipped.
func Walk(cfg Config) ([]Document, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving corpus root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading corpus root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", root)
	}

	var docs []Document
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if shouldExcludeDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		parts := strings.Split(filepath.ToSlash(rel), "/")
		// Only files nested as <role>/<candidate>/... belong to the corpus.
		if len(parts) < 3 {
			return nil
		}

		relSlash := filepath.ToSlash(rel)
		if MatchesExclude(relSlash, DefaultExcludes) {
			return nil
		}
		if MatchesExclude(relSlash, cfg.Exclude) {
			return nil
		}
		if !MatchesInclude(relSlash, cfg.Include) {
			return nil
		}

		fi, statErr := d.Info()
		if statErr != nil {
			return statErr
		}

		docs = append(docs, Document{
			Role:      parts[0],
			Candidate: parts[1],
			Path:      path,
			RelPath:   relSlash,
			Size:      fi.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus: %w", err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].RelPath < docs[j].RelPath })
	return docs, nil
}
