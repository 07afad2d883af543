package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// Recorder receives audit events for PII reveals and CV downloads.
type Recorder interface {
	Record(ctx context.Context, action, detail string)
}

// RegisterRoutes mounts the candidate profile API routes. resumesDir is
// the root of the raw resume corpus used for CV downloads; recorder may
// be nil when auditing is disabled.
func RegisterRoutes(r chi.Router, store *Store, resumesDir string, recorder Recorder) {
	r.Route("/api/candidates", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Get("/{id}", handleGet(store, recorder))
		r.Get("/{id}/resume", handleDownload(store, resumesDir, recorder))
	})
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profiles, err := store.List()
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		masked := make([]*CandidateProfile, len(profiles))
		for i, p := range profiles {
			masked[i] = p.Masked()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(masked)
	}
}

func handleGet(store *Store, recorder Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		p, err := store.Get(id)
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		reveal := r.URL.Query().Get("reveal_pii") == "true"
		if reveal {
			if recorder != nil {
				recorder.Record(r.Context(), "reveal_pii", "candidate="+id)
			}
		} else {
			p = p.Masked()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(p)
	}
}

func handleDownload(store *Store, resumesDir string, recorder Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		p, err := store.Get(id)
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if p.SourceFile == "" {
			http.Error(w, `{"error":"no source document"}`, http.StatusNotFound)
			return
		}

		// SourceFile is stored relative to the corpus root; reject any
		// path that would escape it.
		clean := filepath.Clean(p.SourceFile)
		if filepath.IsAbs(clean) || clean == ".." || len(clean) > 1 && clean[:2] == ".." {
			http.Error(w, `{"error":"invalid source path"}`, http.StatusBadRequest)
			return
		}

		if recorder != nil {
			recorder.Record(r.Context(), "download_cv", "candidate="+id)
		}

		w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(clean))
		http.ServeFile(w, r, filepath.Join(resumesDir, clean))
	}
}
