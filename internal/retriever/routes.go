package retriever

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avsrecruit/talentsearch/internal/profile"
)

type searchRequest struct {
	Query   string         `json:"query"`
	K       int            `json:"k"`
	Filters map[string]any `json:"filters"`
}

type searchResponse struct {
	Query   string                      `json:"query"`
	Count   int                         `json:"count"`
	Results []*profile.CandidateProfile `json:"results"`
}

type jdSearchRequest struct {
	Description string `json:"description"`
	K           int    `json:"k"`
}

type jdSearchResponse struct {
	Requirements JDRequirements              `json:"requirements"`
	Count        int                         `json:"count"`
	Results      []*profile.CandidateProfile `json:"results"`
}

// RegisterRoutes mounts the search API. defaultK applies when a request
// omits k; recorder may be nil when auditing is disabled.
func RegisterRoutes(r chi.Router, ret *Retriever, defaultK int, recorder profile.Recorder) {
	r.Post("/api/search", handleSearch(ret, defaultK, recorder))
	r.Post("/api/search/jd", handleJDSearch(ret, defaultK, recorder))
}

func handleSearch(ret *Retriever, defaultK int, recorder profile.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
			return
		}
		if req.K <= 0 {
			req.K = defaultK
		}

		filters, err := ParseFilters(req.Filters)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		results, err := ret.Search(r.Context(), req.Query, req.K, filters)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrMalformedFilter) {
				status = http.StatusBadRequest
			}
			writeError(w, status, err)
			return
		}

		if recorder != nil {
			recorder.Record(r.Context(), "search", "query="+req.Query)
		}
		writeJSON(w, searchResponse{Query: req.Query, Count: len(results), Results: masked(results)})
	}
}

func handleJDSearch(ret *Retriever, defaultK int, recorder profile.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req jdSearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
			return
		}
		if req.Description == "" {
			writeError(w, http.StatusBadRequest, errors.New("description is required"))
			return
		}
		if req.K <= 0 {
			req.K = defaultK
		}

		reqs := ExtractRequirements(req.Description)
		var filters *Filters
		if reqs.MinExperience > 0 {
			min := reqs.MinExperience
			filters = &Filters{MinExperience: &min}
		}

		results, err := ret.Search(r.Context(), reqs.Query, req.K, filters)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		if recorder != nil {
			recorder.Record(r.Context(), "search", "jd_query="+reqs.Query)
		}
		writeJSON(w, jdSearchResponse{Requirements: reqs, Count: len(results), Results: masked(results)})
	}
}

// masked copies the results with contact PII obscured. Search output
// never reveals raw contact details; the candidate detail endpoint
// handles audited reveals.
func masked(results []*profile.CandidateProfile) []*profile.CandidateProfile {
	out := make([]*profile.CandidateProfile, len(results))
	for i, p := range results {
		out[i] = p.Masked()
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
