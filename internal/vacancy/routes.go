package vacancy

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/avsrecruit/talentsearch/internal/profile"
)

// RegisterRoutes mounts the vacancy API routes. profiles is consulted
// for match scoring when candidates are attached or ranked.
func RegisterRoutes(r chi.Router, store *Store, profiles *profile.Store) {
	r.Route("/api/vacancies", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Post("/", handleCreate(store))
		r.Post("/auto", handleAutoCreate(store, profiles))
		r.Get("/{id}", handleGetByID(store))
		r.Put("/{id}", handleUpdate(store))
		r.Put("/{id}/status", handleUpdateStatus(store))
		r.Delete("/{id}", handleDelete(store))
		r.Get("/{id}/matches", handleMatches(store, profiles))
		r.Get("/{id}/candidates", handleCandidates(store))
		r.Post("/{id}/candidates", handleAttach(store, profiles))
		r.Put("/{id}/candidates/{candidateID}/stage", handleSetStage(store))
		r.Get("/{id}/notes", handleNotes(store))
		r.Post("/{id}/notes", handleAddNote(store))
	})
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := ListFilter{RoleCategory: r.URL.Query().Get("role_category")}
		if v := r.URL.Query().Get("status"); v != "" {
			filter.Status = Status(v)
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Limit = n
			}
		}
		if v := r.URL.Query().Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Offset = n
			}
		}

		vacancies, err := store.List(r.Context(), filter)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if vacancies == nil {
			vacancies = []Vacancy{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(vacancies)
	}
}

func handleCreate(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v Vacancy
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if v.Title == "" {
			http.Error(w, `{"error":"title is required"}`, http.StatusBadRequest)
			return
		}

		created, err := store.Create(r.Context(), v)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func handleAutoCreate(store *Store, profiles *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roles, err := profiles.RoleCategories()
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		created, err := store.AutoCreate(r.Context(), roles)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if created == nil {
			created = []Vacancy{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func handleGetByID(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := store.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if v == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}
}

func handleUpdate(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v Vacancy
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		v.ID = chi.URLParam(r, "id")

		if err := store.Update(r.Context(), v); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleUpdateStatus(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status Status `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if !ValidStatus(body.Status) {
			http.Error(w, `{"error":"invalid status"}`, http.StatusBadRequest)
			return
		}

		if err := store.UpdateStatus(r.Context(), chi.URLParam(r, "id"), body.Status); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleDelete(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleMatches(store *Store, profiles *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := store.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if v == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		limit := 10
		if q := r.URL.Query().Get("limit"); q != "" {
			if n, err := strconv.Atoi(q); err == nil && n > 0 {
				limit = n
			}
		}

		matches, err := FindMatches(r.Context(), v, profiles, limit)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		for i := range matches {
			matches[i].Candidate = matches[i].Candidate.Masked()
		}
		if matches == nil {
			matches = []Match{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(matches)
	}
}

func handleCandidates(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		links, err := store.Candidates(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if links == nil {
			links = []CandidateLink{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(links)
	}
}

func handleAttach(store *Store, profiles *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			CandidateID string `json:"candidate_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CandidateID == "" {
			http.Error(w, `{"error":"candidate_id is required"}`, http.StatusBadRequest)
			return
		}

		v, err := store.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if v == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		p, err := profiles.Get(body.CandidateID)
		if err != nil {
			http.Error(w, `{"error":"candidate not found"}`, http.StatusNotFound)
			return
		}

		score := MatchScore(v, p)
		if err := store.Attach(r.Context(), v.ID, p, score); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CandidateLink{
			VacancyID:   v.ID,
			CandidateID: p.CandidateID,
			MatchScore:  score,
			Stage:       profile.StageUploaded,
		})
	}
}

func handleSetStage(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Stage string `json:"stage"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if !profile.ValidStage(body.Stage) {
			http.Error(w, `{"error":"invalid stage"}`, http.StatusBadRequest)
			return
		}

		err := store.SetCandidateStage(r.Context(),
			chi.URLParam(r, "id"), chi.URLParam(r, "candidateID"), body.Stage)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleNotes(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notes, err := store.Notes(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if notes == nil {
			notes = []Note{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(notes)
	}
}

func handleAddNote(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var n Note
		if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if n.Body == "" {
			http.Error(w, `{"error":"body is required"}`, http.StatusBadRequest)
			return
		}
		n.VacancyID = chi.URLParam(r, "id")

		created, err := store.AddNote(r.Context(), n)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}
