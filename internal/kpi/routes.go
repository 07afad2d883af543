package kpi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the KPI dashboard API routes.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/kpi", func(r chi.Router) {
		r.Get("/overview", handleOverview(svc))
		r.Get("/funnel", handleFunnel(svc))
		r.Get("/time-to-hire", handleTimeToHire(svc))
		r.Get("/trends", handleTrends(svc))
		r.Get("/rejections", handleRejections(svc))
		r.Post("/rejections", handleRecordRejection(svc))
	})
}

func handleOverview(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := svc.Overview(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, o)
	}
}

func handleFunnel(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := svc.Funnel(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, f)
	}
}

func handleTimeToHire(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := svc.TimeToHire(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, t)
	}
}

func handleTrends(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, _ := strconv.Atoi(r.URL.Query().Get("days"))
		t, err := svc.HiringTrends(r.Context(), days)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, t)
	}
}

func handleRejections(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := svc.Rejections(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, s)
	}
}

func handleRecordRejection(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			CandidateID string `json:"candidate_id"`
			VacancyID   string `json:"vacancy_id"`
			Stage       string `json:"stage"`
			Reason      string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		err := svc.RecordRejection(r.Context(), body.CandidateID, body.VacancyID, body.Stage, body.Reason)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
