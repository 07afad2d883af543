package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avsrecruit/talentsearch/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return NewStore(d)
}

func TestLogAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := Entry{
		ID:     "e1",
		Actor:  "recruiter",
		Action: ActionRevealPII,
		Detail: "candidate=CAND_alice",
	}
	if err := store.Log(ctx, entry); err != nil {
		t.Fatalf("Log: %v", err)
	}

	got, err := store.GetByID(ctx, "e1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Action != ActionRevealPII || got.Detail != "candidate=CAND_alice" {
		t.Fatalf("got %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Fatal("timestamp not populated")
	}
}

func TestLogDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Log(ctx, Entry{Action: ActionSearch, Detail: "query=python"}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	entries, err := store.Query(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].ID == "" {
		t.Fatal("expected a generated id")
	}
	if entries[0].Actor != DefaultActor {
		t.Fatalf("actor = %q, want %q", entries[0].Actor, DefaultActor)
	}
}

func TestRecordNeverFails(t *testing.T) {
	store := newTestStore(t)

	// Record has no error return; it must swallow failures. Close the
	// database underneath it to force one.
	store.db.Close()
	store.Record(context.Background(), "search", "query=python")
}

func TestQueryFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := []Entry{
		{ID: "a", Action: ActionSearch, Detail: "query=python"},
		{ID: "b", Action: ActionRevealPII, Detail: "candidate=CAND_bob"},
		{ID: "c", Action: ActionSearch, Detail: "query=java"},
	}
	for _, e := range seed {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	searches, err := store.Query(ctx, QueryFilter{Action: ActionSearch})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(searches) != 2 {
		t.Fatalf("got %d search entries, want 2", len(searches))
	}

	limited, err := store.Query(ctx, QueryFilter{Limit: 1})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("got %d entries with limit 1", len(limited))
	}

	future := time.Now().Add(time.Hour)
	none, err := store.Query(ctx, QueryFilter{Since: &future})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("got %d entries from the future", len(none))
	}
}

func TestDeleteBefore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Log(ctx, Entry{Action: ActionSearch}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	n, err := store.DeleteBefore(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if n != 1 {
		t.Fatalf("deleted %d rows, want 1", n)
	}
}

func TestAuditEndpoints(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Log(ctx, Entry{ID: "e1", Action: ActionDownloadCV, Detail: "candidate=CAND_carol"}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	router := chi.NewRouter()
	RegisterRoutes(router, store)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/audit/?action=download_cv")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "e1" {
		t.Fatalf("entries = %+v", entries)
	}

	one, err := http.Get(srv.URL + "/api/audit/e1")
	if err != nil {
		t.Fatalf("GET by id: %v", err)
	}
	defer one.Body.Close()
	if one.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", one.StatusCode)
	}

	missing, err := http.Get(srv.URL + "/api/audit/nope")
	if err != nil {
		t.Fatalf("GET missing: %v", err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", missing.StatusCode)
	}
}
