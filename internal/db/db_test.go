package db

import (
	"testing"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Verify tables exist by selecting from each one.
	tables := []string{
		"vacancies", "vacancy_candidates", "vacancy_notes",
		"stage_transitions", "rejections", "audit_entries",
		"chat_sessions", "chat_messages",
	}

	for _, table := range tables {
		var count int
		err := d.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Running migrate again should not fail.
	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	var fk int
	if err := d.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Fatalf("foreign_keys = %d, want 1", fk)
	}

	if _, err := d.Exec(`INSERT INTO vacancies (id, title, role_category) VALUES ('v1', 'QA Lead', 'QA')`); err != nil {
		t.Fatalf("inserting vacancy: %v", err)
	}
	if _, err := d.Exec(`INSERT INTO vacancy_candidates (vacancy_id, candidate_id) VALUES ('v1', 'CAND_1')`); err != nil {
		t.Fatalf("linking candidate: %v", err)
	}
	if _, err := d.Exec(`DELETE FROM vacancies WHERE id = 'v1'`); err != nil {
		t.Fatalf("deleting vacancy: %v", err)
	}

	var count int
	if err := d.QueryRow(`SELECT COUNT(*) FROM vacancy_candidates WHERE vacancy_id = 'v1'`).Scan(&count); err != nil {
		t.Fatalf("counting links: %v", err)
	}
	if count != 0 {
		t.Fatalf("got %d orphaned candidate links after delete, want 0", count)
	}
}

func TestVacancyStatusConstraint(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	_, err = d.Exec(`INSERT INTO vacancies (id, title, role_category, status) VALUES ('v1', 'QA Lead', 'QA', 'Paused')`)
	if err == nil {
		t.Fatal("expected CHECK violation for unknown vacancy status")
	}
}
