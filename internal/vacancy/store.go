package vacancy

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avsrecruit/talentsearch/internal/db"
	"github.com/avsrecruit/talentsearch/internal/profile"
)

// Store manages persistence of vacancies and their candidate pipeline.
type Store struct {
	db *db.DB
}

// NewStore creates a new vacancy store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create adds a new vacancy.
func (s *Store) Create(ctx context.Context, v Vacancy) (*Vacancy, error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	if v.Status == "" {
		v.Status = StatusOpen
	}
	if !ValidStatus(v.Status) {
		return nil, fmt.Errorf("invalid vacancy status %q", v.Status)
	}
	if v.Priority == "" {
		v.Priority = PriorityMedium
	}
	if !ValidPriority(v.Priority) {
		return nil, fmt.Errorf("invalid vacancy priority %q", v.Priority)
	}

	skills, err := json.Marshal(v.RequiredSkills)
	if err != nil {
		return nil, fmt.Errorf("marshalling required skills: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO vacancies (id, title, role_category, description, required_skills, min_experience, work_authorization, status, priority, auto_created, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Title, v.RoleCategory, v.Description, string(skills),
		v.MinExperience, v.WorkAuthorization, string(v.Status), string(v.Priority), v.AutoCreated,
		v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting vacancy: %w", err)
	}
	return &v, nil
}

// AutoCreate ensures each role category found in the corpus has at
// least one vacancy, creating an open pool vacancy where none exists.
// Returns the vacancies it created.
func (s *Store) AutoCreate(ctx context.Context, roleCategories []string) ([]Vacancy, error) {
	var created []Vacancy
	for _, role := range roleCategories {
		if role == "" {
			continue
		}

		var count int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM vacancies WHERE role_category = ?`, role,
		).Scan(&count)
		if err != nil {
			return created, fmt.Errorf("checking role %q: %w", role, err)
		}
		if count > 0 {
			continue
		}

		v, err := s.Create(ctx, Vacancy{
			Title:        role + " Candidate Pool",
			RoleCategory: role,
			AutoCreated:  true,
		})
		if err != nil {
			return created, err
		}
		created = append(created, *v)
	}
	return created, nil
}

// GetByID retrieves a vacancy. Returns (nil, nil) when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Vacancy, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, role_category, description, required_skills, min_experience, work_authorization, status, priority, auto_created, created_at, updated_at
		 FROM vacancies WHERE id = ?`, id)

	v, err := scanVacancy(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting vacancy: %w", err)
	}
	return v, nil
}

// List returns vacancies matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Vacancy, error) {
	query := `SELECT id, title, role_category, description, required_skills, min_experience, work_authorization, status, priority, auto_created, created_at, updated_at
		 FROM vacancies WHERE 1=1`
	args := []any{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.RoleCategory != "" {
		query += " AND role_category = ?"
		args = append(args, filter.RoleCategory)
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing vacancies: %w", err)
	}
	defer rows.Close()

	var vacancies []Vacancy
	for rows.Next() {
		v, err := scanVacancy(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning vacancy: %w", err)
		}
		vacancies = append(vacancies, *v)
	}
	return vacancies, rows.Err()
}

// Update replaces the editable fields of a vacancy.
func (s *Store) Update(ctx context.Context, v Vacancy) error {
	skills, err := json.Marshal(v.RequiredSkills)
	if err != nil {
		return fmt.Errorf("marshalling required skills: %w", err)
	}

	if v.Priority != "" && !ValidPriority(v.Priority) {
		return fmt.Errorf("invalid vacancy priority %q", v.Priority)
	}
	if v.Priority == "" {
		v.Priority = PriorityMedium
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE vacancies SET title = ?, role_category = ?, description = ?, required_skills = ?, min_experience = ?, work_authorization = ?, priority = ?, updated_at = ?
		 WHERE id = ?`,
		v.Title, v.RoleCategory, v.Description, string(skills),
		v.MinExperience, v.WorkAuthorization, string(v.Priority), time.Now().UTC(), v.ID,
	)
	if err != nil {
		return fmt.Errorf("updating vacancy: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("vacancy not found: %s", v.ID)
	}
	return nil
}

// UpdateStatus moves a vacancy through its lifecycle.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !ValidStatus(status) {
		return fmt.Errorf("invalid vacancy status %q", status)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE vacancies SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("vacancy not found: %s", id)
	}
	return nil
}

// Delete removes a vacancy and, via cascade, its candidate links and notes.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM vacancies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting vacancy: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("vacancy not found: %s", id)
	}
	return nil
}

// Attach links a candidate to a vacancy with the given match score.
// Re-attaching updates the score but keeps the pipeline stage.
func (s *Store) Attach(ctx context.Context, vacancyID string, p *profile.CandidateProfile, score float64) error {
	stage := p.Stage
	if stage == "" {
		stage = profile.StageUploaded
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vacancy_candidates (vacancy_id, candidate_id, match_score, stage)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(vacancy_id, candidate_id) DO UPDATE SET match_score = excluded.match_score`,
		vacancyID, p.CandidateID, score, stage,
	)
	if err != nil {
		return fmt.Errorf("attaching candidate: %w", err)
	}
	return nil
}

// Candidates returns the candidates attached to a vacancy, best match first.
func (s *Store) Candidates(ctx context.Context, vacancyID string) ([]CandidateLink, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT vacancy_id, candidate_id, match_score, stage, added_at
		 FROM vacancy_candidates WHERE vacancy_id = ?
		 ORDER BY match_score DESC, candidate_id ASC`, vacancyID)
	if err != nil {
		return nil, fmt.Errorf("listing vacancy candidates: %w", err)
	}
	defer rows.Close()

	var links []CandidateLink
	for rows.Next() {
		var l CandidateLink
		if err := rows.Scan(&l.VacancyID, &l.CandidateID, &l.MatchScore, &l.Stage, &l.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning candidate link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// SetCandidateStage moves an attached candidate to a new pipeline stage
// and records the transition for funnel metrics.
func (s *Store) SetCandidateStage(ctx context.Context, vacancyID, candidateID, stage string) error {
	if !profile.ValidStage(stage) {
		return fmt.Errorf("invalid pipeline stage %q", stage)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning stage change: %w", err)
	}
	defer tx.Rollback()

	var from string
	err = tx.QueryRowContext(ctx,
		`SELECT stage FROM vacancy_candidates WHERE vacancy_id = ? AND candidate_id = ?`,
		vacancyID, candidateID,
	).Scan(&from)
	if err == sql.ErrNoRows {
		return fmt.Errorf("candidate %s not attached to vacancy %s", candidateID, vacancyID)
	}
	if err != nil {
		return fmt.Errorf("reading current stage: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE vacancy_candidates SET stage = ? WHERE vacancy_id = ? AND candidate_id = ?`,
		stage, vacancyID, candidateID,
	); err != nil {
		return fmt.Errorf("updating stage: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO stage_transitions (id, candidate_id, vacancy_id, from_stage, to_stage)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), candidateID, vacancyID, from, stage,
	); err != nil {
		return fmt.Errorf("recording transition: %w", err)
	}

	return tx.Commit()
}

// AddNote records a recruiter note.
func (s *Store) AddNote(ctx context.Context, n Note) (*Note, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vacancy_notes (id, vacancy_id, candidate_id, author, body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.VacancyID, n.CandidateID, n.Author, n.Body, n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting note: %w", err)
	}
	return &n, nil
}

// Notes returns the notes on a vacancy, newest first.
func (s *Store) Notes(ctx context.Context, vacancyID string) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, vacancy_id, candidate_id, author, body, created_at
		 FROM vacancy_notes WHERE vacancy_id = ? ORDER BY created_at DESC`, vacancyID)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.VacancyID, &n.CandidateID, &n.Author, &n.Body, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanVacancy(sc scanner) (*Vacancy, error) {
	var (
		v        Vacancy
		status   string
		priority string
		skills   string
	)
	err := sc.Scan(&v.ID, &v.Title, &v.RoleCategory, &v.Description, &skills,
		&v.MinExperience, &v.WorkAuthorization, &status, &priority, &v.AutoCreated,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.Status = Status(status)
	v.Priority = Priority(priority)
	if err := json.Unmarshal([]byte(skills), &v.RequiredSkills); err != nil {
		v.RequiredSkills = nil
	}
	return &v, nil
}
