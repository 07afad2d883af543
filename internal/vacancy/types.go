package vacancy

import "time"

// Status represents the lifecycle stage of a vacancy.
type Status string

const (
	StatusOpen   Status = "Open"
	StatusOnHold Status = "On Hold"
	StatusClosed Status = "Closed"
	StatusFilled Status = "Filled"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusOpen, StatusOnHold, StatusClosed, StatusFilled:
		return true
	}
	return false
}

// Priority ranks how urgently a vacancy needs filling.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Vacancy is one open position candidates are matched against.
type Vacancy struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	RoleCategory      string    `json:"role_category"`
	Description       string    `json:"description,omitempty"`
	RequiredSkills    []string  `json:"required_skills,omitempty"`
	MinExperience     int       `json:"min_experience"`
	WorkAuthorization string    `json:"work_authorization,omitempty"`
	Status            Status    `json:"status"`
	Priority          Priority  `json:"priority"`
	AutoCreated       bool      `json:"auto_created"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CandidateLink attaches a candidate to a vacancy with the match score
// computed at attach time.
type CandidateLink struct {
	VacancyID   string    `json:"vacancy_id"`
	CandidateID string    `json:"candidate_id"`
	MatchScore  float64   `json:"match_score"`
	Stage       string    `json:"stage"`
	AddedAt     time.Time `json:"added_at"`
}

// Note is a recruiter note on a vacancy, optionally about one candidate.
type Note struct {
	ID          string    `json:"id"`
	VacancyID   string    `json:"vacancy_id"`
	CandidateID string    `json:"candidate_id,omitempty"`
	Author      string    `json:"author,omitempty"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListFilter controls which vacancies List returns.
type ListFilter struct {
	Status       Status
	RoleCategory string
	Limit        int
	Offset       int
}
