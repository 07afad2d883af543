package profile

import "strings"

// IDPrefix marks candidate IDs. The profile directory also holds the
// vectorizer model and per-candidate vector files, so the store relies
// on this prefix to tell candidate JSON apart from other artifacts.
const IDPrefix = "CAND_"

// Skill is one extracted skill with a parser confidence in [0,1].
type Skill struct {
	Name       string  `json:"name" validate:"required"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// Education is one extracted degree.
type Education struct {
	Degree string `json:"degree"`
	Field  string `json:"field"`
}

// CandidateProfile is the structured record describing one resume after
// extraction. It is the single source of truth for candidate metadata;
// the retriever and all collaborators consume it read-only.
type CandidateProfile struct {
	CandidateID       string      `json:"candidate_id" validate:"required"`
	Name              string      `json:"name,omitempty"`
	RoleCategory      string      `json:"role_category,omitempty"`
	Titles            []string    `json:"titles,omitempty"`
	Skills            []Skill     `json:"skills,omitempty" validate:"dive"`
	ExperienceYears   int         `json:"experience_years" validate:"gte=0,lte=50"`
	Education         []Education `json:"education,omitempty"`
	Email             string      `json:"email,omitempty" validate:"omitempty,email"`
	Phone             string      `json:"phone,omitempty"`
	LinkedIn          string      `json:"linkedin,omitempty"`
	Location          string      `json:"location,omitempty"`
	WorkAuthorization string      `json:"work_authorization,omitempty"`
	Availability      string      `json:"availability,omitempty"`
	ResumeSnippet     string      `json:"resume_snippet,omitempty"`
	SourceFile        string      `json:"source_file,omitempty"`
	ParsedDate        string      `json:"parsed_date,omitempty"`
	Status            string      `json:"status,omitempty"`
	Stage             string      `json:"stage,omitempty"`

	// SearchScore is the fused relevance score attached by the retriever.
	// It is never persisted to the profile store.
	SearchScore float64 `json:"search_score,omitempty"`
}

// SearchText composes the text both retrieval signals index for this
// candidate. The ingest pipeline and the index rebuild must agree on
// this composition or the vector and keyword artifacts drift apart.
func (p *CandidateProfile) SearchText() string {
	parts := []string{
		p.Name,
		p.RoleCategory,
		strings.Join(p.Titles, " "),
		strings.Join(p.SkillNames(), " "),
		p.Location,
		p.WorkAuthorization,
		p.ResumeSnippet,
	}
	return strings.Join(parts, " ")
}

// SkillNames returns the ordered skill names, preserving duplicates.
func (p *CandidateProfile) SkillNames() []string {
	names := make([]string, len(p.Skills))
	for i, s := range p.Skills {
		names[i] = s.Name
	}
	return names
}

// Candidate pipeline stages, mirroring the recruiting funnel.
const (
	StageUploaded  = "Uploaded"
	StageScreening = "Screening"
	StageInterview = "Interview"
	StageOffer     = "Offer"
	StageHired     = "Hired"
)

// Stages lists the pipeline stages in funnel order.
var Stages = []string{StageUploaded, StageScreening, StageInterview, StageOffer, StageHired}

// ValidStage reports whether s names a pipeline stage.
func ValidStage(s string) bool {
	for _, stage := range Stages {
		if s == stage {
			return true
		}
	}
	return false
}
