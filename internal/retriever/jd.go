package retriever

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/avsrecruit/talentsearch/internal/profile"
)

// JDRequirements is the structured form of a free-text job description,
// good enough to drive a hybrid search plus an experience filter.
type JDRequirements struct {
	Skills        []string `json:"skills"`
	MinExperience int      `json:"min_experience"`
	Query         string   `json:"query"`
}

var (
	jdToken = regexp.MustCompile(`[a-z0-9+#/.]+`)

	// Orderings seen in real postings: "5+ years", "minimum of 7
	// years", "at least 3 years".
	jdExperience = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2})\s*\+?\s*years?`),
		regexp.MustCompile(`minimum\s+(?:of\s+)?(\d{1,2})`),
		regexp.MustCompile(`at\s+least\s+(\d{1,2})`),
	}
)

// ExtractRequirements scans a job description for known skills and an
// experience requirement. When several experience figures appear the
// largest wins, capped at 50. The returned Query is the skill list
// joined, or the leading text when no skill matched, and is what the
// hybrid search should run.
func ExtractRequirements(text string) JDRequirements {
	lower := strings.ToLower(text)

	tokens := make(map[string]bool)
	for _, t := range jdToken.FindAllString(lower, -1) {
		tokens[t] = true
	}

	var skills []string
	for _, skill := range profile.SkillVocabulary {
		matched := true
		for _, part := range strings.Fields(skill) {
			if !tokens[part] {
				matched = false
				break
			}
		}
		if matched {
			skills = append(skills, skill)
		}
	}

	years := 0
	for _, re := range jdExperience {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil && n > years {
				years = n
			}
		}
	}
	if years > 50 {
		years = 50
	}

	query := strings.Join(skills, " ")
	if query == "" {
		query = strings.TrimSpace(lower)
		if len(query) > 100 {
			query = query[:100]
		}
	}

	return JDRequirements{Skills: skills, MinExperience: years, Query: query}
}
