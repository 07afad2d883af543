// Package ingest turns a raw resume corpus into candidate profiles and
// per-candidate feature vectors under the parsed directory.
package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/avsrecruit/talentsearch/internal/profile"
)

var (
	emailRE    = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	linkedinRE = regexp.MustCompile(`(?i)linkedin\.com/in/[\w-]+`)

	phoneREs = []*regexp.Regexp{
		regexp.MustCompile(`\+?1?\s*\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\+\d{1,3}\s?\d{10,14}`),
	}

	locationREs = []*regexp.Regexp{
		regexp.MustCompile(`([A-Za-z][A-Za-z ]*, *[A-Z]{2} *\d{5})`),
		regexp.MustCompile(`([A-Za-z][A-Za-z ]*, *[A-Z]{2})\b`),
	}

	experienceREs = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2})\s*\+?\s*years?\s+(?:of\s+)?experience`),
		regexp.MustCompile(`experience\s*:\s*(\d{1,2})\s*\+?\s*years?`),
		regexp.MustCompile(`(\d{1,2})\s*\+?\s*years?\s+in\b`),
	}

	degreeREs = []*regexp.Regexp{
		regexp.MustCompile(`(bachelor(?:'s)?|b\.?s\.?|b\.?a\.?)\s+(?:of\s+)?(?:science|arts)?\s*(?:in\s+)?([a-z][a-z\s]+)`),
		regexp.MustCompile(`(master(?:'s)?|m\.?s\.?|m\.?a\.?)\s+(?:of\s+)?(?:science|arts)?\s*(?:in\s+)?([a-z][a-z\s]+)`),
		regexp.MustCompile(`(ph\.?d\.?|doctorate)\s+(?:in\s+)?([a-z][a-z\s]+)`),
	}
)

// workAuthPatterns maps detected phrases to a normalized authorization
// label. Order matters: the first category with a hit wins.
var workAuthPatterns = []struct {
	label    string
	patterns []*regexp.Regexp
}{
	{"US Citizen", []*regexp.Regexp{
		regexp.MustCompile(`u\.?s\.?\s+citizen`),
		regexp.MustCompile(`united\s+states\s+citizen`),
		regexp.MustCompile(`citizenship\s*:\s*u\.?s`),
	}},
	{"Green Card", []*regexp.Regexp{
		regexp.MustCompile(`green\s+card`),
		regexp.MustCompile(`permanent\s+resident`),
	}},
	{"H1B", []*regexp.Regexp{
		regexp.MustCompile(`h-?1b`),
	}},
	{"OPT", []*regexp.Regexp{
		regexp.MustCompile(`\bopt\b`),
		regexp.MustCompile(`optional\s+practical\s+training`),
	}},
	{"TN Visa", []*regexp.Regexp{
		regexp.MustCompile(`\btn-?1?\b.{0,20}visa`),
	}},
}

var (
	authorizedRE  = regexp.MustCompile(`authorized\s+to\s+work`)
	sponsorshipRE = regexp.MustCompile(`(?:requires?|needs?)\s+(?:visa\s+)?sponsor`)
)

// Extracted holds the fields pulled from raw resume text.
type Extracted struct {
	Email             string
	Phone             string
	LinkedIn          string
	Location          string
	WorkAuthorization string
	Skills            []profile.Skill
	ExperienceYears   int
	Education         []profile.Education
	Availability      string
	Snippet           string
}

// Extract scans resume text for contact details, skills, experience and
// the other structured fields a profile carries.
func Extract(text string) Extracted {
	lower := strings.ToLower(text)
	return Extracted{
		Email:             emailRE.FindString(text),
		Phone:             extractPhone(text),
		LinkedIn:          linkedinRE.FindString(text),
		Location:          extractLocation(text),
		WorkAuthorization: extractWorkAuth(lower),
		Skills:            extractSkills(lower),
		ExperienceYears:   extractExperience(lower),
		Education:         extractEducation(lower),
		Availability:      extractAvailability(lower),
		Snippet:           makeSnippet(text),
	}
}

func extractPhone(text string) string {
	for _, re := range phoneREs {
		if m := re.FindString(text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

func extractLocation(text string) string {
	for _, re := range locationREs {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func extractWorkAuth(lower string) string {
	for _, cat := range workAuthPatterns {
		for _, re := range cat.patterns {
			if re.MatchString(lower) {
				return cat.label
			}
		}
	}
	if authorizedRE.MatchString(lower) {
		return "Authorized to Work"
	}
	if sponsorshipRE.MatchString(lower) {
		return "Requires Sponsorship"
	}
	return ""
}

// extractSkills matches the skill taxonomy against the text. A skill
// surrounded by whitespace scores higher confidence than one embedded
// in a longer token.
func extractSkills(lower string) []profile.Skill {
	var skills []profile.Skill
	for _, name := range profile.SkillVocabulary {
		if !strings.Contains(lower, name) {
			continue
		}
		confidence := 0.7
		if strings.Contains(lower, " "+name+" ") || strings.Contains(lower, " "+name+",") ||
			strings.Contains(lower, " "+name+"\n") {
			confidence = 0.9
		}
		skills = append(skills, profile.Skill{Name: name, Confidence: confidence})
	}
	return skills
}

func extractExperience(lower string) int {
	max := 0
	for _, re := range experienceREs {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			years, err := strconv.Atoi(m[1])
			if err != nil || years > 50 {
				continue
			}
			if years > max {
				max = years
			}
		}
	}
	return max
}

func extractEducation(lower string) []profile.Education {
	var edu []profile.Education
	for _, re := range degreeREs {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			field := strings.TrimSpace(m[2])
			if field == "" {
				continue
			}
			edu = append(edu, profile.Education{
				Degree: strings.TrimSpace(m[1]),
				Field:  field,
			})
		}
	}
	return edu
}

var availabilityREs = []struct {
	label string
	re    *regexp.Regexp
}{
	{"Immediate", regexp.MustCompile(`immediate(?:ly)?\s+available`)},
	{"2 Weeks Notice", regexp.MustCompile(`(?:2|two)\s+weeks?\s+notice`)},
	{"1 Month Notice", regexp.MustCompile(`(?:1|one)\s+month\s+notice`)},
}

func extractAvailability(lower string) string {
	for _, a := range availabilityREs {
		if a.re.MatchString(lower) {
			return a.label
		}
	}
	return ""
}

// makeSnippet keeps the first few sentences, capped at 300 characters.
func makeSnippet(text string) string {
	sentences := strings.SplitN(text, ".", 4)
	if len(sentences) > 3 {
		sentences = sentences[:3]
	}
	snippet := strings.TrimSpace(strings.Join(sentences, ". "))
	if len(snippet) > 300 {
		return snippet[:300] + "..."
	}
	return snippet
}
