package vacancy

import (
	"context"
	"sort"
	"strings"

	"github.com/avsrecruit/talentsearch/internal/profile"
)

// MatchScore rates a candidate against a vacancy on a 0-100 scale.
// Role fit gives 20, skill coverage up to 40, meeting the experience
// bar 20 plus up to 10 for extra years, work authorization 10. A
// vacancy that leaves a requirement open awards its points rather than
// penalizing every candidate.
func MatchScore(v *Vacancy, p *profile.CandidateProfile) float64 {
	var score float64

	if v.RoleCategory == "" || strings.EqualFold(v.RoleCategory, p.RoleCategory) {
		score += 20
	}

	if len(v.RequiredSkills) == 0 {
		score += 40
	} else {
		have := make(map[string]bool, len(p.Skills))
		for _, s := range p.Skills {
			have[strings.ToLower(s.Name)] = true
		}
		matched := 0
		for _, s := range v.RequiredSkills {
			if have[strings.ToLower(s)] {
				matched++
			}
		}
		score += 40 * float64(matched) / float64(len(v.RequiredSkills))
	}

	if p.ExperienceYears >= v.MinExperience {
		score += 20
		bonus := float64(p.ExperienceYears-v.MinExperience) * 2
		if bonus > 10 {
			bonus = 10
		}
		score += bonus
	}

	if v.WorkAuthorization == "" || strings.EqualFold(v.WorkAuthorization, p.WorkAuthorization) {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

// Match is one ranked candidate for a vacancy.
type Match struct {
	Candidate *profile.CandidateProfile `json:"candidate"`
	Score     float64                   `json:"score"`
}

// FindMatches ranks the whole corpus against a vacancy and returns the
// top limit candidates, best score first with candidate id breaking ties.
func FindMatches(ctx context.Context, v *Vacancy, profiles *profile.Store, limit int) ([]Match, error) {
	all, err := profiles.List()
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(all))
	for _, p := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		matches = append(matches, Match{Candidate: p, Score: MatchScore(v, p)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Candidate.CandidateID < matches[j].Candidate.CandidateID
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
