package retriever

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/avsrecruit/talentsearch/internal/profile"
)

// ErrMalformedFilter is returned for filter input that cannot be
// interpreted: wrong types, negative experience bounds, or a bound
// range with min above max. It is rejected at the boundary before any
// index is touched.
var ErrMalformedFilter = errors.New("malformed filter")

// Filters narrows search results by structured profile fields. All set
// conditions must hold. A condition on a field the profile does not
// carry passes instead of excluding, so sparse extraction never hides a
// candidate.
type Filters struct {
	RoleCategory      string `json:"role_category,omitempty"`
	MinExperience     *int   `json:"min_experience,omitempty"`
	MaxExperience     *int   `json:"max_experience,omitempty"`
	Location          string `json:"location,omitempty"`
	WorkAuthorization string `json:"work_authorization,omitempty"`
}

// ParseFilters builds Filters from a decoded JSON object, rejecting
// unknown keys and wrongly typed values with a descriptive error.
func ParseFilters(raw map[string]any) (*Filters, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	f := &Filters{}
	for key, val := range raw {
		var err error
		switch key {
		case "role_category":
			f.RoleCategory, err = filterString(key, val)
		case "location":
			f.Location, err = filterString(key, val)
		case "work_authorization":
			f.WorkAuthorization, err = filterString(key, val)
		case "min_experience":
			f.MinExperience, err = filterInt(key, val)
		case "max_experience":
			f.MaxExperience, err = filterInt(key, val)
		default:
			err = fmt.Errorf("%w: unknown filter %q", ErrMalformedFilter, key)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func filterString(key string, val any) (string, error) {
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrMalformedFilter, key, val)
	}
	return s, nil
}

func filterInt(key string, val any) (*int, error) {
	switch n := val.(type) {
	case float64:
		if n != math.Trunc(n) {
			return nil, fmt.Errorf("%w: %s must be an integer, got %v", ErrMalformedFilter, key, n)
		}
		v := int(n)
		return &v, nil
	case int:
		v := n
		return &v, nil
	default:
		return nil, fmt.Errorf("%w: %s must be an integer, got %T", ErrMalformedFilter, key, val)
	}
}

// Validate checks bound sanity. Experience bounds are inclusive.
func (f *Filters) Validate() error {
	if f == nil {
		return nil
	}
	if f.MinExperience != nil && *f.MinExperience < 0 {
		return fmt.Errorf("%w: min_experience must not be negative, got %d", ErrMalformedFilter, *f.MinExperience)
	}
	if f.MaxExperience != nil && *f.MaxExperience < 0 {
		return fmt.Errorf("%w: max_experience must not be negative, got %d", ErrMalformedFilter, *f.MaxExperience)
	}
	if f.MinExperience != nil && f.MaxExperience != nil && *f.MinExperience > *f.MaxExperience {
		return fmt.Errorf("%w: min_experience %d exceeds max_experience %d", ErrMalformedFilter, *f.MinExperience, *f.MaxExperience)
	}
	return nil
}

// Matches reports whether the profile satisfies every set condition.
// String conditions against empty profile fields pass.
func (f *Filters) Matches(p *profile.CandidateProfile) bool {
	if f == nil {
		return true
	}
	if f.RoleCategory != "" && p.RoleCategory != "" && p.RoleCategory != f.RoleCategory {
		return false
	}
	if f.Location != "" && p.Location != "" &&
		!strings.Contains(strings.ToLower(p.Location), strings.ToLower(f.Location)) {
		return false
	}
	if f.WorkAuthorization != "" && p.WorkAuthorization != "" && p.WorkAuthorization != f.WorkAuthorization {
		return false
	}
	if f.MinExperience != nil && p.ExperienceYears < *f.MinExperience {
		return false
	}
	if f.MaxExperience != nil && p.ExperienceYears > *f.MaxExperience {
		return false
	}
	return true
}
