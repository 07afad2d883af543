package profile

import "strings"

// MaskEmail hides the local part of an email address for display,
// keeping the domain so recruiters can still judge provenance.
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return "***"
	}
	stars := at
	if stars > 3 {
		stars = 3
	}
	return strings.Repeat("*", stars) + email[at:]
}

// MaskPhone hides all but the last four digits of a phone number.
func MaskPhone(phone string) string {
	if phone == "" {
		return ""
	}
	if len(phone) < 4 {
		return "***"
	}
	return "+1-***-***-" + phone[len(phone)-4:]
}

// Masked returns a copy of the profile with contact PII obscured.
// Reveals are an explicit, audited action.
func (p *CandidateProfile) Masked() *CandidateProfile {
	masked := *p
	masked.Email = MaskEmail(p.Email)
	masked.Phone = MaskPhone(p.Phone)
	return &masked
}
