package types

import "strings"

// ParticipantSnapshot is the frozen copy of identifying data attached to an
// enrollment at commitment time. It is never re-derived from the live profile,
// so later profile edits cannot change who was enrolled.
type ParticipantSnapshot struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	BirthDate  string `json:"birth_date"`
	AddrLine1  string `json:"addr_line1"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// MissingFields returns the snapshot fields that fail the minimum-completeness
// check, using the json field names so callers can route users to fix them.
func (s ParticipantSnapshot) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(s.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(s.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if strings.TrimSpace(s.Email) == "" && strings.TrimSpace(s.Phone) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(s.BirthDate) == "" {
		missing = append(missing, "birth_date")
	}
	if strings.TrimSpace(s.AddrLine1) == "" {
		missing = append(missing, "addr_line1")
	}
	if strings.TrimSpace(s.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(s.State) == "" {
		missing = append(missing, "state")
	}
	if strings.TrimSpace(s.PostalCode) == "" {
		missing = append(missing, "postal_code")
	}
	if strings.TrimSpace(s.Country) == "" {
		missing = append(missing, "country")
	}
	return missing
}

// IsComplete reports whether the snapshot satisfies the completeness check.
func (s ParticipantSnapshot) IsComplete() bool {
	return len(s.MissingFields()) == 0
}
