package enums

import "fmt"

// EnrollmentStatus tracks the lifecycle of an enrollment row.
type EnrollmentStatus string

const (
	EnrollmentStatusActive           EnrollmentStatus = "active"
	EnrollmentStatusPendingForms     EnrollmentStatus = "pending_forms"
	EnrollmentStatusWaitlistAccepted EnrollmentStatus = "waitlist_accepted"
	EnrollmentStatusCanceled         EnrollmentStatus = "canceled"
	EnrollmentStatusCompleted        EnrollmentStatus = "completed"
)

var validEnrollmentStatuses = []EnrollmentStatus{
	EnrollmentStatusActive,
	EnrollmentStatusPendingForms,
	EnrollmentStatusWaitlistAccepted,
	EnrollmentStatusCanceled,
	EnrollmentStatusCompleted,
}

// String implements fmt.Stringer.
func (e EnrollmentStatus) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EnrollmentStatus.
func (e EnrollmentStatus) IsValid() bool {
	for _, candidate := range validEnrollmentStatuses {
		if candidate == e {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the enrollment lifecycle.
func (e EnrollmentStatus) IsTerminal() bool {
	return e == EnrollmentStatusCanceled || e == EnrollmentStatusCompleted
}

// ParseEnrollmentStatus converts raw input into an EnrollmentStatus.
func ParseEnrollmentStatus(value string) (EnrollmentStatus, error) {
	for _, candidate := range validEnrollmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid enrollment status %q", value)
}
