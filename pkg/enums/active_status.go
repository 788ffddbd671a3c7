package enums

import "fmt"

// ActiveStatus tracks whether a promotion or subscription row is live.
type ActiveStatus string

const (
	ActiveStatusActive   ActiveStatus = "active"
	ActiveStatusInactive ActiveStatus = "inactive"
)

var validActiveStatuses = []ActiveStatus{
	ActiveStatusActive,
	ActiveStatusInactive,
}

// String implements fmt.Stringer.
func (a ActiveStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActiveStatus.
func (a ActiveStatus) IsValid() bool {
	for _, candidate := range validActiveStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActiveStatus converts raw input into an ActiveStatus.
func ParseActiveStatus(value string) (ActiveStatus, error) {
	for _, candidate := range validActiveStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid active status %q", value)
}
