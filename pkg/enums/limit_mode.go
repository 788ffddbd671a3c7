package enums

import "fmt"

// LimitMode controls whether a plan counter is capped or open-ended.
type LimitMode string

const (
	LimitModeLimited   LimitMode = "limited"
	LimitModeUnlimited LimitMode = "unlimited"
)

var validLimitModes = []LimitMode{
	LimitModeLimited,
	LimitModeUnlimited,
}

// String implements fmt.Stringer.
func (l LimitMode) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LimitMode.
func (l LimitMode) IsValid() bool {
	for _, candidate := range validLimitModes {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLimitMode converts raw input into a LimitMode.
func ParseLimitMode(value string) (LimitMode, error) {
	for _, candidate := range validLimitModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid limit mode %q", value)
}
