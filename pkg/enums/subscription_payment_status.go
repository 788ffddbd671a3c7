package enums

import "fmt"

// SubscriptionPaymentStatus tracks whether a subscription row has cleared payment.
type SubscriptionPaymentStatus string

const (
	SubscriptionPaymentStatusUnpaid SubscriptionPaymentStatus = "unpaid"
	SubscriptionPaymentStatusPaid   SubscriptionPaymentStatus = "paid"
)

var validSubscriptionPaymentStatuses = []SubscriptionPaymentStatus{
	SubscriptionPaymentStatusUnpaid,
	SubscriptionPaymentStatusPaid,
}

// String implements fmt.Stringer.
func (s SubscriptionPaymentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SubscriptionPaymentStatus.
func (s SubscriptionPaymentStatus) IsValid() bool {
	for _, candidate := range validSubscriptionPaymentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSubscriptionPaymentStatus converts raw input into a SubscriptionPaymentStatus.
func ParseSubscriptionPaymentStatus(value string) (SubscriptionPaymentStatus, error) {
	for _, candidate := range validSubscriptionPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid subscription payment status %q", value)
}
