package types

import "fmt"

// AppealStatus represents the status of a ban appeal.
type AppealStatus string

const (
	AppealStatusPending  AppealStatus = "pending"
	AppealStatusApproved AppealStatus = "approved"
	AppealStatusDenied   AppealStatus = "denied"
)

// IsValid checks if the appeal status is valid
func (s AppealStatus) IsValid() bool {
	switch s {
	case AppealStatusPending, AppealStatusApproved, AppealStatusDenied:
		return true
	default:
		return false
	}
}

// String returns the string representation of the appeal status
func (s AppealStatus) String() string {
	return string(s)
}

// ParseAppealStatus parses a string into an AppealStatus
func ParseAppealStatus(s string) (AppealStatus, error) {
	status := AppealStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid appeal status: %s", s)
	}
	return status, nil
}
