package types

import "fmt"

// CardLocation distinguishes the two review cards rendered per action.
type CardLocation string

const (
	// CardLocationInPlace is the conversation where the action happened.
	CardLocationInPlace CardLocation = "in_place"
	// CardLocationAudit is the private audit channel.
	CardLocationAudit CardLocation = "audit"
)

// IsValid checks if the card location is valid
func (l CardLocation) IsValid() bool {
	switch l {
	case CardLocationInPlace, CardLocationAudit:
		return true
	default:
		return false
	}
}

// String returns the string representation of the card location
func (l CardLocation) String() string {
	return string(l)
}

// ParseCardLocation parses a string into a CardLocation
func ParseCardLocation(s string) (CardLocation, error) {
	loc := CardLocation(s)
	if !loc.IsValid() {
		return "", fmt.Errorf("invalid card location: %s", s)
	}
	return loc, nil
}
