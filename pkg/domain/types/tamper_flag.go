package types

// TamperFlag marks evidence that a review card for an action was removed.
// Flags are additive only: once set on an action, a flag is never cleared.
type TamperFlag string

const (
	// TamperFlagInPlaceDeleted is set when the card posted where the action
	// happened is deleted.
	TamperFlagInPlaceDeleted TamperFlag = "inplace_card_deleted"
	// TamperFlagAuditDeleted is set when the audit-channel card is deleted.
	TamperFlagAuditDeleted TamperFlag = "audit_card_deleted"
	// TamperFlagYellow means exactly one review card has been deleted.
	TamperFlagYellow TamperFlag = "yellow"
	// TamperFlagRed means both review cards have been deleted. Red is
	// terminal and implies both deletion flags.
	TamperFlagRed TamperFlag = "red"
)

// String returns the string representation of the tamper flag
func (f TamperFlag) String() string {
	return string(f)
}
