package types

import "fmt"

// ActionKind represents the kind of a moderation action.
type ActionKind string

const (
	ActionKindBan     ActionKind = "ban"
	ActionKindKick    ActionKind = "kick"
	ActionKindSoftban ActionKind = "softban"
	ActionKindLock    ActionKind = "lock"
	ActionKindPurge   ActionKind = "purge"

	// Kinds below are accepted from command handlers but excluded from
	// oversight: they are reversible in place and never produce a ledger
	// record.
	ActionKindMute    ActionKind = "mute"
	ActionKindWarn    ActionKind = "warn"
	ActionKindTimeout ActionKind = "timeout"
)

// AllActionKinds returns every kind a command handler may report.
func AllActionKinds() []ActionKind {
	return []ActionKind{
		ActionKindBan,
		ActionKindKick,
		ActionKindSoftban,
		ActionKindLock,
		ActionKindPurge,
		ActionKindMute,
		ActionKindWarn,
		ActionKindTimeout,
	}
}

// IsValid checks if the action kind is valid
func (k ActionKind) IsValid() bool {
	switch k {
	case ActionKindBan, ActionKindKick, ActionKindSoftban, ActionKindLock,
		ActionKindPurge, ActionKindMute, ActionKindWarn, ActionKindTimeout:
		return true
	default:
		return false
	}
}

// Overseen reports whether actions of this kind enter the review ledger.
func (k ActionKind) Overseen() bool {
	switch k {
	case ActionKindBan, ActionKindKick, ActionKindSoftban, ActionKindLock, ActionKindPurge:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action kind
func (k ActionKind) String() string {
	return string(k)
}

// ParseActionKind parses a string into an ActionKind
func ParseActionKind(s string) (ActionKind, error) {
	kind := ActionKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid action kind: %s", s)
	}
	return kind, nil
}
