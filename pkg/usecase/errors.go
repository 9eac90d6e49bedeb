package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for usecase operations
var (
	ErrActionNotFound = goerr.New("action not found")
	ErrAppealNotFound = goerr.New("appeal not found")
	ErrEmptyAppeal    = goerr.New("appeal text is required")
	ErrInvalidKind    = goerr.New("invalid action kind")
)

// Context keys for error values
const (
	ActionIDKey  = "action_id"
	AppealIDKey  = "appeal_id"
	CardIDKey    = "card_id"
	TargetIDKey  = "target_id"
	MessageIDKey = "message_id"
)
