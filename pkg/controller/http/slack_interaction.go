package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/secmon-lab/warden/pkg/domain/types"
	"github.com/secmon-lab/warden/pkg/usecase"
	"github.com/secmon-lab/warden/pkg/utils/async"
	"github.com/secmon-lab/warden/pkg/utils/errutil"
	"github.com/secmon-lab/warden/pkg/utils/logging"
)

// SlackInteractionHandler handles review card button clicks.
type SlackInteractionHandler struct {
	uc *usecase.UseCases
}

func NewSlackInteractionHandler(uc *usecase.UseCases) *SlackInteractionHandler {
	return &SlackInteractionHandler{uc: uc}
}

func (h *SlackInteractionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Slack sends interaction payloads as application/x-www-form-urlencoded
	// with a "payload" field containing JSON
	payload := r.FormValue("payload")
	if payload == "" {
		errutil.HandleHTTP(ctx, w, goerr.New("missing payload field in interaction request"), http.StatusBadRequest)
		return
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &callback); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse interaction payload"), http.StatusBadRequest)
		return
	}

	// Only handle block_actions (button clicks)
	if callback.Type != slack.InteractionTypeBlockActions {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusOK)

	actions := callback.ActionCallback.BlockActions
	async.Dispatch(ctx, func(ctx context.Context) error {
		for _, action := range actions {
			h.handleBlockAction(ctx, action.ActionID, action.Value)
		}
		return nil
	})
}

func (h *SlackInteractionHandler) handleBlockAction(ctx context.Context, actionID, value string) {
	logger := logging.From(ctx)

	switch actionID {
	case usecase.CardActionIDApprove, usecase.CardActionIDRevert,
		usecase.CardActionIDAppealAccept, usecase.CardActionIDAppealDeny:
	default:
		return
	}

	_, id, err := usecase.ParseCardValue(value)
	if err != nil {
		logger.Warn("failed to parse card button value", "error", err, "value", value)
		return
	}

	var done bool
	switch actionID {
	case usecase.CardActionIDApprove:
		done, err = h.uc.Ledger.Approve(ctx, types.ActionID(id))
	case usecase.CardActionIDRevert:
		done, err = h.uc.Ledger.Revert(ctx, types.ActionID(id))
	case usecase.CardActionIDAppealAccept:
		done, err = h.uc.Appeal.Approve(ctx, types.AppealID(id))
	case usecase.CardActionIDAppealDeny:
		done, err = h.uc.Appeal.Deny(ctx, types.AppealID(id))
	}

	if err != nil {
		errutil.Handle(ctx, err, "failed to handle card interaction")
		return
	}
	if !done {
		// Already resolved or unknown record; stale button click.
		logger.Info("ignored stale card interaction", "action_id", actionID, "value", value)
	}
}
