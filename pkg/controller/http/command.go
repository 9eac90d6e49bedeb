package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
	"github.com/secmon-lab/warden/pkg/usecase"
	"github.com/secmon-lab/warden/pkg/utils/async"
	"github.com/secmon-lab/warden/pkg/utils/errutil"
	"github.com/secmon-lab/warden/pkg/utils/logging"
)

// SlackCommandHandler handles the /warden slash command. It is the thin
// adapter between moderators and the oversight core: subcommands report
// executed moderation actions, submit appeals and trigger the owner report.
type SlackCommandHandler struct {
	uc *usecase.UseCases
}

func NewSlackCommandHandler(uc *usecase.UseCases) *SlackCommandHandler {
	return &SlackCommandHandler{uc: uc}
}

func (h *SlackCommandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	sub, rest, _ := strings.Cut(strings.TrimSpace(cmd.Text), " ")
	rest = strings.TrimSpace(rest)

	switch sub {
	case "report":
		if types.UserID(cmd.UserID) != h.uc.Report.Owner() {
			respond(w, "Only the community owner can trigger a report.")
			return
		}
		respond(w, "Building the moderation report now.")
		async.Dispatch(ctx, func(ctx context.Context) error {
			return h.uc.Report.Run(ctx)
		})

	case "appeal":
		h.handleAppeal(ctx, w, &cmd, rest)

	case "record":
		h.handleRecord(ctx, w, &cmd, rest)

	case "resolve":
		h.handleResolve(ctx, w, &cmd, rest)

	case "strikes":
		h.handleStrikes(ctx, w, &cmd, rest)

	default:
		respond(w, "Usage: /warden report | /warden appeal <text> | /warden record <kind> @user [duration] <reason> | /warden resolve <kind> @user | /warden strikes [clear] @user")
	}
}

func (h *SlackCommandHandler) handleAppeal(ctx context.Context, w http.ResponseWriter, cmd *slack.SlashCommand, text string) {
	_, err := h.uc.Appeal.Submit(ctx, types.CommunityID(cmd.TeamID), types.UserID(cmd.UserID), text)
	if err != nil {
		if errors.Is(err, usecase.ErrEmptyAppeal) {
			respond(w, "An appeal needs a statement: /warden appeal <why the ban should be lifted>")
			return
		}
		errutil.Handle(ctx, err, "failed to submit appeal")
		respond(w, "Could not submit the appeal, please try again later.")
		return
	}
	respond(w, "Your appeal was submitted for review.")
}

func (h *SlackCommandHandler) handleRecord(ctx context.Context, w http.ResponseWriter, cmd *slack.SlashCommand, rest string) {
	kindStr, rest, _ := strings.Cut(rest, " ")
	kind, err := types.ParseActionKind(kindStr)
	if err != nil {
		respond(w, fmt.Sprintf("Unknown action kind %q.", kindStr))
		return
	}

	target, reason := splitTarget(strings.TrimSpace(rest))

	switch kind {
	case types.ActionKindMute, types.ActionKindTimeout:
		h.recordMute(ctx, w, cmd, target, reason)
		return
	case types.ActionKindWarn:
		h.recordWarning(ctx, w, cmd, target, reason)
		return
	}

	req := &model.ActionRequest{
		Kind:        kind,
		ActorID:     types.UserID(cmd.UserID),
		TargetID:    target,
		Reason:      reason,
		CommunityID: types.CommunityID(cmd.TeamID),
		ChannelID:   types.ChannelID(cmd.ChannelID),
	}

	actionID, err := h.uc.Ledger.Record(ctx, req)
	if err != nil {
		errutil.Handle(ctx, err, "failed to record action")
		respond(w, "Could not record the action.")
		return
	}
	if actionID == "" {
		respond(w, fmt.Sprintf("%s is not subject to oversight; nothing recorded.", kind))
		return
	}

	logging.From(ctx).Info("action recorded via command", "action_id", actionID, "actor_id", cmd.UserID)
	respond(w, fmt.Sprintf("Recorded %s for review (%s).", kind, actionID))
}

// recordMute books a reported mute so the sweep can lift it. A leading
// duration token in the reason (e.g. "10m") sets the expiry; without one the
// mute lasts until resolved manually.
func (h *SlackCommandHandler) recordMute(ctx context.Context, w http.ResponseWriter, cmd *slack.SlashCommand, target types.UserID, reason string) {
	if target == "" {
		respond(w, "Usage: /warden record mute @user [duration] <reason>")
		return
	}

	var duration time.Duration
	if head, tail, _ := strings.Cut(reason, " "); head != "" {
		if d, err := time.ParseDuration(head); err == nil && d > 0 {
			duration = d
			reason = strings.TrimSpace(tail)
		}
	}

	if err := h.uc.Mute.Record(ctx, types.CommunityID(cmd.TeamID), target, types.UserID(cmd.UserID), reason, duration); err != nil {
		errutil.Handle(ctx, err, "failed to record mute")
		respond(w, "Could not record the mute.")
		return
	}

	if duration > 0 {
		respond(w, fmt.Sprintf("Recorded mute of <@%s>; it lifts automatically in %s.", target, duration))
		return
	}
	respond(w, fmt.Sprintf("Recorded mute of <@%s>; resolve it to lift.", target))
}

// recordWarning counts a warning as a strike against the target.
func (h *SlackCommandHandler) recordWarning(ctx context.Context, w http.ResponseWriter, cmd *slack.SlashCommand, target types.UserID, reason string) {
	if target == "" {
		respond(w, "Usage: /warden record warn @user <reason>")
		return
	}

	total, err := h.uc.Strike.Add(ctx, types.CommunityID(cmd.TeamID), target, reason)
	if err != nil {
		errutil.Handle(ctx, err, "failed to add strike")
		respond(w, "Could not record the warning.")
		return
	}
	respond(w, fmt.Sprintf("Warning recorded; <@%s> now has %d strike(s).", target, total))
}

// handleStrikes reports or clears a user's strike history.
func (h *SlackCommandHandler) handleStrikes(ctx context.Context, w http.ResponseWriter, cmd *slack.SlashCommand, rest string) {
	clearHistory := false
	if verb, tail, _ := strings.Cut(rest, " "); verb == "clear" {
		clearHistory = true
		rest = strings.TrimSpace(tail)
	}

	target, _ := splitTarget(strings.TrimSpace(rest))
	if target == "" {
		respond(w, "Usage: /warden strikes [clear] @user")
		return
	}

	if clearHistory {
		if err := h.uc.Strike.Clear(ctx, types.CommunityID(cmd.TeamID), target); err != nil {
			errutil.Handle(ctx, err, "failed to clear strikes")
			respond(w, "Could not clear the strikes.")
			return
		}
		respond(w, fmt.Sprintf("Strike history of <@%s> was cleared.", target))
		return
	}

	count, err := h.uc.Strike.Count(ctx, types.CommunityID(cmd.TeamID), target)
	if err != nil {
		errutil.Handle(ctx, err, "failed to count strikes")
		respond(w, "Could not look up the strikes.")
		return
	}
	respond(w, fmt.Sprintf("<@%s> has %d strike(s).", target, count))
}

// handleResolve drops pending actions for a target that staff reversed
// outside the review flow, so stale cards stop being reviewable.
func (h *SlackCommandHandler) handleResolve(ctx context.Context, w http.ResponseWriter, cmd *slack.SlashCommand, rest string) {
	kindStr, rest, _ := strings.Cut(rest, " ")
	kind, err := types.ParseActionKind(kindStr)
	if err != nil {
		respond(w, fmt.Sprintf("Unknown action kind %q.", kindStr))
		return
	}

	target, _ := splitTarget(strings.TrimSpace(rest))
	if target == "" {
		respond(w, "Usage: /warden resolve <kind> @user")
		return
	}

	// Mutes live in their own record set, not the action ledger.
	if kind == types.ActionKindMute || kind == types.ActionKindTimeout {
		if err := h.uc.Mute.Lift(ctx, types.CommunityID(cmd.TeamID), target); err != nil {
			errutil.Handle(ctx, err, "failed to lift mute")
			respond(w, "Could not lift the mute.")
			return
		}
		respond(w, fmt.Sprintf("Mute of <@%s> was lifted.", target))
		return
	}

	if err := h.uc.Ledger.ResolveManual(ctx, types.CommunityID(cmd.TeamID), target, kind); err != nil {
		errutil.Handle(ctx, err, "failed to resolve actions manually")
		respond(w, "Could not resolve pending actions.")
		return
	}
	respond(w, fmt.Sprintf("Pending %s actions for <@%s> were resolved.", kind, target))
}

// splitTarget pulls a leading user mention off the text. Slack escapes
// mentions as <@U123> or <@U123|name>.
func splitTarget(text string) (types.UserID, string) {
	if !strings.HasPrefix(text, "<@") {
		return "", text
	}
	end := strings.Index(text, ">")
	if end < 0 {
		return "", text
	}

	mention := text[2:end]
	if i := strings.Index(mention, "|"); i >= 0 {
		mention = mention[:i]
	}
	return types.UserID(mention), strings.TrimSpace(text[end+1:])
}

// respond writes an ephemeral plain-text reply to the invoking user.
func respond(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text)) //nolint:errcheck
}
