package usecase

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	goslack "github.com/slack-go/slack"

	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
)

// Interaction action IDs for Block Kit buttons on review cards.
const (
	CardActionIDApprove      = "wd_approve"
	CardActionIDRevert       = "wd_revert"
	CardActionIDAppealAccept = "wd_appeal_accept"
	CardActionIDAppealDeny   = "wd_appeal_deny"

	cardActionBlockID   = "wd_review_buttons"
	appealActionBlockID = "wd_appeal_buttons"

	// contextExcerptSize limits how much of the context snapshot a card
	// shows; the full snapshot stays on the record.
	contextExcerptSize = 5
)

// CardValue encodes the button payload carried by a review card control.
// Record identifiers contain "/" but never "|", so the separator is safe.
func CardValue(communityID types.CommunityID, id string) string {
	return fmt.Sprintf("%s|%s", communityID, id)
}

// ParseCardValue decodes a button payload back into community and record
// identifier.
func ParseCardValue(value string) (types.CommunityID, string, error) {
	community, id, ok := strings.Cut(value, "|")
	if !ok || community == "" || id == "" {
		return "", "", goerr.New("malformed card value", goerr.V("value", value))
	}
	return types.CommunityID(community), id, nil
}

// buildInPlaceCardBlocks renders the public summary posted where the action
// happened. It carries no controls: review happens on the audit card.
func buildInPlaceCardBlocks(action *model.ModerationAction) []goslack.Block {
	header := fmt.Sprintf("Moderation: %s", action.Kind)

	summary := fmt.Sprintf("<@%s> performed *%s*", action.ActorID, action.Kind)
	if action.TargetID != "" {
		summary += fmt.Sprintf(" on <@%s>", action.TargetID)
	}
	if action.Reason != "" {
		summary += fmt.Sprintf("\n*Reason:* %s", action.Reason)
	}

	return []goslack.Block{
		goslack.NewHeaderBlock(
			goslack.NewTextBlockObject(goslack.PlainTextType, header, true, false),
		),
		goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, summary, false, false),
			nil, nil,
		),
	}
}

// buildAuditCardBlocks renders the private review card with approve/revert
// controls, the tamper-flag line and a context excerpt.
func buildAuditCardBlocks(action *model.ModerationAction) []goslack.Block {
	header := fmt.Sprintf("Review: %s %s", action.Kind, flagEmoji(action))

	blocks := []goslack.Block{
		goslack.NewHeaderBlock(
			goslack.NewTextBlockObject(goslack.PlainTextType, header, true, false),
		),
	}

	summary := fmt.Sprintf("<@%s> performed *%s*", action.ActorID, action.Kind)
	if action.TargetID != "" {
		summary += fmt.Sprintf(" on <@%s>", action.TargetID)
	}
	if action.Reason != "" {
		summary += fmt.Sprintf("\n*Reason:* %s", action.Reason)
	}
	blocks = append(blocks, goslack.NewSectionBlock(
		goslack.NewTextBlockObject(goslack.MarkdownType, summary, false, false),
		nil, nil,
	))

	contextParts := []string{
		fmt.Sprintf("ID: %s", action.ID),
		fmt.Sprintf("Status: %s", action.Status),
	}
	if len(action.Flags) > 0 {
		flags := make([]string, len(action.Flags))
		for i, f := range action.Flags {
			flags[i] = f.String()
		}
		contextParts = append(contextParts, fmt.Sprintf("Flags: %s", strings.Join(flags, ", ")))
	}
	blocks = append(blocks, goslack.NewContextBlock("",
		goslack.NewTextBlockObject(goslack.MarkdownType, strings.Join(contextParts, "  |  "), false, false),
	))

	if excerpt := contextExcerpt(action.Context); excerpt != "" {
		blocks = append(blocks, goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, excerpt, false, false),
			nil, nil,
		))
	}

	if action.Status == types.ActionStatusPending {
		value := CardValue(action.CommunityID, action.ID.String())

		approveBtn := goslack.NewButtonBlockElement(CardActionIDApprove, value,
			goslack.NewTextBlockObject(goslack.PlainTextType, "Approve", true, false),
		)
		approveBtn.Style = goslack.StylePrimary

		revertBtn := goslack.NewButtonBlockElement(CardActionIDRevert, value,
			goslack.NewTextBlockObject(goslack.PlainTextType, "Revert", true, false),
		)
		revertBtn.Style = goslack.StyleDanger

		blocks = append(blocks, goslack.NewActionBlock(cardActionBlockID, approveBtn, revertBtn))
	}

	return blocks
}

// buildAppealCardBlocks renders the audit-location appeal card with
// accept/deny controls.
func buildAppealCardBlocks(appeal *model.Appeal) []goslack.Block {
	blocks := []goslack.Block{
		goslack.NewHeaderBlock(
			goslack.NewTextBlockObject(goslack.PlainTextType, "Ban appeal", true, false),
		),
		goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType,
				fmt.Sprintf("<@%s> appeals their ban:\n>%s", appeal.UserID, appeal.Text), false, false),
			nil, nil,
		),
		goslack.NewContextBlock("",
			goslack.NewTextBlockObject(goslack.MarkdownType,
				fmt.Sprintf("ID: %s  |  Submitted: %s", appeal.ID, appeal.CreatedAt.Format("2006-01-02 15:04")), false, false),
		),
	}

	if appeal.Status == types.AppealStatusPending {
		value := CardValue(appeal.CommunityID, appeal.ID.String())

		acceptBtn := goslack.NewButtonBlockElement(CardActionIDAppealAccept, value,
			goslack.NewTextBlockObject(goslack.PlainTextType, "Accept", true, false),
		)
		acceptBtn.Style = goslack.StylePrimary

		denyBtn := goslack.NewButtonBlockElement(CardActionIDAppealDeny, value,
			goslack.NewTextBlockObject(goslack.PlainTextType, "Deny", true, false),
		)
		denyBtn.Style = goslack.StyleDanger

		blocks = append(blocks, goslack.NewActionBlock(appealActionBlockID, acceptBtn, denyBtn))
	}

	return blocks
}

func flagEmoji(action *model.ModerationAction) string {
	switch {
	case action.HasFlag(types.TamperFlagRed):
		return ":red_circle:"
	case action.HasFlag(types.TamperFlagYellow):
		return ":large_yellow_circle:"
	default:
		return ":large_green_circle:"
	}
}

func contextExcerpt(snapshot []model.ContextMessage) string {
	if len(snapshot) == 0 {
		return ""
	}

	msgs := snapshot
	if len(msgs) > contextExcerptSize {
		msgs = msgs[len(msgs)-contextExcerptSize:]
	}

	lines := make([]string, 0, len(msgs)+1)
	lines = append(lines, "*Context:*")
	for _, m := range msgs {
		text := m.Text
		if runes := []rune(text); len(runes) > 120 {
			text = string(runes[:120]) + "…"
		}
		line := fmt.Sprintf("> <@%s>: %s", m.AuthorID, text)
		if len(m.Attachments) > 0 {
			line += fmt.Sprintf(" [%d file(s)]", len(m.Attachments))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
