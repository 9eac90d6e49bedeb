package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
	"github.com/secmon-lab/warden/pkg/service/chat"
	"github.com/secmon-lab/warden/pkg/service/mediacache"
	"github.com/secmon-lab/warden/pkg/service/recorder"
	"github.com/secmon-lab/warden/pkg/utils/errutil"
	"github.com/secmon-lab/warden/pkg/utils/logging"
)

// EventUseCase translates raw chat events into oversight behavior. It feeds
// the context recorder and media cache on new messages, re-hosts evidence on
// edits and deletions, and routes card deletions into tamper escalation.
type EventUseCase struct {
	ledger   *LedgerUseCase
	recorder *recorder.Recorder
	cache    *mediacache.Cache
	chatSvc  chat.Service
	policy   Policy
}

func NewEventUseCase(ledger *LedgerUseCase, rec *recorder.Recorder, cache *mediacache.Cache, chatSvc chat.Service, policy Policy) *EventUseCase {
	return &EventUseCase{
		ledger:   ledger,
		recorder: rec,
		cache:    cache,
		chatSvc:  chatSvc,
		policy:   policy,
	}
}

// HandleMessage observes a newly posted message: it enters the context
// recorder and any attachments are cached speculatively.
func (uc *EventUseCase) HandleMessage(ctx context.Context, msg *model.Message) {
	if uc.recorder != nil {
		uc.recorder.Observe(ctx, msg)
	}
	if uc.cache != nil && len(msg.Attachments) > 0 {
		uc.cache.Capture(ctx, msg)
	}
}

// HandleMessageEdited reconciles the cache with the message's surviving
// attachments. Files removed by the edit are decrypted and re-hosted into
// the audit channel as possible evidence destruction.
func (uc *EventUseCase) HandleMessageEdited(ctx context.Context, msg *model.Message) {
	if uc.recorder != nil {
		uc.recorder.Observe(ctx, msg)
	}
	if uc.cache == nil {
		return
	}

	kept := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		kept = append(kept, a.ID)
	}

	asset, removed, err := uc.cache.SplitRemoved(ctx, msg.ID, kept)
	if err != nil {
		errutil.Handle(ctx, err, "failed to split removed attachments")
		return
	}
	if asset == nil || len(removed) == 0 {
		return
	}

	comment := fmt.Sprintf("Attachment removed by edit from a message by <@%s> in <#%s>.", asset.AuthorID, asset.ChannelID)
	if err := uc.rehost(ctx, removed, comment); err != nil {
		errutil.Handle(ctx, err, "failed to re-host edited-away attachments")
	}
}

// HandleMessageDeleted reacts to a message deletion. A deleted review card
// escalates tamper flags; a deleted ordinary message with cached media gets
// its attachments re-hosted into the audit channel. The cache entry is
// dropped only once every attachment was re-hosted; a failed upload keeps
// it for a later attempt.
func (uc *EventUseCase) HandleMessageDeleted(ctx context.Context, channelID types.ChannelID, messageID types.MessageID) {
	if uc.ledger != nil {
		if err := uc.ledger.OnCardDeleted(ctx, types.CardID(messageID)); err != nil {
			errutil.Handle(ctx, err, "failed to process card deletion")
		}
	}

	if uc.cache == nil || !uc.cache.Has(messageID) {
		return
	}

	asset, files, err := uc.cache.Reveal(ctx, messageID)
	if err != nil {
		// The entry stays cached so a later deletion event can retry.
		errutil.Handle(ctx, err, "failed to reveal cached attachments")
		return
	}
	if asset == nil || len(files) == 0 {
		uc.cache.Evict(ctx, messageID)
		return
	}

	logging.From(ctx).Info("re-hosting attachments of deleted message",
		"message_id", messageID, "channel_id", channelID, "files", len(files))

	comment := fmt.Sprintf("Attachment from a deleted message by <@%s> in <#%s>.", asset.AuthorID, asset.ChannelID)
	if err := uc.rehost(ctx, files, comment); err != nil {
		errutil.Handle(ctx, err, "failed to re-host attachments, keeping cache entry")
		return
	}

	uc.cache.Evict(ctx, messageID)
}

func (uc *EventUseCase) rehost(ctx context.Context, files []mediacache.RevealedFile, comment string) error {
	if uc.chatSvc == nil {
		return nil
	}
	for _, f := range files {
		if err := uc.chatSvc.UploadFile(ctx, uc.policy.AuditChannel, f.Name, f.Data, comment); err != nil {
			return goerr.Wrap(err, "failed to upload attachment", goerr.V("file", f.Name))
		}
	}
	return nil
}
