package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
	"github.com/secmon-lab/warden/pkg/usecase"
	"github.com/secmon-lab/warden/pkg/utils/async"
	"github.com/secmon-lab/warden/pkg/utils/errutil"
	"github.com/secmon-lab/warden/pkg/utils/logging"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const slackBodyKey contextKey = "slack_body"

// verifySlackSignature verifies the Slack request signature
func verifySlackSignature(signingSecret, timestamp, signature string, body []byte) error {
	if timestamp == "" {
		return goerr.New("missing timestamp")
	}

	if signature == "" {
		return goerr.New("missing signature")
	}

	// Check timestamp to prevent replay attacks (within 5 minutes)
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return goerr.Wrap(err, "invalid timestamp")
	}

	now := time.Now().Unix()
	if now-ts > 60*5 {
		return goerr.New("timestamp too old", goerr.V("timestamp", timestamp), goerr.V("now", now))
	}

	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	mac := hmac.New(sha256.New, []byte(signingSecret))
	if _, err := mac.Write([]byte(baseString)); err != nil {
		return goerr.Wrap(err, "failed to compute HMAC")
	}
	expectedSignature := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expectedSignature), []byte(signature)) {
		return goerr.New("signature mismatch")
	}

	return nil
}

// SlackSignatureMiddleware creates a middleware that verifies Slack request signatures
func SlackSignatureMiddleware(signingSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
				return
			}
			defer func() {
				if err := r.Body.Close(); err != nil {
					logging.From(ctx).Error("failed to close request body", "error", err)
				}
			}()

			timestamp := r.Header.Get("X-Slack-Request-Timestamp")
			signature := r.Header.Get("X-Slack-Signature")

			if err := verifySlackSignature(signingSecret, timestamp, signature, body); err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "slack signature verification failed"), http.StatusUnauthorized)
				return
			}

			// Restore the body for downstream handlers
			ctx = context.WithValue(ctx, slackBodyKey, body)
			r.Body = io.NopCloser(bytes.NewBuffer(body))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SlackEventHandler handles Slack Events API webhook requests and routes
// them into the oversight use cases.
type SlackEventHandler struct {
	uc *usecase.UseCases
}

func NewSlackEventHandler(uc *usecase.UseCases) *SlackEventHandler {
	return &SlackEventHandler{uc: uc}
}

func (h *SlackEventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}

	eventsAPIEvent, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse slack event"), http.StatusBadRequest)
		return
	}

	switch eventsAPIEvent.Type {
	case slackevents.URLVerification:
		var cr *slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &cr); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to unmarshal challenge"), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(cr.Challenge)); err != nil {
			logging.From(ctx).Error("failed to write challenge response", "error", err)
		}
		return

	case slackevents.CallbackEvent:
		// Return 200 immediately to satisfy Slack's 3-second timeout requirement
		w.WriteHeader(http.StatusOK)

		async.Dispatch(ctx, func(ctx context.Context) error {
			h.handleCallback(ctx, &eventsAPIEvent)
			return nil
		})

	default:
		logging.From(ctx).Warn("unknown slack event type", "type", eventsAPIEvent.Type)
		w.WriteHeader(http.StatusOK)
	}
}

func (h *SlackEventHandler) handleCallback(ctx context.Context, event *slackevents.EventsAPIEvent) {
	communityID := types.CommunityID(event.TeamID)

	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		h.handleMessageEvent(ctx, communityID, ev)

	case *slackevents.MemberJoinedChannelEvent:
		if err := h.uc.Role.HandleMemberJoined(ctx, communityID, types.UserID(ev.User)); err != nil {
			errutil.Handle(ctx, err, "failed to handle member join")
		}

	case *slackevents.MemberLeftChannelEvent:
		if err := h.uc.Role.HandleMemberLeft(ctx, communityID, types.UserID(ev.User)); err != nil {
			errutil.Handle(ctx, err, "failed to handle member departure")
		}

	default:
		// Reactions and other event types carry no oversight meaning.
		logging.From(ctx).Debug("ignoring slack event", "innerType", event.InnerEvent.Type)
	}
}

func (h *SlackEventHandler) handleMessageEvent(ctx context.Context, communityID types.CommunityID, ev *slackevents.MessageEvent) {
	switch ev.SubType {
	case "":
		if ev.BotID != "" {
			return
		}
		h.uc.Event.HandleMessage(ctx, eventToMessage(communityID, ev.Channel, ev.Message))

	case "message_changed":
		if ev.Message == nil || ev.Message.BotID != "" {
			return
		}
		h.uc.Event.HandleMessageEdited(ctx, eventToMessage(communityID, ev.Channel, ev.Message))

	case "message_deleted":
		h.uc.Event.HandleMessageDeleted(ctx, types.ChannelID(ev.Channel), types.MessageID(ev.DeletedTimeStamp))

	default:
		// Joins, topic changes and other subtypes are noise here.
	}
}

// eventToMessage converts a Slack message event into the oversight model.
// For edits the payload nests the current message without a channel, so the
// channel comes from the outer event.
func eventToMessage(communityID types.CommunityID, channelID string, ev *slack.Msg) *model.Message {
	msg := &model.Message{
		ID:          types.MessageID(ev.Timestamp),
		ChannelID:   types.ChannelID(channelID),
		CommunityID: communityID,
		AuthorID:    types.UserID(ev.User),
		AuthorName:  ev.User,
		Text:        ev.Text,
		Timestamp:   parseSlackTimestamp(ev.Timestamp),
		CardCount:   len(ev.Attachments),
	}

	for _, f := range ev.Files {
		url := f.URLPrivateDownload
		if url == "" {
			url = f.URLPrivate
		}
		msg.Attachments = append(msg.Attachments, model.Attachment{
			ID:       f.ID,
			Name:     f.Name,
			Mimetype: f.Mimetype,
			URL:      url,
			Size:     f.Size,
		})
	}

	return msg
}

// parseSlackTimestamp converts a Slack "seconds.fraction" message timestamp
// into a time. Malformed input yields the zero time.
func parseSlackTimestamp(ts string) time.Time {
	secStr, fracStr, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secStr, 10, 64)
	if err != nil {
		return time.Time{}
	}

	var nsec int64
	if fracStr != "" {
		// Slack uses microsecond precision
		if micro, err := strconv.ParseInt(fracStr, 10, 64); err == nil && len(fracStr) == 6 {
			nsec = micro * 1000
		}
	}

	return time.Unix(sec, nsec).UTC()
}
