package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/warden/pkg/service/chat"
)

// Slack holds CLI flags for the chat transport configuration.
type Slack struct {
	botToken      string
	signingSecret string
	bannedGroup   string
	mutedGroup    string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token",
			Category:    "Slack",
			Sources:     cli.EnvVars("WARDEN_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack Signing Secret (for webhook verification)",
			Category:    "Slack",
			Sources:     cli.EnvVars("WARDEN_SLACK_SIGNING_SECRET"),
			Destination: &x.signingSecret,
		},
		&cli.StringFlag{
			Name:        "slack-banned-usergroup",
			Usage:       "Usergroup ID carrying the ban state",
			Category:    "Slack",
			Sources:     cli.EnvVars("WARDEN_SLACK_BANNED_USERGROUP"),
			Destination: &x.bannedGroup,
		},
		&cli.StringFlag{
			Name:        "slack-muted-usergroup",
			Usage:       "Usergroup ID carrying the mute state",
			Category:    "Slack",
			Sources:     cli.EnvVars("WARDEN_SLACK_MUTED_USERGROUP"),
			Destination: &x.mutedGroup,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.Int("signing-secret.len", len(x.signingSecret)),
		slog.String("banned-usergroup", x.bannedGroup),
		slog.String("muted-usergroup", x.mutedGroup),
	)
}

// Configure creates the chat service from the flags.
func (x *Slack) Configure() (chat.Service, error) {
	if x.botToken == "" {
		return nil, goerr.New("slack-bot-token is required")
	}

	var opts []chat.Option
	if x.bannedGroup != "" {
		opts = append(opts, chat.WithBannedGroup(x.bannedGroup))
	}
	if x.mutedGroup != "" {
		opts = append(opts, chat.WithMutedGroup(x.mutedGroup))
	}

	return chat.New(x.botToken, opts...)
}

// IsWebhookConfigured checks if the Slack webhook is configured
func (x *Slack) IsWebhookConfigured() bool {
	return x.signingSecret != ""
}

// SigningSecret returns the Slack signing secret
func (x *Slack) SigningSecret() string {
	return x.signingSecret
}
