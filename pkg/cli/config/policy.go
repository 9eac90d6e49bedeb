package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/warden/pkg/domain/types"
)

// Policy is the moderation policy file: where audit output goes, who owns
// review, and the retention knobs of the schedulers.
type Policy struct {
	AuditChannel string `toml:"audit_channel"`
	OwnerUser    string `toml:"owner_user"`
	HomeChannel  string `toml:"home_channel"`

	InviteRetentionDays int `toml:"invite_retention_days"`
	ReportHour          int `toml:"report_hour"`
	ContextWindow       int `toml:"context_window"`
}

// PolicyFile holds the CLI flag pointing at the policy TOML file.
type PolicyFile struct {
	path string
}

// Flags returns CLI flags for policy configuration
func (p *PolicyFile) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Path to the moderation policy TOML file",
			Value:       "warden.toml",
			Sources:     cli.EnvVars("WARDEN_POLICY"),
			Destination: &p.path,
		},
	}
}

// Configure loads and validates the policy file, applying defaults.
func (p *PolicyFile) Configure() (*Policy, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", p.path))
	}

	var policy Policy
	if err := toml.Unmarshal(data, &policy); err != nil {
		return nil, goerr.Wrap(err, "failed to parse policy TOML", goerr.V("path", p.path))
	}

	if err := policy.Validate(); err != nil {
		return nil, goerr.Wrap(err, "policy validation failed", goerr.V("path", p.path))
	}

	return &policy, nil
}

// Validate checks the policy and fills in defaults for optional knobs.
func (p *Policy) Validate() error {
	if p.AuditChannel == "" {
		return goerr.New("audit_channel is required")
	}
	if p.OwnerUser == "" {
		return goerr.New("owner_user is required")
	}
	if p.HomeChannel == "" {
		return goerr.New("home_channel is required")
	}

	if p.InviteRetentionDays == 0 {
		p.InviteRetentionDays = 7
	}
	if p.InviteRetentionDays < 0 {
		return goerr.New("invite_retention_days must be positive", goerr.V("days", p.InviteRetentionDays))
	}

	if p.ReportHour < 0 || p.ReportHour > 23 {
		return goerr.New("report_hour must be between 0 and 23", goerr.V("hour", p.ReportHour))
	}

	if p.ContextWindow == 0 {
		p.ContextWindow = 100
	}
	if p.ContextWindow < 0 {
		return goerr.New("context_window must be positive", goerr.V("size", p.ContextWindow))
	}

	return nil
}

// AuditChannelID returns the audit channel as a typed ID.
func (p *Policy) AuditChannelID() types.ChannelID {
	return types.ChannelID(p.AuditChannel)
}

// OwnerUserID returns the owner as a typed ID.
func (p *Policy) OwnerUserID() types.UserID {
	return types.UserID(p.OwnerUser)
}

// HomeChannelID returns the rejoin invitation channel as a typed ID.
func (p *Policy) HomeChannelID() types.ChannelID {
	return types.ChannelID(p.HomeChannel)
}

// InviteRetention returns the invite retention as a duration.
func (p *Policy) InviteRetention() time.Duration {
	return time.Duration(p.InviteRetentionDays) * 24 * time.Hour
}
