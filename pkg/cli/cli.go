package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/warden/pkg/cli/config"
	"github.com/secmon-lab/warden/pkg/utils/logging"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger

	app := &cli.Command{
		Name:    "warden",
		Usage:   "Moderation oversight engine for community chat",
		Version: version,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := loggerCfg.Configure(); err != nil {
				return ctx, err
			}

			logging.Default().Info("Starting warden", "logger", loggerCfg)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdServe(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
