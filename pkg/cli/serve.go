package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/warden/pkg/cli/config"
	httpctrl "github.com/secmon-lab/warden/pkg/controller/http"
	"github.com/secmon-lab/warden/pkg/domain/types"
	"github.com/secmon-lab/warden/pkg/service/mediacache"
	"github.com/secmon-lab/warden/pkg/service/recorder"
	"github.com/secmon-lab/warden/pkg/service/worker"
	"github.com/secmon-lab/warden/pkg/usecase"
	"github.com/secmon-lab/warden/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var cacheDir string
	var policyCfg config.PolicyFile
	var repoCfg config.Repository
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("WARDEN_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "cache-dir",
			Usage:       "Directory for the encrypted media cache",
			Value:       "./cache",
			Sources:     cli.EnvVars("WARDEN_CACHE_DIR"),
			Destination: &cacheDir,
		},
	}
	flags = append(flags, policyCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the oversight engine",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load moderation policy")
			}

			repo, err := repoCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			chatSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure chat service")
			}
			if !slackCfg.IsWebhookConfigured() {
				return goerr.New("slack-signing-secret is required to receive events")
			}

			cache, err := mediacache.New(cacheDir, chatSvc.DownloadFile)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize media cache")
			}

			// Media a message carried leaves the cache once the message
			// leaves the context window.
			rec := recorder.New(
				recorder.WithCapacity(policy.ContextWindow),
				recorder.WithEvictFunc(func(ctx context.Context, messageID types.MessageID) {
					cache.Evict(ctx, messageID)
				}),
			)

			uc := usecase.New(repo, chatSvc, rec, cache, usecase.Policy{
				AuditChannel: policy.AuditChannelID(),
				OwnerUser:    policy.OwnerUserID(),
				HomeChannel:  policy.HomeChannelID(),
			})

			workers := []interface {
				Start(ctx context.Context) error
				Stop()
			}{
				worker.NewMuteSweepWorker(uc.Mute, worker.DefaultMuteSweepInterval),
				worker.NewInviteCleanupWorker(uc.Invite, worker.DefaultInviteCleanupInterval, policy.InviteRetention()),
				worker.NewOwnerReportWorker(uc.Report, policy.ReportHour),
			}
			for _, w := range workers {
				if err := w.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start worker")
				}
			}
			defer func() {
				for _, w := range workers {
					w.Stop()
				}
			}()

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, slackCfg.SigningSecret()),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, egCtx := errgroup.WithContext(sigCtx)
			eg.Go(func() error {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return goerr.Wrap(err, "failed to start server")
				}
				return nil
			})
			eg.Go(func() error {
				<-egCtx.Done()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				return nil
			})

			if err := eg.Wait(); err != nil {
				return err
			}

			logging.Default().Info("Server shutdown completed")
			return nil
		},
	}
}
