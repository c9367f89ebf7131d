package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cytomine/stevedore/pkg/cli/config"
	githubctrl "github.com/cytomine/stevedore/pkg/controller/github"
	controller "github.com/cytomine/stevedore/pkg/controller/http"
	"github.com/cytomine/stevedore/pkg/usecase"
)

func cmdServe() *cli.Command {
	var (
		serverCfg   config.Server
		githubCfg   config.GitHub
		registryCfg config.Registry
		buildCfg    config.Build
		storageCfg  config.Storage
		notifyCfg   config.Notify
	)

	flags := serverCfg.Flags()
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, registryCfg.Flags()...)
	flags = append(flags, buildCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the webhook server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if githubCfg.WebhookSecret == "" {
				return goerr.New("webhook secret is required for serve")
			}
			if storageCfg.Bucket == "" {
				return goerr.New("artifact bucket is required for serve")
			}

			logger.Info("Starting stevedore server",
				slog.String("addr", serverCfg.Addr),
				slog.String("repository", githubCfg.Repository),
				slog.String("registry", registryCfg.Host+"/"+registryCfg.Namespace),
			)

			processor, err := newEventProcessor(ctx, &githubCfg, &registryCfg, &buildCfg, &storageCfg, &notifyCfg)
			if err != nil {
				return err
			}

			webhookUC := usecase.NewWebhook()

			server, err := controller.NewServer(
				ctx,
				webhookUC,
				processor,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(githubCfg.WebhookSecret),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			sentry.Flush(2 * time.Second)
			logger.Info("Server shutdown complete")
			return nil
		},
	}
}

// newEventProcessor assembles the three pipelines and the webhook router.
func newEventProcessor(
	ctx context.Context,
	githubCfg *config.GitHub,
	registryCfg *config.Registry,
	buildCfg *config.Build,
	storageCfg *config.Storage,
	notifyCfg *config.Notify,
) (*githubctrl.EventProcessor, error) {
	githubClient, err := githubCfg.Configure()
	if err != nil {
		return nil, err
	}
	engine, err := registryCfg.Configure()
	if err != nil {
		return nil, err
	}
	buildParams, err := buildCfg.Configure()
	if err != nil {
		return nil, err
	}
	artifactStore, err := storageCfg.ConfigureArtifactStore(ctx)
	if err != nil {
		return nil, err
	}

	var opts []usecase.Option
	runStore, err := storageCfg.ConfigureRunStore(ctx)
	if err != nil {
		return nil, err
	}
	if runStore != nil {
		opts = append(opts, usecase.WithRunStore(runStore))
	}
	if notifier := notifyCfg.Configure(); notifier != nil {
		opts = append(opts, usecase.WithNotifier(notifier))
	}

	buildUC := usecase.NewBuild(engine, buildParams, registryCfg.Host, registryCfg.Namespace, opts...)
	publishUC := usecase.NewPublish(githubClient, opts...)
	validationUC := usecase.NewValidation(engine, githubClient, artifactStore, buildParams,
		registryCfg.Host, registryCfg.Namespace, opts...)

	return githubctrl.NewEventProcessor(buildUC, publishUC, validationUC, githubCfg.TargetBranch), nil
}
