package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cytomine/stevedore/pkg/cli/config"
	"github.com/cytomine/stevedore/pkg/usecase"
)

func cmdRelease() *cli.Command {
	var (
		githubCfg   config.GitHub
		registryCfg config.Registry
		buildCfg    config.Build
		storageCfg  config.Storage
		notifyCfg   config.Notify
		tag         string
		skipPublish bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "tag",
			Usage:       "Tag to build and release",
			Required:    true,
			Destination: &tag,
		},
		&cli.BoolFlag{
			Name:        "skip-publish",
			Usage:       "Build and push images without creating a release record",
			Destination: &skipPublish,
		},
	}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, registryCfg.Flags()...)
	flags = append(flags, buildCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)

	return &cli.Command{
		Name:  "release",
		Usage: "Run the tag pipeline by hand: build and push images, then publish the release",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			engine, err := registryCfg.Configure()
			if err != nil {
				return err
			}
			buildParams, err := buildCfg.Configure()
			if err != nil {
				return err
			}
			opts, err := pipelineOptions(ctx, &storageCfg, &notifyCfg)
			if err != nil {
				return err
			}

			buildUC := usecase.NewBuild(engine, buildParams, registryCfg.Host, registryCfg.Namespace, opts...)
			if err := buildUC.BuildRelease(ctx, githubCfg.Repository, tag); err != nil {
				return err
			}

			if skipPublish {
				logger.Info("Skipping release publication", "tag", tag)
				return nil
			}

			githubClient, err := githubCfg.Configure()
			if err != nil {
				return err
			}
			publishUC := usecase.NewPublish(githubClient, opts...)
			if err := publishUC.PublishRelease(ctx, githubCfg.Repository, tag); err != nil {
				return err
			}

			return nil
		},
	}
}

// pipelineOptions assembles the optional run store and notifier shared by
// the direct commands.
func pipelineOptions(ctx context.Context, storageCfg *config.Storage, notifyCfg *config.Notify) ([]usecase.Option, error) {
	var opts []usecase.Option

	runStore, err := storageCfg.ConfigureRunStore(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure run store")
	}
	if runStore != nil {
		opts = append(opts, usecase.WithRunStore(runStore))
	}
	if notifier := notifyCfg.Configure(); notifier != nil {
		opts = append(opts, usecase.WithNotifier(notifier))
	}
	return opts, nil
}
