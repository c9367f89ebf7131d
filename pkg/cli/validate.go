package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cytomine/stevedore/pkg/cli/config"
	"github.com/cytomine/stevedore/pkg/usecase"
)

func cmdValidate() *cli.Command {
	var (
		githubCfg   config.GitHub
		registryCfg config.Registry
		buildCfg    config.Build
		storageCfg  config.Storage
		notifyCfg   config.Notify
		prNumber    int64
		headSHA     string
	)

	flags := []cli.Flag{
		&cli.Int64Flag{
			Name:        "pr",
			Usage:       "Pull request number",
			Required:    true,
			Destination: &prNumber,
		},
		&cli.StringFlag{
			Name:        "head",
			Usage:       "Pull request head commit SHA",
			Required:    true,
			Destination: &headSHA,
		},
	}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, registryCfg.Flags()...)
	flags = append(flags, buildCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)

	return &cli.Command{
		Name:  "validate",
		Usage: "Run the PR validation pipeline by hand",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if storageCfg.Bucket == "" {
				return goerr.New("artifact bucket is required for validate")
			}

			githubClient, err := githubCfg.Configure()
			if err != nil {
				return err
			}
			engine, err := registryCfg.Configure()
			if err != nil {
				return err
			}
			buildParams, err := buildCfg.Configure()
			if err != nil {
				return err
			}
			artifactStore, err := storageCfg.ConfigureArtifactStore(ctx)
			if err != nil {
				return err
			}
			opts, err := pipelineOptions(ctx, &storageCfg, &notifyCfg)
			if err != nil {
				return err
			}

			validationUC := usecase.NewValidation(engine, githubClient, artifactStore, buildParams,
				registryCfg.Host, registryCfg.Namespace, opts...)

			return validationUC.ValidatePullRequest(ctx, githubCfg.Repository, int(prNumber), headSHA)
		},
	}
}
