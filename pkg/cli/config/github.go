package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cytomine/stevedore/pkg/domain/interfaces"
	githubinfra "github.com/cytomine/stevedore/pkg/infra/github"
)

// GitHub holds GitHub configuration. Authentication is either a GitHub App
// (app-id + installation-id + private key) or a plain token; the App takes
// precedence when both are set.
type GitHub struct {
	WebhookSecret  string
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
	Token          string
	Repository     string
	TargetBranch   string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret",
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("STEVEDORE_GITHUB_WEBHOOK_SECRET"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("STEVEDORE_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("STEVEDORE_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "Path to the GitHub App private key",
			Destination: &c.PrivateKeyPath,
			Sources:     cli.EnvVars("STEVEDORE_GITHUB_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token (alternative to App authentication)",
			Destination: &c.Token,
			Sources:     cli.EnvVars("STEVEDORE_GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "repository",
			Usage:       "Repository to operate on (owner/name)",
			Value:       "cytomine/pims",
			Destination: &c.Repository,
			Sources:     cli.EnvVars("STEVEDORE_REPOSITORY"),
		},
		&cli.StringFlag{
			Name:        "target-branch",
			Usage:       "Pull request base branch that triggers validation",
			Value:       "master",
			Destination: &c.TargetBranch,
			Sources:     cli.EnvVars("STEVEDORE_TARGET_BRANCH"),
		},
	}
}

// Configure creates the GitHub client from the configured credentials.
func (c *GitHub) Configure() (interfaces.GitHubClient, error) {
	if c.AppID != 0 {
		if c.InstallationID == 0 || c.PrivateKeyPath == "" {
			return nil, goerr.New("GitHub App auth needs installation ID and private key")
		}
		key, err := os.ReadFile(c.PrivateKeyPath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read GitHub App private key",
				goerr.V("path", c.PrivateKeyPath))
		}
		return githubinfra.NewAppClient(c.AppID, c.InstallationID, key)
	}

	if c.Token != "" {
		return githubinfra.NewTokenClient(c.Token), nil
	}

	return nil, goerr.New("either GitHub App credentials or a token is required")
}
