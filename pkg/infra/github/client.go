package github

import (
	"context"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/cytomine/stevedore/pkg/domain/interfaces"
	"github.com/cytomine/stevedore/pkg/domain/model"
)

type client struct {
	githubClient *github.Client
}

// New wraps an already configured go-github client. Used by tests and by the
// other constructors.
func New(githubClient *github.Client) interfaces.GitHubClient {
	return &client{githubClient: githubClient}
}

// NewAppClient creates a GitHub client authenticated as a GitHub App
// installation.
func NewAppClient(appID, installationID int64, privateKey []byte) (interfaces.GitHubClient, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport")
	}

	return New(github.NewClient(&http.Client{Transport: itr})), nil
}

// NewTokenClient creates a GitHub client authenticated with a personal
// access token.
func NewTokenClient(token string) interfaces.GitHubClient {
	return New(github.NewClient(nil).WithAuthToken(token))
}

// CreateRelease creates a release for the tag, with notes generated by the
// hosted API and the pre-release flag taken from the channel classification.
func (c *client) CreateRelease(ctx context.Context, info *model.ReleaseInfo) (string, error) {
	release := &github.RepositoryRelease{
		TagName:              github.Ptr(info.TagName),
		Name:                 github.Ptr(info.TagName),
		Prerelease:           github.Ptr(info.Channel.Prerelease()),
		GenerateReleaseNotes: github.Ptr(true),
	}

	created, _, err := c.githubClient.Repositories.CreateRelease(ctx, info.Owner, info.Repo, release)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create release",
			goerr.V("owner", info.Owner),
			goerr.V("repo", info.Repo),
			goerr.V("tag", info.TagName),
		)
	}

	return created.GetHTMLURL(), nil
}

// DeletePackageVersion finds the container package version tagged with the
// given tag in the owner organization's namespace and deletes it.
func (c *client) DeletePackageVersion(ctx context.Context, owner, packageName, tag string) error {
	versionID, err := c.findVersionByTag(ctx, owner, packageName, tag)
	if err != nil {
		return err
	}

	if _, err := c.githubClient.Organizations.PackageDeleteVersion(ctx, owner, "container", packageName, versionID); err != nil {
		return goerr.Wrap(err, "failed to delete package version",
			goerr.V("owner", owner),
			goerr.V("package", packageName),
			goerr.V("tag", tag),
		)
	}

	return nil
}

// findVersionByTag walks the package version list until it finds a container
// version carrying the tag.
func (c *client) findVersionByTag(ctx context.Context, owner, packageName, tag string) (int64, error) {
	opts := &github.PackageListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		versions, resp, err := c.githubClient.Organizations.PackageGetAllVersions(ctx, owner, "container", packageName, opts)
		if err != nil {
			return 0, goerr.Wrap(err, "failed to list package versions",
				goerr.V("owner", owner),
				goerr.V("package", packageName),
			)
		}

		for _, v := range versions {
			metadata, _ := v.GetMetadata()
			for _, t := range metadata.GetContainer().Tags {
				if t == tag {
					return v.GetID(), nil
				}
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return 0, goerr.New("package version not found",
		goerr.V("owner", owner),
		goerr.V("package", packageName),
		goerr.V("tag", tag),
	)
}
