package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/cytomine/stevedore/pkg/domain/interfaces"
	"github.com/cytomine/stevedore/pkg/domain/model"
)

type publishUseCase struct {
	githubClient interfaces.GitHubClient
	deps         deps
}

// NewPublish creates the release publisher. One hosted API call per tag,
// auto-generated notes, no retry.
func NewPublish(githubClient interfaces.GitHubClient, opts ...Option) interfaces.PublishUseCase {
	return &publishUseCase{
		githubClient: githubClient,
		deps:         newDeps(opts),
	}
}

// PublishRelease creates the release record for the pushed tag.
func (uc *publishUseCase) PublishRelease(ctx context.Context, repository, tag string) error {
	logger := ctxlog.From(ctx)

	owner, repo, ok := strings.Cut(repository, "/")
	if !ok {
		return goerr.New("invalid repository name", goerr.V("repository", repository))
	}

	run := model.NewPipelineRun(model.RunKindPublish, repository)
	run.Tag = tag
	run.Channel = model.ClassifyTag(tag)
	uc.deps.recordStart(ctx, run)

	logger.Info("Publishing release",
		"run_id", run.ID,
		"repository", repository,
		"tag", tag,
		"prerelease", run.Channel.Prerelease(),
	)

	url, err := uc.githubClient.CreateRelease(ctx, &model.ReleaseInfo{
		Owner:   owner,
		Repo:    repo,
		TagName: tag,
		Channel: run.Channel,
	})
	uc.deps.recordFinish(ctx, run, err)
	if err != nil {
		return goerr.Wrap(err, "failed to create release",
			goerr.V("repository", repository), goerr.V("tag", tag))
	}

	logger.Info("Release published",
		"run_id", run.ID,
		"tag", tag,
		"url", url,
	)
	return nil
}
