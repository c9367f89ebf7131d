package github

import (
	"context"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"

	"github.com/cytomine/stevedore/pkg/domain/interfaces"
	"github.com/cytomine/stevedore/pkg/utils/async"
)

// EventProcessor routes parsed GitHub webhook payloads to the pipelines.
// Each triggered pipeline is dispatched asynchronously and independently:
// a tag push starts the build flow and the publish flow with no coordination
// between them.
type EventProcessor struct {
	buildUC      interfaces.BuildUseCase
	publishUC    interfaces.PublishUseCase
	validationUC interfaces.ValidationUseCase
	targetBranch string
}

// NewEventProcessor creates a new GitHub event processor. targetBranch is
// the pull-request base branch that triggers validation.
func NewEventProcessor(
	buildUC interfaces.BuildUseCase,
	publishUC interfaces.PublishUseCase,
	validationUC interfaces.ValidationUseCase,
	targetBranch string,
) *EventProcessor {
	return &EventProcessor{
		buildUC:      buildUC,
		publishUC:    publishUC,
		validationUC: validationUC,
		targetBranch: targetBranch,
	}
}

// ProcessEvent dispatches the pipelines for one webhook payload. It returns
// immediately; pipeline outcomes surface through logs, run records and
// notifications only.
func (p *EventProcessor) ProcessEvent(ctx context.Context, eventType string, payload any) {
	logger := ctxlog.From(ctx)

	switch e := payload.(type) {
	case *github.PushEvent:
		p.processPushEvent(ctx, e)
	case *github.PullRequestEvent:
		p.processPullRequestEvent(ctx, e)
	default:
		logger.Info("Ignoring unsupported event type", "event_type", eventType)
	}
}

func (p *EventProcessor) processPushEvent(ctx context.Context, event *github.PushEvent) {
	logger := ctxlog.From(ctx)

	ref := event.GetRef()
	if !strings.HasPrefix(ref, "refs/tags/") {
		logger.Info("Ignoring non-tag push", "ref", ref)
		return
	}
	tag := strings.TrimPrefix(ref, "refs/tags/")
	repository := event.GetRepo().GetFullName()
	if repository == "" {
		logger.Warn("Push event without repository information")
		return
	}

	logger.Info("Tag push triggers build and publish flows",
		"repository", repository,
		"tag", tag,
	)

	async.Dispatch(ctx, func(ctx context.Context) error {
		return p.buildUC.BuildRelease(ctx, repository, tag)
	})
	async.Dispatch(ctx, func(ctx context.Context) error {
		return p.publishUC.PublishRelease(ctx, repository, tag)
	})
}

func (p *EventProcessor) processPullRequestEvent(ctx context.Context, event *github.PullRequestEvent) {
	logger := ctxlog.From(ctx)

	action := event.GetAction()
	if action != "opened" && action != "synchronize" {
		logger.Info("Ignoring pull request action", "action", action)
		return
	}

	base := event.GetPullRequest().GetBase().GetRef()
	if base != p.targetBranch {
		logger.Info("Ignoring pull request into non-target branch",
			"base", base, "target", p.targetBranch)
		return
	}

	repository := event.GetRepo().GetFullName()
	prNumber := event.GetPullRequest().GetNumber()
	headSHA := event.GetPullRequest().GetHead().GetSHA()
	if repository == "" || prNumber == 0 || headSHA == "" {
		logger.Warn("Pull request event missing required fields",
			"repository", repository, "pr_number", prNumber, "head_sha", headSHA)
		return
	}

	logger.Info("Pull request triggers validation flow",
		"repository", repository,
		"pr_number", prNumber,
		"head_sha", headSHA,
	)

	async.Dispatch(ctx, func(ctx context.Context) error {
		return p.validationUC.ValidatePullRequest(ctx, repository, prNumber, headSHA)
	})
}
