package interfaces

import (
	"context"

	"github.com/cytomine/stevedore/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent processes a webhook event
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}

// BuildUseCase runs the tag-triggered build-and-push pipeline.
type BuildUseCase interface {
	BuildRelease(ctx context.Context, repository, tag string) error
}

// PublishUseCase creates the release record for a pushed tag.
type PublishUseCase interface {
	PublishRelease(ctx context.Context, repository, tag string) error
}

// ValidationUseCase runs the pull-request validation pipeline.
type ValidationUseCase interface {
	ValidatePullRequest(ctx context.Context, repository string, prNumber int, headSHA string) error
}
