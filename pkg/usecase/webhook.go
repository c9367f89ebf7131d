package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"

	"github.com/cytomine/stevedore/pkg/domain/interfaces"
	"github.com/cytomine/stevedore/pkg/domain/model"
)

type webhookUseCase struct{}

// NewWebhook creates a new instance of WebhookUseCase
func NewWebhook() interfaces.WebhookUseCase {
	return &webhookUseCase{}
}

// ProcessEvent records the received webhook event. Pipeline dispatch happens
// in the GitHub event processor; this use case is bookkeeping only.
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	logger.Info("Processing webhook event",
		"id", event.ID,
		"type", event.Type,
		"action", event.Action,
		"repository", event.Repository,
		"ref", event.Ref,
		"sender", event.Sender,
		"supported", event.IsSupportedEvent(),
	)

	if !event.IsSupportedEvent() {
		logger.Warn("Unsupported event received",
			"type", event.Type,
			"action", event.Action,
		)
	}

	return nil
}
