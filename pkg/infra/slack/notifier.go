package slack

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/cytomine/stevedore/pkg/domain/interfaces"
	"github.com/cytomine/stevedore/pkg/domain/model"
)

type notifier struct {
	webhookURL string
}

// New creates a Slack notifier posting to an incoming webhook.
func New(webhookURL string) interfaces.Notifier {
	return &notifier{webhookURL: webhookURL}
}

// NotifyRun posts a short completion message for the run.
func (n *notifier) NotifyRun(ctx context.Context, run *model.PipelineRun) error {
	msg := &slack.WebhookMessage{
		Attachments: []slack.Attachment{
			{
				Color: attachmentColor(run.Status),
				Title: fmt.Sprintf("%s pipeline %s", run.Kind, run.Status),
				Text:  runSummary(run),
			},
		},
	}

	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack notification", goerr.V("run_id", run.ID))
	}
	return nil
}

func attachmentColor(status model.RunStatus) string {
	if status == model.RunStatusSucceeded {
		return "good"
	}
	return "danger"
}

func runSummary(run *model.PipelineRun) string {
	switch run.Kind {
	case model.RunKindValidation:
		s := fmt.Sprintf("%s PR #%d (%s)", run.Repository, run.PRNumber, shortSHA(run.CommitSHA))
		if run.ArtifactURL != "" {
			s += "\nreport: " + run.ArtifactURL
		}
		if run.Error != "" {
			s += "\n" + run.Error
		}
		return s
	default:
		s := fmt.Sprintf("%s tag %s (%s)", run.Repository, run.Tag, run.Channel)
		if run.Error != "" {
			s += "\n" + run.Error
		}
		return s
	}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
