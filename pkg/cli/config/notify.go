package config

import (
	"github.com/urfave/cli/v3"

	"github.com/cytomine/stevedore/pkg/domain/interfaces"
	slackinfra "github.com/cytomine/stevedore/pkg/infra/slack"
)

// Notify holds notification configuration.
type Notify struct {
	SlackWebhookURL string
}

// Flags returns CLI flags for notification configuration
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook for run notifications (disabled when empty)",
			Destination: &c.SlackWebhookURL,
			Sources:     cli.EnvVars("STEVEDORE_SLACK_WEBHOOK_URL"),
		},
	}
}

// Configure creates the notifier, or nil when not configured.
func (c *Notify) Configure() interfaces.Notifier {
	if c.SlackWebhookURL == "" {
		return nil
	}
	return slackinfra.New(c.SlackWebhookURL)
}
