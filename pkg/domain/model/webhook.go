package model

import (
	"strings"
	"time"
)

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypePush        WebhookEventType = "push"
	EventTypePullRequest WebhookEventType = "pull_request"
	EventTypeUnknown     WebhookEventType = "unknown"
)

// WebhookEvent represents a webhook event received from GitHub
type WebhookEvent struct {
	ID         string           // Retrieved from X-GitHub-Delivery header
	Type       WebhookEventType // Retrieved from X-GitHub-Event header
	Action     string           // Event action (e.g., opened, synchronize)
	Repository string           // Repository full name
	Ref        string           // Git ref for push events (refs/tags/..., refs/heads/...)
	BaseBranch string           // Target branch for pull request events
	Sender     string           // Sender username
	ReceivedAt time.Time        // Time when the event was received
	RawPayload []byte           // Raw JSON payload
}

// IsTagPush reports whether the event is a push of a tag.
func (e *WebhookEvent) IsTagPush() bool {
	return e.Type == EventTypePush && strings.HasPrefix(e.Ref, "refs/tags/")
}

// TagName returns the pushed tag name, or "" for non-tag events.
func (e *WebhookEvent) TagName() string {
	if !e.IsTagPush() {
		return ""
	}
	return strings.TrimPrefix(e.Ref, "refs/tags/")
}

// IsSupportedEvent checks if the event triggers one of the pipelines.
func (e *WebhookEvent) IsSupportedEvent() bool {
	switch e.Type {
	case EventTypePush:
		return e.IsTagPush()
	case EventTypePullRequest:
		return e.Action == "opened" || e.Action == "synchronize"
	default:
		return false
	}
}
