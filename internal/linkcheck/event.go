package linkcheck

import (
	"context"
	"time"
)

// BrokenLinkEvent describes a broken link found during verification.
// Daemon mode publishes these to NATS for downstream handling (issue
// filing, alerting); one-shot builds only surface them in the report.
type BrokenLinkEvent struct {
	URL        string `json:"url"`
	Status     int    `json:"status"` // HTTP status, 0 for non-HTTP failures
	Error      string `json:"error"`
	IsInternal bool   `json:"is_internal"`

	// Source page
	Page     string `json:"page"`               // site-relative rendered path, e.g. styleguide/naming/index.html
	PageURL  string `json:"page_url,omitempty"` // full URL of the rendered page
	LinkText string `json:"link_text,omitempty"`
	Tag      string `json:"tag,omitempty"`

	// Failure tracking carried over from the cache
	Timestamp     time.Time `json:"timestamp"`
	LastChecked   time.Time `json:"last_checked"`
	FailureCount  int       `json:"failure_count"`
	FirstFailedAt time.Time `json:"first_failed_at,omitzero"`

	// Build context
	BuildID   string    `json:"build_id,omitempty"`
	BuildTime time.Time `json:"build_time,omitzero"`
}

// EventPublisher delivers broken-link events to interested consumers.
type EventPublisher interface {
	PublishBrokenLink(ctx context.Context, event *BrokenLinkEvent) error
}
