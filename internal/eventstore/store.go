package eventstore

import (
	"context"
	"time"
)

// Store persists build lifecycle events.
//
// Events are append-only: the daemon records what happened, and read models
// such as BuildHistoryProjection are rebuilt from the log after a restart.
type Store interface {
	// Append records a new event. The store assigns the ID and timestamp.
	Append(ctx context.Context, buildID, eventType string, payload []byte, metadata map[string]string) error

	// GetByBuildID returns all events for one build, oldest first.
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)

	// GetRange returns events recorded within [start, end], oldest first.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close releases the underlying storage.
	Close() error
}
