// Package eventstore records per-build transform events in SQLite.
//
// Every build gets a build ID; the injector appends one event per document
// transform plus manifest and build lifecycle events. BuildSummary is the read
// model used by the history command.
package eventstore

import (
	"context"
	"time"
)

// Store persists ledger events.
type Store interface {
	Append(ctx context.Context, event Event) error
	// GetByBuildID returns the events of one build in append order.
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)
	// GetByDocument returns up to limit transform events of one document, newest first.
	GetByDocument(ctx context.Context, document string, limit int) ([]Event, error)
	// ListBuilds returns one record per build, newest first.
	ListBuilds(ctx context.Context) ([]BuildRecord, error)
	Close() error
}

// BuildRecord indexes one build in the ledger.
type BuildRecord struct {
	BuildID    string
	StartedAt  time.Time
	EventCount int
}
