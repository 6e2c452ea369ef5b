// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/queuetrace/schema"
)

// EventSource supplies the normalized event rows for one queue: inflow events
// (units entering) and outflow events (units leaving). Implementations
// normalize whatever they read (CSV files, SQL tables) into []schema.Event
// before the engine sees anything.
type EventSource interface {
	// Inflows returns every inflow event available from the source.
	Inflows(ctx context.Context) ([]schema.Event, error)

	// Outflows returns every outflow event available from the source.
	Outflows(ctx context.Context) ([]schema.Event, error)
}

// AnchorStore persists backlog anchors and reconstruction run history.
// This allows the store layer to be mocked for testing.
type AnchorStore interface {
	// AddAnchor stores a new anchor and returns its unique ID.
	AddAnchor(anchor schema.Anchor) (int64, error)

	// LatestAnchor returns the most recent anchor dated at or before the
	// given time. A store with no matching anchor returns ErrNoAnchor.
	LatestAnchor(atOrBefore time.Time) (schema.Anchor, error)

	// ListAnchors returns up to limit anchors, newest first.
	ListAnchors(limit int) ([]schema.Anchor, error)

	// ClearAnchors removes all stored anchors.
	ClearAnchors() error

	// BeginRun creates a new reconstruction run record and returns its ID.
	BeginRun(startTime time.Time, metric schema.MetricKind, freq schema.Frequency, params map[string]any) (int64, error)

	// EndRun updates the run record with completion data.
	EndRun(runID int64, endTime time.Time, totalPoints int) error

	// ListRuns returns up to limit run records, newest first.
	ListRuns(limit int) ([]schema.RunRecord, error)

	// GetStatus returns status information about the store.
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// StoreManager hands out the configured anchor store, or nil when anchor
// persistence is disabled.
type StoreManager interface {
	GetAnchorStore() AnchorStore
}
