// Package schema has configs, models and global variables for all parts of queuetrace.
package schema

import "time"

// Event is a normalized event row: one unit moving into or out of a queue.
// A zero Timestamp marks a missing timestamp; a nil Weight marks a missing
// weight. The I/O layer normalizes raw tables into this shape before the
// engine sees anything.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Weight    *float64  `json:"weight,omitempty"`
}

// HasTimestamp reports whether the event carries a usable timestamp.
func (e Event) HasTimestamp() bool {
	return !e.Timestamp.IsZero()
}

// FlowEvent is a raw row from a table that carries both an inflow and an
// outflow timestamp per unit (e.g. created/closed columns of a ticket table).
// Either side may be missing.
type FlowEvent struct {
	Inflow  time.Time `json:"inflow"`
	Outflow time.Time `json:"outflow"`
	Weight  *float64  `json:"weight,omitempty"`
}

// SeriesPoint is a single date/value pair of a computed series.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// SeriesReport holds one computed metric series plus the parameters that
// produced it.
type SeriesReport struct {
	Metric    MetricKind    `json:"metric"`
	Frequency Frequency     `json:"frequency"`
	AsOf      time.Time     `json:"as_of"`
	Points    []SeriesPoint `json:"points"`
}

// QueueReport holds the combined output of an anchored reconstruction:
// the two reindexed flow series and the reconstructed backlog series.
type QueueReport struct {
	Frequency Frequency     `json:"frequency"`
	AsOf      time.Time     `json:"as_of"`
	Anchor    Anchor        `json:"anchor"`
	Inflows   []SeriesPoint `json:"inflows"`
	Outflows  []SeriesPoint `json:"outflows"`
	Backlog   []SeriesPoint `json:"backlog"`
}

// Anchor is a single ground-truth backlog observation used to seed reverse
// reconstruction.
type Anchor struct {
	ID        int64     `json:"id,omitempty"`
	Date      time.Time `json:"date"`
	Backlog   float64   `json:"backlog"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// RunRecord tracks one reconstruction run stored for later inspection.
type RunRecord struct {
	RunID       int64      `json:"run_id"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Metric      string     `json:"metric"`
	Frequency   string     `json:"frequency"`
	TotalPoints int        `json:"total_points"`
	Params      string     `json:"params,omitempty"`
}

// StoreStatus holds status information about the anchor store.
type StoreStatus struct {
	Backend        string    `json:"backend"`
	Connected      bool      `json:"connected"`
	TotalAnchors   int       `json:"total_anchors"`
	TotalRuns      int       `json:"total_runs"`
	LatestAnchorAt time.Time `json:"latest_anchor_at,omitempty"`
	OldestAnchorAt time.Time `json:"oldest_anchor_at,omitempty"`
}
