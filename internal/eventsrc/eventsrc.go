// Package eventsrc loads raw queue events from CSV files or SQL tables and
// normalizes them into schema.Event rows for the engine.
package eventsrc

import (
	"fmt"
	"strings"

	"github.com/huangsam/queuetrace/internal/contract"
)

// timestampHints are header name fragments that mark a column as
// timestamp-like during column inference.
var timestampHints = []string{"date", "time", "_at", "created", "closed", "opened", "resolved"}

// NewEventSource builds the configured event source. CSV paths take priority
// when set, otherwise the SQL settings are consulted.
func NewEventSource(cfg *contract.Config) (contract.EventSource, error) {
	if cfg.InflowCSV != "" || cfg.OutflowCSV != "" {
		return NewCSVSource(cfg.InflowCSV, cfg.OutflowCSV, cfg.InflowColumn, cfg.OutflowColumn, cfg.WeightColumn), nil
	}
	if cfg.InflowTable != "" || cfg.OutflowTable != "" {
		return NewSQLSource(cfg.SourceBackend, cfg.SourceDBConnect, sqlSourceSpec{
			InflowTable:   cfg.InflowTable,
			OutflowTable:  cfg.OutflowTable,
			InflowColumn:  cfg.InflowColumn,
			OutflowColumn: cfg.OutflowColumn,
			WeightColumn:  cfg.WeightColumn,
		})
	}
	return nil, fmt.Errorf("no event source configured: set --inflow-csv/--outflow-csv or --inflow-table/--outflow-table")
}

// AmbiguousColumnError indicates that timestamp column inference found more
// than one candidate and the caller has to name the column explicitly.
type AmbiguousColumnError struct {
	Source     string
	Candidates []string
}

func (e *AmbiguousColumnError) Error() string {
	return fmt.Sprintf("ambiguous timestamp column in %s: candidates are %s. Name one with --inflow-column or --outflow-column",
		e.Source, strings.Join(e.Candidates, ", "))
}

// inferTimestampColumn picks the single timestamp-like column from a header
// row. Zero candidates is an error, and so is more than one.
func inferTimestampColumn(source string, headers []string) (string, error) {
	var candidates []string
	for _, h := range headers {
		lower := strings.ToLower(h)
		for _, hint := range timestampHints {
			if strings.Contains(lower, hint) {
				candidates = append(candidates, h)
				break
			}
		}
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("no timestamp-like column found in %s (headers: %s)", source, strings.Join(headers, ", "))
	case 1:
		return candidates[0], nil
	default:
		return "", &AmbiguousColumnError{Source: source, Candidates: candidates}
	}
}

// findColumn resolves a column name to its index in a header row,
// case-insensitively.
func findColumn(headers []string, name string) (int, bool) {
	for i, h := range headers {
		if strings.EqualFold(h, name) {
			return i, true
		}
	}
	return -1, false
}
