// Package core has the queue-metrics engine: flow extraction, cumulative
// aggregation, backlog reconstruction and the derived throughput, arrival
// and wait-time series.
package core

import (
	"time"

	"github.com/huangsam/queuetrace/core/series"
	"github.com/huangsam/queuetrace/core/timegrid"
	"github.com/huangsam/queuetrace/schema"
)

// ExtractFlow converts raw events into a regular flow series spanning
// [min(timestamp), max(timestamp)] at the given frequency. With weighted set,
// events missing a weight are dropped and weights are summed per period;
// otherwise events are counted. Every grid point is present in the output and
// periods without events hold 0.
//
// An event table with no usable timestamps yields an empty series: both range
// bounds default to asOf, a zero-length span.
func ExtractFlow(events []schema.Event, weighted bool, freq schema.Frequency, asOf time.Time) series.Series {
	start, end := asOf, asOf
	seen := false
	for _, e := range events {
		if !e.HasTimestamp() {
			continue
		}
		if !seen || e.Timestamp.Before(start) {
			start = e.Timestamp
		}
		if !seen || e.Timestamp.After(end) {
			end = e.Timestamp
		}
		seen = true
	}
	if !seen {
		return series.Series{}
	}

	grid := timegrid.RangeOrEmpty(start, end, freq)

	totals := make(map[time.Time]float64)
	for _, e := range events {
		if !e.HasTimestamp() {
			continue
		}
		if weighted && e.Weight == nil {
			continue
		}
		period := timegrid.FirstOf(e.Timestamp, freq)
		if weighted {
			totals[period] += *e.Weight
		} else {
			totals[period]++
		}
	}

	return series.FromMap(totals).Reindex(grid, 0)
}

// ExtractDoubleFlow splits rows carrying both an inflow and an outflow
// timestamp into the two flow series. Rows missing one side simply do not
// contribute to that side.
func ExtractDoubleFlow(rows []schema.FlowEvent, freq schema.Frequency, asOf time.Time) (series.Series, series.Series) {
	inflows := make([]schema.Event, 0, len(rows))
	outflows := make([]schema.Event, 0, len(rows))
	for _, r := range rows {
		inflows = append(inflows, schema.Event{Timestamp: r.Inflow})
		outflows = append(outflows, schema.Event{Timestamp: r.Outflow})
	}
	return ExtractFlow(inflows, false, freq, asOf),
		ExtractFlow(outflows, false, freq, asOf)
}

// Cumulate returns the running total of a flow series on a daily grid that
// extends from the first observation through asOf, so a cumulative total is
// always available "through today" even when the flow data ends earlier.
// Gaps introduced by the re-grid contribute 0.
func Cumulate(flow series.Series, asOf time.Time) series.Series {
	first, ok := flow.First()
	if !ok {
		return series.Series{}
	}
	grid := timegrid.RangeOrEmpty(first.Date, asOf, schema.DayFreq)
	return flow.Reindex(grid, 0).CumSum()
}
