package core

import (
	"time"

	"github.com/huangsam/queuetrace/core/series"
	"github.com/huangsam/queuetrace/core/timegrid"
	"github.com/huangsam/queuetrace/schema"
)

// ReverseBacklog reconstructs historical backlog from a single known anchor:
// backlogStart units were in the queue at dateStart. Walking backward from
// the anchor, inflow that had already happened by dateStart is subtracted
// (it had not yet arrived at the earlier date) and outflow is added back (it
// was still in the queue). Flow dated after dateStart is ignored.
//
// The result is resampled to freq taking the first value per period, an exact
// snapshot rather than a period average, and clamped at 0: negative values
// mean the flow history does not reach far enough back (or the anchor is
// inconsistent) and are silently corrected.
func ReverseBacklog(inflows, outflows series.Series, backlogStart float64, dateStart time.Time, freq schema.Frequency) series.Series {
	inflows = inflows.TruncateThrough(dateStart)
	outflows = outflows.TruncateThrough(dateStart)

	grid := unionDates(inflows, outflows)
	if len(grid) == 0 {
		// No flow to adjust with: the anchor value holds on its own date.
		anchor := series.New(series.Point{Date: timegrid.Normalize(dateStart), Value: backlogStart})
		return anchor.Resample(freq, schema.FirstReducer).ClampMin(0)
	}

	// Aligning both flows on the shared grid with 0 fills makes the
	// descending cumulative sums total inflow/outflow between each date and
	// the anchor, with absent dates inheriting the nearest later total.
	cumInflow := inflows.Reindex(grid, 0).ReverseCumSum()
	cumOutflow := outflows.Reindex(grid, 0).ReverseCumSum()

	backlog := make(map[time.Time]float64, len(grid))
	for _, d := range grid {
		in, _ := cumInflow.At(d)
		out, _ := cumOutflow.At(d)
		backlog[d] = backlogStart - in + out
	}

	return series.FromMap(backlog).
		Resample(freq, schema.FirstReducer).
		ClampMin(0)
}

// FlowBalance computes backlog as a plain cumulative flow balance,
// cumulative inflow minus cumulative outflow, with no anchor. This is the
// variant to use when no trued-up backlog observation exists; it assumes the
// queue was empty before the data horizon. The result is resampled to freq
// by first value and clipped to the span the flows actually observed, never
// reporting into the asOf extension.
func FlowBalance(inflows, outflows series.Series, freq schema.Frequency, asOf time.Time) series.Series {
	balance := Cumulate(inflows, asOf).Sub(Cumulate(outflows, asOf), 0)
	if balance.IsEmpty() {
		return balance
	}

	start, end, ok := observedSpan(inflows, outflows)
	if !ok {
		return series.Series{}
	}

	return balance.
		Resample(freq, schema.FirstReducer).
		Clip(timegrid.FirstOf(start, freq), end)
}

// unionDates merges the date domains of two series into one ascending grid.
func unionDates(a, b series.Series) []time.Time {
	merged := make(map[time.Time]float64, a.Len()+b.Len())
	for _, d := range a.Dates() {
		merged[d] = 0
	}
	for _, d := range b.Dates() {
		merged[d] = 0
	}
	return series.FromMap(merged).Dates()
}

// observedSpan returns the earliest and latest dates covered by either flow
// series before any re-gridding.
func observedSpan(inflows, outflows series.Series) (time.Time, time.Time, bool) {
	var start, end time.Time
	ok := false
	for _, s := range []series.Series{inflows, outflows} {
		first, has := s.First()
		if !has {
			continue
		}
		last, _ := s.Last()
		if !ok || first.Date.Before(start) {
			start = first.Date
		}
		if !ok || last.Date.After(end) {
			end = last.Date
		}
		ok = true
	}
	return start, end, ok
}
