package core

import (
	"time"

	"github.com/huangsam/queuetrace/core/series"
	"github.com/huangsam/queuetrace/core/timegrid"
	"github.com/huangsam/queuetrace/schema"
)

// Queues is the orchestration entry point combining flow extraction with
// anchored reconstruction. It extracts both flow series from raw events,
// aligns them on a shared time index (the union of their spans unless the
// caller supplies one), and backtracks the anchored backlog level from the
// anchor date. It returns the aligned inflow and outflow series together
// with the reconstructed backlog series.
func Queues(
	inflowEvents, outflowEvents []schema.Event,
	anchor schema.Anchor,
	timeIndex []time.Time,
	weighted bool,
	freq schema.Frequency,
	asOf time.Time,
) (series.Series, series.Series, series.Series) {
	inflows := ExtractFlow(inflowEvents, weighted, freq, asOf)
	outflows := ExtractFlow(outflowEvents, weighted, freq, asOf)

	if timeIndex == nil {
		if start, end, ok := observedSpan(inflows, outflows); ok {
			timeIndex = timegrid.RangeOrEmpty(start, end, freq)
		}
	}

	inflows = inflows.Reindex(timeIndex, 0)
	outflows = outflows.Reindex(timeIndex, 0)

	backlog := ReverseBacklog(inflows, outflows, anchor.Backlog, anchor.Date, freq)

	return inflows, outflows, backlog
}

// SplitSeries splits a series into the part at or before splitDate and the
// part after it. The split date itself lands in the past half.
func SplitSeries(s series.Series, splitDate time.Time) (series.Series, series.Series) {
	cutoff := timegrid.Normalize(splitDate)
	past := s.TruncateThrough(cutoff)

	future := make(map[time.Time]float64)
	for _, p := range s.Points() {
		if p.Date.After(cutoff) {
			future[p.Date] = p.Value
		}
	}
	return past, series.FromMap(future)
}
