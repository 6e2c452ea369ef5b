package core

import (
	"time"

	"github.com/huangsam/queuetrace/core/series"
	"github.com/huangsam/queuetrace/schema"
)

// Throughput returns total outflow per period: the first differences of the
// cumulative outflow, summed into each output period. Periods inside the
// span with no outflow hold 0.
func Throughput(outflows series.Series, freq schema.Frequency, asOf time.Time) series.Series {
	return Cumulate(outflows, asOf).
		Diff().
		Resample(freq, schema.SumReducer)
}

// Arrivals returns total inflow per period. See Throughput.
func Arrivals(inflows series.Series, freq schema.Frequency, asOf time.Time) series.Series {
	return Cumulate(inflows, asOf).
		Diff().
		Resample(freq, schema.SumReducer)
}

// Wait returns the average time a unit spends in the queue per period, via
// Little's Law: W = L / lambda, backlog over arrival rate. Periods with zero
// arrivals have no defined wait and are absent from the result rather than
// being an error.
func Wait(inflows, outflows series.Series, freq schema.Frequency, asOf time.Time) series.Series {
	backlog := FlowBalance(inflows, outflows, freq, asOf).Resample(freq, schema.MeanReducer)
	arrivals := Arrivals(inflows, freq, asOf).Resample(freq, schema.MeanReducer)

	wait := make(map[time.Time]float64)
	for _, p := range backlog.Points() {
		rate, ok := arrivals.At(p.Date)
		if !ok || rate == 0 {
			continue
		}
		wait[p.Date] = p.Value / rate
	}
	return series.FromMap(wait)
}
