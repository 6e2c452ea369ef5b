// Package series provides the immutable date-indexed series type used by the
// queue-metrics engine, with the reindex, accumulate and resample operations
// the engine is built from.
package series

import (
	"sort"
	"time"

	"github.com/huangsam/queuetrace/core/timegrid"
	"github.com/huangsam/queuetrace/schema"
)

// Point is a single date/value observation.
type Point struct {
	Date  time.Time
	Value float64
}

// Series is an ordered mapping from date to value. Dates are unique and
// ascending. All operations return a new Series and never mutate the
// receiver.
type Series struct {
	points []Point
}

// New builds a Series from points, sorting by date. When a date appears more
// than once the last value wins.
func New(points ...Point) Series {
	byDate := make(map[time.Time]float64, len(points))
	for _, p := range points {
		byDate[p.Date] = p.Value
	}
	return fromMap(byDate)
}

// FromMap builds a Series from a date-keyed map.
func FromMap(values map[time.Time]float64) Series {
	return fromMap(values)
}

func fromMap(values map[time.Time]float64) Series {
	points := make([]Point, 0, len(values))
	for d, v := range values {
		points = append(points, Point{Date: d, Value: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return Series{points: points}
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.points) }

// IsEmpty reports whether the series has no points.
func (s Series) IsEmpty() bool { return len(s.points) == 0 }

// Points returns a copy of the underlying points in ascending date order.
func (s Series) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Dates returns the ascending date domain.
func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s.points))
	for i, p := range s.points {
		out[i] = p.Date
	}
	return out
}

// Values returns the values in ascending date order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Value
	}
	return out
}

// At returns the value at the given date, if present.
func (s Series) At(date time.Time) (float64, bool) {
	i := sort.Search(len(s.points), func(i int) bool { return !s.points[i].Date.Before(date) })
	if i < len(s.points) && s.points[i].Date.Equal(date) {
		return s.points[i].Value, true
	}
	return 0, false
}

// First returns the earliest point, if any.
func (s Series) First() (Point, bool) {
	if len(s.points) == 0 {
		return Point{}, false
	}
	return s.points[0], true
}

// Last returns the latest point, if any.
func (s Series) Last() (Point, bool) {
	if len(s.points) == 0 {
		return Point{}, false
	}
	return s.points[len(s.points)-1], true
}

// Reindex conforms the series to exactly the given grid. Grid dates missing
// from the series take the fill value; series dates outside the grid are
// dropped.
func (s Series) Reindex(grid []time.Time, fill float64) Series {
	points := make([]Point, len(grid))
	for i, d := range grid {
		v, ok := s.At(d)
		if !ok {
			v = fill
		}
		points[i] = Point{Date: d, Value: v}
	}
	return Series{points: points}
}

// ForwardFill conforms the series to the given grid carrying the last
// observed value forward into grid dates the series does not cover. Grid
// dates before the first observation take the fill value.
func (s Series) ForwardFill(grid []time.Time, fill float64) Series {
	points := make([]Point, len(grid))
	last := fill
	for i, d := range grid {
		if v, ok := s.At(d); ok {
			last = v
		}
		points[i] = Point{Date: d, Value: last}
	}
	return Series{points: points}
}

// CumSum returns the running sum in ascending date order.
func (s Series) CumSum() Series {
	points := make([]Point, len(s.points))
	var total float64
	for i, p := range s.points {
		total += p.Value
		points[i] = Point{Date: p.Date, Value: total}
	}
	return Series{points: points}
}

// ReverseCumSum returns the running sum in descending date order: each point
// holds the total of all values at or after its date. The result is still
// stored ascending.
func (s Series) ReverseCumSum() Series {
	points := make([]Point, len(s.points))
	var total float64
	for i := len(s.points) - 1; i >= 0; i-- {
		total += s.points[i].Value
		points[i] = Point{Date: s.points[i].Date, Value: total}
	}
	return Series{points: points}
}

// Diff returns period-over-period first differences: each value minus its
// immediate predecessor, with a missing predecessor treated as 0.
func (s Series) Diff() Series {
	points := make([]Point, len(s.points))
	var prev float64
	for i, p := range s.points {
		points[i] = Point{Date: p.Date, Value: p.Value - prev}
		prev = p.Value
	}
	return Series{points: points}
}

// Sub subtracts other from s over the union of both date domains. A date
// missing on either side contributes the fill value for that side.
func (s Series) Sub(other Series, fill float64) Series {
	union := make(map[time.Time]float64, len(s.points)+other.Len())
	for _, p := range s.points {
		union[p.Date] = 0
	}
	for _, p := range other.points {
		union[p.Date] = 0
	}
	for d := range union {
		left, ok := s.At(d)
		if !ok {
			left = fill
		}
		right, ok := other.At(d)
		if !ok {
			right = fill
		}
		union[d] = left - right
	}
	return fromMap(union)
}

// TruncateThrough keeps only points dated at or before the cutoff.
func (s Series) TruncateThrough(cutoff time.Time) Series {
	i := sort.Search(len(s.points), func(i int) bool { return s.points[i].Date.After(cutoff) })
	points := make([]Point, i)
	copy(points, s.points[:i])
	return Series{points: points}
}

// Clip keeps only points within [start, end] inclusive.
func (s Series) Clip(start, end time.Time) Series {
	var points []Point
	for _, p := range s.points {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		points = append(points, p)
	}
	return Series{points: points}
}

// ClampMin floors every value at the given minimum.
func (s Series) ClampMin(min float64) Series {
	points := make([]Point, len(s.points))
	for i, p := range s.points {
		if p.Value < min {
			p.Value = min
		}
		points[i] = p
	}
	return Series{points: points}
}

// Resample aggregates the series onto the period grid of the given frequency.
// Each output point is dated at its period start and holds the reduction of
// all input values falling inside that period. Only observed periods appear;
// the caller reindexes onto a full grid when gap-free output is required.
func (s Series) Resample(freq schema.Frequency, how schema.Reducer) Series {
	type bucket struct {
		sum   float64
		count int
		value float64
		set   bool
	}
	buckets := make(map[time.Time]*bucket)

	for _, p := range s.points {
		period := timegrid.FirstOf(p.Date, freq)
		b, ok := buckets[period]
		if !ok {
			b = &bucket{}
			buckets[period] = b
		}
		b.sum += p.Value
		b.count++
		// Points arrive in ascending order, so the first hit per period is
		// the earliest observation.
		if !b.set {
			b.value = p.Value
			b.set = true
		}
	}

	out := make(map[time.Time]float64, len(buckets))
	for period, b := range buckets {
		switch how {
		case schema.SumReducer:
			out[period] = b.sum
		case schema.MeanReducer:
			out[period] = b.sum / float64(b.count)
		case schema.CountReducer:
			out[period] = float64(b.count)
		default: // first
			out[period] = b.value
		}
	}
	return fromMap(out)
}

// ToPoints converts the series into the wire/report representation.
func (s Series) ToPoints() []schema.SeriesPoint {
	out := make([]schema.SeriesPoint, len(s.points))
	for i, p := range s.points {
		out[i] = schema.SeriesPoint{Date: p.Date, Value: p.Value}
	}
	return out
}

// FromSchemaPoints builds a Series from the wire/report representation.
func FromSchemaPoints(points []schema.SeriesPoint) Series {
	converted := make([]Point, len(points))
	for i, p := range points {
		converted[i] = Point{Date: p.Date, Value: p.Value}
	}
	return New(converted...)
}
