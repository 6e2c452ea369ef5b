package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/queuetrace/schema"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNew_SortsAndDeduplicates(t *testing.T) {
	s := New(
		Point{Date: day(2026, 1, 3), Value: 3},
		Point{Date: day(2026, 1, 1), Value: 1},
		Point{Date: day(2026, 1, 3), Value: 30}, // last value wins
	)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, []time.Time{day(2026, 1, 1), day(2026, 1, 3)}, s.Dates())
	assert.Equal(t, []float64{1, 30}, s.Values())
}

func TestEmptySeries(t *testing.T) {
	var s Series
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.Len())

	_, ok := s.First()
	assert.False(t, ok)
	_, ok = s.Last()
	assert.False(t, ok)
	_, ok = s.At(day(2026, 1, 1))
	assert.False(t, ok)
}

func TestAt(t *testing.T) {
	s := New(Point{Date: day(2026, 1, 2), Value: 5})
	v, ok := s.At(day(2026, 1, 2))
	require.True(t, ok)
	assert.Equal(t, 5.0, v)

	_, ok = s.At(day(2026, 1, 3))
	assert.False(t, ok)
}

func TestFirstLast(t *testing.T) {
	s := New(
		Point{Date: day(2026, 1, 1), Value: 1},
		Point{Date: day(2026, 1, 5), Value: 5},
	)
	first, ok := s.First()
	require.True(t, ok)
	assert.Equal(t, day(2026, 1, 1), first.Date)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, day(2026, 1, 5), last.Date)
}

func TestReindex(t *testing.T) {
	s := New(
		Point{Date: day(2026, 1, 1), Value: 1},
		Point{Date: day(2026, 1, 3), Value: 3},
		Point{Date: day(2026, 1, 9), Value: 9}, // outside the grid, dropped
	)
	grid := []time.Time{day(2026, 1, 1), day(2026, 1, 2), day(2026, 1, 3)}

	out := s.Reindex(grid, 0)
	assert.Equal(t, grid, out.Dates())
	assert.Equal(t, []float64{1, 0, 3}, out.Values())

	// The receiver stays untouched.
	assert.Equal(t, 3, s.Len())
}

func TestForwardFill(t *testing.T) {
	s := New(
		Point{Date: day(2026, 1, 2), Value: 2},
		Point{Date: day(2026, 1, 4), Value: 4},
	)
	grid := []time.Time{day(2026, 1, 1), day(2026, 1, 2), day(2026, 1, 3), day(2026, 1, 4), day(2026, 1, 5)}

	out := s.ForwardFill(grid, 0)
	assert.Equal(t, grid, out.Dates())
	// Dates before the first observation take the fill; later gaps carry the
	// last observed value forward.
	assert.Equal(t, []float64{0, 2, 2, 4, 4}, out.Values())
}

func TestCumSum(t *testing.T) {
	s := New(
		Point{Date: day(2026, 1, 1), Value: 1},
		Point{Date: day(2026, 1, 2), Value: 2},
		Point{Date: day(2026, 1, 3), Value: 3},
	)
	assert.Equal(t, []float64{1, 3, 6}, s.CumSum().Values())
}

func TestReverseCumSum(t *testing.T) {
	s := New(
		Point{Date: day(2026, 1, 1), Value: 1},
		Point{Date: day(2026, 1, 2), Value: 2},
		Point{Date: day(2026, 1, 3), Value: 3},
	)
	out := s.ReverseCumSum()
	// Each point totals everything at or after its date; order stays ascending.
	assert.Equal(t, []float64{6, 5, 3}, out.Values())
	assert.Equal(t, s.Dates(), out.Dates())
}

func TestDiff(t *testing.T) {
	s := New(
		Point{Date: day(2026, 1, 1), Value: 1},
		Point{Date: day(2026, 1, 2), Value: 3},
		Point{Date: day(2026, 1, 3), Value: 6},
	)
	assert.Equal(t, []float64{1, 2, 3}, s.Diff().Values())
}

func TestCumSumDiffRoundTrip(t *testing.T) {
	s := New(
		Point{Date: day(2026, 1, 1), Value: 4},
		Point{Date: day(2026, 1, 2), Value: 0},
		Point{Date: day(2026, 1, 3), Value: 7},
	)
	assert.Equal(t, s.Values(), s.CumSum().Diff().Values())
}

func TestSub(t *testing.T) {
	a := New(
		Point{Date: day(2026, 1, 1), Value: 10},
		Point{Date: day(2026, 1, 2), Value: 20},
	)
	b := New(
		Point{Date: day(2026, 1, 2), Value: 5},
		Point{Date: day(2026, 1, 3), Value: 7},
	)
	out := a.Sub(b, 0)
	assert.Equal(t, []time.Time{day(2026, 1, 1), day(2026, 1, 2), day(2026, 1, 3)}, out.Dates())
	assert.Equal(t, []float64{10, 15, -7}, out.Values())
}

func TestTruncateThrough(t *testing.T) {
	s := New(
		Point{Date: day(2026, 1, 1), Value: 1},
		Point{Date: day(2026, 1, 2), Value: 2},
		Point{Date: day(2026, 1, 3), Value: 3},
	)
	out := s.TruncateThrough(day(2026, 1, 2))
	assert.Equal(t, []time.Time{day(2026, 1, 1), day(2026, 1, 2)}, out.Dates())
}

func TestClip(t *testing.T) {
	s := New(
		Point{Date: day(2026, 1, 1), Value: 1},
		Point{Date: day(2026, 1, 2), Value: 2},
		Point{Date: day(2026, 1, 3), Value: 3},
		Point{Date: day(2026, 1, 4), Value: 4},
	)
	out := s.Clip(day(2026, 1, 2), day(2026, 1, 3))
	assert.Equal(t, []time.Time{day(2026, 1, 2), day(2026, 1, 3)}, out.Dates())
}

func TestClampMin(t *testing.T) {
	s := New(
		Point{Date: day(2026, 1, 1), Value: -5},
		Point{Date: day(2026, 1, 2), Value: 3},
	)
	assert.Equal(t, []float64{0, 3}, s.ClampMin(0).Values())
}

func TestResample_Sum(t *testing.T) {
	s := New(
		Point{Date: day(2026, 1, 5), Value: 1},  // week of Jan 5
		Point{Date: day(2026, 1, 7), Value: 2},  // week of Jan 5
		Point{Date: day(2026, 1, 12), Value: 4}, // week of Jan 12
	)
	out := s.Resample(schema.WeekFreq, schema.SumReducer)
	assert.Equal(t, []time.Time{day(2026, 1, 5), day(2026, 1, 12)}, out.Dates())
	assert.Equal(t, []float64{3, 4}, out.Values())
}

func TestResample_First(t *testing.T) {
	s := New(
		Point{Date: day(2026, 1, 5), Value: 10},
		Point{Date: day(2026, 1, 7), Value: 99},
	)
	out := s.Resample(schema.WeekFreq, schema.FirstReducer)
	require.Equal(t, 1, out.Len())
	v, _ := out.At(day(2026, 1, 5))
	assert.Equal(t, 10.0, v)
}

func TestResample_MeanAndCount(t *testing.T) {
	s := New(
		Point{Date: day(2026, 1, 5), Value: 2},
		Point{Date: day(2026, 1, 6), Value: 4},
	)
	mean := s.Resample(schema.WeekFreq, schema.MeanReducer)
	v, _ := mean.At(day(2026, 1, 5))
	assert.Equal(t, 3.0, v)

	count := s.Resample(schema.WeekFreq, schema.CountReducer)
	v, _ = count.At(day(2026, 1, 5))
	assert.Equal(t, 2.0, v)
}

func TestResample_MonthlyPeriodStarts(t *testing.T) {
	s := New(
		Point{Date: day(2026, 1, 15), Value: 1},
		Point{Date: day(2026, 3, 2), Value: 2},
	)
	out := s.Resample(schema.MonthFreq, schema.SumReducer)
	// Only observed periods appear; February is absent.
	assert.Equal(t, []time.Time{day(2026, 1, 1), day(2026, 3, 1)}, out.Dates())
}

func TestToPointsRoundTrip(t *testing.T) {
	s := New(
		Point{Date: day(2026, 1, 1), Value: 1},
		Point{Date: day(2026, 1, 2), Value: 2},
	)
	back := FromSchemaPoints(s.ToPoints())
	assert.Equal(t, s.Dates(), back.Dates())
	assert.Equal(t, s.Values(), back.Values())
}

func TestFromMap(t *testing.T) {
	s := FromMap(map[time.Time]float64{
		day(2026, 1, 2): 2,
		day(2026, 1, 1): 1,
	})
	assert.Equal(t, []time.Time{day(2026, 1, 1), day(2026, 1, 2)}, s.Dates())
}
