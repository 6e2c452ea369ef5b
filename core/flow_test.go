package core

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

func ptr(v float64) *float64 { return &v }

func TestExtractFlow_Counting(t *testing.T) {
	events := []schema.Event{
		{Timestamp: day(2026, 1, 1)},
		{Timestamp: day(2026, 1, 1)},
		{Timestamp: day(2026, 1, 3)},
	}
	flow := ExtractFlow(events, false, schema.DayFreq, day(2026, 1, 10))

	// The span is [first event, last event], gap-free with 0 fills.
	assert.Equal(t, []time.Time{day(2026, 1, 1), day(2026, 1, 2), day(2026, 1, 3)}, flow.Dates())
	assert.Equal(t, []float64{2, 0, 1}, flow.Values())
}

func TestExtractFlow_Weighted(t *testing.T) {
	events := []schema.Event{
		{Timestamp: day(2026, 1, 1), Weight: ptr(2.5)},
		{Timestamp: day(2026, 1, 1), Weight: ptr(1.5)},
		{Timestamp: day(2026, 1, 2)}, // missing weight, dropped from totals
	}
	flow := ExtractFlow(events, true, schema.DayFreq, day(2026, 1, 10))

	assert.Equal(t, []float64{4, 0}, flow.Values())
}

func TestExtractFlow_SkipsMissingTimestamps(t *testing.T) {
	events := []schema.Event{
		{}, // no timestamp
		{Timestamp: day(2026, 1, 5)},
	}
	flow := ExtractFlow(events, false, schema.DayFreq, day(2026, 1, 10))
	require.Equal(t, 1, flow.Len())
	v, _ := flow.At(day(2026, 1, 5))
	assert.Equal(t, 1.0, v)
}

func TestExtractFlow_NoUsableTimestamps(t *testing.T) {
	flow := ExtractFlow([]schema.Event{{}, {}}, false, schema.DayFreq, day(2026, 1, 10))
	assert.True(t, flow.IsEmpty())
}

func TestExtractFlow_Empty(t *testing.T) {
	flow := ExtractFlow(nil, false, schema.DayFreq, day(2026, 1, 10))
	assert.True(t, flow.IsEmpty())
}

func TestExtractFlow_WeeklyBuckets(t *testing.T) {
	events := []schema.Event{
		{Timestamp: day(2026, 1, 5)},  // Monday
		{Timestamp: day(2026, 1, 8)},  // same week
		{Timestamp: day(2026, 1, 14)}, // next week
	}
	flow := ExtractFlow(events, false, schema.WeekFreq, day(2026, 1, 20))

	assert.Equal(t, []time.Time{day(2026, 1, 5), day(2026, 1, 12)}, flow.Dates())
	assert.Equal(t, []float64{2, 1}, flow.Values())
}

func TestExtractDoubleFlow(t *testing.T) {
	rows := []schema.FlowEvent{
		{Inflow: day(2026, 1, 1), Outflow: day(2026, 1, 3)},
		{Inflow: day(2026, 1, 2)}, // still open, no outflow
	}
	inflows, outflows := ExtractDoubleFlow(rows, schema.DayFreq, day(2026, 1, 10))

	assert.Equal(t, []float64{1, 1}, inflows.Values())
	require.Equal(t, 1, outflows.Len())
	v, _ := outflows.At(day(2026, 1, 3))
	assert.Equal(t, 1.0, v)
}

func TestCumulate_ExtendsThroughAsOf(t *testing.T) {
	flow := ExtractFlow([]schema.Event{
		{Timestamp: day(2026, 1, 1)},
		{Timestamp: day(2026, 1, 2)},
	}, false, schema.DayFreq, day(2026, 1, 5))

	cum := Cumulate(flow, day(2026, 1, 5))
	require.Equal(t, 5, cum.Len())

	// Total holds flat after the last event.
	last, _ := cum.Last()
	assert.Equal(t, day(2026, 1, 5), last.Date)
	assert.Equal(t, 2.0, last.Value)
}

func TestCumulate_Monotonic(t *testing.T) {
	flow := ExtractFlow([]schema.Event{
		{Timestamp: day(2026, 1, 1)},
		{Timestamp: day(2026, 1, 4)},
		{Timestamp: day(2026, 1, 4)},
	}, false, schema.DayFreq, day(2026, 1, 8))

	cum := Cumulate(flow, day(2026, 1, 8))
	values := cum.Values()
	for i := 1; i < len(values); i++ {
		assert.GreaterOrEqual(t, values[i], values[i-1])
	}
}

func TestCumulate_Empty(t *testing.T) {
	var flow = ExtractFlow(nil, false, schema.DayFreq, day(2026, 1, 5))
	assert.True(t, Cumulate(flow, day(2026, 1, 5)).IsEmpty())
}
