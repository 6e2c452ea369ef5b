// Package parquet provides data structures and functions for exporting queue
// metric series and anchor data to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/huangsam/queuetrace/core/series"
	"github.com/huangsam/queuetrace/schema"
)

// SeriesRow represents one dated point of a computed metric series.
type SeriesRow struct {
	// Metric names the computed metric (backlog, throughput, arrivals, wait)
	Metric string `parquet:"metric,snappy"`

	// Freq is the output frequency code (d, w, m, q, a)
	Freq string `parquet:"freq,snappy"`

	// Date is the period start (stored as TIMESTAMP with nanosecond precision)
	Date time.Time `parquet:"date,snappy"`

	// Value is the metric value for the period
	Value float64 `parquet:"value,snappy"`
}

// AnchorRow represents a stored backlog anchor.
// This struct maps to the queuetrace_anchors database table.
type AnchorRow struct {
	// AnchorID is the unique identifier for this anchor
	AnchorID int64 `parquet:"anchor_id,snappy"`

	// AnchorDate is the date the backlog was observed
	AnchorDate time.Time `parquet:"anchor_date,snappy"`

	// Backlog is the observed backlog level
	Backlog float64 `parquet:"backlog,snappy"`

	// Note is an optional free-form annotation (nullable)
	Note *string `parquet:"note,optional,snappy"`

	// CreatedAt is when the anchor was recorded
	CreatedAt time.Time `parquet:"created_at,snappy"`
}

// RunRow represents a recorded computation run.
// This struct maps to the queuetrace_runs database table.
type RunRow struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// Metric names the computed metric
	Metric string `parquet:"metric,snappy"`

	// Freq is the output frequency code
	Freq string `parquet:"freq,snappy"`

	// TotalPoints is the number of series points the run produced
	TotalPoints int32 `parquet:"total_points,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// WriteSeriesParquet writes a slice of SeriesRow structs to a Parquet file.
func WriteSeriesParquet(data []SeriesRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteAnchorsParquet writes a slice of AnchorRow structs to a Parquet file.
func WriteAnchorsParquet(data []AnchorRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRunsParquet writes a slice of RunRow structs to a Parquet file.
func WriteRunsParquet(data []RunRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows to a Parquet file using struct schema inference.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the struct tags
	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertSeries converts a computed series to SeriesRow values for Parquet export.
func ConvertSeries(metric schema.MetricKind, freq schema.Frequency, s series.Series) []SeriesRow {
	points := s.Points()
	result := make([]SeriesRow, len(points))
	for i, p := range points {
		result[i] = SeriesRow{
			Metric: string(metric),
			Freq:   string(freq),
			Date:   p.Date,
			Value:  p.Value,
		}
	}
	return result
}

// ConvertAnchors converts schema.Anchor records to AnchorRow values for Parquet export.
func ConvertAnchors(anchors []schema.Anchor) []AnchorRow {
	result := make([]AnchorRow, len(anchors))
	for i, a := range anchors {
		row := AnchorRow{
			AnchorID:   a.ID,
			AnchorDate: a.Date,
			Backlog:    a.Backlog,
			CreatedAt:  a.CreatedAt,
		}
		if a.Note != "" {
			note := a.Note
			row.Note = &note
		}
		result[i] = row
	}
	return result
}

// ConvertRuns converts schema.RunRecord values to RunRow values for Parquet export.
func ConvertRuns(runs []schema.RunRecord) []RunRow {
	result := make([]RunRow, len(runs))
	for i, r := range runs {
		row := RunRow{
			RunID:       r.RunID,
			StartTime:   r.StartTime,
			EndTime:     r.EndTime,
			Metric:      string(r.Metric),
			Freq:        string(r.Frequency),
			TotalPoints: int32(r.TotalPoints),
		}
		if r.Params != "" {
			params := r.Params
			row.ConfigParams = &params
		}
		result[i] = row
	}
	return result
}
