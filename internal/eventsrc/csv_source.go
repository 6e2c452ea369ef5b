package eventsrc

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/queuetrace/core/timegrid"
	"github.com/huangsam/queuetrace/internal/contract"
	"github.com/huangsam/queuetrace/schema"
)

// CSVSource reads queue events from CSV files with a header row. Either
// direction can be absent, in which case that flow is empty.
type CSVSource struct {
	inflowPath    string
	outflowPath   string
	inflowColumn  string
	outflowColumn string
	weightColumn  string
}

var _ contract.EventSource = (*CSVSource)(nil) // Compile-time check

// NewCSVSource creates a CSV-backed event source. Column names may be empty,
// in which case the timestamp column is inferred from the header row.
func NewCSVSource(inflowPath, outflowPath, inflowColumn, outflowColumn, weightColumn string) *CSVSource {
	return &CSVSource{
		inflowPath:    inflowPath,
		outflowPath:   outflowPath,
		inflowColumn:  inflowColumn,
		outflowColumn: outflowColumn,
		weightColumn:  weightColumn,
	}
}

// Inflows returns all inflow events from the inflow CSV file.
func (s *CSVSource) Inflows(ctx context.Context) ([]schema.Event, error) {
	return s.readFile(ctx, s.inflowPath, s.inflowColumn)
}

// Outflows returns all outflow events from the outflow CSV file.
func (s *CSVSource) Outflows(ctx context.Context) ([]schema.Event, error) {
	return s.readFile(ctx, s.outflowPath, s.outflowColumn)
}

func (s *CSVSource) readFile(ctx context.Context, path, tsColumn string) ([]schema.Event, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header from %s: %w", path, err)
	}

	if tsColumn == "" {
		tsColumn, err = inferTimestampColumn(path, headers)
		if err != nil {
			return nil, err
		}
	}
	tsIdx, ok := findColumn(headers, tsColumn)
	if !ok {
		return nil, fmt.Errorf("column %q not found in %s", tsColumn, path)
	}

	weightIdx := -1
	if s.weightColumn != "" {
		weightIdx, ok = findColumn(headers, s.weightColumn)
		if !ok {
			return nil, fmt.Errorf("weight column %q not found in %s", s.weightColumn, path)
		}
	}

	var events []schema.Event
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", path, err)
		}
		if tsIdx >= len(record) {
			continue
		}

		event := schema.Event{}
		// Rows with a missing or unparsable timestamp stay in the slice with
		// a zero timestamp; the extractor skips them.
		if raw := record[tsIdx]; raw != "" {
			if ts, err := timegrid.ParseDate(raw); err == nil {
				event.Timestamp = ts
			}
		}

		if weightIdx >= 0 && weightIdx < len(record) && record[weightIdx] != "" {
			w, err := strconv.ParseFloat(record[weightIdx], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid weight %q in %s: %w", record[weightIdx], path, err)
			}
			event.Weight = &w
		}

		events = append(events, event)
	}

	return events, nil
}
