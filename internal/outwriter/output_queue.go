package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/queuetrace/internal/contract"
	"github.com/huangsam/queuetrace/internal/parquet"
	"github.com/huangsam/queuetrace/schema"
)

// PrintQueueReport outputs a full reconstruction report with aligned inflow,
// outflow, and backlog series, dispatching based on the output format.
func PrintQueueReport(report schema.QueueReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtDate := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONQueue(report, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVQueue(report, cfg, fmtFloat, fmtDate); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := printParquetQueue(report, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		if err := printQueueTable(report, cfg, fmtFloat, fmtDate, duration); err != nil {
			return fmt.Errorf("error writing queue table output: %w", err)
		}
	}
	return nil
}

func printJSONQueue(report schema.QueueReport, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, report)
	}, "Wrote JSON queue results")
}

func printCSVQueue(report schema.QueueReport, cfg *contract.Config, fmtFloat func(float64) string, fmtDate func(time.Time) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{"date", "inflows", "outflows", "backlog"}
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for _, row := range alignQueueRows(report) {
				record := []string{
					fmtDate(row.date),
					fmtFloat(row.inflow),
					fmtFloat(row.outflow),
					fmtFloat(row.backlog),
				}
				if err := csvWriter.Write(record); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
			}
			return nil
		})
	}, "Wrote CSV queue results")
}

// printParquetQueue writes the backlog series to a Parquet file. The aligned
// inflow and outflow series are exportable individually through the metric
// commands.
func printParquetQueue(report schema.QueueReport, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	rows := make([]parquet.SeriesRow, len(report.Backlog))
	for i, p := range report.Backlog {
		rows[i] = parquet.SeriesRow{
			Metric: string(schema.ReconstructMetric),
			Freq:   string(report.Frequency),
			Date:   p.Date,
			Value:  p.Value,
		}
	}
	if err := parquet.WriteSeriesParquet(rows, cfg.OutputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet queue results to %s\n", cfg.OutputFile)
	return nil
}

func printQueueTable(report schema.QueueReport, cfg *contract.Config, fmtFloat func(float64) string, fmtDate func(time.Time) string, duration time.Duration) error {
	table := tablewriter.NewWriter(os.Stdout)

	headers := []string{"Date", "Inflows", "Outflows", "Backlog", "Level"}
	table.Header(headers)

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	rows := alignQueueRows(report)
	values := make([]float64, len(rows))
	for i, row := range rows {
		values[i] = row.backlog
	}
	peak := peakValue(values)

	var data [][]string
	for _, row := range rows {
		label := contract.GetPlainLabel(row.backlog, peak)
		if cfg.UseColors {
			label = contract.GetColorLabel(row.backlog, peak)
		}
		data = append(data, []string{
			fmtDate(row.date),
			fmtFloat(row.inflow),
			fmtFloat(row.outflow),
			fmtFloat(row.backlog),
			label,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("Reconstruction completed in %v with %d periods at frequency %s (anchor: %s = %s)\n",
		duration, len(rows), report.Frequency,
		report.Anchor.Date.Format(time.DateOnly), fmtFloat(report.Anchor.Backlog))
	return nil
}

// queueRow is one aligned output row across the three series.
type queueRow struct {
	date    time.Time
	inflow  float64
	outflow float64
	backlog float64
}

// alignQueueRows walks the backlog dates and pairs each with the matching
// inflow and outflow values. The three series share a time index, so the
// backlog dates drive the output.
func alignQueueRows(report schema.QueueReport) []queueRow {
	inflows := make(map[time.Time]float64, len(report.Inflows))
	for _, p := range report.Inflows {
		inflows[p.Date] = p.Value
	}
	outflows := make(map[time.Time]float64, len(report.Outflows))
	for _, p := range report.Outflows {
		outflows[p.Date] = p.Value
	}

	rows := make([]queueRow, len(report.Backlog))
	for i, p := range report.Backlog {
		rows[i] = queueRow{
			date:    p.Date,
			inflow:  inflows[p.Date],
			outflow: outflows[p.Date],
			backlog: p.Value,
		}
	}
	return rows
}
