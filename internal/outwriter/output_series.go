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

// PrintSeriesReport outputs a computed metric series, dispatching based on
// the output format configured.
func PrintSeriesReport(report schema.SeriesReport, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, fmtDate := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONSeries(report, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVSeries(report, cfg, fmtFloat, fmtDate); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := printParquetSeries(report, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		if err := printSeriesTable(report, cfg, fmtFloat, fmtDate, duration); err != nil {
			return fmt.Errorf("error writing series table output: %w", err)
		}
	}
	return nil
}

// printJSONSeries handles opening the file and calling the JSON writer.
func printJSONSeries(report schema.SeriesReport, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, report)
	}, "Wrote JSON series results")
}

// printCSVSeries handles opening the file and calling the CSV writer.
func printCSVSeries(report schema.SeriesReport, cfg *contract.Config, fmtFloat func(float64) string, fmtDate func(time.Time) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{"date", "value"}
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for _, p := range report.Points {
				row := []string{fmtDate(p.Date), fmtFloat(p.Value)}
				if err := csvWriter.Write(row); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
			}
			return nil
		})
	}, "Wrote CSV series results")
}

// printParquetSeries writes the series points to a Parquet file. Parquet
// output always requires an explicit output file.
func printParquetSeries(report schema.SeriesReport, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	rows := make([]parquet.SeriesRow, len(report.Points))
	for i, p := range report.Points {
		rows[i] = parquet.SeriesRow{
			Metric: string(report.Metric),
			Freq:   string(report.Frequency),
			Date:   p.Date,
			Value:  p.Value,
		}
	}
	if err := parquet.WriteSeriesParquet(rows, cfg.OutputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet series results to %s\n", cfg.OutputFile)
	return nil
}

// printSeriesTable prints the series in a three-column table with a pressure
// label scaled against the series peak.
func printSeriesTable(report schema.SeriesReport, cfg *contract.Config, fmtFloat func(float64) string, fmtDate func(time.Time) string, duration time.Duration) error {
	// Use os.Stdout, consistent with existing table printing
	table := tablewriter.NewWriter(os.Stdout)

	// --- 1. Define Headers ---
	headers := []string{"Date", "Value", "Level"}
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	values := make([]float64, len(report.Points))
	for i, p := range report.Points {
		values[i] = p.Value
	}
	peak := peakValue(values)

	// --- 3. Prepare Data Rows ---
	var data [][]string
	for _, p := range report.Points {
		label := contract.GetPlainLabel(p.Value, peak)
		if cfg.UseColors {
			label = contract.GetColorLabel(p.Value, peak)
		}
		row := []string{
			fmtDate(p.Date),
			fmtFloat(p.Value),
			label,
		}
		data = append(data, row)
	}

	// --- 4. Render the table ---
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("%s analysis completed in %v with %d points at frequency %s\n",
		report.Metric, duration, len(report.Points), report.Frequency)
	return nil
}
