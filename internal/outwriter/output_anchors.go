package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/queuetrace/internal/contract"
	"github.com/huangsam/queuetrace/schema"
)

// PrintAnchors outputs stored anchors, dispatching based on the output
// format configured.
func PrintAnchors(anchors []schema.Anchor, cfg *contract.Config) error {
	fmtFloat, fmtDate := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, anchors)
		}, "Wrote JSON anchors")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"id", "date", "backlog", "note", "created_at"}
			return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
				for _, a := range anchors {
					row := []string{
						strconv.FormatInt(a.ID, 10),
						fmtDate(a.Date),
						fmtFloat(a.Backlog),
						a.Note,
						a.CreatedAt.Format(time.RFC3339),
					}
					if err := csvWriter.Write(row); err != nil {
						return fmt.Errorf("failed to write CSV row: %w", err)
					}
				}
				return nil
			})
		}, "Wrote CSV anchors")
	default:
		return printAnchorsTable(anchors, cfg, fmtFloat, fmtDate)
	}
}

func printAnchorsTable(anchors []schema.Anchor, cfg *contract.Config, fmtFloat func(float64) string, fmtDate func(time.Time) string) error {
	if len(anchors) == 0 {
		fmt.Println("No anchors stored.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"ID", "Date", "Backlog", "Note", "Created"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	noteWidth := GetMaxNoteWidth(cfg)
	var data [][]string
	for _, a := range anchors {
		data = append(data, []string{
			strconv.FormatInt(a.ID, 10),
			fmtDate(a.Date),
			fmtFloat(a.Backlog),
			TruncateNote(a.Note, noteWidth),
			a.CreatedAt.Format(time.DateOnly),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// PrintRuns outputs recorded computation runs, dispatching based on the
// output format configured.
func PrintRuns(runs []schema.RunRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, runs)
		}, "Wrote JSON runs")
	default:
		return printRunsTable(runs)
	}
}

func printRunsTable(runs []schema.RunRecord) error {
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"ID", "Started", "Metric", "Freq", "Points", "Duration"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range runs {
		durationStr := "running"
		if r.EndTime != nil {
			durationStr = r.EndTime.Sub(r.StartTime).Round(time.Millisecond).String()
		}
		data = append(data, []string{
			strconv.FormatInt(r.RunID, 10),
			r.StartTime.Format(time.RFC3339),
			string(r.Metric),
			string(r.Frequency),
			strconv.Itoa(r.TotalPoints),
			durationStr,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// PrintStoreStatus outputs human-readable status information for the anchor store.
func PrintStoreStatus(status schema.StoreStatus) {
	fmt.Println("Anchor store status:")
	fmt.Printf("  Backend:   %s\n", status.Backend)
	fmt.Printf("  Connected: %t\n", status.Connected)
	fmt.Printf("  Anchors:   %d\n", status.TotalAnchors)
	fmt.Printf("  Runs:      %d\n", status.TotalRuns)
	if status.TotalAnchors > 0 {
		fmt.Printf("  Latest anchor: %s\n", status.LatestAnchorAt.Format(time.DateOnly))
		fmt.Printf("  Oldest anchor: %s\n", status.OldestAnchorAt.Format(time.DateOnly))
	}
}
