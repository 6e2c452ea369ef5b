package anchordb

import (
	"errors"
	"fmt"

	"github.com/huangsam/queuetrace/internal/contract"
	"github.com/huangsam/queuetrace/internal/parquet"
)

// ExecuteAnchorExport performs the actual export of anchor data to Parquet files.
func ExecuteAnchorExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Get the anchor store
	store := Manager.GetAnchorStore()
	if store == nil {
		return errors.New("anchor store is not configured")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}

	if status.TotalAnchors == 0 && status.TotalRuns == 0 {
		return errors.New("no anchor data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total anchors: %d\n", status.TotalAnchors)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)

	// Retrieve all anchors
	anchors, err := store.ListAnchors(contract.MaxResultLimit)
	if err != nil {
		return fmt.Errorf("failed to retrieve anchors: %w", err)
	}

	// Retrieve all run records
	runs, err := store.ListRuns(contract.MaxResultLimit)
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	// Convert to Parquet format
	parquetAnchors := parquet.ConvertAnchors(anchors)
	parquetRuns := parquet.ConvertRuns(runs)

	// Write anchors to Parquet
	anchorsFile := outputFile + ".anchors.parquet"
	if err := parquet.WriteAnchorsParquet(parquetAnchors, anchorsFile); err != nil {
		return fmt.Errorf("failed to write anchors: %w", err)
	}
	fmt.Printf("Exported %d anchors to: %s\n", len(parquetAnchors), anchorsFile)

	// Write run records to Parquet
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d run records to: %s\n", len(parquetRuns), runsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
