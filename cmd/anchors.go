package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/queuetrace/core/timegrid"
	"github.com/huangsam/queuetrace/internal/anchordb"
	"github.com/huangsam/queuetrace/internal/contract"
	"github.com/huangsam/queuetrace/internal/outwriter"
	"github.com/huangsam/queuetrace/schema"
)

// storeSetup loads minimal configuration needed for anchor store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("store-backend")))
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize the store with the loaded config (no event source for anchor commands)
	if err := anchordb.InitStore(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize anchor store: %w", err)
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	// Get output-related config values (used by list, runs and export commands)
	cfg.Output = schema.OutputMode(strings.ToLower(viper.GetString("output")))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", viper.GetString("output"))
	}
	cfg.OutputFile = viper.GetString("output-file")
	cfg.ResultLimit = viper.GetInt("limit")
	if cfg.ResultLimit <= 0 || cfg.ResultLimit > contract.MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", contract.MaxResultLimit, cfg.ResultLimit)
	}
	cfg.Precision = viper.GetInt("precision")
	cfg.Width = viper.GetInt("width")
	colors, err := contract.ParseBoolString(viper.GetString("color"))
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for anchor commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize the store or create
// tables, allowing migrations to run on a fresh database.
func storeMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("store-backend")))
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetStoreDBFilePath()
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	return nil
}

// storeMigrateSetupWrapper wraps storeMigrateSetup to provide PreRunE for migrate command.
func storeMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeMigrateSetup()
}

// anchorsCmd focused on anchor store management.
//
// Note: Anchor subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by metric commands. This avoids event source
// validation and complex config processing for simple store operations.
var anchorsCmd = &cobra.Command{
	Use:   "anchors",
	Short: "Manage stored backlog anchors and run history",
	Long: `Manage the anchor store that backs reconstruction and run tracking.

An anchor is a known backlog level at a known date, such as a manual count
or an audit figure. The reconstruct command uses the most recent stored
anchor at or before the evaluation date when no --backlog flag is given.
Every metric run is also recorded here for later inspection.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  add     - Store a new anchor observation
  list    - Show stored anchors
  runs    - Show recorded metric runs
  status  - Show store statistics and connection info
  export  - Export anchors and runs to Parquet
  clear   - Remove all stored data
  migrate - Run database schema migrations

Examples:
  # Store today's backlog count
  queuetrace anchors add --backlog 120

  # Inspect stored anchors
  queuetrace anchors list`,
}

// anchorsAddCmd stores a new anchor observation.
var anchorsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a known backlog level at a date",
	Long: `Store a backlog observation for later reconstruction runs.

The anchor date defaults to today. Dates are truncated to midnight UTC so
anchors line up with the daily reconstruction grid. An optional note records
where the figure came from.

Examples:
  # Store today's count
  queuetrace anchors add --backlog 120

  # Store a historical audit figure with provenance
  queuetrace anchors add --backlog 85 --anchor-date 2026-03-01 --note "Q1 audit"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		anchorDate := timegrid.Normalize(time.Now().UTC())
		if raw := viper.GetString("anchor-date"); raw != "" {
			parsed, err := timegrid.ParseDate(raw)
			if err != nil {
				contract.LogFatal("Invalid --anchor-date value", err)
			}
			anchorDate = parsed
		}

		anchor := schema.Anchor{
			Date:      anchorDate,
			Backlog:   viper.GetFloat64("backlog"),
			Note:      viper.GetString("note"),
			CreatedAt: time.Now().UTC(),
		}
		if anchor.Backlog < 0 {
			contract.LogFatal("Cannot store anchor", fmt.Errorf("backlog must be non-negative (received %g)", anchor.Backlog))
		}

		store := anchordb.Manager.GetAnchorStore()
		if store == nil {
			contract.LogFatal("Cannot store anchor", fmt.Errorf("anchor store is not configured"))
		}
		id, err := store.AddAnchor(anchor)
		if err != nil {
			contract.LogFatal("Failed to store anchor", err)
		}
		fmt.Printf("Stored anchor %d: backlog %g at %s\n", id, anchor.Backlog, anchorDate.Format(time.DateOnly))
	},
}

// anchorsListCmd lists stored anchors.
var anchorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show stored backlog anchors",
	Long: `List stored anchors, most recent first.

Respects --output (text, csv, json) and --limit.

Examples:
  # Show the latest anchors
  queuetrace anchors list

  # Machine-readable listing
  queuetrace anchors list --output json --limit 500`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		anchors, err := anchordb.Manager.GetAnchorStore().ListAnchors(cfg.ResultLimit)
		if err != nil {
			contract.LogFatal("Failed to list anchors", err)
		}
		if err := outwriter.PrintAnchors(anchors, cfg); err != nil {
			contract.LogFatal("Failed to print anchors", err)
		}
	},
}

// anchorsRunsCmd lists recorded metric runs.
var anchorsRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recorded metric runs",
	Long: `List recorded metric runs, most recent first.

Every metric command records its start time, metric, frequency and point
count when the store is enabled. Use this to audit what was computed when.

Examples:
  # Show recent runs
  queuetrace anchors runs

  # Show more history
  queuetrace anchors runs --limit 500`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runs, err := anchordb.Manager.GetAnchorStore().ListRuns(cfg.ResultLimit)
		if err != nil {
			contract.LogFatal("Failed to list runs", err)
		}
		if err := outwriter.PrintRuns(runs, cfg); err != nil {
			contract.LogFatal("Failed to print runs", err)
		}
	},
}

// anchorsClearCmd clears the anchor store.
var anchorsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored anchors and run history",
	Long: `Delete all stored anchors and recorded runs.

WARNING: This action cannot be undone. Consider exporting data first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the anchor and run tables

Examples:
  # Export before clearing
  queuetrace anchors export --output-file backup
  queuetrace anchors clear`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := anchordb.ClearStore(cfg.StoreBackend, contract.GetStoreDBFilePath(), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear anchor store", err)
		}
		fmt.Println("Anchor store cleared successfully.")
	},
}

// anchorsStatusCmd shows anchor store status.
var anchorsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display anchor store statistics and connection details",
	Long: `Show detailed information about the anchor store.

Displays:
- Backend type and connection status
- Total number of stored anchors and runs
- Latest and oldest anchor dates

Examples:
  # Check store status
  queuetrace anchors status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := anchordb.Manager.GetAnchorStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		outwriter.PrintStoreStatus(status)
	},
}

// anchorsExportCmd exports anchor data to Parquet files.
var anchorsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export anchors and run history to Parquet",
	Long: `Export all stored anchors and run records to Parquet format.

Writes two files next to the given prefix:
- <output-file>.anchors.parquet
- <output-file>.runs.parquet

Parquet output works directly with pandas, DuckDB and most BI tools.

Requires: --output-file parameter

Examples:
  # Export all data
  queuetrace anchors export --output-file queuetrace-data

  # Query the export with DuckDB
  duckdb -c "SELECT * FROM read_parquet('queuetrace-data.anchors.parquet')"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := anchordb.ExecuteAnchorExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export anchor data", err)
		}
	},
}

// anchorsMigrateCmd runs database migrations for the anchor store.
var anchorsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the anchor store.

By default, migrates to the latest version. Use --target-version for
specific versions.

Examples:
  # Migrate to latest version (default)
  queuetrace anchors migrate

  # Rollback to initial state
  queuetrace anchors migrate --target-version 0`,
	PreRunE: storeMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := anchordb.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
