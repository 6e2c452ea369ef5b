// Package cmd defines the command-line interface for queuetrace.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huangsam/queuetrace/internal/contract"
	"github.com/huangsam/queuetrace/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(backlogCmd)
	rootCmd.AddCommand(throughputCmd)
	rootCmd.AddCommand(arrivalsCmd)
	rootCmd.AddCommand(waitCmd)
	rootCmd.AddCommand(reconstructCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(anchorsCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the anchors subcommands to the parent anchors command
	anchorsCmd.AddCommand(anchorsAddCmd)
	anchorsCmd.AddCommand(anchorsListCmd)
	anchorsCmd.AddCommand(anchorsRunsCmd)
	anchorsCmd.AddCommand(anchorsClearCmd)
	anchorsCmd.AddCommand(anchorsStatusCmd)
	anchorsCmd.AddCommand(anchorsExportCmd)
	anchorsCmd.AddCommand(anchorsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("freq", "q", string(schema.DayFreq), "Output frequency: d or w or m or q or a")
	rootCmd.PersistentFlags().String("as-of", "", "Evaluation date in ISO8601 (defaults to today)")
	rootCmd.PersistentFlags().String("start", "", "Time index start date in ISO8601")
	rootCmd.PersistentFlags().String("end", "", "Time index end date in ISO8601")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("inflow-csv", "", "CSV file with inflow events (units entering the queue)")
	rootCmd.PersistentFlags().String("outflow-csv", "", "CSV file with outflow events (units leaving the queue)")
	rootCmd.PersistentFlags().String("source-backend", "", "Event source backend: sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("source-db-connect", "", "Database connection string for the event source")
	rootCmd.PersistentFlags().String("inflow-table", "", "SQL table with inflow events")
	rootCmd.PersistentFlags().String("outflow-table", "", "SQL table with outflow events")
	rootCmd.PersistentFlags().String("inflow-column", "", "Timestamp column for inflow events (inferred when empty)")
	rootCmd.PersistentFlags().String("outflow-column", "", "Timestamp column for outflow events (inferred when empty)")
	rootCmd.PersistentFlags().String("weight-column", "", "Numeric column to sum instead of counting events")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Anchor store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().Float64("backlog", 0, "Known backlog level at the anchor date")
	rootCmd.PersistentFlags().String("anchor-date", "", "Date of the known backlog level in ISO8601 (defaults to --as-of)")
	rootCmd.PersistentFlags().String("note", "", "Free-form annotation for a stored anchor")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of anchorsMigrateCmd to Viper
	anchorsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(anchorsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding anchors migrate flags", err)
	}
}
