package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/queuetrace/core/timegrid"
	"github.com/huangsam/queuetrace/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 100
	MaxResultLimit     = 10000
	DefaultPrecision   = 1
	MaxPrecision       = 4
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ProcessProfilingConfig populates profiling settings from the raw prefix value.
func ProcessProfilingConfig(profile *ProfileConfig, prefix string) error {
	profile.Enabled = prefix != ""
	profile.Prefix = prefix
	return nil
}

// Config holds the runtime configuration for metric computation.
// This struct remains the "final, validated" config.
type Config struct {
	Freq      schema.Frequency
	AsOf      time.Time
	StartTime time.Time // optional explicit time index start
	EndTime   time.Time // optional explicit time index end

	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	// Event source: CSV files or SQL tables, never both.
	InflowCSV  string
	OutflowCSV string

	SourceBackend   schema.DatabaseBackend
	SourceDBConnect string
	InflowTable     string
	OutflowTable    string

	InflowColumn  string
	OutflowColumn string
	WeightColumn  string

	// Anchor for reconstruction. AnchorSet marks an explicit --backlog value;
	// without it the reconstruct command falls back to the anchor store.
	AnchorBacklog float64
	AnchorSet     bool
	AnchorDate    time.Time
	AnchorNote    string

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Freq            string `mapstructure:"freq"`
	AsOf            string `mapstructure:"as-of"`
	Start           string `mapstructure:"start"`
	End             string `mapstructure:"end"`
	Limit           int    `mapstructure:"limit"`
	Precision       int    `mapstructure:"precision"`
	Output          string `mapstructure:"output"`
	OutputFile      string `mapstructure:"output-file"`
	Width           int    `mapstructure:"width"`
	Color           string `mapstructure:"color"`
	InflowCSV       string `mapstructure:"inflow-csv"`
	OutflowCSV      string `mapstructure:"outflow-csv"`
	SourceBackend   string `mapstructure:"source-backend"`
	SourceDBConnect string `mapstructure:"source-db-connect"`
	InflowTable     string `mapstructure:"inflow-table"`
	OutflowTable    string `mapstructure:"outflow-table"`
	InflowColumn    string `mapstructure:"inflow-column"`
	OutflowColumn   string `mapstructure:"outflow-column"`
	WeightColumn    string `mapstructure:"weight-column"`
	StoreBackend    string `mapstructure:"store-backend"`
	StoreDBConnect  string `mapstructure:"store-db-connect"`

	// --- Fields from reconstructCmd / anchors add flags ---
	Backlog    float64 `mapstructure:"backlog"`
	AnchorDate string  `mapstructure:"anchor-date"`
	Note       string  `mapstructure:"note"`

	// BacklogSet records that --backlog was given on the command line. The
	// CLI layer fills it from flag state after unmarshaling; it cannot come
	// from viper because a zero value is indistinguishable from the default
	// there, and zero is a valid anchor for a queue trued up to empty.
	BacklogSet bool `mapstructure:"-"`
}

// Clone returns a shallow copy of the config for per-request overrides.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Weighted reports whether flow extraction should sum a weight column
// instead of counting events.
func (c *Config) Weighted() bool {
	return c.WeightColumn != ""
}

// HasExplicitAnchor reports whether the caller supplied an anchor on the
// command line rather than relying on the anchor store.
func (c *Config) HasExplicitAnchor() bool {
	return c.AnchorSet
}

// TimeIndex builds the explicit time index when both --start and --end are
// set; otherwise it returns nil and the engine derives the index from the
// flows themselves.
func (c *Config) TimeIndex() []time.Time {
	if c.StartTime.IsZero() || c.EndTime.IsZero() {
		return nil
	}
	return timegrid.RangeOrEmpty(c.StartTime, c.EndTime, c.Freq)
}

// ProcessAndValidate performs all complex parsing and validation on the raw
// inputs and updates the final Config struct. The caller injects the wall
// clock once here; nothing below this layer reads ambient time.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput, now time.Time) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeInputs(cfg, input, now); err != nil {
		return err
	}
	if err := processSourceInputs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database
// connection strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-time related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.AnchorNote = input.Note

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Frequency Validation ---
	freq, err := schema.ParseFrequency(input.Freq)
	if err != nil {
		return err
	}
	cfg.Freq = freq

	// --- 3. Precision and Output Validation ---
	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	// --- 4. Store Backend Validation ---
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	return nil
}

// processTimeInputs handles date parsing for the evaluation time, the
// optional explicit time index, and the anchor.
func processTimeInputs(cfg *Config, input *ConfigRawInput, now time.Time) error {
	cfg.AsOf = now
	if input.AsOf != "" {
		asOf, err := timegrid.ParseDate(input.AsOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of value: %w", err)
		}
		cfg.AsOf = asOf
	}

	if input.Start != "" {
		start, err := timegrid.ParseDate(input.Start)
		if err != nil {
			return fmt.Errorf("invalid --start value: %w", err)
		}
		cfg.StartTime = start
	}
	if input.End != "" {
		end, err := timegrid.ParseDate(input.End)
		if err != nil {
			return fmt.Errorf("invalid --end value: %w", err)
		}
		cfg.EndTime = end
	}
	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("--start %s is after --end %s", input.Start, input.End)
	}

	// An explicit backlog flag makes the anchor; its date defaults to the
	// evaluation time. A nonzero value from env or config file counts too,
	// but only the flag marker can carry an explicit zero anchor.
	cfg.AnchorBacklog = input.Backlog
	cfg.AnchorSet = input.BacklogSet || input.Backlog != 0 || input.AnchorDate != ""
	cfg.AnchorDate = cfg.AsOf
	if input.AnchorDate != "" {
		anchorDate, err := timegrid.ParseDate(input.AnchorDate)
		if err != nil {
			return fmt.Errorf("invalid --anchor-date value: %w", err)
		}
		cfg.AnchorDate = anchorDate
	}

	return nil
}

// processSourceInputs validates the event source configuration: CSV files
// or SQL tables, but not a mix.
func processSourceInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.InflowCSV = input.InflowCSV
	cfg.OutflowCSV = input.OutflowCSV
	cfg.InflowTable = input.InflowTable
	cfg.OutflowTable = input.OutflowTable
	cfg.InflowColumn = input.InflowColumn
	cfg.OutflowColumn = input.OutflowColumn
	cfg.WeightColumn = input.WeightColumn

	hasCSV := cfg.InflowCSV != "" || cfg.OutflowCSV != ""
	hasSQL := input.SourceBackend != "" || cfg.InflowTable != "" || cfg.OutflowTable != ""

	if hasCSV && hasSQL {
		return fmt.Errorf("configure either CSV files or SQL tables as the event source, not both")
	}

	if hasSQL {
		cfg.SourceBackend = schema.DatabaseBackend(strings.ToLower(input.SourceBackend))
		if _, ok := schema.ValidDatabaseBackends[cfg.SourceBackend]; !ok || cfg.SourceBackend == schema.NoneBackend {
			return fmt.Errorf("invalid source backend '%s'. must be sqlite, mysql, postgresql", input.SourceBackend)
		}
		if err := ValidateDatabaseConnectionString(cfg.SourceBackend, input.SourceDBConnect); err != nil {
			return err
		}
		cfg.SourceDBConnect = input.SourceDBConnect
		if cfg.InflowTable == "" && cfg.OutflowTable == "" {
			return fmt.Errorf("at least one of --inflow-table and --outflow-table is required with a SQL source")
		}
	}

	return nil
}
