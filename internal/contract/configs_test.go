package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/queuetrace/schema"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Freq:         "w",
		Limit:        DefaultResultLimit,
		Precision:    DefaultPrecision,
		Output:       "text",
		Color:        "yes",
		StoreBackend: "sqlite",
		InflowCSV:    "opened.csv",
	}
}

func TestProcessAndValidate_Defaults(t *testing.T) {
	cfg := &Config{}
	now := time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC)

	err := ProcessAndValidate(cfg, validInput(), now)
	require.NoError(t, err)

	assert.Equal(t, schema.WeekFreq, cfg.Freq)
	assert.Equal(t, now, cfg.AsOf)
	assert.True(t, cfg.UseColors)
	assert.Equal(t, schema.SQLiteBackend, cfg.StoreBackend)
	assert.Equal(t, "opened.csv", cfg.InflowCSV)
	assert.False(t, cfg.HasExplicitAnchor())
	assert.False(t, cfg.Weighted())
}

func TestProcessAndValidate_AsOfOverridesClock(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.AsOf = "2026-03-01"

	err := ProcessAndValidate(cfg, input, time.Now())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), cfg.AsOf)
}

func TestProcessAndValidate_ExplicitAnchor(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.Backlog = 120
	input.AnchorDate = "2026-03-01"

	err := ProcessAndValidate(cfg, input, time.Now())
	require.NoError(t, err)
	assert.True(t, cfg.HasExplicitAnchor())
	assert.Equal(t, 120.0, cfg.AnchorBacklog)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), cfg.AnchorDate)
}

func TestProcessAndValidate_AnchorDateDefaultsToAsOf(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.Backlog = 50
	input.AsOf = "2026-04-15"

	err := ProcessAndValidate(cfg, input, time.Now())
	require.NoError(t, err)
	assert.True(t, cfg.HasExplicitAnchor())
	assert.Equal(t, cfg.AsOf, cfg.AnchorDate)
}

func TestProcessAndValidate_ExplicitZeroBacklogAnchor(t *testing.T) {
	// A queue trued up to empty anchors on backlog 0; the flag marker must
	// carry it since the value alone looks like the default.
	cfg := &Config{}
	input := validInput()
	input.Backlog = 0
	input.BacklogSet = true

	err := ProcessAndValidate(cfg, input, time.Now())
	require.NoError(t, err)
	assert.True(t, cfg.HasExplicitAnchor())
	assert.Equal(t, 0.0, cfg.AnchorBacklog)
	assert.Equal(t, cfg.AsOf, cfg.AnchorDate)
}

func TestProcessAndValidate_InvalidFrequency(t *testing.T) {
	input := validInput()
	input.Freq = "hourly"
	err := ProcessAndValidate(&Config{}, input, time.Now())
	assert.Error(t, err)
}

func TestProcessAndValidate_LimitBounds(t *testing.T) {
	for _, limit := range []int{0, -1, MaxResultLimit + 1} {
		input := validInput()
		input.Limit = limit
		err := ProcessAndValidate(&Config{}, input, time.Now())
		assert.Error(t, err, "limit %d", limit)
	}
}

func TestProcessAndValidate_PrecisionBounds(t *testing.T) {
	input := validInput()
	input.Precision = MaxPrecision + 1
	err := ProcessAndValidate(&Config{}, input, time.Now())
	assert.Error(t, err)

	input = validInput()
	input.Precision = -1
	err = ProcessAndValidate(&Config{}, input, time.Now())
	assert.Error(t, err)
}

func TestProcessAndValidate_InvalidOutput(t *testing.T) {
	input := validInput()
	input.Output = "xml"
	err := ProcessAndValidate(&Config{}, input, time.Now())
	assert.Error(t, err)
}

func TestProcessAndValidate_InvalidColor(t *testing.T) {
	input := validInput()
	input.Color = "maybe"
	err := ProcessAndValidate(&Config{}, input, time.Now())
	assert.Error(t, err)
}

func TestProcessAndValidate_InvalidStoreBackend(t *testing.T) {
	input := validInput()
	input.StoreBackend = "oracle"
	err := ProcessAndValidate(&Config{}, input, time.Now())
	assert.Error(t, err)
}

func TestProcessAndValidate_StartAfterEnd(t *testing.T) {
	input := validInput()
	input.Start = "2026-05-01"
	input.End = "2026-04-01"
	err := ProcessAndValidate(&Config{}, input, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after")
}

func TestProcessAndValidate_CSVAndSQLConflict(t *testing.T) {
	input := validInput()
	input.InflowTable = "opened"
	input.SourceBackend = "sqlite"
	err := ProcessAndValidate(&Config{}, input, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not both")
}

func TestProcessAndValidate_SQLSource(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.InflowCSV = ""
	input.SourceBackend = "postgresql"
	input.SourceDBConnect = "host=localhost dbname=tickets"
	input.InflowTable = "opened"
	input.WeightColumn = "points"

	err := ProcessAndValidate(cfg, input, time.Now())
	require.NoError(t, err)
	assert.Equal(t, schema.PostgreSQLBackend, cfg.SourceBackend)
	assert.True(t, cfg.Weighted())
}

func TestProcessAndValidate_SQLSourceNeedsTable(t *testing.T) {
	input := validInput()
	input.InflowCSV = ""
	input.SourceBackend = "sqlite"
	err := ProcessAndValidate(&Config{}, input, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one of")
}

func TestProcessAndValidate_NoSourceIsAllowed(t *testing.T) {
	// Anchor management commands run without any event source.
	input := validInput()
	input.InflowCSV = ""
	err := ProcessAndValidate(&Config{}, input, time.Now())
	assert.NoError(t, err)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))

	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, ""))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@host/db"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@tcp(localhost:3306)/queuetrace"))

	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, ""))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=queuetrace"))
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Freq: schema.WeekFreq, AnchorBacklog: 10}
	clone := cfg.Clone()
	clone.Freq = schema.MonthFreq

	assert.Equal(t, schema.WeekFreq, cfg.Freq)
	assert.Equal(t, 10.0, clone.AnchorBacklog)
}

func TestConfigTimeIndex(t *testing.T) {
	cfg := &Config{Freq: schema.DayFreq}
	assert.Nil(t, cfg.TimeIndex())

	cfg.StartTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg.EndTime = time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
	assert.Len(t, cfg.TimeIndex(), 3)
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "perf"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "perf", profile.Prefix)
}
