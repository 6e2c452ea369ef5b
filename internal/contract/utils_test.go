package contract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/queuetrace/schema"
)

func TestGetPlainLabel(t *testing.T) {
	peak := 100.0
	assert.Equal(t, CriticalValue, GetPlainLabel(95, peak))
	assert.Equal(t, CriticalValue, GetPlainLabel(80, peak))
	assert.Equal(t, HighValue, GetPlainLabel(79, peak))
	assert.Equal(t, HighValue, GetPlainLabel(60, peak))
	assert.Equal(t, ModerateValue, GetPlainLabel(59, peak))
	assert.Equal(t, ModerateValue, GetPlainLabel(40, peak))
	assert.Equal(t, LowValue, GetPlainLabel(39, peak))
	assert.Equal(t, LowValue, GetPlainLabel(0, peak))
}

func TestGetPlainLabel_ZeroPeak(t *testing.T) {
	assert.Equal(t, LowValue, GetPlainLabel(10, 0))
	assert.Equal(t, LowValue, GetPlainLabel(10, -1))
}

func TestGetColorLabel_ContainsText(t *testing.T) {
	// Colored output still contains the plain label text.
	assert.Contains(t, GetColorLabel(90, 100), CriticalValue)
	assert.Contains(t, GetColorLabel(10, 100), LowValue)
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "true", "1", "YES", "True"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "false", "0", "NO"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestGetStoreDBFilePath(t *testing.T) {
	path := GetStoreDBFilePath()
	assert.True(t, strings.HasSuffix(path, ".queuetrace_anchors.db"))
}

func TestValidateTableName(t *testing.T) {
	for _, name := range []string{"events", "ticket_log", "_private", "t1"} {
		assert.NoError(t, ValidateTableName(name), name)
	}
	for _, name := range []string{"", "1table", "foo-bar", "foo bar", "t;drop"} {
		assert.Error(t, ValidateTableName(name), name)
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`events`", QuoteTableName("events", schema.MySQLBackend))
	assert.Equal(t, `"events"`, QuoteTableName("events", schema.PostgreSQLBackend))
	assert.Equal(t, `"events"`, QuoteTableName("events", schema.SQLiteBackend))
}
