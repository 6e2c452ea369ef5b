//go:build basic

package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestThroughputCSVRoundTrip computes throughput from a known event log and
// verifies the per-day values in the CSV output.
func TestThroughputCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	eventsPath := filepath.Join(dir, "closed.csv")
	outPath := filepath.Join(dir, "throughput.csv")

	events := "id,closed_at\n1,2026-01-05\n2,2026-01-05\n3,2026-01-05\n4,2026-01-07\n5,2026-01-07\n"
	require.NoError(t, os.WriteFile(eventsPath, []byte(events), 0o644))

	output := runQueuetrace(t,
		"throughput",
		"--outflow-csv", eventsPath,
		"--as-of", "2026-01-09",
		"--freq", "d",
		"--precision", "1",
		"--output", "csv",
		"--output-file", outPath,
		"--store-backend", "none",
	)
	t.Log(output)

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "date,value", lines[0])
	assert.Equal(t, "2026-01-05,3.0", lines[1])
	assert.Equal(t, "2026-01-06,0.0", lines[2])
	assert.Equal(t, "2026-01-07,2.0", lines[3])
	assert.Equal(t, "2026-01-08,0.0", lines[4])
	assert.Equal(t, "2026-01-09,0.0", lines[5])
}

// TestReconstructCSVSmoke reconstructs a backlog series from an explicit
// anchor and checks the output shape.
func TestReconstructCSVSmoke(t *testing.T) {
	dir := t.TempDir()
	eventsPath := filepath.Join(dir, "opened.csv")
	outPath := filepath.Join(dir, "backlog.csv")

	events := "id,created_at\n1,2026-01-02\n2,2026-01-03\n3,2026-01-03\n"
	require.NoError(t, os.WriteFile(eventsPath, []byte(events), 0o644))

	output := runQueuetrace(t,
		"reconstruct",
		"--inflow-csv", eventsPath,
		"--backlog", "6",
		"--anchor-date", "2026-01-03",
		"--as-of", "2026-01-03",
		"--freq", "d",
		"--output", "csv",
		"--output-file", outPath,
		"--store-backend", "none",
	)
	t.Log(output)

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Greater(t, len(lines), 1)
	assert.Equal(t, "date,value", lines[0])
	assert.True(t, strings.HasSuffix(lines[len(lines)-1], ",6.0") ||
		strings.HasPrefix(lines[len(lines)-1], "2026-01-03"))
}

func runQueuetrace(t *testing.T, args ...string) string {
	t.Helper()
	binaryPath := getQueuetraceBinary(t)
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = "../"
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "command %s failed:\n%s", cmd.String(), string(output))
	return string(output)
}
