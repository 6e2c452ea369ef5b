//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestQueuetraceWithMySQL tests the queuetrace CLI with a MySQL anchor store.
func TestQueuetraceWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "queuetrace",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/queuetrace?parseTime=true", host, port.Port())

	// Set environment variables
	_ = os.Setenv("QUEUETRACE_STORE_BACKEND", "mysql")
	_ = os.Setenv("QUEUETRACE_STORE_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("QUEUETRACE_STORE_BACKEND") }()
	defer func() { _ = os.Unsetenv("QUEUETRACE_STORE_DB_CONNECT") }()

	runAnchorLifecycle(t)
}

// TestQueuetraceWithPostgres tests the queuetrace CLI with a PostgreSQL anchor store.
func TestQueuetraceWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())

	// Set environment variables
	_ = os.Setenv("QUEUETRACE_STORE_BACKEND", "postgresql")
	_ = os.Setenv("QUEUETRACE_STORE_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("QUEUETRACE_STORE_BACKEND") }()
	defer func() { _ = os.Unsetenv("QUEUETRACE_STORE_DB_CONNECT") }()

	runAnchorLifecycle(t)
}

// runAnchorLifecycle exercises the anchor store subcommands against the
// configured backend.
func runAnchorLifecycle(t *testing.T) {
	// Run queuetrace anchors clear
	err := runQueuetraceCommand(t, "anchors", "clear")
	require.NoError(t, err)

	// Run queuetrace anchors add
	err = runQueuetraceCommand(t, "anchors", "add", "--backlog", "42", "--anchor-date", "2026-03-01", "--note", "integration")
	require.NoError(t, err)

	// Run queuetrace anchors list
	err = runQueuetraceCommand(t, "anchors", "list")
	require.NoError(t, err)

	// Run queuetrace reconstruct with the stored anchor
	csvPath := writeInflowFixture(t)
	err = runQueuetraceCommand(t, "reconstruct", "--inflow-csv", csvPath, "--as-of", "2026-03-01")
	require.NoError(t, err)

	// Run queuetrace anchors runs
	err = runQueuetraceCommand(t, "anchors", "runs")
	require.NoError(t, err)

	// Run queuetrace anchors status
	err = runQueuetraceCommand(t, "anchors", "status")
	require.NoError(t, err)
}

func writeInflowFixture(t *testing.T) string {
	t.Helper()
	path := t.TempDir() + "/opened.csv"
	content := "id,created_at\n1,2026-02-02\n2,2026-02-10\n3,2026-02-20\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runQueuetraceCommand(t *testing.T, args ...string) error {
	binaryPath := getQueuetraceBinary(t)
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = "../" // Run from project root
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
		return err
	}
	return nil
}
