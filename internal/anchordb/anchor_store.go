// Package anchordb persists backlog anchors and reconstruction run history
// using various database backends.
package anchordb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/huangsam/queuetrace/internal/contract"
	"github.com/huangsam/queuetrace/schema"
)

// Table names for anchor tracking.
const (
	anchorsTable = "queuetrace_anchors"
	runsTable    = "queuetrace_runs"
)

// ErrNoAnchor is returned when no stored anchor matches a lookup.
var ErrNoAnchor = errors.New("no matching anchor found")

// AnchorStoreImpl implements the AnchorStore interface.
type AnchorStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnchorStore = &AnchorStoreImpl{} // Compile-time check

// NewAnchorStore creates a new AnchorStore with the specified backend.
func NewAnchorStore(backend schema.DatabaseBackend, connStr string) (contract.AnchorStore, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetStoreDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled persistence
		return &AnchorStoreImpl{db: nil, backend: backend}, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. Verify the database server is running and accessible", backend, err)
	}

	if err := createAnchorTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create anchor tables: %w", err)
	}

	return &AnchorStoreImpl{db: db, backend: backend}, nil
}

// createAnchorTables creates the anchor and run tables.
func createAnchorTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{anchorsTable, getCreateAnchorsQuery(backend)},
		{runsTable, getCreateRunsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateAnchorsQuery returns the CREATE TABLE query for queuetrace_anchors.
func getCreateAnchorsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := contract.QuoteTableName(anchorsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				anchor_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				anchor_date DATETIME(6) NOT NULL,
				backlog DOUBLE NOT NULL,
				note TEXT,
				created_at DATETIME(6) NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				anchor_id BIGSERIAL PRIMARY KEY,
				anchor_date TIMESTAMPTZ NOT NULL,
				backlog DOUBLE PRECISION NOT NULL,
				note TEXT,
				created_at TIMESTAMPTZ NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				anchor_id INTEGER PRIMARY KEY AUTOINCREMENT,
				anchor_date TEXT NOT NULL,
				backlog REAL NOT NULL,
				note TEXT,
				created_at TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// getCreateRunsQuery returns the CREATE TABLE query for queuetrace_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := contract.QuoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				metric VARCHAR(50) NOT NULL,
				freq VARCHAR(10) NOT NULL,
				total_points INT,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				metric TEXT NOT NULL,
				freq TEXT NOT NULL,
				total_points INT,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				metric TEXT NOT NULL,
				freq TEXT NOT NULL,
				total_points INTEGER,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// AddAnchor stores a new anchor and returns its unique ID.
func (as *AnchorStoreImpl) AddAnchor(anchor schema.Anchor) (int64, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return 0, nil
	}

	quotedTableName := contract.QuoteTableName(anchorsTable, as.backend)

	var anchorID int64
	var err error
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (anchor_date, backlog, note, created_at) VALUES ($1, $2, $3, $4) RETURNING anchor_id`, quotedTableName)
		err = as.db.QueryRow(query, anchor.Date, anchor.Backlog, anchor.Note, anchor.CreatedAt).Scan(&anchorID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (anchor_date, backlog, note, created_at) VALUES (?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = as.db.Exec(query, formatTime(anchor.Date, as.backend), anchor.Backlog, anchor.Note, formatTime(anchor.CreatedAt, as.backend))
		if err != nil {
			return 0, fmt.Errorf("failed to insert anchor: %w", err)
		}
		anchorID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert anchor: %w", err)
	}

	return anchorID, nil
}

// LatestAnchor returns the most recent anchor dated at or before the given time.
func (as *AnchorStoreImpl) LatestAnchor(atOrBefore time.Time) (schema.Anchor, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return schema.Anchor{}, ErrNoAnchor
	}

	quotedTableName := contract.QuoteTableName(anchorsTable, as.backend)

	var query string
	switch as.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT anchor_id, anchor_date, backlog, note, created_at FROM %s WHERE anchor_date <= $1 ORDER BY anchor_date DESC, anchor_id DESC LIMIT 1`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT anchor_id, anchor_date, backlog, note, created_at FROM %s WHERE anchor_date <= ? ORDER BY anchor_date DESC, anchor_id DESC LIMIT 1`, quotedTableName)
	}

	row := as.db.QueryRow(query, formatTime(atOrBefore, as.backend))
	anchor, err := scanAnchor(row, as.backend)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Anchor{}, ErrNoAnchor
	}
	if err != nil {
		return schema.Anchor{}, fmt.Errorf("failed to look up anchor: %w", err)
	}
	return anchor, nil
}

// ListAnchors returns up to limit anchors, newest first.
func (as *AnchorStoreImpl) ListAnchors(limit int) ([]schema.Anchor, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	quotedTableName := contract.QuoteTableName(anchorsTable, as.backend)

	var query string
	switch as.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT anchor_id, anchor_date, backlog, note, created_at FROM %s ORDER BY anchor_date DESC, anchor_id DESC LIMIT $1`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT anchor_id, anchor_date, backlog, note, created_at FROM %s ORDER BY anchor_date DESC, anchor_id DESC LIMIT ?`, quotedTableName)
	}

	rows, err := as.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query anchors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.Anchor
	for rows.Next() {
		anchor, err := scanAnchor(rows, as.backend)
		if err != nil {
			return nil, fmt.Errorf("failed to scan anchor: %w", err)
		}
		results = append(results, anchor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating anchors: %w", err)
	}

	return results, nil
}

// ClearAnchors removes all stored anchors.
func (as *AnchorStoreImpl) ClearAnchors() error {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	quotedTableName := contract.QuoteTableName(anchorsTable, as.backend)
	query := fmt.Sprintf("DELETE FROM %s", quotedTableName)
	if _, err := as.db.Exec(query); err != nil {
		return fmt.Errorf("failed to clear anchors: %w", err)
	}
	return nil
}

// BeginRun creates a new run record and returns its unique ID.
func (as *AnchorStoreImpl) BeginRun(startTime time.Time, metric schema.MetricKind, freq schema.Frequency, params map[string]any) (int64, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return 0, nil
	}

	// Serialize config params to JSON
	configJSON, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := contract.QuoteTableName(runsTable, as.backend)

	var runID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, metric, freq, config_params) VALUES ($1, $2, $3, $4) RETURNING run_id`, quotedTableName)
		err = as.db.QueryRow(query, startTime, string(metric), string(freq), string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, metric, freq, config_params) VALUES (?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = as.db.Exec(query, formatTime(startTime, as.backend), string(metric), string(freq), string(configJSON))
		if err != nil {
			return 0, err
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert run record: %w", err)
	}

	return runID, nil
}

// EndRun updates the run record with completion data.
func (as *AnchorStoreImpl) EndRun(runID int64, endTime time.Time, totalPoints int) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	quotedTableName := contract.QuoteTableName(runsTable, as.backend)

	var query string
	var args []any
	switch as.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`UPDATE %s SET end_time = $1, total_points = $2 WHERE run_id = $3`, quotedTableName)
		args = []any{endTime, totalPoints, runID}
	default: // SQLite and MySQL
		query = fmt.Sprintf(`UPDATE %s SET end_time = ?, total_points = ? WHERE run_id = ?`, quotedTableName)
		args = []any{formatTime(endTime, as.backend), totalPoints, runID}
	}

	if _, err := as.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update run record: %w", err)
	}
	return nil
}

// ListRuns returns up to limit run records, newest first.
func (as *AnchorStoreImpl) ListRuns(limit int) ([]schema.RunRecord, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	quotedTableName := contract.QuoteTableName(runsTable, as.backend)

	var query string
	switch as.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT run_id, start_time, end_time, metric, freq, total_points, config_params FROM %s ORDER BY run_id DESC LIMIT $1`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT run_id, start_time, end_time, metric, freq, total_points, config_params FROM %s ORDER BY run_id DESC LIMIT ?`, quotedTableName)
	}

	rows, err := as.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var metric, freq string
		var totalPoints sql.NullInt64
		var params sql.NullString

		switch as.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &metric, &freq, &totalPoints, &params); err != nil {
				return nil, fmt.Errorf("failed to scan run record: %w", err)
			}
			startTime, err := time.Parse(time.RFC3339Nano, startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL store as native datetime
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &metric, &freq, &totalPoints, &params); err != nil {
				return nil, fmt.Errorf("failed to scan run record: %w", err)
			}
		}

		record.Metric = metric
		record.Frequency = freq
		if totalPoints.Valid {
			record.TotalPoints = int(totalPoints.Int64)
		}
		if params.Valid {
			record.Params = params.String
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run records: %w", err)
	}

	return results, nil
}

// Close closes the underlying connection.
func (as *AnchorStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the anchor store.
func (as *AnchorStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(as.backend),
		Connected: as.db != nil,
	}

	if as.backend == schema.NoneBackend || as.db == nil {
		return status, nil
	}

	anchorsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", contract.QuoteTableName(anchorsTable, as.backend))
	if err := as.db.QueryRow(anchorsQuery).Scan(&status.TotalAnchors); err != nil {
		return status, fmt.Errorf("failed to get total anchors: %w", err)
	}

	runsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", contract.QuoteTableName(runsTable, as.backend))
	if err := as.db.QueryRow(runsQuery).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalAnchors > 0 {
		latestQuery := fmt.Sprintf("SELECT anchor_date FROM %s ORDER BY anchor_date DESC LIMIT 1", contract.QuoteTableName(anchorsTable, as.backend))
		latest, err := scanTimeValue(as.db.QueryRow(latestQuery), as.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get latest anchor time: %w", err)
		}
		status.LatestAnchorAt = latest

		oldestQuery := fmt.Sprintf("SELECT anchor_date FROM %s ORDER BY anchor_date ASC LIMIT 1", contract.QuoteTableName(anchorsTable, as.backend))
		oldest, err := scanTimeValue(as.db.QueryRow(oldestQuery), as.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get oldest anchor time: %w", err)
		}
		status.OldestAnchorAt = oldest
	}

	return status, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAnchor scans one anchor row, handling the per-backend time storage.
func scanAnchor(row rowScanner, backend schema.DatabaseBackend) (schema.Anchor, error) {
	var anchor schema.Anchor
	var note sql.NullString

	switch backend {
	case schema.SQLiteBackend:
		var dateStr, createdStr string
		if err := row.Scan(&anchor.ID, &dateStr, &anchor.Backlog, &note, &createdStr); err != nil {
			return schema.Anchor{}, err
		}
		date, err := time.Parse(time.RFC3339Nano, dateStr)
		if err != nil {
			return schema.Anchor{}, fmt.Errorf("failed to parse anchor_date: %w", err)
		}
		anchor.Date = date
		created, err := time.Parse(time.RFC3339Nano, createdStr)
		if err != nil {
			return schema.Anchor{}, fmt.Errorf("failed to parse created_at: %w", err)
		}
		anchor.CreatedAt = created
	default: // MySQL and PostgreSQL store as native datetime
		if err := row.Scan(&anchor.ID, &anchor.Date, &anchor.Backlog, &note, &anchor.CreatedAt); err != nil {
			return schema.Anchor{}, err
		}
	}

	if note.Valid {
		anchor.Note = note.String
	}
	return anchor, nil
}

// scanTimeValue scans a single time column, handling per-backend storage.
func scanTimeValue(row rowScanner, backend schema.DatabaseBackend) (time.Time, error) {
	switch backend {
	case schema.SQLiteBackend:
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, s)
	default:
		var t time.Time
		if err := row.Scan(&t); err != nil {
			return time.Time{}, err
		}
		return t, nil
	}
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.Format(time.RFC3339Nano)
	default:
		return t
	}
}
