package eventsrc

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/huangsam/queuetrace/core/timegrid"
	"github.com/huangsam/queuetrace/internal/contract"
	"github.com/huangsam/queuetrace/schema"
)

// sqlSourceSpec names the tables and columns a SQLSource reads from.
type sqlSourceSpec struct {
	InflowTable   string
	OutflowTable  string
	InflowColumn  string
	OutflowColumn string
	WeightColumn  string
}

// SQLSource reads queue events from SQL tables using various database
// backends.
type SQLSource struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	spec    sqlSourceSpec
}

var _ contract.EventSource = (*SQLSource)(nil) // Compile-time check

// NewSQLSource opens a connection to the configured backend and returns a
// SQL-backed event source.
func NewSQLSource(backend schema.DatabaseBackend, connStr string, spec sqlSourceSpec) (*SQLSource, error) {
	for _, table := range []string{spec.InflowTable, spec.OutflowTable} {
		if table == "" {
			continue
		}
		if err := contract.ValidateTableName(table); err != nil {
			return nil, err
		}
	}

	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		db, err = sql.Open("sqlite", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w", connStr, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL source: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL source: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, fmt.Errorf("unsupported source backend: %s. Must be sqlite, mysql, or postgresql", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	return &SQLSource{db: db, backend: backend, spec: spec}, nil
}

// Inflows returns all inflow events from the inflow table.
func (s *SQLSource) Inflows(ctx context.Context) ([]schema.Event, error) {
	return s.readTable(ctx, s.spec.InflowTable, s.spec.InflowColumn)
}

// Outflows returns all outflow events from the outflow table.
func (s *SQLSource) Outflows(ctx context.Context) ([]schema.Event, error) {
	return s.readTable(ctx, s.spec.OutflowTable, s.spec.OutflowColumn)
}

// Close closes the underlying DB connection.
func (s *SQLSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLSource) readTable(ctx context.Context, table, tsColumn string) ([]schema.Event, error) {
	if table == "" {
		return nil, nil
	}

	quotedTable := contract.QuoteTableName(table, s.backend)

	if tsColumn == "" {
		headers, err := s.tableColumns(ctx, quotedTable)
		if err != nil {
			return nil, err
		}
		tsColumn, err = inferTimestampColumn(table, headers)
		if err != nil {
			return nil, err
		}
	}

	if err := contract.ValidateTableName(tsColumn); err != nil {
		return nil, err
	}
	columns := quoteColumn(tsColumn, s.backend)
	if s.spec.WeightColumn != "" {
		if err := contract.ValidateTableName(s.spec.WeightColumn); err != nil {
			return nil, err
		}
		columns += ", " + quoteColumn(s.spec.WeightColumn, s.backend)
	}
	query := fmt.Sprintf("SELECT %s FROM %s", columns, quotedTable)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query events from %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var events []schema.Event
	for rows.Next() {
		var event schema.Event
		var tsRaw any
		var weightRaw sql.NullFloat64

		if s.spec.WeightColumn != "" {
			if err := rows.Scan(&tsRaw, &weightRaw); err != nil {
				return nil, fmt.Errorf("failed to scan event row from %s: %w", table, err)
			}
		} else {
			if err := rows.Scan(&tsRaw); err != nil {
				return nil, fmt.Errorf("failed to scan event row from %s: %w", table, err)
			}
		}

		if ts, ok := parseTimestampValue(tsRaw); ok {
			event.Timestamp = ts
		}
		if weightRaw.Valid {
			w := weightRaw.Float64
			event.Weight = &w
		}

		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events from %s: %w", table, err)
	}

	return events, nil
}

// tableColumns returns the column names of a table for inference.
func (s *SQLSource) tableColumns(ctx context.Context, quotedTable string) ([]string, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT 1", quotedTable)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect columns of %s: %w", quotedTable, err)
	}
	defer func() { _ = rows.Close() }()
	return rows.Columns()
}

// parseTimestampValue converts a scanned database value into a time.Time.
// NULL or unparsable values report ok=false so the extractor can skip them.
func parseTimestampValue(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		ts, err := timegrid.ParseDate(val)
		return ts, err == nil
	case []byte:
		ts, err := timegrid.ParseDate(string(val))
		return ts, err == nil
	case int64:
		return time.Unix(val, 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

// quoteColumn quotes a column identifier for the backend.
func quoteColumn(name string, backend schema.DatabaseBackend) string {
	return contract.QuoteTableName(name, backend)
}
