package anchordb

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/queuetrace/internal/contract"
	"github.com/huangsam/queuetrace/schema"
)

// AnchorStoreManager manages the global AnchorStore instance.
type AnchorStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	anchors      contract.AnchorStore
}

var _ contract.StoreManager = &AnchorStoreManager{} // Compile-time check

// GetAnchorStore returns the anchor AnchorStore.
func (mgr *AnchorStoreManager) GetAnchorStore() contract.AnchorStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.anchors
}

// Global Manager instance for main logic.
var (
	Manager   = &AnchorStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStore initializes the global store manager.
// backend can be empty to disable anchor persistence.
func InitStore(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		if backend == "" {
			return
		}

		store, err := NewAnchorStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize anchor store: %w", err)
			return
		}
		Manager.anchors = store
	})

	// After once.Do, initErr will contain any error from the initialization block.
	return initErr
}

// CloseStore should be called on application shutdown.
func CloseStore() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.anchors != nil {
			_ = Manager.anchors.Close()
		}
	})
}

// ClearStore clears the anchor data for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the tables.
// For NoneBackend, it does nothing.
func ClearStore(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend:
		return dropSQLTables("mysql", connStr)

	case schema.PostgreSQLBackend:
		return dropSQLTables("pgx", connStr)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported store backend for clearing: %s", backend)
	}
}

// dropSQLTables connects to the SQL database and drops the anchor tables.
func dropSQLTables(driverName, connStr string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	for _, table := range []string{anchorsTable, runsTable} {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", table)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return nil
}
