package sqlite

import (
	"database/sql"
	"path/filepath"

	// import sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/thrasher-corp/feeestimator/database"
)

// Connect opens a connection to the sqlite database file name under dataDir.
// Absolute names are used as is.
func Connect(dataDir, name string) (*sql.DB, error) {
	if name == "" {
		return nil, database.ErrNoDatabaseProvided
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(dataDir, name)
	}
	return sql.Open(database.DBSQLite3, name)
}
