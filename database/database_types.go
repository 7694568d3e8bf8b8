package database

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/thrasher-corp/feeestimator/database/drivers"
)

// Supported database drivers
const (
	DBSQLite3    = "sqlite3"
	DBPostgreSQL = "postgres"
)

var (
	// SupportedDrivers lists the drivers the estimate history can be stored with
	SupportedDrivers = []string{DBSQLite3, DBPostgreSQL}

	// ErrDatabaseSupportDisabled is returned when database support is disabled
	ErrDatabaseSupportDisabled = errors.New("database support is disabled")
	// ErrNoDatabaseProvided is returned when no database name or path is set
	ErrNoDatabaseProvided = errors.New("no database provided")
	// ErrUnsupportedDriver is returned for drivers outside SupportedDrivers
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	// ErrNilConfig is returned when a nil config is supplied
	ErrNilConfig = errors.New("database config is nil")

	errNilInstance = errors.New("database instance is nil")
	errNilSQL      = errors.New("database SQL connection is nil")
)

// Config holds all database configurable options including enable/disabled & DSN settings
type Config struct {
	Enabled                   bool   `json:"enabled" mapstructure:"enabled"`
	Verbose                   bool   `json:"verbose" mapstructure:"verbose"`
	Driver                    string `json:"driver" mapstructure:"driver"`
	drivers.ConnectionDetails `json:"connectionDetails" mapstructure:"connectiondetails"`
}

// Instance holds all information for a database instance
type Instance struct {
	SQL       *sql.DB
	config    *Config
	connected bool
	m         sync.RWMutex
}
