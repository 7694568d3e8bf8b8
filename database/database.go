package database

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/thrasher-corp/feeestimator/log"
)

// New returns an unconnected instance for cfg
func New(cfg *Config) (*Instance, error) {
	i := &Instance{}
	if err := i.SetConfig(cfg); err != nil {
		return nil, err
	}
	return i, nil
}

// CheckDriver returns an error for unsupported drivers
func CheckDriver(driver string) error {
	if !slices.Contains(SupportedDrivers, driver) {
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	return nil
}

// SetConfig safely sets the database instance's config with some basic locks
// and checks
func (i *Instance) SetConfig(cfg *Config) error {
	if i == nil {
		return errNilInstance
	}
	if cfg == nil {
		return ErrNilConfig
	}
	i.m.Lock()
	i.config = cfg
	i.m.Unlock()
	return nil
}

// SetSQLiteConnection safely sets the database instance's connection to use
// SQLite
func (i *Instance) SetSQLiteConnection(con *sql.DB) error {
	if i == nil {
		return errNilInstance
	}
	if con == nil {
		return errNilSQL
	}
	i.m.Lock()
	defer i.m.Unlock()
	i.SQL = con
	i.SQL.SetMaxOpenConns(1)
	i.connected = true
	return nil
}

// SetPostgresConnection safely sets the database instance's connection to use
// Postgres
func (i *Instance) SetPostgresConnection(con *sql.DB) error {
	if i == nil {
		return errNilInstance
	}
	if con == nil {
		return errNilSQL
	}
	if err := con.Ping(); err != nil {
		return err
	}
	i.m.Lock()
	defer i.m.Unlock()
	i.SQL = con
	i.SQL.SetMaxOpenConns(2)
	i.SQL.SetMaxIdleConns(1)
	i.SQL.SetConnMaxLifetime(time.Hour)
	i.connected = true
	return nil
}

// CloseConnection safely disconnects the database instance
func (i *Instance) CloseConnection() error {
	if i == nil {
		return errNilInstance
	}
	i.m.Lock()
	defer i.m.Unlock()
	if i.SQL == nil {
		return nil
	}
	i.connected = false
	return i.SQL.Close()
}

// IsConnected safely checks the SQL connection status
func (i *Instance) IsConnected() bool {
	if i == nil {
		return false
	}
	i.m.RLock()
	defer i.m.RUnlock()
	return i.connected
}

// GetConfig safely returns a copy of the config
func (i *Instance) GetConfig() *Config {
	i.m.RLock()
	defer i.m.RUnlock()
	if i.config == nil {
		return nil
	}
	cpy := *i.config
	return &cpy
}

// Dialect returns the configured driver name
func (i *Instance) Dialect() string {
	if i == nil {
		return ""
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if i.config == nil {
		return ""
	}
	return i.config.Driver
}

// Ping pings the database
func (i *Instance) Ping() error {
	if i == nil {
		return errNilInstance
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if i.SQL == nil {
		return errNilSQL
	}
	return i.SQL.Ping()
}

// GetSQL returns the connection, or an error when the instance is not
// connected
func (i *Instance) GetSQL() (*sql.DB, error) {
	if i == nil {
		return nil, errNilInstance
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if !i.connected || i.SQL == nil {
		return nil, ErrDatabaseSupportDisabled
	}
	return i.SQL, nil
}

// Rebind rewrites '?' placeholders into the form the configured driver
// expects
func (i *Instance) Rebind(query string) string {
	if i.Dialect() != DBPostgreSQL {
		return query
	}
	var b strings.Builder
	n := 0
	for x := 0; x < len(query); x++ {
		if query[x] != '?' {
			b.WriteByte(query[x])
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

// LogQuery writes query to the database sub logger when verbose
func (i *Instance) LogQuery(query string, args ...any) {
	cfg := i.GetConfig()
	if cfg == nil || !cfg.Verbose {
		return
	}
	_, _ = fmt.Fprintf(Logger{}, "%s %v", query, args)
}

// Migrate creates the estimate history schema for the configured driver. It
// is safe to run against an existing schema.
func (i *Instance) Migrate(ctx context.Context) error {
	db, err := i.GetSQL()
	if err != nil {
		return err
	}
	stmts, ok := schema[i.Dialect()]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, i.Dialect())
	}
	for _, stmt := range stmts {
		i.LogQuery(stmt)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", i.Dialect(), err)
		}
	}
	log.Debugf(log.DatabaseMgr, "Database schema ready for driver %s", i.Dialect())
	return nil
}
