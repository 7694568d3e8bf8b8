package engine

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thrasher-corp/feeestimator/database"
	"github.com/thrasher-corp/feeestimator/database/drivers/postgres"
	sqlite "github.com/thrasher-corp/feeestimator/database/drivers/sqlite3"
	"github.com/thrasher-corp/feeestimator/engine/subsystem"
	"github.com/thrasher-corp/feeestimator/log"
)

// DatabaseConnectionManagerName is an exported subsystem name
const DatabaseConnectionManagerName = "database"

const defaultConnectionCheckInterval = time.Second * 30

// DatabaseConnectionManager holds the history database connection and its
// status
type DatabaseConnectionManager struct {
	started       int32
	shutdown      chan struct{}
	enabled       bool
	verbose       bool
	dataDir       string
	checkInterval time.Duration
	healthy       atomic.Bool
	dbConn        *database.Instance
}

// SetupDatabaseConnectionManager creates a new database manager. Relative
// sqlite database files are created under dataDir.
func SetupDatabaseConnectionManager(cfg *database.Config, dataDir string) (*DatabaseConnectionManager, error) {
	if cfg == nil {
		return nil, subsystem.ErrNilConfig
	}
	if err := database.CheckDriver(cfg.Driver); err != nil {
		return nil, err
	}
	dbConn, err := database.New(cfg)
	if err != nil {
		return nil, err
	}
	return &DatabaseConnectionManager{
		enabled:       cfg.Enabled,
		verbose:       cfg.Verbose,
		dataDir:       dataDir,
		checkInterval: defaultConnectionCheckInterval,
		dbConn:        dbConn,
	}, nil
}

// IsRunning safely checks whether the subsystem is running
func (m *DatabaseConnectionManager) IsRunning() bool {
	if m == nil {
		return false
	}
	return atomic.LoadInt32(&m.started) == 1
}

// IsConnected reports whether the manager is running with an open and
// reachable database connection
func (m *DatabaseConnectionManager) IsConnected() bool {
	return m.IsRunning() && m.dbConn.IsConnected() && m.healthy.Load()
}

// GetInstance returns a limited scoped database instance
func (m *DatabaseConnectionManager) GetInstance() *database.Instance {
	if m == nil || atomic.LoadInt32(&m.started) == 0 {
		return nil
	}
	return m.dbConn
}

// Start connects to the configured database, creates the estimate history
// schema and monitors the connection until Stop is called
func (m *DatabaseConnectionManager) Start(ctx context.Context, wg *sync.WaitGroup) (err error) {
	if m == nil {
		return fmt.Errorf("%s %w", DatabaseConnectionManagerName, subsystem.ErrNil)
	}
	if !atomic.CompareAndSwapInt32(&m.started, 0, 1) {
		return fmt.Errorf("%s %w", DatabaseConnectionManagerName, subsystem.ErrAlreadyStarted)
	}
	defer func() {
		if err != nil {
			atomic.CompareAndSwapInt32(&m.started, 1, 0)
		}
	}()

	log.Debugf(log.DatabaseMgr, "Database manager %s", subsystem.MsgStarting)
	if !m.enabled {
		return database.ErrDatabaseSupportDisabled
	}
	cfg := m.dbConn.GetConfig()
	switch cfg.Driver {
	case database.DBPostgreSQL:
		log.Debugf(log.DatabaseMgr,
			"Attempting to establish database connection to host %s/%s utilising %s driver",
			cfg.Host,
			cfg.Database,
			cfg.Driver)
		var con *sql.DB
		if con, err = postgres.Connect(&cfg.ConnectionDetails); err != nil {
			return fmt.Errorf("database failed to connect: %w, some features that utilise a database will be unavailable", err)
		}
		if err = m.dbConn.SetPostgresConnection(con); err != nil {
			if errClose := con.Close(); errClose != nil {
				log.Errorf(log.DatabaseMgr, "Failed to close database: %v", errClose)
			}
			return fmt.Errorf("database failed to connect: %w, some features that utilise a database will be unavailable", err)
		}
	case database.DBSQLite3:
		log.Debugf(log.DatabaseMgr,
			"Attempting to establish database connection to %s utilising %s driver",
			cfg.Database,
			cfg.Driver)
		if err = os.MkdirAll(m.dataDir, 0o770); err != nil {
			return err
		}
		var con *sql.DB
		if con, err = sqlite.Connect(m.dataDir, cfg.Database); err != nil {
			return fmt.Errorf("database failed to connect: %w, some features that utilise a database will be unavailable", err)
		}
		if err = m.dbConn.SetSQLiteConnection(con); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", database.ErrUnsupportedDriver, cfg.Driver)
	}

	if err = m.dbConn.Migrate(ctx); err != nil {
		if errClose := m.dbConn.CloseConnection(); errClose != nil {
			log.Errorf(log.DatabaseMgr, "Failed to close database: %v", errClose)
		}
		return err
	}
	m.healthy.Store(true)
	m.shutdown = make(chan struct{})
	wg.Add(1)
	go m.run(wg)
	return nil
}

// Stop closes the database connection and stops the connection monitor
func (m *DatabaseConnectionManager) Stop() error {
	if m == nil {
		return fmt.Errorf("%s %w", DatabaseConnectionManagerName, subsystem.ErrNil)
	}
	if !atomic.CompareAndSwapInt32(&m.started, 1, 0) {
		return fmt.Errorf("%s %w", DatabaseConnectionManagerName, subsystem.ErrNotStarted)
	}
	log.Debugf(log.DatabaseMgr, "Database manager %s", subsystem.MsgShuttingDown)
	close(m.shutdown)
	if err := m.dbConn.CloseConnection(); err != nil {
		log.Errorf(log.DatabaseMgr, "Failed to close database: %v", err)
	}
	return nil
}

func (m *DatabaseConnectionManager) run(wg *sync.WaitGroup) {
	log.Debugf(log.DatabaseMgr, "Database manager %s", subsystem.MsgStarted)
	t := time.NewTicker(m.checkInterval)
	defer func() {
		t.Stop()
		wg.Done()
		log.Debugf(log.DatabaseMgr, "Database manager %s", subsystem.MsgShutdown)
	}()

	for {
		select {
		case <-m.shutdown:
			return
		case <-t.C:
			m.checkConnection()
		}
	}
}

// checkConnection logs changes in database reachability
func (m *DatabaseConnectionManager) checkConnection() {
	err := m.dbConn.Ping()
	switch {
	case err != nil && m.healthy.Swap(false):
		log.Errorf(log.DatabaseMgr, "Database connection lost: %v", err)
	case err == nil && !m.healthy.Swap(true):
		log.Info(log.DatabaseMgr, "Database connection reestablished")
	case err == nil && m.verbose:
		log.Debug(log.DatabaseMgr, "Database connection healthy")
	}
}
