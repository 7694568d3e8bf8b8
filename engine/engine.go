package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/feeestimator/config"
	"github.com/thrasher-corp/feeestimator/database"
	"github.com/thrasher-corp/feeestimator/database/repository/estimate"
	"github.com/thrasher-corp/feeestimator/engine/subsystem"
	"github.com/thrasher-corp/feeestimator/log"
	"github.com/thrasher-corp/feeestimator/marketplace/mws"
	"github.com/thrasher-corp/feeestimator/marketplace/storagefee"
)

const shutdownTimeout = time.Second * 10

// New returns an engine for the supplied config. Extra client options are
// applied after the ones derived from the config. Incomplete credentials
// leave the engine without a fee estimator rather than failing.
func New(cfg *config.Config, mwsOpts ...mws.Option) (*Engine, error) {
	if cfg == nil {
		return nil, subsystem.ErrNilConfig
	}
	if err := cfg.CheckConfig(); err != nil {
		return nil, err
	}
	calc, err := cfg.StorageCalculator()
	if err != nil {
		return nil, err
	}
	e := &Engine{
		Config:            cfg,
		StorageCalculator: calc,
	}

	opts := []mws.Option{
		mws.WithEndpoint(cfg.Endpoint),
		mws.WithTimeout(cfg.HTTPTimeout),
		mws.WithVerbose(cfg.Verbose, cfg.HTTPDebugging),
		mws.WithRequestRate(cfg.RequestsPerSecond),
	}
	if cfg.UniqueIdentifiers {
		opts = append(opts, mws.WithUniqueIdentifiers())
	}
	e.Estimator, err = mws.New(cfg.Credentials, append(opts, mwsOpts...)...)
	switch {
	case errors.Is(err, mws.ErrConfiguration):
		log.Warnf(log.Global, "Fee estimator disabled: %v", err)
	case err != nil:
		return nil, err
	}

	if cfg.Database.Enabled {
		if e.DatabaseManager, err = SetupDatabaseConnectionManager(&cfg.Database, cfg.DataDirectory); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// NewFromSettings loads the environment files and config named by settings,
// applies the setting overrides, sets up logging and returns a new engine
func NewFromSettings(settings *Settings, mwsOpts ...mws.Option) (*Engine, error) {
	if settings == nil {
		return nil, errNilSettings
	}
	if err := config.LoadEnv(settings.EnvFiles...); err != nil {
		return nil, err
	}
	cfg, err := loadConfigWithSettings(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to load config. Err: %w", err)
	}
	if cfg.Logging.Enabled {
		if err := log.SetupGlobalLogger(&cfg.Logging, cfg.DataDirectory); err != nil {
			return nil, fmt.Errorf("failed to setup logger. Err: %w", err)
		}
		log.Debug(log.Global, "Logger initialised.")
	}

	e, err := New(cfg, mwsOpts...)
	if err != nil {
		return nil, err
	}
	e.Settings = *settings
	e.Settings.ConfigFile = configPath(settings)
	e.Settings.DataDir = cfg.DataDirectory
	return e, nil
}

func configPath(settings *Settings) string {
	if settings.ConfigFile != "" {
		return settings.ConfigFile
	}
	return config.DefaultFilePath()
}

// loadConfigWithSettings creates configuration based on the provided settings
func loadConfigWithSettings(settings *Settings) (*config.Config, error) {
	filePath := configPath(settings)
	log.Debugf(log.ConfigMgr, "Loading config file %s..", filePath)
	cfg, err := config.Load(filePath, settings.KeyProvider)
	if err != nil {
		return nil, err
	}
	if settings.DataDir != "" {
		cfg.DataDirectory = settings.DataDir
	}
	if settings.Verbose {
		cfg.Verbose = true
	}
	if settings.EnableDatabaseManager {
		cfg.Database.Enabled = true
	}
	if settings.EnableAPIServer {
		cfg.APIServer.Enabled = true
	}
	return cfg, nil
}

// PrintSettings logs the engine settings
func PrintSettings(e *Engine) {
	log.Debug(log.Global, "ENGINE SETTINGS")
	log.Debugf(log.Global, "\t Name: %s", e.Config.Name)
	log.Debugf(log.Global, "\t Config file: %s", e.Settings.ConfigFile)
	log.Debugf(log.Global, "\t Data directory: %s", e.Config.DataDirectory)
	log.Debugf(log.Global, "\t Verbose mode: %v", e.Config.Verbose)
	log.Debugf(log.Global, "\t Fee estimator enabled: %v", e.Estimator != nil)
	if e.Estimator != nil {
		log.Debugf(log.Global, "\t Credentials: %s", e.Config.Credentials.String())
		log.Debugf(log.Global, "\t Endpoint: https://%s%s", e.Config.Endpoint.Host, e.Config.Endpoint.Path)
	}
	log.Debugf(log.Global, "\t Storage fee: rate %s over %d of %d days",
		e.StorageCalculator.BaseRate,
		e.StorageCalculator.StorageDays,
		e.StorageCalculator.DaysInMonth)
	log.Debugf(log.Global, "\t Enable database manager: %v", e.Config.Database.Enabled)
	log.Debugf(log.Global, "\t Enable API server: %v", e.Config.APIServer.Enabled)
}

// Start starts the enabled subsystems. A database that cannot be reached is
// logged and leaves estimate history unavailable.
func (e *Engine) Start(ctx context.Context) error {
	if e == nil {
		return errNilEngine
	}
	if e.DatabaseManager != nil {
		if err := e.DatabaseManager.Start(ctx, &e.ServicesWG); err != nil {
			log.Errorf(log.Global, "Database manager unable to start: %v", err)
		}
	}
	if e.Config.APIServer.Enabled {
		if err := e.StartAPIServer(e.Config.APIServer.ListenAddress); err != nil {
			return err
		}
	}
	e.Uptime = time.Now()
	log.Debugf(log.Global, "Engine '%s' started.", e.Config.Name)
	return nil
}

// Stop shuts down the running subsystems and waits for them to exit
func (e *Engine) Stop() {
	if e == nil {
		return
	}
	log.Debugf(log.Global, "Engine shutting down..")

	e.m.Lock()
	srv := e.apiServer
	e.apiServer = nil
	e.apiAddr = ""
	e.m.Unlock()
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := srv.Shutdown(ctx); err != nil {
			log.Errorf(log.APIServerMgr, "API server unable to shutdown: %v", err)
		}
		cancel()
	}

	if e.DatabaseManager.IsRunning() {
		if err := e.DatabaseManager.Stop(); err != nil {
			log.Errorf(log.Global, "Database manager unable to stop. Error: %v", err)
		}
	}

	e.ServicesWG.Wait()
	log.Debugf(log.Global, "Engine '%s' shutdown.", e.Config.Name)
}

// StartAPIServer serves the REST API on listenAddr until Stop is called
func (e *Engine) StartAPIServer(listenAddr string) error {
	if e == nil {
		return errNilEngine
	}
	e.m.Lock()
	defer e.m.Unlock()
	if e.apiServer != nil {
		return errAPIServerStarted
	}
	l, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	e.apiServer = &http.Server{
		Handler:           newRouter(e),
		ReadHeaderTimeout: time.Second * 10,
	}
	e.apiAddr = l.Addr().String()
	log.Infof(log.APIServerMgr, "HTTP REST server support enabled. Listen URL: http://%s/v1", e.apiAddr)

	srv := e.apiServer
	e.ServicesWG.Add(1)
	go func() {
		defer e.ServicesWG.Done()
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf(log.APIServerMgr, "API server failure: %v", err)
		}
	}()
	return nil
}

// APIServerAddress returns the address the API server is listening on
func (e *Engine) APIServerAddress() string {
	e.m.Lock()
	defer e.m.Unlock()
	return e.apiAddr
}

// GetFeesEstimate requests a fee estimate for an FBA listing of itemID at
// price JPY. Successful estimates are stored when the history database is
// running.
func (e *Engine) GetFeesEstimate(ctx context.Context, itemID, price string) (*mws.FeeEstimateResult, error) {
	if e == nil {
		return nil, errNilEngine
	}
	if e.Estimator == nil {
		return nil, ErrEstimatorUnavailable
	}
	params, err := mws.NewJPYFeesEstimateParams(itemID, price)
	if err != nil {
		return nil, err
	}
	result, err := e.Estimator.GetMyFeesEstimate(ctx, params)
	if err != nil {
		return nil, err
	}
	e.recordEstimate(ctx, params, result)
	return result, nil
}

// GetFees returns the total fee for an FBA listing of itemID at price JPY.
// The package dimensions are validated but do not take part in the estimate.
func (e *Engine) GetFees(ctx context.Context, itemID, price string, dims storagefee.Dimensions) (decimal.Decimal, error) {
	if _, err := dims.Volume(); err != nil {
		return decimal.Zero, err
	}
	result, err := e.GetFeesEstimate(ctx, itemID, price)
	if err != nil {
		return decimal.Zero, err
	}
	return result.TotalFeeAmount()
}

// GetStorageFee returns the monthly storage fee for a package using the
// configured rate and storage period
func (e *Engine) GetStorageFee(dims storagefee.Dimensions) (int64, error) {
	if e == nil {
		return 0, errNilEngine
	}
	return e.StorageCalculator.Fee(dims)
}

// History returns the stored estimates of itemID, newest first
func (e *Engine) History(ctx context.Context, itemID string, limit int) ([]estimate.Data, error) {
	if e == nil {
		return nil, errNilEngine
	}
	db := e.DatabaseManager.GetInstance()
	if db == nil {
		return nil, database.ErrDatabaseSupportDisabled
	}
	return estimate.GetByItem(ctx, db, itemID, limit)
}

// recordEstimate stores estimates with a numeric total fee. Failures are
// logged and do not affect the caller.
func (e *Engine) recordEstimate(ctx context.Context, params *mws.FeesEstimateParams, result *mws.FeeEstimateResult) {
	db := e.DatabaseManager.GetInstance()
	if db == nil {
		return
	}
	fee, err := result.TotalFeeAmount()
	if err != nil {
		return
	}
	err = estimate.Insert(ctx, db, estimate.Data{
		ItemID:            strings.TrimSpace(params.IDValue),
		Price:             params.ListingPrice.Amount,
		Currency:          params.ListingPrice.CurrencyCode.String(),
		TotalFee:          fee,
		SellingPrice:      result.SellingPrice,
		Shipping:          result.Shipping,
		Status:            result.Status,
		RequestIdentifier: result.Identifier,
	})
	if err != nil {
		log.Errorf(log.DatabaseMgr, "Unable to store fee estimate for %s: %v", params.IDValue, err)
	}
}
