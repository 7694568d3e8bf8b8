package engine

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/feeestimator/config"
	"github.com/thrasher-corp/feeestimator/marketplace/mws"
	"github.com/thrasher-corp/feeestimator/marketplace/storagefee"
)

// Settings stores engine params. Settings are set via the command line and
// take precedence over the config file
type Settings struct {
	ConfigFile            string
	DataDir               string
	EnvFiles              []string
	Verbose               bool
	EnableDatabaseManager bool
	EnableAPIServer       bool
	KeyProvider           config.KeyProvider
}

// Engine contains configuration, the fee estimate client, the storage fee
// calculator and the optional history database and API server
type Engine struct {
	Config            *config.Config
	Settings          Settings
	Estimator         *mws.MWS
	StorageCalculator *storagefee.Calculator
	DatabaseManager   *DatabaseConnectionManager
	Uptime            time.Time
	ServicesWG        sync.WaitGroup

	apiServer *http.Server
	apiAddr   string
	m         sync.Mutex
}

var (
	// ErrEstimatorUnavailable is returned when the engine has no usable
	// credentials for the remote fee estimate API
	ErrEstimatorUnavailable = errors.New("fee estimator unavailable, credentials incomplete")

	errNilEngine         = errors.New("engine instance is nil")
	errNilSettings       = errors.New("engine settings are nil")
	errAPIServerStarted  = errors.New("API server already started")
	errInvalidQueryValue = errors.New("invalid query value")
)

// FeesResponse is the API response for a total fee lookup
type FeesResponse struct {
	ItemID   string          `json:"itemID"`
	Price    string          `json:"price"`
	TotalFee decimal.Decimal `json:"totalFee"`
}

// StorageFeeResponse is the API response for a storage fee calculation
type StorageFeeResponse struct {
	Dimensions  storagefee.Dimensions `json:"dimensions"`
	StorageDays int                   `json:"storageDays"`
	Fee         int64                 `json:"fee"`
}

// HealthResponse is the API response for the health check
type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Estimator bool   `json:"estimator"`
	Database  bool   `json:"database"`
}

// ErrorResponse is the API response body for failed requests
type ErrorResponse struct {
	Error string `json:"error"`
}

// Route is a sub type that holds the request routes
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}
