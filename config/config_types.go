package config

import (
	"errors"
	"time"

	"github.com/thrasher-corp/feeestimator/database"
	"github.com/thrasher-corp/feeestimator/log"
	"github.com/thrasher-corp/feeestimator/marketplace/mws"
)

// Constants declared here are filename strings and defaults
const (
	File                   = "config.json"
	EncryptedFile          = "config.dat"
	DefaultName            = "feeestimator"
	DefaultDatabaseFile    = "estimates.db"
	DefaultAPIListenAddr   = "localhost:9053"
	defaultHTTPTimeout     = time.Second * 30
	defaultStorageBaseRate = "8.126"
	defaultStorageDays     = 30
	defaultDaysInMonth     = 30
	envPrefix              = "FEEESTIMATOR"
)

// Legacy credential file keys
const (
	legacySellerID      = "SELLER_ID"
	legacyAccessKeyID   = "ACCESS_KEY_ID"
	legacySecretKey     = "SECRET_KEY"
	legacyMarketplaceID = "MARKETPLACE_ID"
)

// Constants here hold some messages
const (
	ErrFailureOpeningConfig = "fatal error opening %s file. Error: %w"
	ErrCheckingConfigValues = "fatal error checking config values. Error: %w"
)

var (
	errNilConfig           = errors.New("config is nil")
	errKeyProviderRequired = errors.New("config file is encrypted and no key provider was supplied")
	errInvalidStorageFee   = errors.New("invalid storage fee settings")
	errInvalidTimeout      = errors.New("HTTP timeout must be positive")
	errLegacyUpgrade       = errors.New("cannot upgrade legacy credential field")
)

// Config is the overarching object that holds the settings for the fee
// estimator client, storage fee calculator, history database and API server
type Config struct {
	Name              string           `json:"name" mapstructure:"name"`
	DataDirectory     string           `json:"dataDirectory" mapstructure:"datadirectory"`
	Verbose           bool             `json:"verbose" mapstructure:"verbose"`
	HTTPDebugging     bool             `json:"httpDebugging" mapstructure:"httpdebugging"`
	HTTPTimeout       time.Duration    `json:"httpTimeout" mapstructure:"httptimeout"`
	UniqueIdentifiers bool             `json:"uniqueIdentifiers" mapstructure:"uniqueidentifiers"`
	RequestsPerSecond int              `json:"requestsPerSecond" mapstructure:"requestspersecond"`
	Credentials       mws.Credentials  `json:"credentials" mapstructure:"credentials"`
	Endpoint          mws.Endpoint     `json:"endpoint" mapstructure:"endpoint"`
	StorageFee        StorageFeeConfig `json:"storageFee" mapstructure:"storagefee"`
	Database          database.Config  `json:"database" mapstructure:"database"`
	APIServer         APIServerConfig  `json:"apiServer" mapstructure:"apiserver"`
	Logging           log.Config       `json:"logging" mapstructure:"logging"`
}

// StorageFeeConfig holds the monthly storage fee settings
type StorageFeeConfig struct {
	BaseRate    string `json:"baseRate" mapstructure:"baserate"`
	StorageDays int    `json:"storageDays" mapstructure:"storagedays"`
	DaysInMonth int    `json:"daysInMonth" mapstructure:"daysinmonth"`
}

// APIServerConfig holds the REST API server settings
type APIServerConfig struct {
	Enabled       bool   `json:"enabled" mapstructure:"enabled"`
	ListenAddress string `json:"listenAddress" mapstructure:"listenaddress"`
}

// KeyProvider returns the password used to decrypt an encrypted config file
type KeyProvider func() ([]byte, error)
