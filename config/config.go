package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/thrasher-corp/feeestimator/database"
	"github.com/thrasher-corp/feeestimator/log"
	"github.com/thrasher-corp/feeestimator/marketplace/mws"
	"github.com/thrasher-corp/feeestimator/marketplace/storagefee"
)

// DefaultDataDir returns the default data directory under the user's home
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + DefaultName
	}
	return filepath.Join(home, "."+DefaultName)
}

// DefaultFilePath returns the default config file path
func DefaultFilePath() string {
	return filepath.Join(DefaultDataDir(), File)
}

// LoadEnv loads KEY=value files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
		log.Debugf(log.ConfigMgr, "Loaded environment from %s", f)
	}
	return nil
}

// Load reads the config file at path, applies FEEESTIMATOR_* environment
// overrides and checks the result. A missing file yields the defaults.
// Encrypted files are decrypted with the password returned by keys.
func Load(path string, keys KeyProvider) (*Config, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warnf(log.ConfigMgr, "Config file %s not found, using defaults", path)
	case err != nil:
		return nil, fmt.Errorf(ErrFailureOpeningConfig, path, err)
	}

	if IsEncrypted(data) {
		if keys == nil {
			return nil, errKeyProviderRequired
		}
		key, err := keys()
		if err != nil {
			return nil, err
		}
		if data, err = DecryptConfigData(data, key); err != nil {
			return nil, err
		}
		log.Debugf(log.ConfigMgr, "Config file %s decrypted", path)
	}

	c, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf(ErrFailureOpeningConfig, path, err)
	}
	if err := c.CheckConfig(); err != nil {
		return nil, fmt.Errorf(ErrCheckingConfigValues, err)
	}
	return c, nil
}

func parse(data []byte) (*Config, error) {
	v := newViper()
	if len(bytes.TrimSpace(data)) > 0 {
		data, err := upgradeLegacyCredentials(data)
		if err != nil {
			return nil, err
		}
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, err
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper) {
	logCfg := log.GenDefaultSettings()
	for key, value := range map[string]any{
		"name":                                       DefaultName,
		"datadirectory":                              DefaultDataDir(),
		"verbose":                                    false,
		"httpdebugging":                              false,
		"httptimeout":                                defaultHTTPTimeout,
		"uniqueidentifiers":                          false,
		"requestspersecond":                          0,
		"credentials.sellerid":                       "",
		"credentials.accesskeyid":                    "",
		"credentials.secretkey":                      "",
		"credentials.marketplaceid":                  "",
		"endpoint.host":                              mws.DefaultHost,
		"endpoint.path":                              mws.ProductsPath,
		"endpoint.useragent":                         mws.DefaultUserAgent,
		"storagefee.baserate":                        defaultStorageBaseRate,
		"storagefee.storagedays":                     defaultStorageDays,
		"storagefee.daysinmonth":                     defaultDaysInMonth,
		"database.enabled":                           false,
		"database.verbose":                           false,
		"database.driver":                            database.DBSQLite3,
		"database.connectiondetails.host":            "",
		"database.connectiondetails.port":            0,
		"database.connectiondetails.username":        "",
		"database.connectiondetails.password":        "",
		"database.connectiondetails.database":        DefaultDatabaseFile,
		"database.connectiondetails.sslmode":         "",
		"apiserver.enabled":                          false,
		"apiserver.listenaddress":                    DefaultAPIListenAddr,
		"logging.enabled":                            logCfg.Enabled,
		"logging.level":                              logCfg.Level,
		"logging.output":                             logCfg.Output,
		"logging.filename":                           logCfg.FileName,
		"logging.advancedsettings.showlogsystemname": logCfg.AdvancedSettings.ShowLogSystemName,
		"logging.advancedsettings.spacer":            logCfg.AdvancedSettings.Spacer,
		"logging.advancedsettings.timestampformat":   logCfg.AdvancedSettings.TimeStampFormat,
		"logging.advancedsettings.headers.info":      logCfg.AdvancedSettings.Headers.Info,
		"logging.advancedsettings.headers.warn":      logCfg.AdvancedSettings.Headers.Warn,
		"logging.advancedsettings.headers.debug":     logCfg.AdvancedSettings.Headers.Debug,
		"logging.advancedsettings.headers.error":     logCfg.AdvancedSettings.Headers.Error,
	} {
		v.SetDefault(key, value)
	}
}

// upgradeLegacyCredentials moves the flat SELLER_ID, ACCESS_KEY_ID,
// SECRET_KEY and MARKETPLACE_ID fields into the credentials object. Files
// that already carry a credentials object are left alone.
func upgradeLegacyCredentials(data []byte) ([]byte, error) {
	if _, _, _, err := jsonparser.Get(data, "credentials"); err == nil {
		return data, nil
	}
	var upgraded bool
	for legacy, key := range map[string]string{
		legacySellerID:      "sellerID",
		legacyAccessKeyID:   "accessKeyID",
		legacySecretKey:     "secretKey",
		legacyMarketplaceID: "marketplaceID",
	} {
		value, err := jsonparser.GetString(data, legacy)
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", errLegacyUpgrade, legacy, err)
		}
		quoted, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if data, err = jsonparser.Set(data, quoted, "credentials", key); err != nil {
			return nil, fmt.Errorf("%w %s: %w", errLegacyUpgrade, legacy, err)
		}
		data = jsonparser.Delete(data, legacy)
		upgraded = true
	}
	if upgraded {
		log.Warn(log.ConfigMgr, "Legacy credential fields found, upgraded to the credentials object. Save the config to persist the upgrade")
	}
	return data, nil
}

// CheckConfig fills unset values with defaults and validates the rest
func (c *Config) CheckConfig() error {
	if c == nil {
		return errNilConfig
	}
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.DataDirectory == "" {
		c.DataDirectory = DefaultDataDir()
	}
	switch {
	case c.HTTPTimeout < 0:
		return fmt.Errorf("%w: %s", errInvalidTimeout, c.HTTPTimeout)
	case c.HTTPTimeout == 0:
		c.HTTPTimeout = defaultHTTPTimeout
	}

	if c.Endpoint.Host == "" {
		c.Endpoint.Host = mws.DefaultHost
	}
	if c.Endpoint.Path == "" {
		c.Endpoint.Path = mws.ProductsPath
	}
	if c.Endpoint.UserAgent == "" {
		c.Endpoint.UserAgent = mws.DefaultUserAgent
	}

	if c.StorageFee.BaseRate == "" {
		c.StorageFee.BaseRate = defaultStorageBaseRate
	}
	if c.StorageFee.DaysInMonth == 0 {
		c.StorageFee.DaysInMonth = defaultDaysInMonth
	}
	if _, err := c.StorageCalculator(); err != nil {
		return err
	}

	if c.Database.Driver == "" {
		c.Database.Driver = database.DBSQLite3
	}
	if c.Database.Enabled {
		if err := database.CheckDriver(c.Database.Driver); err != nil {
			return err
		}
		if c.Database.Database == "" {
			if c.Database.Driver != database.DBSQLite3 {
				return database.ErrNoDatabaseProvided
			}
			c.Database.Database = DefaultDatabaseFile
		}
	}

	if c.APIServer.ListenAddress == "" {
		c.APIServer.ListenAddress = DefaultAPIListenAddr
	}

	c.checkLoggerConfig()

	if err := c.Credentials.Validate(); err != nil {
		log.Warnf(log.ConfigMgr, "Credentials incomplete, remote fee estimates unavailable: %v", err)
	}
	return nil
}

func (c *Config) checkLoggerConfig() {
	defaults := log.GenDefaultSettings()
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Level
	}
	if c.Logging.Output == "" {
		c.Logging.Output = defaults.Output
	}
	if c.Logging.FileName == "" {
		c.Logging.FileName = defaults.FileName
	}
	if c.Logging.AdvancedSettings.TimeStampFormat == "" {
		c.Logging.AdvancedSettings.TimeStampFormat = defaults.AdvancedSettings.TimeStampFormat
	}
	if c.Logging.AdvancedSettings.Spacer == "" {
		c.Logging.AdvancedSettings.Spacer = defaults.AdvancedSettings.Spacer
	}
	if c.Logging.AdvancedSettings.Headers == (log.Headers{}) {
		c.Logging.AdvancedSettings.Headers = defaults.AdvancedSettings.Headers
	}
}

// StorageCalculator returns a storage fee calculator for the configured
// settings
func (c *Config) StorageCalculator() (*storagefee.Calculator, error) {
	calc, err := storagefee.NewCalculator(c.StorageFee.BaseRate, c.StorageFee.StorageDays, c.StorageFee.DaysInMonth)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidStorageFee, err)
	}
	return calc, nil
}

// Save writes the config to path as indented JSON. The file is encrypted
// when key is not empty.
func (c *Config) Save(path string, key []byte) error {
	if c == nil {
		return errNilConfig
	}
	data, err := json.MarshalIndent(c, "", " ")
	if err != nil {
		return err
	}
	if len(key) > 0 {
		if data, err = EncryptConfigData(data, key); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o770); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	log.Debugf(log.ConfigMgr, "Config saved to %s", path)
	return nil
}
