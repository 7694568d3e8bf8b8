package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/buger/jsonparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/feeestimator/database"
	"github.com/thrasher-corp/feeestimator/marketplace/mws"
	"github.com/thrasher-corp/feeestimator/marketplace/storagefee"
)

const testConfig = `{
 "name": "fees-test",
 "httpTimeout": "10s",
 "uniqueIdentifiers": true,
 "credentials": {
  "sellerID": "A1SELLER",
  "accessKeyID": "AKIDEXAMPLE",
  "secretKey": "secret",
  "marketplaceID": "A1VC38T7YXB528"
 },
 "storageFee": {
  "storageDays": 15
 },
 "database": {
  "enabled": true,
  "driver": "sqlite3"
 },
 "logging": {
  "level": "INFO|DEBUG|WARN|ERROR"
 }
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600), "WriteFile must not error")
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()
	c, err := Load(filepath.Join(t.TempDir(), "missing.json"), nil)
	require.NoError(t, err, "Load must not error on a missing file")

	assert.Equal(t, DefaultName, c.Name, "Name should default")
	assert.Equal(t, defaultHTTPTimeout, c.HTTPTimeout, "HTTPTimeout should default")
	assert.Equal(t, mws.DefaultHost, c.Endpoint.Host, "Endpoint host should default")
	assert.Equal(t, mws.ProductsPath, c.Endpoint.Path, "Endpoint path should default")
	assert.Equal(t, mws.DefaultUserAgent, c.Endpoint.UserAgent, "User agent should default")
	assert.Equal(t, StorageFeeConfig{BaseRate: "8.126", StorageDays: 30, DaysInMonth: 30}, c.StorageFee, "Storage fee settings should default")
	assert.False(t, c.Database.Enabled, "Database should be disabled by default")
	assert.Equal(t, database.DBSQLite3, c.Database.Driver, "Database driver should default")
	assert.Equal(t, DefaultDatabaseFile, c.Database.Database, "Database file should default")
	assert.Equal(t, DefaultAPIListenAddr, c.APIServer.ListenAddress, "API listen address should default")
	assert.Equal(t, "INFO|WARN|ERROR", c.Logging.Level, "Log level should default")
	assert.True(t, c.Logging.Enabled, "Logging should be enabled by default")
	assert.Empty(t, c.Credentials.SecretKey, "Credentials should be empty by default")
	assert.Zero(t, c.RequestsPerSecond, "Requests should not be throttled by default")
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	c, err := Load(writeFile(t, File, testConfig), nil)
	require.NoError(t, err, "Load must not error")

	assert.Equal(t, "fees-test", c.Name, "Name should be read")
	assert.Equal(t, 10*time.Second, c.HTTPTimeout, "Duration strings should be decoded")
	assert.True(t, c.UniqueIdentifiers, "UniqueIdentifiers should be read")
	assert.Equal(t, mws.Credentials{
		SellerID:      "A1SELLER",
		AccessKeyID:   "AKIDEXAMPLE",
		SecretKey:     "secret",
		MarketplaceID: "A1VC38T7YXB528",
	}, c.Credentials, "Credentials should be read")
	assert.Equal(t, 15, c.StorageFee.StorageDays, "StorageDays should be read")
	assert.Equal(t, 30, c.StorageFee.DaysInMonth, "Unset keys should keep defaults")
	assert.True(t, c.Database.Enabled, "Database enabled should be read")
	assert.Equal(t, DefaultDatabaseFile, c.Database.Database, "Database file should default")
	assert.Equal(t, "INFO|DEBUG|WARN|ERROR", c.Logging.Level, "Log level should be read")
	assert.Equal(t, "[INFO]", c.Logging.AdvancedSettings.Headers.Info, "Log headers should default")

	calc, err := c.StorageCalculator()
	require.NoError(t, err, "StorageCalculator must not error")
	fee, err := calc.Fee(storagefee.Dimensions{Height: 10, Length: 10, Width: 10})
	require.NoError(t, err, "Fee must not error")
	assert.Equal(t, int64(5), fee, "Configured storage days should be used")
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("FEEESTIMATOR_CREDENTIALS_SECRETKEY", "from-env")
	t.Setenv("FEEESTIMATOR_STORAGEFEE_STORAGEDAYS", "10")
	t.Setenv("FEEESTIMATOR_ENDPOINT_HOST", "mws-fe.amazonservices.com")

	c, err := Load(writeFile(t, File, testConfig), nil)
	require.NoError(t, err, "Load must not error")
	assert.Equal(t, "from-env", c.Credentials.SecretKey, "Environment should override the file")
	assert.Equal(t, "AKIDEXAMPLE", c.Credentials.AccessKeyID, "File values without overrides should be kept")
	assert.Equal(t, 10, c.StorageFee.StorageDays, "Numeric environment values should be decoded")
	assert.Equal(t, "mws-fe.amazonservices.com", c.Endpoint.Host, "Environment should override defaults")
}

func TestLoadEnv(t *testing.T) {
	const key = "FEEESTIMATOR_TEST_LOADENV"
	t.Cleanup(func() {
		assert.NoError(t, os.Unsetenv(key), "Unsetenv should not error")
	})
	path := writeFile(t, ".env", key+"=loaded\n")

	require.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "missing.env"), path), "LoadEnv must skip missing files")
	assert.Equal(t, "loaded", os.Getenv(key), "LoadEnv should set variables")

	require.NoError(t, os.WriteFile(path, []byte(key+"=changed\n"), 0o600), "WriteFile must not error")
	require.NoError(t, LoadEnv(path), "LoadEnv must not error")
	assert.Equal(t, "loaded", os.Getenv(key), "LoadEnv should not override existing variables")
}

func TestLoadLegacyCredentials(t *testing.T) {
	t.Parallel()
	c, err := Load(writeFile(t, "legacy.json", `{"SELLER_ID":"S1","ACCESS_KEY_ID":"A1","SECRET_KEY":"K1","MARKETPLACE_ID":"M1"}`), nil)
	require.NoError(t, err, "Load must not error")
	assert.Equal(t, mws.Credentials{SellerID: "S1", AccessKeyID: "A1", SecretKey: "K1", MarketplaceID: "M1"}, c.Credentials, "Legacy fields should be upgraded")
}

func TestUpgradeLegacyCredentials(t *testing.T) {
	t.Parallel()
	out, err := upgradeLegacyCredentials([]byte(`{"SELLER_ID":"S\"1","SECRET_KEY":"K1","name":"x"}`))
	require.NoError(t, err, "upgradeLegacyCredentials must not error")

	v, err := jsonparser.GetString(out, "credentials", "sellerID")
	require.NoError(t, err, "credentials.sellerID must exist")
	assert.Equal(t, `S"1`, v, "Values should be re-encoded")
	v, err = jsonparser.GetString(out, "credentials", "secretKey")
	require.NoError(t, err, "credentials.secretKey must exist")
	assert.Equal(t, "K1", v, "Values should be moved")
	_, _, _, err = jsonparser.Get(out, "SELLER_ID")
	assert.ErrorIs(t, err, jsonparser.KeyPathNotFoundError, "Legacy keys should be removed")
	v, err = jsonparser.GetString(out, "name")
	require.NoError(t, err, "Unrelated keys must be kept")
	assert.Equal(t, "x", v, "Unrelated keys should be kept")

	current := []byte(`{"credentials":{"sellerID":"new"},"SELLER_ID":"old"}`)
	out, err = upgradeLegacyCredentials(current)
	require.NoError(t, err, "upgradeLegacyCredentials must not error")
	assert.Equal(t, current, out, "Configs with a credentials object should be untouched")

	_, err = upgradeLegacyCredentials([]byte(`{"SELLER_ID":{"nested":true}}`))
	assert.ErrorIs(t, err, errLegacyUpgrade, "Non string legacy values should error")
}

func TestCheckConfig(t *testing.T) {
	t.Parallel()
	var nilConfig *Config
	assert.ErrorIs(t, nilConfig.CheckConfig(), errNilConfig, "Nil config should error")

	c := &Config{}
	require.NoError(t, c.CheckConfig(), "CheckConfig must not error on an empty config")
	assert.Equal(t, DefaultName, c.Name, "Name should be filled")
	assert.Equal(t, defaultHTTPTimeout, c.HTTPTimeout, "HTTPTimeout should be filled")
	assert.Equal(t, defaultStorageBaseRate, c.StorageFee.BaseRate, "BaseRate should be filled")
	assert.Equal(t, defaultDaysInMonth, c.StorageFee.DaysInMonth, "DaysInMonth should be filled")
	assert.Equal(t, "[WARN]", c.Logging.AdvancedSettings.Headers.Warn, "Log headers should be filled")

	c = &Config{HTTPTimeout: -time.Second}
	assert.ErrorIs(t, c.CheckConfig(), errInvalidTimeout, "Negative timeout should error")

	c = &Config{StorageFee: StorageFeeConfig{StorageDays: 31, DaysInMonth: 30}}
	assert.ErrorIs(t, c.CheckConfig(), errInvalidStorageFee, "Storage days beyond the month should error")
	assert.ErrorIs(t, c.CheckConfig(), storagefee.ErrInvalidPeriod, "Underlying cause should be kept")

	c = &Config{StorageFee: StorageFeeConfig{BaseRate: "cheap"}}
	assert.ErrorIs(t, c.CheckConfig(), errInvalidStorageFee, "Invalid base rate should error")

	c = &Config{Database: database.Config{Enabled: true, Driver: "mysql"}}
	assert.ErrorIs(t, c.CheckConfig(), database.ErrUnsupportedDriver, "Unsupported driver should error")

	c = &Config{Database: database.Config{Enabled: true, Driver: database.DBPostgreSQL}}
	assert.ErrorIs(t, c.CheckConfig(), database.ErrNoDatabaseProvided, "Postgres without a database name should error")
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()
	_, err := Load(writeFile(t, File, `{"storageFee":{"daysInMonth":-1}}`), nil)
	assert.ErrorIs(t, err, errInvalidStorageFee, "Invalid settings should error")

	_, err = Load(writeFile(t, File, `{"name":`), nil)
	assert.Error(t, err, "Malformed JSON should error")

	_, err = Load(t.TempDir(), nil)
	assert.Error(t, err, "Directories should not load")
}

func TestSaveAndLoad(t *testing.T) {
	t.Parallel()
	c, err := Load(writeFile(t, File, testConfig), nil)
	require.NoError(t, err, "Load must not error")

	path := filepath.Join(t.TempDir(), "nested", File)
	require.NoError(t, c.Save(path, nil), "Save must not error")
	loaded, err := Load(path, nil)
	require.NoError(t, err, "Load must not error")
	assert.Equal(t, c, loaded, "Saved config should load back unchanged")

	var nilConfig *Config
	assert.ErrorIs(t, nilConfig.Save(path, nil), errNilConfig, "Nil config should error")
}
