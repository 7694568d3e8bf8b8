package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/feeestimator/config"
	"github.com/thrasher-corp/feeestimator/engine"
	"github.com/thrasher-corp/feeestimator/log"
	"golang.org/x/text/currency"
)

var testPassword = []byte("correct horse battery")

// run executes feecli against an isolated data directory
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	base := []string{
		"feecli",
		"--config", filepath.Join(dir, config.File),
		"--datadir", dir,
		"--env", filepath.Join(dir, "missing.env"),
		"--nocolour",
	}
	err := app.Run(append(base, args...))
	return out.String(), err
}

func TestStorageFeeCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "storagefee", "--height", "10", "--length", "10", "--width", "10")
	require.NoError(t, err, "storagefee must not error")
	assert.Contains(t, out, "9", "Storage fee should be printed")

	_, err = run(t, dir, "storagefee", "--height", "-1")
	assert.Error(t, err, "Negative dimensions should error")
}

// fileIsOpen reports whether this process holds a descriptor for path
func fileIsOpen(t *testing.T, path string) bool {
	t.Helper()
	fds, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skip("file descriptors cannot be listed on this platform")
	}
	for _, fd := range fds {
		if target, err := os.Readlink(filepath.Join("/proc/self/fd", fd.Name())); err == nil && target == path {
			return true
		}
	}
	return false
}

func TestLogFileClosedOnExit(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err, "EvalSymlinks must not error")
	t.Cleanup(func() {
		d := log.GenDefaultSettings()
		assert.NoError(t, log.SetupGlobalLogger(&d, dir), "Restoring the default logger should not error")
	})
	c := &config.Config{}
	require.NoError(t, c.CheckConfig(), "CheckConfig must not error")
	c.Logging.Output = "file"
	require.NoError(t, c.Save(filepath.Join(dir, config.File), nil), "Save must not error")

	_, err = run(t, dir, "storagefee", "--height", "10", "--length", "10", "--width", "10")
	require.NoError(t, err, "storagefee must not error")
	logPath := filepath.Join(dir, c.Logging.FileName)
	assert.FileExists(t, logPath, "Log file should be created")
	assert.False(t, fileIsOpen(t, logPath), "Log file should be closed when the command returns")
}

func TestFeesCommandErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "fees")
	assert.ErrorIs(t, err, errMissingArgument, "Missing ASIN should error")

	_, err = run(t, dir, "fees", "B00TEST123")
	assert.ErrorIs(t, err, errMissingArgument, "Missing price should error")

	_, err = run(t, dir, "fees", "--asin", "B00TEST123", "--price", "1500")
	assert.ErrorIs(t, err, engine.ErrEstimatorUnavailable, "Missing credentials should error")

	_, err = run(t, dir, "estimate", "B00TEST123", "1500")
	assert.ErrorIs(t, err, engine.ErrEstimatorUnavailable, "Missing credentials should error")
}

func TestHistoryCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "history", "B00TEST123")
	require.NoError(t, err, "history must not error")
	assert.JSONEq(t, "[]", out, "Empty history should print an empty list")
	assert.FileExists(t, filepath.Join(dir, config.DefaultDatabaseFile), "History database should be created")

	_, err = run(t, dir, "history")
	assert.ErrorIs(t, err, errMissingArgument, "Missing ASIN should error")
}

func TestEncryptDecryptConfigCommands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.File)
	c := &config.Config{}
	require.NoError(t, c.CheckConfig(), "CheckConfig must not error")
	require.NoError(t, c.Save(path, nil), "Save must not error")

	prompt := passwordPrompt
	t.Cleanup(func() { passwordPrompt = prompt })
	var prompts int
	passwordPrompt = func(string, bool) ([]byte, error) {
		prompts++
		return testPassword, nil
	}

	_, err := run(t, dir, "encryptconfig")
	require.NoError(t, err, "encryptconfig must not error")
	data, err := os.ReadFile(path)
	require.NoError(t, err, "ReadFile must not error")
	assert.True(t, config.IsEncrypted(data), "Config should be encrypted")

	_, err = run(t, dir, "storagefee", "--height", "10", "--length", "10", "--width", "10")
	require.NoError(t, err, "storagefee must load an encrypted config")

	_, err = run(t, dir, "decryptconfig")
	require.NoError(t, err, "decryptconfig must not error")
	data, err = os.ReadFile(path)
	require.NoError(t, err, "ReadFile must not error")
	assert.False(t, config.IsEncrypted(data), "Config should be decrypted")
	assert.Equal(t, 3, prompts, "Each command should prompt once")
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()
	assert.Contains(t, formatAmount(187, currency.JPY), "187", "Amount should be formatted")
	assert.Contains(t, formatAmount(12.5, currency.USD), "12", "Amount should be formatted")
}

func TestColourLogHook(t *testing.T) {
	t.Parallel()
	assert.True(t, colourLogHook("[INFO]", "GLOBAL", "hello"), "Known headers should bypass the logger")
	assert.False(t, colourLogHook("<custom>", "GLOBAL", "hello"), "Unknown headers should fall through to the logger")
}
