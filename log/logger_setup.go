package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	errSubloggerConfigIsNil  = errors.New("sublogger config is nil")
	errUnhandledOutputWriter = errors.New("unhandled output writer")
	errSubLoggerNotFound     = errors.New("sub logger not found")
	errFileNameNotSet        = errors.New("log file name not set")
)

// logFile is the shared file writer for every sub logger using "file" output
var logFile io.WriteCloser

func getWriters(s *SubLoggerConfig) (io.Writer, error) {
	if s == nil {
		return nil, errSubloggerConfigIsNil
	}
	mw, err := MultiWriter()
	if err != nil {
		return nil, err
	}
	outputWriters := strings.Split(s.Output, "|")
	for x := range outputWriters {
		var writer io.Writer
		switch strings.ToLower(strings.TrimSpace(outputWriters[x])) {
		case "stdout", "console":
			writer = os.Stdout
		case "stderr":
			writer = os.Stderr
		case "file":
			if logFile == nil {
				return nil, fmt.Errorf("%w: file output requested", errFileNameNotSet)
			}
			writer = logFile
		default:
			return nil, fmt.Errorf("%w: %s", errUnhandledOutputWriter, outputWriters[x])
		}
		err = mw.Add(writer)
		if err != nil {
			return nil, err
		}
	}
	return mw, nil
}

// GenDefaultSettings return struct with known sane/working logger settings
func GenDefaultSettings() Config {
	return Config{
		Enabled:  true,
		Level:    "INFO|WARN|ERROR",
		Output:   "console",
		FileName: "log.txt",
		AdvancedSettings: AdvancedSettings{
			ShowLogSystemName: true,
			Spacer:            spacer,
			TimeStampFormat:   timestampFormat,
			Headers: Headers{
				Info:  "[INFO]",
				Warn:  "[WARN]",
				Debug: "[DEBUG]",
				Error: "[ERROR]",
			},
		},
	}
}

func newLogger(c *Config) Logger {
	return Logger{
		TimestampFormat:   c.AdvancedSettings.TimeStampFormat,
		Spacer:            c.AdvancedSettings.Spacer,
		ErrorHeader:       c.AdvancedSettings.Headers.Error,
		InfoHeader:        c.AdvancedSettings.Headers.Info,
		WarnHeader:        c.AdvancedSettings.Headers.Warn,
		DebugHeader:       c.AdvancedSettings.Headers.Debug,
		ShowLogSystemName: c.AdvancedSettings.ShowLogSystemName,
	}
}

// SetupGlobalLogger applies the supplied configuration to every registered
// sub logger. Log files are created under logDir.
func SetupGlobalLogger(c *Config, logDir string) error {
	if c == nil {
		return errSubloggerConfigIsNil
	}
	mu.Lock()
	defer mu.Unlock()

	if strings.Contains(strings.ToLower(c.Output), "file") || subLoggersWantFile(c.SubLoggers) {
		if c.FileName == "" {
			return errFileNameNotSet
		}
		if logFile != nil {
			displayError(logFile.Close())
		}
		if err := os.MkdirAll(logDir, 0o770); err != nil {
			return err
		}
		f, err := os.OpenFile(filepath.Join(logDir, c.FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return err
		}
		logFile = f
	}

	output, err := getWriters(&SubLoggerConfig{Output: c.Output})
	if err != nil {
		return err
	}
	levels := splitLevel(c.Level)
	for _, sl := range subLoggers {
		sl.levels = levels
		sl.output = output
	}
	for x := range c.SubLoggers {
		if err := configureSubLogger(&c.SubLoggers[x]); err != nil {
			return err
		}
	}

	globalLogConfig = *c
	logger = newLogger(c)
	return nil
}

// CloseLogger closes the log file if one has been opened
func CloseLogger() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func subLoggersWantFile(s []SubLoggerConfig) bool {
	for x := range s {
		if strings.Contains(strings.ToLower(s[x].Output), "file") {
			return true
		}
	}
	return false
}

func configureSubLogger(s *SubLoggerConfig) error {
	sl, found := subLoggers[strings.ToUpper(s.Name)]
	if !found {
		return fmt.Errorf("%w: %v", errSubLoggerNotFound, s.Name)
	}
	if s.Output != "" {
		output, err := getWriters(s)
		if err != nil {
			return err
		}
		sl.output = output
	}
	if s.Level != "" {
		sl.levels = splitLevel(s.Level)
	}
	return nil
}

func splitLevel(level string) (l Levels) {
	enabledLevels := strings.Split(level, "|")
	for x := range enabledLevels {
		switch strings.ToUpper(strings.TrimSpace(enabledLevels[x])) {
		case "DEBUG":
			l.Debug = true
		case "INFO":
			l.Info = true
		case "WARN":
			l.Warn = true
		case "ERROR":
			l.Error = true
		}
	}
	return
}

func registerNewSubLogger(subLogger string) *SubLogger {
	temp := &SubLogger{
		name:   strings.ToUpper(subLogger),
		output: os.Stdout,
		levels: splitLevel(globalLogConfig.Level),
	}
	subLoggers[temp.name] = temp
	return temp
}

// register all loggers at package init()
func init() {
	logger = newLogger(&globalLogConfig)

	Global = registerNewSubLogger("LOG")
	ConfigMgr = registerNewSubLogger("CONFIG")
	DatabaseMgr = registerNewSubLogger("DATABASE")
	APIServerMgr = registerNewSubLogger("API")
	RequestSys = registerNewSubLogger("REQUESTER")
	MWSSys = registerNewSubLogger("MWS")
	StorageFeeSys = registerNewSubLogger("STORAGEFEE")
}
