package log

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Info takes a pointer subLogger struct and string sends to stage
func Info(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.logger.InfoHeader, data)
}

// Infof takes a pointer subLogger struct, string and interface formats sends to stage
func Infof(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.logger.InfoHeader, fmt.Sprintf(data, v...))
}

// Debug takes a pointer subLogger struct and string sends to stage
func Debug(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.logger.DebugHeader, data)
}

// Debugf takes a pointer subLogger struct, string and interface formats sends to stage
func Debugf(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.logger.DebugHeader, fmt.Sprintf(data, v...))
}

// Warn takes a pointer subLogger struct & string and sends to stage
func Warn(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.logger.WarnHeader, data)
}

// Warnf takes a pointer subLogger struct, string and interface formats sends to stage
func Warnf(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.logger.WarnHeader, fmt.Sprintf(data, v...))
}

// Error takes a pointer subLogger struct & interface formats and sends to stage
func Error(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.logger.ErrorHeader, data)
}

// Errorf takes a pointer subLogger struct, string and interface formats and sends to stage
func Errorf(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.logger.ErrorHeader, fmt.Sprintf(data, v...))
}

func displayError(err error) {
	if err != nil {
		log.Printf("Logger write error: %v\n", err)
	}
}

func (sl *SubLogger) getFields() *logFields {
	if sl == nil || sl.output == nil || !globalLogConfig.Enabled {
		return nil
	}
	return &logFields{
		info:   sl.levels.Info,
		warn:   sl.levels.Warn,
		debug:  sl.levels.Debug,
		error:  sl.levels.Error,
		name:   sl.name,
		output: sl.output,
		logger: logger,
	}
}

// enabled checks if the log level is enabled
func (l *logFields) enabled(header string) bool {
	switch header {
	case l.logger.InfoHeader:
		return l.info
	case l.logger.WarnHeader:
		return l.warn
	case l.logger.ErrorHeader:
		return l.error
	case l.logger.DebugHeader:
		return l.debug
	}
	return false
}

// stage formats and writes a log event
func (l *logFields) stage(header, data string) {
	if l == nil || !l.enabled(header) {
		return
	}
	if customLogHook != nil && customLogHook(header, l.name, data) {
		return
	}

	var b strings.Builder
	b.WriteString(header)
	if l.logger.TimestampFormat != "" {
		b.WriteString(time.Now().Format(l.logger.TimestampFormat))
	}
	if l.logger.ShowLogSystemName {
		b.WriteString(l.logger.Spacer)
		b.WriteString(l.name)
	}
	b.WriteString(l.logger.Spacer)
	b.WriteString(data)
	if !strings.HasSuffix(data, "\n") {
		b.WriteByte('\n')
	}
	_, err := l.output.Write([]byte(b.String()))
	displayError(err)
}
