package log

// CustomLogHook is a function type for external log handling. It should return
// true if the internal logging system should be bypassed, or false if the
// line should still be written to the configured outputs.
type CustomLogHook func(header, subLoggerName string, a ...any) (bypassLibraryLogSystem bool)

var customLogHook CustomLogHook

// SetCustomLogHook sets a custom log hook function. Passing nil restores the
// default behaviour.
func SetCustomLogHook(h CustomLogHook) {
	mu.Lock()
	customLogHook = h
	mu.Unlock()
}
