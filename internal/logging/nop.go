package logging

import "github.com/vibehut/huddle/types"

// NopLogger discards all log output.
//
// This is the default used when no logger is injected, eliminating nil
// checks throughout the codebase.
type NopLogger struct{}

// Compile-time assertion that NopLogger implements Logger.
var _ types.Logger = (*NopLogger)(nil)

// NewNop creates a new no-op logger.
//
// Returns:
//   - *NopLogger: A logger that discards everything
func NewNop() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (l *NopLogger) Debug(string, ...any) {}

// Info discards the message.
func (l *NopLogger) Info(string, ...any) {}

// Warn discards the message.
func (l *NopLogger) Warn(string, ...any) {}

// Error discards the message.
func (l *NopLogger) Error(string, ...any) {}

// Fatal discards the message without exiting; a silent logger must not
// take the process down.
func (l *NopLogger) Fatal(string, ...any) {}
