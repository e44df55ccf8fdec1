package logger

import "go.uber.org/zap"

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Options controls where log lines go.
type Options struct {
	Level string
	// File enables a rotating file sink next to stdout when non-empty.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// New builds a logger for the given options. The process builds exactly one
// and passes it down explicitly.
func New(opts Options) *Logger {
	return newZapLogger(opts)
}

// Nop returns a logger that discards everything; used by tests.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}
