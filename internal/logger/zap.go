package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps zap's SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
}

// defaultZapLevel defines the fallback log level when an unknown level string is provided.
const defaultZapLevel = zapcore.DebugLevel

const (
	defaultMaxSizeMB  = 10
	defaultMaxBackups = 3
)

// toZapLevel converts a textual level to zapcore.Level using known level constants.
func toZapLevel(levelStr string) zapcore.Level {
	switch levelStr {
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return defaultZapLevel
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// newConsoleCore builds a zapcore.Core with a console encoder targeting stdout.
func newConsoleCore(level zapcore.Level) zapcore.Core {
	encoder := zapcore.NewConsoleEncoder(encoderConfig())
	ws := zapcore.Lock(os.Stdout) // thread-safe writer
	return zapcore.NewCore(encoder, zapcore.AddSync(ws), zap.NewAtomicLevelAt(level))
}

// newFileCore writes JSON lines to a size-rotated file.
func newFileCore(level zapcore.Level, opts Options) zapcore.Core {
	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = defaultMaxSizeMB
	}
	backups := opts.MaxBackups
	if backups <= 0 {
		backups = defaultMaxBackups
	}
	sink := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxSize,
		MaxBackups: backups,
		Compress:   true,
	}
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(sink), zap.NewAtomicLevelAt(level))
}

// newZapLogger constructs a sugared zap logger from options.
func newZapLogger(opts Options) *Logger {
	level := toZapLevel(opts.Level)
	core := newConsoleCore(level)
	if opts.File != "" {
		core = zapcore.NewTee(core, newFileCore(level, opts))
	}
	return &Logger{
		SugaredLogger: zap.New(core).Sugar(),
	}
}
