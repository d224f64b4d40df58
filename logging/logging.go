// Package logging contains the zap-backed loggers used throughout motioncore.
package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Logger is the logging interface handed to every planner, follower and runner.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	CDebugf(ctx context.Context, template string, args ...interface{})

	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	CInfof(ctx context.Context, template string, args ...interface{})

	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	CWarnf(ctx context.Context, template string, args ...interface{})

	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	CErrorf(ctx context.Context, template string, args ...interface{})

	// Sublogger returns a child logger named "<parent>.<subname>" sharing the parent's appenders.
	Sublogger(subname string) Logger
	Name() string
	SetLevel(level Level)
	GetLevel() Level
	AddAppender(appender Appender)
	AsZap() *zap.SugaredLogger
	Sync() error
}

// NewLoggerConfig returns the console config AsZap builds from: zap's development encoder with
// colored levels and stacktraces off.
func NewLoggerConfig() zap.Config {
	config := zap.NewDevelopmentConfig()
	config.Development = false
	config.DisableStacktrace = true
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.FunctionKey = zapcore.OmitKey
	return config
}

// NewLogger returns a registered logger that writes Info+ lines to stdout in UTC. Its level and
// the levels of its subloggers can be changed by UpdateLoggerRegistry.
func NewLogger(name string) Logger {
	logger := newImpl(name, INFO, true, NewStdoutAppender())
	registry.register(name, logger)
	return logger
}

// NewDebugLogger returns an unregistered logger that writes Debug+ lines to stdout in UTC.
func NewDebugLogger(name string) Logger {
	return newImpl(name, DEBUG, true, NewStdoutAppender())
}

// NewBlankLogger returns a Debug+ logger with no appenders.
func NewBlankLogger(name string) Logger {
	return newImpl(name, DEBUG, true)
}

// NewTestLogger returns a Debug+ logger that writes to tb in local time.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is NewTestLogger that also records every entry for assertions.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return newImpl("", DEBUG, false, NewTestAppender(tb), core), logs
}
