// Package logging configures the structured loggers used by squarenet.
//
// Logs go to stderr so that training progress on stdout stays machine-parsable.
package logging

import (
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// EnvLevel names the environment variable holding the default log level.
const EnvLevel = "SQUARENET_LOG_LEVEL"

// NewLoggerConfig returns the default logger config: console encoding with
// ISO8601 timestamps, capital level names and stacktraces disabled.
func NewLoggerConfig() zap.Config {
	return zap.Config{
		Level:    zap.NewAtomicLevelAt(zap.InfoLevel),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
}

// ParseLevel parses debug, info, warn or error (case-insensitive).
// An empty string selects info.
func ParseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return zapcore.InfoLevel, errors.Wrapf(err, "invalid log level %q", s)
	}
	return level, nil
}

// ResolveLevel picks the explicit level when set and falls back to the
// SQUARENET_LOG_LEVEL environment variable.
func ResolveLevel(explicit string) (zapcore.Level, error) {
	if explicit != "" {
		return ParseLevel(explicit)
	}
	return ParseLevel(os.Getenv(EnvLevel))
}

// NewLogger returns a named logger at the given level ("" defers to the environment).
func NewLogger(name, level string) (*zap.SugaredLogger, error) {
	lvl, err := ResolveLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := NewLoggerConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}
	return logger.Named(name).Sugar(), nil
}

// NewTestLogger returns a logger that writes Debug+ logs through the test's log.
func NewTestLogger(tb testing.TB) *zap.SugaredLogger {
	return zaptest.NewLogger(tb).Sugar()
}

// NewObservedTestLogger is like NewTestLogger but also saves logs to an in memory observer.
func NewObservedTestLogger(tb testing.TB) (*zap.SugaredLogger, *observer.ObservedLogs) {
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	testCore := zaptest.NewLogger(tb).Core()
	logger := zap.New(zapcore.NewTee(testCore, observerCore))
	return logger.Sugar(), observedLogs
}
