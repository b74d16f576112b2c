// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package log wraps go.uber.org/zap behind the printf-style severity
// methods dot/sync.Logger expects (Debugf/Infof/Warnf/Errorf/Criticalf).
package log

import (
	"go.uber.org/zap"
)

// Logger implements dot/sync.Logger on top of a zap.SugaredLogger.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New builds a production-configured Logger (JSON encoding, info level and
// above by default).
func New() (*Logger, error) {
	zl, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &Logger{sugar: zl.Sugar()}, nil
}

// NewDevelopment builds a human-readable, debug-level Logger, for
// interactive use from cmd/gsyncd.
func NewDevelopment() (*Logger, error) {
	zl, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &Logger{sugar: zl.Sugar()}, nil
}

// Sync flushes any buffered log entries; callers should defer it once at
// startup.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

func (l *Logger) Debugf(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }

// Criticalf logs at error level tagged "critical": dot/sync.Logger has no
// dedicated critical level in zap's hierarchy, so the severity is carried
// as a structured field instead, immediately before the driver panics on a
// fatal chain-store read.
func (l *Logger) Criticalf(format string, args ...any) {
	l.sugar.With("severity", "critical").Errorf(format, args...)
}
