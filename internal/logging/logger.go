// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ LoggerInterface = (*Logger)(nil)

type Logger struct {
	*zap.SugaredLogger

	security *SecurityLogger
}

func (l *Logger) Security() SecurityLoggerInterface {
	return l.security
}

// NewLogger creates a JSON logger writing to stdout at the given level.
// Unknown levels fall back to error.
func NewLogger(l string) *Logger {
	var lvl zapcore.Level

	switch strings.ToLower(l) {
	case "debug":
		lvl = zap.DebugLevel
	case "info":
		lvl = zap.InfoLevel
	case "warn", "warning":
		lvl = zap.WarnLevel
	default:
		lvl = zap.ErrorLevel
	}

	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(lvl)
	c.EncoderConfig.TimeKey = "@timestamp"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := c.Build()
	if err != nil {
		panic(err)
	}

	return NewLoggerFromZap(z)
}

// NewLoggerFromZap wraps an existing zap logger, mostly useful for tests
// that need to observe log output.
func NewLoggerFromZap(z *zap.Logger) *Logger {
	return &Logger{
		SugaredLogger: z.Sugar(),
		security:      &SecurityLogger{l: z.Named("security")},
	}
}
