// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/ava-labs/dininghall"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ dininghall.Logger = (*Logger)(nil)

// Logger adapts a zap logger to dininghall.Logger. Trace and Verbo are written at debug
// level through a logger that skips one extra caller frame.
type Logger struct {
	*zap.Logger
	traceVerboseLogger *zap.Logger
	level              zap.AtomicLevel
}

func EncoderConfig() zapcore.EncoderConfig {
	config := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	config.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(strings.ToUpper(l.String()))
	}
	config.EncodeTime = zapcore.TimeEncoderOfLayout("[01-02|15:04:05.000]")
	config.ConsoleSeparator = " "
	return config
}

// ParseLevel accepts zap level names plus "trace" and "verbo", which map to debug.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "trace", "verbo":
		return zapcore.DebugLevel, nil
	}
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// New builds a console logger writing to w at the given level.
func New(level string, w io.Writer) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	atomicLevel := zap.NewAtomicLevelAt(lvl)
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(EncoderConfig()), zapcore.AddSync(w), atomicLevel)

	return &Logger{
		Logger:             zap.New(core, zap.AddCaller()),
		traceVerboseLogger: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)),
		level:              atomicLevel,
	}, nil
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{
		Logger:             l.Logger.With(fields...),
		traceVerboseLogger: l.traceVerboseLogger.With(fields...),
		level:              l.level,
	}
}

func (l *Logger) SetLevel(level zapcore.Level) {
	l.level.SetLevel(level)
}

func (l *Logger) Trace(msg string, fields ...zap.Field) {
	l.traceVerboseLogger.Log(zapcore.DebugLevel, msg, fields...)
}

func (l *Logger) Verbo(msg string, fields ...zap.Field) {
	l.traceVerboseLogger.Log(zapcore.DebugLevel, msg, fields...)
}
