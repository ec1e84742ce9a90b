// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dininghall

import "go.uber.org/zap"

type NoOpLogger struct{}

func (NoOpLogger) Fatal(string, ...zap.Field) {
}

func (NoOpLogger) Error(string, ...zap.Field) {
}

func (NoOpLogger) Warn(string, ...zap.Field) {
}

func (NoOpLogger) Info(string, ...zap.Field) {
}

func (NoOpLogger) Trace(string, ...zap.Field) {
}

func (NoOpLogger) Debug(string, ...zap.Field) {
}

func (NoOpLogger) Verbo(string, ...zap.Field) {
}
