/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"fmt"
	"sync"

	"github.com/hongochai/shopbackend/utils"
	"github.com/sirupsen/logrus"
)

// LoggerName is the name of the logger used by the database package.
const LoggerName = "DATABASE"

// Logger is a key/value logger: fields alternate key, value.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
}

var (
	loggerMu sync.RWMutex
	logger   Logger
)

// SetLogger replaces the package logger. A nil l restores the default.
func SetLogger(l Logger) {
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

// GetLogger returns the package logger, creating the logrus backed one on first use.
func GetLogger() Logger {
	loggerMu.RLock()
	l := logger
	loggerMu.RUnlock()
	if l != nil {
		return l
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		logger = logrusLogger{utils.NewLogger(LoggerName)}
	}
	return logger
}

type logrusLogger struct {
	l *utils.Logger
}

func (g logrusLogger) Debug(msg string, fields ...any) { g.with(fields).Debug(msg) }
func (g logrusLogger) Info(msg string, fields ...any)  { g.with(fields).Info(msg) }
func (g logrusLogger) Warn(msg string, fields ...any)  { g.with(fields).Warn(msg) }
func (g logrusLogger) Error(msg string, fields ...any) { g.with(fields).Error(msg) }

func (g logrusLogger) with(kv []any) *logrus.Entry {
	return g.l.WithFields(toFields(kv))
}

// toFields pairs up alternating key/value arguments. A trailing key without a
// value is kept under "extra".
func toFields(kv []any) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 == len(kv) {
			f["extra"] = key
			break
		}
		switch v := kv[i+1].(type) {
		case error:
			f[key] = v.Error()
		default:
			f[key] = v
		}
	}
	return f
}
