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
	"context"
	"errors"
	"sync"
	"testing"
)

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (r *recordingLogger) add(level, msg string) {
	r.mu.Lock()
	r.entries = append(r.entries, level+" "+msg)
	r.mu.Unlock()
}

func (r *recordingLogger) Debug(msg string, _ ...any) { r.add("debug", msg) }
func (r *recordingLogger) Info(msg string, _ ...any)  { r.add("info", msg) }
func (r *recordingLogger) Warn(msg string, _ ...any)  { r.add("warn", msg) }
func (r *recordingLogger) Error(msg string, _ ...any) { r.add("error", msg) }

func TestSetLoggerIsUsedByNewManagers(t *testing.T) {
	rec := &recordingLogger{}
	SetLogger(rec)
	t.Cleanup(func() { SetLogger(nil) })

	m := NewSQLInitManager(nil, "test")
	m.SetSQLRootPath(t.TempDir())
	results, err := m.ExecuteInitialization(context.Background())
	if err != nil || results != nil {
		t.Fatalf("results = %v, err = %v", results, err)
	}
	if len(rec.entries) != 1 || rec.entries[0] != "debug no seed files" {
		t.Fatalf("entries = %v", rec.entries)
	}

	SetLogger(nil)
	if _, ok := GetLogger().(logrusLogger); !ok {
		t.Fatalf("default logger = %T", GetLogger())
	}
}

func TestToFields(t *testing.T) {
	f := toFields([]any{"table", "users", "error", errors.New("boom"), 42})
	if f["table"] != "users" || f["error"] != "boom" || f["extra"] != "42" || len(f) != 3 {
		t.Fatalf("fields = %v", f)
	}
}
