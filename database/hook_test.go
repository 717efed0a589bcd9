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
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/uptrace/bun"
)

func TestQueryHookQuietModePrintsFailuresOnly(t *testing.T) {
	t.Setenv(QueryLogEnv, "1")
	var buf bytes.Buffer
	h := NewQueryHook(&buf)
	ctx := context.Background()

	h.AfterQuery(ctx, &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now()})
	h.AfterQuery(ctx, &bun.QueryEvent{Query: "SELECT 2", StartTime: time.Now(), Err: sql.ErrNoRows})
	if buf.Len() != 0 {
		t.Fatalf("unexpected output %q", buf.String())
	}

	h.AfterQuery(ctx, &bun.QueryEvent{Query: "INSERT INTO widgets", StartTime: time.Now(), Err: errors.New("boom")})
	out := buf.String()
	if !strings.Contains(out, "INSERT INTO widgets") || !strings.Contains(out, "boom") {
		t.Fatalf("output = %q", out)
	}

	buf.Reset()
	MuteQueryHooks(true)
	h.AfterQuery(ctx, &bun.QueryEvent{Query: "DELETE FROM widgets", StartTime: time.Now(), Err: errors.New("boom")})
	MuteQueryHooks(false)
	if buf.Len() != 0 {
		t.Fatalf("muted hook wrote %q", buf.String())
	}
}

func TestSlowQueryHook(t *testing.T) {
	rec := &recordingLogger{}
	h := NewSlowQueryHook(time.Second, rec)
	ctx := context.Background()

	h.AfterQuery(ctx, &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now()})
	h.AfterQuery(ctx, &bun.QueryEvent{Query: "SELECT 2", StartTime: time.Now().Add(-time.Minute), Err: errors.New("boom")})
	h.AfterQuery(ctx, &bun.QueryEvent{Query: "SELECT 3", StartTime: time.Now().Add(-time.Minute)})
	if len(rec.entries) != 1 || rec.entries[0] != "warn slow query" {
		t.Fatalf("entries = %v", rec.entries)
	}
}
