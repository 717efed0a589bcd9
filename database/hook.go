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
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

var hooksMuted atomic.Bool

// MuteQueryHooks silences the query hooks, used while migrations run.
func MuteQueryHooks(mute bool) {
	hooksMuted.Store(mute)
}

var (
	opColors = map[string]*color.Color{
		"SELECT": color.New(color.FgGreen),
		"INSERT": color.New(color.FgBlue),
		"UPDATE": color.New(color.FgYellow),
		"DELETE": color.New(color.FgMagenta),
	}
	ddlColor = color.New(color.FgRed)
	tagColor = color.New(color.FgCyan)
	errColor = color.New(color.BgRed, color.FgHiWhite)
)

// QueryLogEnv overrides QueryHook at runtime: "0" or empty disables it, "1"
// prints failed queries only, "2" prints every query.
const QueryLogEnv = "SHOP_QUERY_LOG"

// QueryHook prints queries with their duration, coloured by operation.
type QueryHook struct {
	w       io.Writer
	verbose bool
}

var _ bun.QueryHook = (*QueryHook)(nil)

// NewQueryHook returns a verbose hook writing to w, or stdout when w is nil.
func NewQueryHook(w io.Writer) *QueryHook {
	if w == nil {
		w = color.Output
	}
	return &QueryHook{w: w, verbose: true}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if hooksMuted.Load() {
		return
	}
	verbose := h.verbose
	if env, ok := os.LookupEnv(QueryLogEnv); ok {
		if env == "" || env == "0" {
			return
		}
		verbose = env == "2"
	}
	if !verbose && expectedErr(event.Err) {
		return
	}

	opColor, ok := opColors[event.Operation()]
	if !ok {
		opColor = ddlColor
	}
	line := fmt.Sprintf("%s %s %12s  %s",
		time.Now().Format("2006-01-02 15:04:05.000"),
		tagColor.Sprint("[BUN]"),
		time.Since(event.StartTime).Round(time.Microsecond),
		opColor.Sprint(event.Query),
	)
	if event.Err != nil {
		line += "\t" + errColor.Sprintf(" %T: %v ", event.Err, event.Err)
	}
	_, _ = fmt.Fprintln(h.w, line)
}

// expectedErr reports outcomes not worth printing in quiet mode.
func expectedErr(err error) bool {
	return err == nil || errors.Is(err, sql.ErrNoRows) || errors.Is(err, sql.ErrTxDone)
}

// SlowQueryHook warns about successful queries slower than threshold.
type SlowQueryHook struct {
	threshold time.Duration
	logger    Logger
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

func NewSlowQueryHook(threshold time.Duration, logger Logger) *SlowQueryHook {
	return &SlowQueryHook{threshold: threshold, logger: logger}
}

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if hooksMuted.Load() || event.Err != nil || h.logger == nil {
		return
	}
	if d := time.Since(event.StartTime); d > h.threshold {
		h.logger.Warn("slow query",
			"duration", d.String(),
			"threshold", h.threshold.String(),
			"operation", event.Operation(),
			"query", event.Query,
		)
	}
}
