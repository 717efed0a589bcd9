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
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

func TestIsSqlErrorDriverTypes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want SQLError
	}{
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, DuplicateKeyErr},
		{"mysql fk", fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1452}), ForeignKeyViolationErr},
		{"mysql other", &mysql.MySQLError{Number: 9999}, UnknownErr},
		{"pq unique", &pq.Error{Code: "23505"}, DuplicateKeyErr},
		{"pq not null", fmt.Errorf("wrap: %w", &pq.Error{Code: "23502"}), NotNullViolationErr},
		{"pq undefined table", &pq.Error{Code: "42P01"}, NoTableErr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			is, got := IsSqlError(tc.err)
			if !is || got != tc.want {
				t.Fatalf("IsSqlError = (%v, %v), want (true, %v)", is, got, tc.want)
			}
		})
	}
}

func TestIsSqlErrorSQLiteMessages(t *testing.T) {
	cases := map[string]SQLError{
		"UNIQUE constraint failed: users.username":   DuplicateKeyErr,
		"NOT NULL constraint failed: categories.name": NotNullViolationErr,
		"FOREIGN KEY constraint failed":               ForeignKeyViolationErr,
		"no such table: sales":                        NoTableErr,
		"table users already exists":                  ExistTableErr,
	}
	for msg, want := range cases {
		is, got := IsSqlError(errors.New(msg))
		if !is || got != want {
			t.Errorf("%q: got (%v, %v), want %v", msg, is, got, want)
		}
	}
	if is, _ := IsSqlError(errors.New("connection refused")); is {
		t.Fatalf("plain error classified as sql error")
	}
	if is, _ := IsSqlError(nil); is {
		t.Fatalf("nil classified as sql error")
	}
}

func TestSQLErrorString(t *testing.T) {
	if DuplicateKeyErr.String() != "duplicate_key" {
		t.Fatalf("got %q", DuplicateKeyErr.String())
	}
	if SQLError(99).String() != "unknown" {
		t.Fatalf("out of range should be unknown")
	}
}
