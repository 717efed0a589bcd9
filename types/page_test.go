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

package types

import (
	"math"
	"testing"
)

func TestPageRequestDefaults(t *testing.T) {
	p := NewPageRequest(0, 0)
	if p.GetPage() != 1 || p.GetPageSize() != DefaultPageSize || p.GetOffset() != 0 {
		t.Fatalf("unexpected defaults: page=%d size=%d offset=%d", p.GetPage(), p.GetPageSize(), p.GetOffset())
	}
	if got := p.GetOrders(); len(got) != 1 || got[0] != "id ASC" {
		t.Fatalf("default order = %v", got)
	}

	p = NewPageRequest(3, 500).OrderBy("sale_date DESC")
	if p.GetPageSize() != MaxPageSize {
		t.Fatalf("size not capped: %d", p.GetPageSize())
	}
	if p.GetOffset() != 2*MaxPageSize {
		t.Fatalf("offset = %d", p.GetOffset())
	}
	if p.GetOrders()[0] != "sale_date DESC" {
		t.Fatalf("orders = %v", p.GetOrders())
	}
}

func TestPageRequestOffsetDoesNotOverflow(t *testing.T) {
	for _, size := range []int{1, DefaultPageSize, MaxPageSize, math.MaxInt} {
		p := NewPageRequest(math.MaxInt, size)
		if p.GetPage() != MaxPage || p.GetOffset() < 0 {
			t.Fatalf("size %d: page=%d offset=%d", size, p.GetPage(), p.GetOffset())
		}
	}
}

func TestPaginationTotalPages(t *testing.T) {
	p := NewPagination[int](1, 10)
	if p.TotalPages() != 0 {
		t.Fatalf("empty pagination should have 0 pages")
	}
	p.Total = 21
	if p.TotalPages() != 3 {
		t.Fatalf("TotalPages = %d, want 3", p.TotalPages())
	}
}

func TestJsonObjectRoundTripFromDriverValues(t *testing.T) {
	var j JsonObject
	if err := j.Scan(`{"color":"red"}`); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if j["color"] != "red" {
		t.Fatalf("unexpected value: %v", j)
	}
	if err := j.Scan([]byte(`{"size":2}`)); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if j["size"] != float64(2) {
		t.Fatalf("unexpected value: %v", j)
	}
	if err := j.Scan(nil); err != nil || j != nil {
		t.Fatalf("scan nil: %v %v", err, j)
	}
	if err := j.Scan(12); err == nil {
		t.Fatalf("expected error for int")
	}
	v, err := JsonObject{"a": 1}.Value()
	if err != nil || v != `{"a":1}` {
		t.Fatalf("value = %v, %v", v, err)
	}
}
