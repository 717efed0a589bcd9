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

package model

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/uptrace/bun"
)

func TestOrderStatusEnum(t *testing.T) {
	if OrderShipped.Name() != "shipped" || OrderShipped.Number() != 2 {
		t.Fatalf("shipped = %q/%d", OrderShipped.Name(), OrderShipped.Number())
	}
	bad := OrderStatus(7)
	if bad.IsValid() || bad.Number() != -1 || bad.Name() != "unknown" {
		t.Fatalf("invalid status reported as %v", bad)
	}
	names := OrderStatusNames()
	if len(names) != 3 || names[0] != "pending" {
		t.Fatalf("names = %v", names)
	}
}

func TestOrderStatusUnmarshalJSON(t *testing.T) {
	cases := []struct {
		in      string
		want    OrderStatus
		wantErr bool
	}{
		{`0`, OrderPending, false},
		{`"1"`, OrderProcessing, false},
		{`" 2 "`, OrderShipped, false},
		{`"Shipped"`, OrderShipped, false},
		{`9`, OrderStatus(9), false},
		{`"bogus"`, 0, true},
		{`true`, 0, true},
	}
	for _, tc := range cases {
		var o struct {
			Status OrderStatus `json:"status"`
		}
		err := json.Unmarshal([]byte(`{"status":`+tc.in+`}`), &o)
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: err = %v", tc.in, err)
		}
		if !tc.wantErr && o.Status != tc.want {
			t.Fatalf("%s: status = %d, want %d", tc.in, o.Status, tc.want)
		}
	}
}

func TestMergeSaleCopiesExactFields(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	dst := &Sale{ID: 4, ProductID: 1, QuantitySold: 1, Thumbnail: "a.png"}
	src := &Sale{ID: 99, ProductID: 2, QuantitySold: 7, SaleDate: day, Thumbnail: "b.png"}
	MergeSale(dst, src)
	if dst.ID != 4 {
		t.Fatalf("id changed to %d", dst.ID)
	}
	if dst.ProductID != 2 || dst.QuantitySold != 7 || !dst.SaleDate.Equal(day) || dst.Thumbnail != "b.png" {
		t.Fatalf("merged = %+v", dst)
	}
}

func TestMergeUserKeepsPasswordWhenEmpty(t *testing.T) {
	dst := &User{ID: 1, Username: "alice", Password: "hash"}
	MergeUser(dst, &User{Username: "mallory", Email: "a@b.c"})
	if dst.Username != "alice" || dst.Password != "hash" || dst.Email != "a@b.c" {
		t.Fatalf("merged = %+v", dst)
	}
}

func TestMergeTokenAndOrderDetail(t *testing.T) {
	now := time.Now()
	tok := &Token{ID: 1, Value: "jti", UserID: 1}
	MergeToken(tok, &Token{Value: "other", UserID: 2, CreateAt: now})
	if tok.Value != "jti" || tok.UserID != 2 || !tok.CreateAt.Equal(now) {
		t.Fatalf("token = %+v", tok)
	}

	d := &OrderDetail{ID: 3, OrderID: 1, ProductID: 1}
	MergeOrderDetail(d, &OrderDetail{OrderID: 2, ProductID: 5, Price: 2.5, Num: 4, TotalMoney: 10})
	if d.ID != 3 || d.OrderID != 2 || d.ProductID != 5 || d.Num != 4 || d.TotalMoney != 10 {
		t.Fatalf("detail = %+v", d)
	}
}

func TestFillTotal(t *testing.T) {
	d := &OrderDetail{Price: 2.5, Num: 4}
	d.FillTotal()
	if d.TotalMoney != 10 {
		t.Fatalf("total = %v", d.TotalMoney)
	}
	d = &OrderDetail{Price: 2.5, Num: 4, TotalMoney: 9}
	d.FillTotal()
	if d.TotalMoney != 9 {
		t.Fatalf("explicit total overwritten: %v", d.TotalMoney)
	}
}

func TestBeforeAppendModelHooks(t *testing.T) {
	ctx := context.Background()

	c := &Category{Name: "Smart  Phones"}
	if err := c.BeforeAppendModel(ctx, (*bun.InsertQuery)(nil)); err != nil {
		t.Fatal(err)
	}
	if c.Slug != "smart-phones" || c.CreatedAt.IsZero() {
		t.Fatalf("category = %+v", c)
	}

	fixed := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &Sale{SaleDate: fixed}
	_ = s.BeforeAppendModel(ctx, (*bun.InsertQuery)(nil))
	if !s.SaleDate.Equal(fixed) {
		t.Fatalf("explicit sale date overwritten")
	}
	s = &Sale{}
	_ = s.BeforeAppendModel(ctx, (*bun.InsertQuery)(nil))
	if s.SaleDate.IsZero() {
		t.Fatalf("sale date not defaulted")
	}

	u := &User{CreatedAt: fixed}
	_ = u.BeforeAppendModel(ctx, (*bun.UpdateQuery)(nil))
	if !u.CreatedAt.Equal(fixed) || u.UpdatedAt.IsZero() {
		t.Fatalf("user = %+v", u)
	}
}
