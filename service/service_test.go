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

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hongochai/shopbackend/auth"
	"github.com/hongochai/shopbackend/database"
	"github.com/hongochai/shopbackend/model"
	"github.com/hongochai/shopbackend/repository"
)

func newTestServices(t *testing.T) *Services {
	t.Helper()
	cfg := database.DefaultConfig()
	cfg.ConnectionConfig.Type = "sqlite"
	cfg.ConnectionConfig.DBName = ":memory:"
	cfg.ConnectionConfig.HealthCheckInterval = 0
	db, err := database.InitDB(context.Background(), cfg)
	if err != nil {
		t.Fatalf("init database: %v", err)
	}
	t.Cleanup(func() { _ = database.CloseDB() })
	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return New(db, issuer)
}

func TestCrudLifecycle(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	created, err := svc.Categories.Create(ctx, &model.Category{Name: "Audio"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.Categories.GetByID(ctx, created.ID)
	if err != nil || got.Name != "Audio" || got.ID != created.ID {
		t.Fatalf("get = %+v, %v", got, err)
	}

	updated, err := svc.Categories.Update(ctx, &model.Category{ID: created.ID, Name: "Hi-Fi Audio", Description: "d"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID || updated.Slug != "hi-fi-audio" || updated.Description != "d" {
		t.Fatalf("updated = %+v", updated)
	}

	all, err := svc.Categories.GetAll(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("all = %v, %v", all, err)
	}
	if err := svc.Categories.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestMissingIDsAreNotFound(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	if _, err := svc.Sales.GetByID(ctx, 404); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("get: %v", err)
	}
	if _, err := svc.Sales.Update(ctx, &model.Sale{ID: 404}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("update: %v", err)
	}
	if err := svc.Sales.Delete(ctx, 404); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("delete: %v", err)
	}
}

func TestSaleUpdateAndRecentSales(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	p1, _ := svc.Products.Create(ctx, &model.Product{Title: "one"})
	p2, _ := svc.Products.Create(ctx, &model.Product{Title: "two"})

	day := func(d int) time.Time { return time.Date(2024, 6, d, 9, 0, 0, 0, time.UTC) }
	old, _ := svc.Sales.Create(ctx, &model.Sale{ProductID: p1.ID, QuantitySold: 1, SaleDate: day(1), Thumbnail: "a"})
	newer, _ := svc.Sales.Create(ctx, &model.Sale{ProductID: p1.ID, QuantitySold: 2, SaleDate: day(5)})

	updated, err := svc.Sales.Update(ctx, &model.Sale{ID: old.ID, ProductID: p2.ID, QuantitySold: 9, SaleDate: day(9), Thumbnail: "b"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != old.ID || updated.ProductID != p2.ID || updated.QuantitySold != 9 || !updated.SaleDate.Equal(day(9)) || updated.Thumbnail != "b" {
		t.Fatalf("updated = %+v", updated)
	}

	recent, err := svc.Sales.GetRecentSales(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].ID != old.ID || recent[1].ID != newer.ID {
		t.Fatalf("recent = %v", recent)
	}
}

func TestImportSalesUpsertsByID(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	p, _ := svc.Products.Create(ctx, &model.Product{Title: "one"})
	day := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	existing, err := svc.Sales.Create(ctx, &model.Sale{ProductID: p.ID, QuantitySold: 1, SaleDate: day})
	if err != nil {
		t.Fatal(err)
	}

	imported, err := svc.Sales.ImportSales(ctx, []*model.Sale{
		{ID: existing.ID, ProductID: p.ID, QuantitySold: 7, SaleDate: day, Thumbnail: "x"},
		{ID: 500, ProductID: p.ID, QuantitySold: 2, SaleDate: day},
		{ProductID: p.ID, QuantitySold: 3, SaleDate: day},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported[2].ID == 0 {
		t.Fatalf("new sale has no id")
	}

	got, err := svc.Sales.GetByID(ctx, existing.ID)
	if err != nil || got.QuantitySold != 7 || got.Thumbnail != "x" {
		t.Fatalf("existing = %+v, %v", got, err)
	}
	if got, err := svc.Sales.GetByID(ctx, 500); err != nil || got.QuantitySold != 2 {
		t.Fatalf("sale 500 = %+v, %v", got, err)
	}
	all, _ := svc.Sales.GetAll(ctx)
	if len(all) != 3 {
		t.Fatalf("sales = %d, want 3", len(all))
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	req := &model.UserRequest{Username: "alice", Password: "s3cret!", Email: "alice@example.com"}

	u, err := svc.Users.RegisterUser(ctx, req)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Password == "s3cret!" || !auth.IsHashed(u.Password) {
		t.Fatalf("password stored in clear")
	}
	if _, err := svc.Users.RegisterUser(ctx, req); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("duplicate register: %v", err)
	}

	cases := []struct {
		user, pass string
		want       bool
	}{
		{"alice", "s3cret!", true},
		{"alice", "wrong", false},
		{"nobody", "s3cret!", false},
	}
	for _, tc := range cases {
		ok, err := svc.Users.LoginUser(ctx, &model.LoginRequest{Username: tc.user, Password: tc.pass})
		if err != nil || ok != tc.want {
			t.Errorf("login(%s, %s) = %v, %v", tc.user, tc.pass, ok, err)
		}
	}

	if _, err := svc.Users.Update(ctx, &model.User{ID: u.ID, Password: "n3w-pass", FullName: "Alice A"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if ok, _ := svc.Users.LoginUser(ctx, &model.LoginRequest{Username: "alice", Password: "n3w-pass"}); !ok {
		t.Fatalf("new password rejected")
	}
	found, err := svc.Users.FindByUsername(ctx, "alice")
	if err != nil || found.FullName != "Alice A" {
		t.Fatalf("found = %+v, %v", found, err)
	}
}

func TestPasswordChangeRevokesTokens(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	alice, _ := svc.Users.RegisterUser(ctx, &model.UserRequest{Username: "alice", Password: "password"})
	bob, _ := svc.Users.RegisterUser(ctx, &model.UserRequest{Username: "bob", Password: "password"})
	aliceRaw, _, err := svc.Tokens.IssueToken(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	bobRaw, _, err := svc.Tokens.IssueToken(ctx, bob)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Users.Update(ctx, &model.User{ID: alice.ID, FullName: "Alice"}); err != nil {
		t.Fatalf("profile update: %v", err)
	}
	if _, err := svc.Tokens.Validate(ctx, aliceRaw); err != nil {
		t.Fatalf("profile update must keep tokens: %v", err)
	}

	if _, err := svc.Users.Update(ctx, &model.User{ID: alice.ID, Password: "changed-pass"}); err != nil {
		t.Fatalf("password update: %v", err)
	}
	if _, err := svc.Tokens.Validate(ctx, aliceRaw); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("old token after password change: %v", err)
	}
	if _, err := svc.Tokens.Validate(ctx, bobRaw); err != nil {
		t.Fatalf("other user's token: %v", err)
	}
}

func TestTokensValidateUntilDeleted(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	u, _ := svc.Users.RegisterUser(ctx, &model.UserRequest{Username: "bob", Password: "password"})

	raw, tok, err := svc.Tokens.IssueToken(ctx, u)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got, err := svc.Tokens.Validate(ctx, raw)
	if err != nil || got.ID != tok.ID || got.UserID != u.ID {
		t.Fatalf("validate = %+v, %v", got, err)
	}
	if err := svc.Tokens.Delete(ctx, tok.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Tokens.Validate(ctx, raw); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("revoked token: %v", err)
	}
	if _, err := svc.Tokens.Validate(ctx, "garbage"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("garbage token: %v", err)
	}

	plain, err := svc.Tokens.Create(ctx, &model.Token{UserID: u.ID})
	if err != nil || plain.Value == "" {
		t.Fatalf("create token = %+v, %v", plain, err)
	}
}

func TestCreateOrderWithDetails(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	p, _ := svc.Products.Create(ctx, &model.Product{Title: "mug", Price: 4})

	order, err := svc.Orders.CreateOrderWithDetails(ctx,
		&model.Orders{Fullname: "Carol", Address: "1 Main St"},
		[]*model.OrderDetail{
			{ProductID: p.ID, Price: 4, Num: 2},
			{ProductID: p.ID, Price: 1.5, Num: 2},
		},
	)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if order.ID == 0 || order.TotalMoney != 11 || order.Status != model.OrderPending {
		t.Fatalf("order = %+v", order)
	}
	lines, err := svc.OrderDetails.GetByOrder(ctx, order.ID)
	if err != nil || len(lines) != 2 || lines[0].TotalMoney != 8 || lines[1].OrderID != order.ID {
		t.Fatalf("lines = %v, %v", lines, err)
	}
	loaded, err := svc.Orders.GetWithDetails(ctx, order.ID)
	if err != nil || len(loaded.Details) != 2 {
		t.Fatalf("loaded = %+v, %v", loaded, err)
	}

	if _, err := svc.Orders.CreateOrderWithDetails(ctx, &model.Orders{}, nil); !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("empty order: %v", err)
	}
}

func TestCreateOrderWithDetailsIgnoresClientIDs(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	p, _ := svc.Products.Create(ctx, &model.Product{Title: "mug", Price: 4})

	seen := map[int64]bool{}
	for range 2 {
		order, err := svc.Orders.CreateOrderWithDetails(ctx,
			&model.Orders{ID: 42, Fullname: "Dan"},
			[]*model.OrderDetail{{ID: 77, ProductID: p.ID, Price: 4, Num: 1}},
		)
		if err != nil {
			t.Fatalf("checkout with preset ids: %v", err)
		}
		d := order.Details[0]
		if seen[d.ID] || d.OrderID != order.ID {
			t.Fatalf("detail %+v reused or detached from order %d", d, order.ID)
		}
		seen[d.ID] = true
	}
	all, err := svc.OrderDetails.GetAll(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("details = %v, %v", all, err)
	}
}
