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

package repository

import (
	"context"
	"strings"
	"time"

	"github.com/hongochai/shopbackend/model"
	"github.com/hongochai/shopbackend/types"
	"github.com/uptrace/bun"
)

// UserRepository adds username lookups to the generic repository.
type UserRepository struct {
	Repository[model.User]
}

func NewUserRepository(db *bun.DB) *UserRepository {
	return &UserRepository{Repository: NewRepository[model.User](db)}
}

// FindByUsername returns ErrNotFound when no user has the username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	user := new(model.User)
	err := r.NewSelect().Model(user).Where("?TableAlias.username = ?", username).Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.NewSelect().Model((*model.User)(nil)).Where("?TableAlias.username = ?", username).Exists(ctx)
}

type CategoryRepository struct {
	Repository[model.Category]
}

func NewCategoryRepository(db *bun.DB) *CategoryRepository {
	return &CategoryRepository{Repository: NewRepository[model.Category](db)}
}

// SearchByName matches name case-insensitively as a substring, ordered by id.
func (r *CategoryRepository) SearchByName(ctx context.Context, name string) ([]*model.Category, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(name)) + "%"
	return r.List(ctx, &types.QueryFilter{Schema: "LOWER(?TableAlias.name) LIKE ?", Args: []interface{}{pattern}})
}

type ProductRepository struct {
	Repository[model.Product]
}

func NewProductRepository(db *bun.DB) *ProductRepository {
	return &ProductRepository{Repository: NewRepository[model.Product](db)}
}

// FindWithCategory loads a product together with its category.
func (r *ProductRepository) FindWithCategory(ctx context.Context, id int64) (*model.Product, error) {
	product := new(model.Product)
	err := r.NewSelect().Model(product).Relation("Category").Where("?TableAlias.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return product, nil
}

func (r *ProductRepository) FindByCategory(ctx context.Context, categoryID int64) ([]*model.Product, error) {
	return r.List(ctx, types.NewQueryFilter("?TableAlias.category_id = ?", categoryID))
}

type OrdersRepository struct {
	Repository[model.Orders]
}

func NewOrdersRepository(db *bun.DB) *OrdersRepository {
	return &OrdersRepository{Repository: NewRepository[model.Orders](db)}
}

// FindWithDetails loads an order and its lines.
func (r *OrdersRepository) FindWithDetails(ctx context.Context, id int64) (*model.Orders, error) {
	order := new(model.Orders)
	err := r.NewSelect().
		Model(order).
		Relation("Details", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.id ASC")
		}).
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

type OrderDetailRepository struct {
	Repository[model.OrderDetail]
}

func NewOrderDetailRepository(db *bun.DB) *OrderDetailRepository {
	return &OrderDetailRepository{Repository: NewRepository[model.OrderDetail](db)}
}

// FindByOrder returns the lines of an order with their products, ordered by id.
func (r *OrderDetailRepository) FindByOrder(ctx context.Context, orderID int64) ([]*model.OrderDetail, error) {
	details := make([]*model.OrderDetail, 0)
	err := r.NewSelect().
		Model(&details).
		Relation("Product").
		Where("?TableAlias.order_id = ?", orderID).
		OrderExpr("?TableAlias.id ASC").
		Scan(ctx)
	return details, err
}

type SaleRepository struct {
	Repository[model.Sale]
}

func NewSaleRepository(db *bun.DB) *SaleRepository {
	return &SaleRepository{Repository: NewRepository[model.Sale](db)}
}

// FindAllOrderBySaleDateDesc returns every sale, newest first. Sales on the
// same date are ordered by descending id.
func (r *SaleRepository) FindAllOrderBySaleDateDesc(ctx context.Context) ([]*model.Sale, error) {
	sales := make([]*model.Sale, 0)
	err := r.NewSelect().
		Model(&sales).
		OrderExpr("?TableAlias.sale_date DESC").
		OrderExpr("?TableAlias.id DESC").
		Scan(ctx)
	return sales, err
}

type TokenRepository struct {
	Repository[model.Token]
}

func NewTokenRepository(db *bun.DB) *TokenRepository {
	return &TokenRepository{Repository: NewRepository[model.Token](db)}
}

// FindByValue returns ErrNotFound when no token row holds value.
func (r *TokenRepository) FindByValue(ctx context.Context, value string) (*model.Token, error) {
	token := new(model.Token)
	err := r.NewSelect().Model(token).Where("?TableAlias.token = ?", value).Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return token, nil
}

// DeleteExpired removes tokens whose expiry has passed and returns how many.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.NewDelete().
		Model((*model.Token)(nil)).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByUser removes every token of userID and returns how many.
func (r *TokenRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.NewDelete().
		Model((*model.Token)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
