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
	"github.com/hongochai/shopbackend/auth"
	"github.com/uptrace/bun"
)

// Services groups one service per entity over a shared database.
type Services struct {
	Users        *UserService
	Categories   *CategoryService
	Products     *ProductService
	Orders       *OrdersService
	OrderDetails *OrderDetailService
	Sales        *SaleService
	Tokens       *TokenService
}

func New(db *bun.DB, issuer *auth.Issuer) *Services {
	return &Services{
		Users:        NewUserService(db),
		Categories:   NewCategoryService(db),
		Products:     NewProductService(db),
		Orders:       NewOrdersService(db),
		OrderDetails: NewOrderDetailService(db),
		Sales:        NewSaleService(db),
		Tokens:       NewTokenService(db, issuer),
	}
}
