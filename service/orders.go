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
	"fmt"

	"github.com/hongochai/shopbackend/model"
	"github.com/hongochai/shopbackend/repository"
	"github.com/uptrace/bun"
)

// ErrEmptyOrder is returned when checking out an order without lines.
var ErrEmptyOrder = errors.New("order has no details")

type OrdersService struct {
	*CrudService[model.Orders]
	orders  *repository.OrdersRepository
	details *repository.OrderDetailRepository
}

func NewOrdersService(db *bun.DB) *OrdersService {
	orders := repository.NewOrdersRepository(db)
	return &OrdersService{
		CrudService: NewCrudService[model.Orders](orders, model.MergeOrders, "order"),
		orders:      orders,
		details:     repository.NewOrderDetailRepository(db),
	}
}

// GetWithDetails loads an order and its lines.
func (s *OrdersService) GetWithDetails(ctx context.Context, id int64) (*model.Orders, error) {
	o, err := s.orders.FindWithDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

// CreateOrderWithDetails stores order and its lines in one transaction. Line
// totals default to price*num and the order total to the sum of the lines.
// Client supplied ids are discarded.
func (s *OrdersService) CreateOrderWithDetails(ctx context.Context, order *model.Orders, details []*model.OrderDetail) (*model.Orders, error) {
	if len(details) == 0 {
		return nil, ErrEmptyOrder
	}
	order.ID = 0
	var sum float64
	for _, d := range details {
		d.ID = 0
		d.FillTotal()
		sum += d.TotalMoney
	}
	if order.TotalMoney == 0 {
		order.TotalMoney = sum
	}

	err := s.orders.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := s.orders.CreateWithTx(ctx, &tx, order); err != nil {
			return err
		}
		for _, d := range details {
			d.OrderID = order.ID
		}
		return s.details.CreateWithTx(ctx, &tx, details...)
	})
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	order.Details = details
	log.WithField("order_id", order.ID).WithField("lines", len(details)).Info("order placed")
	return order, nil
}

type OrderDetailService struct {
	*CrudService[model.OrderDetail]
	details *repository.OrderDetailRepository
}

func NewOrderDetailService(db *bun.DB) *OrderDetailService {
	details := repository.NewOrderDetailRepository(db)
	return &OrderDetailService{
		CrudService: NewCrudService[model.OrderDetail](details, model.MergeOrderDetail, "order detail"),
		details:     details,
	}
}

// Create fills the line total from price and num when it is zero.
func (s *OrderDetailService) Create(ctx context.Context, d *model.OrderDetail) (*model.OrderDetail, error) {
	d.FillTotal()
	return s.CrudService.Create(ctx, d)
}

func (s *OrderDetailService) GetByOrder(ctx context.Context, orderID int64) ([]*model.OrderDetail, error) {
	details, err := s.details.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("details of order %d: %w", orderID, err)
	}
	return details, nil
}
