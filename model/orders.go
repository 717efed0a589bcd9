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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hongochai/shopbackend/types"
	"github.com/uptrace/bun"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus int

const (
	OrderPending OrderStatus = iota
	OrderProcessing
	OrderShipped

	orderStatusCount = 3
)

var orderStatusNames = [orderStatusCount]string{"pending", "processing", "shipped"}
var orderStatusDescs = [orderStatusCount]string{"Waiting for confirmation", "Being prepared", "Handed to the carrier"}

var _ types.BaseEnum = OrderStatus(0)

func (s OrderStatus) IsValid() bool { return s >= 0 && s < orderStatusCount }

func (s OrderStatus) Number() int {
	if !s.IsValid() {
		return types.UnknownNumber
	}
	return int(s)
}

func (s OrderStatus) Name() string {
	if !s.IsValid() {
		return types.UnknownName
	}
	return orderStatusNames[s]
}

func (s OrderStatus) String() string { return s.Name() }

func (s OrderStatus) Desc() string {
	if !s.IsValid() {
		return types.UnknownName
	}
	return orderStatusDescs[s]
}

// UnmarshalJSON accepts a number, a numeric string or a status name.
// Numbers outside the known range are kept so validation can reject them.
func (s *OrderStatus) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*s = OrderStatus(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("order status: %s is not a number or string", b)
	}
	str = strings.TrimSpace(str)
	if n, err := strconv.Atoi(str); err == nil {
		*s = OrderStatus(n)
		return nil
	}
	for i, name := range orderStatusNames {
		if strings.EqualFold(name, str) {
			*s = OrderStatus(i)
			return nil
		}
	}
	return fmt.Errorf("order status: unknown name %q", str)
}

// OrderStatusNames lists the valid status names in numeric order.
func OrderStatusNames() []string {
	return types.EnumNames(orderStatusCount, func(i int) OrderStatus { return OrderStatus(i) })
}

// Orders is a customer order. The buyer may be anonymous, in which case UserID
// is nil and the contact fields identify them.
type Orders struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID          int64       `bun:"id,pk,autoincrement" json:"id"`
	UserID      *int64      `bun:"user_id" json:"user_id"`
	Fullname    string      `bun:"fullname" json:"fullname" binding:"max=128"`
	Email       string      `bun:"email" json:"email" binding:"omitempty,email"`
	PhoneNumber string      `bun:"phone_number" json:"phone_number" binding:"max=32"`
	Address     string      `bun:"address" json:"address" binding:"max=255"`
	Note        string      `bun:"note" json:"note"`
	OrderDate   time.Time   `bun:"order_date,nullzero,notnull,default:current_timestamp" json:"order_date"`
	Status      OrderStatus `bun:"status,notnull,default:0" json:"status" binding:"orderstatus"`
	TotalMoney  float64     `bun:"total_money,notnull,default:0" json:"total_money" binding:"gte=0"`

	Details []*OrderDetail `bun:"rel:has-many,join:id=order_id" json:"details,omitempty"`
}

var _ bun.BeforeAppendModelHook = (*Orders)(nil)

func (o Orders) GetID() int64 { return o.ID }

func (o *Orders) SetID(id int64) { o.ID = id }

func (o *Orders) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	stampTimes(query, &o.OrderDate, nil)
	return nil
}

func MergeOrders(dst, src *Orders) {
	dst.UserID = src.UserID
	dst.Fullname = src.Fullname
	dst.Email = src.Email
	dst.PhoneNumber = src.PhoneNumber
	dst.Address = src.Address
	dst.Note = src.Note
	if !src.OrderDate.IsZero() {
		dst.OrderDate = src.OrderDate
	}
	dst.Status = src.Status
	dst.TotalMoney = src.TotalMoney
}

// CheckoutRequest places an order together with its lines.
type CheckoutRequest struct {
	Order   Orders         `json:"order" binding:"required"`
	Details []*OrderDetail `json:"details" binding:"required,min=1,dive"`
}
