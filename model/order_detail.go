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
	"github.com/uptrace/bun"
)

// OrderDetail is one line of an order.
type OrderDetail struct {
	bun.BaseModel `bun:"table:order_details,alias:od"`

	ID         int64   `bun:"id,pk,autoincrement" json:"id"`
	OrderID    int64   `bun:"order_id,notnull" json:"order_id"`
	ProductID  int64   `bun:"product_id,notnull" json:"product_id" binding:"required"`
	Price      float64 `bun:"price,notnull,default:0" json:"price" binding:"gte=0"`
	Num        int     `bun:"num,notnull,default:0" json:"num" binding:"gte=0"`
	TotalMoney float64 `bun:"total_money,notnull,default:0" json:"total_money" binding:"gte=0"`

	Order   *Orders  `bun:"rel:belongs-to,join:order_id=id" json:"order,omitempty"`
	Product *Product `bun:"rel:belongs-to,join:product_id=id" json:"product,omitempty"`
}

func (d OrderDetail) GetID() int64 { return d.ID }

func (d *OrderDetail) SetID(id int64) { d.ID = id }

// FillTotal sets TotalMoney to Price*Num when it was left at zero.
func (d *OrderDetail) FillTotal() {
	if d.TotalMoney == 0 {
		d.TotalMoney = d.Price * float64(d.Num)
	}
}

// MergeOrderDetail copies price, num, total money and the order and product
// references.
func MergeOrderDetail(dst, src *OrderDetail) {
	dst.Price = src.Price
	dst.Num = src.Num
	dst.TotalMoney = src.TotalMoney
	dst.OrderID = src.OrderID
	dst.ProductID = src.ProductID
}
