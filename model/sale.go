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
	"time"

	"github.com/uptrace/bun"
)

// Sale records a quantity of a product sold at a point in time.
type Sale struct {
	bun.BaseModel `bun:"table:sales,alias:s"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	ProductID    int64     `bun:"product_id,notnull" json:"product_id" binding:"required"`
	QuantitySold int       `bun:"quantity_sold,notnull,default:0" json:"quantity_sold" binding:"gte=0"`
	SaleDate     time.Time `bun:"sale_date,nullzero,notnull,default:current_timestamp" json:"sale_date"`
	Thumbnail    string    `bun:"thumbnail" json:"thumbnail"`

	Product *Product `bun:"rel:belongs-to,join:product_id=id" json:"product,omitempty"`
}

var _ bun.BeforeAppendModelHook = (*Sale)(nil)

func (s Sale) GetID() int64 { return s.ID }

func (s *Sale) SetID(id int64) { s.ID = id }

// BeforeAppendModel defaults SaleDate to now on insert.
func (s *Sale) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	stampTimes(query, &s.SaleDate, nil)
	return nil
}

// MergeSale copies product, quantity sold, sale date and thumbnail.
func MergeSale(dst, src *Sale) {
	dst.ProductID = src.ProductID
	dst.QuantitySold = src.QuantitySold
	dst.SaleDate = src.SaleDate
	dst.Thumbnail = src.Thumbnail
}
