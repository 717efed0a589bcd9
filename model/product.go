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

	"github.com/hongochai/shopbackend/types"
	"github.com/uptrace/bun"
)

type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID          int64            `bun:"id,pk,autoincrement" json:"id"`
	Title       string           `bun:"title,notnull" json:"title" binding:"required,max=255"`
	Description string           `bun:"description" json:"description"`
	Price       float64          `bun:"price,notnull,default:0" json:"price" binding:"gte=0"`
	Quantity    int              `bun:"quantity,notnull,default:0" json:"quantity" binding:"gte=0"`
	Thumbnail   string           `bun:"thumbnail" json:"thumbnail"`
	CategoryID  *int64           `bun:"category_id" json:"category_id"`
	Specs       types.JsonObject `bun:"specs,type:text" json:"specs,omitempty"`
	CreatedAt   time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time        `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Category *Category `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
}

var _ bun.BeforeAppendModelHook = (*Product)(nil)

func (p Product) GetID() int64 { return p.ID }

func (p *Product) SetID(id int64) { p.ID = id }

func (p *Product) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	stampTimes(query, &p.CreatedAt, &p.UpdatedAt)
	return nil
}

func MergeProduct(dst, src *Product) {
	dst.Title = src.Title
	dst.Description = src.Description
	dst.Price = src.Price
	dst.Quantity = src.Quantity
	dst.Thumbnail = src.Thumbnail
	dst.CategoryID = src.CategoryID
	dst.Specs = src.Specs
}
