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

	"github.com/gosimple/slug"
	"github.com/uptrace/bun"
)

type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Name        string    `bun:"name,notnull" json:"name" binding:"required,max=128"`
	Slug        string    `bun:"slug" json:"slug"`
	Description string    `bun:"description" json:"description"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

var _ bun.BeforeAppendModelHook = (*Category)(nil)

func (c Category) GetID() int64 { return c.ID }

func (c *Category) SetID(id int64) { c.ID = id }

// BeforeAppendModel derives the slug from the name on every write.
func (c *Category) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	stampTimes(query, &c.CreatedAt, nil)
	c.Slug = slug.Make(c.Name)
	return nil
}

func MergeCategory(dst, src *Category) {
	dst.Name = src.Name
	dst.Description = src.Description
}
