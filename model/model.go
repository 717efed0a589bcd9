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
	"time"

	"github.com/hongochai/shopbackend/database"
	"github.com/uptrace/bun"
)

// Entity is implemented by every persisted type.
type Entity interface {
	GetID() int64
}

// EntityPtr is the pointer form of an Entity whose id can be assigned, used
// where the id comes from outside the body (a request path).
type EntityPtr[T any] interface {
	*T
	Entity
	SetID(id int64)
}

// Table creation order: referenced tables first.
const (
	priorityRoot = iota + 1
	priorityOwned
	priorityLeaf
)

func init() {
	database.RegisterModel((*User)(nil), priorityRoot)
	database.RegisterModel((*Category)(nil), priorityRoot)
	database.RegisterModel((*Product)(nil), priorityOwned,
		fk("products", "category_id", "categories", "SET NULL"),
	)
	database.RegisterModel((*Orders)(nil), priorityOwned,
		fk("orders", "user_id", "users", "SET NULL"),
	)
	database.RegisterModel((*Token)(nil), priorityOwned,
		fk("tokens", "user_id", "users", "CASCADE"),
	)
	database.RegisterModel((*OrderDetail)(nil), priorityLeaf,
		fk("order_details", "order_id", "orders", "CASCADE"),
		fk("order_details", "product_id", "products", "RESTRICT"),
	)
	database.RegisterModel((*Sale)(nil), priorityLeaf,
		fk("sales", "product_id", "products", "CASCADE"),
	)

	database.RegisterIndexes(
		database.IndexDef{Table: "sales", Name: "idx_sales_sale_date", Columns: []string{"sale_date"}},
		database.IndexDef{Table: "tokens", Name: "idx_tokens_expires_at", Columns: []string{"expires_at"}},
		database.IndexDef{Table: "categories", Name: "idx_categories_name", Columns: []string{"name"}},
	)
}

func fk(table, column, refTable, onDelete string) database.ForeignKeyConstraint {
	return database.ForeignKeyConstraint{
		Table:           table,
		Column:          column,
		ReferenceTable:  refTable,
		ReferenceColumn: "id",
		OnDelete:        onDelete,
	}
}

// stampTimes sets created on insert when it is zero and updated on every write.
// Either pointer may be nil.
func stampTimes(query bun.Query, created, updated *time.Time) {
	now := time.Now()
	switch query.(type) {
	case *bun.InsertQuery:
		if created != nil && created.IsZero() {
			*created = now
		}
		if updated != nil {
			*updated = now
		}
	case *bun.UpdateQuery:
		if updated != nil {
			*updated = now
		}
	}
}
