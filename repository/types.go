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
	"errors"

	"github.com/hongochai/shopbackend/types"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when no row matches the requested id.
var ErrNotFound = errors.New("record not found")

// Reader loads entities of one table.
type Reader[T any] interface {
	// GetOne returns ErrNotFound when no row has the id.
	GetOne(ctx context.Context, id any) (*T, error)
	// GetAll returns every row ordered by id.
	GetAll(ctx context.Context) ([]*T, error)
	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)
}

// Writer changes rows of one table. A nil tx runs on the database directly.
type Writer[T any] interface {
	// Create inserts the entities and fills in their generated ids.
	Create(ctx context.Context, entity ...*T) error
	CreateWithTx(ctx context.Context, tx *bun.Tx, entity ...*T) error
	UpsertWithTx(ctx context.Context, tx *bun.Tx, fields []string, duplicateKeys []string, entity ...*T) error
	Update(ctx context.Context, entity *T) error
	UpdateWithTx(ctx context.Context, tx *bun.Tx, entity *T) error
	// Delete returns ErrNotFound when nothing was deleted.
	Delete(ctx context.Context, id any) error
	DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error
}

// Repository is the generic table access used by services. The query
// builders back the entity specific finders.
type Repository[T any] interface {
	Reader[T]
	Writer[T]
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
