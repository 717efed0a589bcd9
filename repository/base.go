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
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hongochai/shopbackend/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
)

type bunRepository[T any] struct {
	db *bun.DB
}

// NewRepository returns a generic repository backed by the provided bun DB.
func NewRepository[T any](db *bun.DB) Repository[T] {
	return &bunRepository[T]{db: db}
}

func (r *bunRepository[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *bunRepository[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *bunRepository[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate() }

func (r *bunRepository[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *bunRepository[T]) conn(tx *bun.Tx) bun.IDB {
	if tx != nil {
		return *tx
	}
	return r.db
}

// notFound maps sql.ErrNoRows to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *bunRepository[T]) GetOne(ctx context.Context, id any) (*T, error) {
	entity := new(T)
	err := r.db.NewSelect().Model(entity).Where("?TableAlias.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return entity, nil
}

func (r *bunRepository[T]) GetAll(ctx context.Context) ([]*T, error) {
	entities := make([]*T, 0)
	err := r.db.NewSelect().Model(&entities).OrderExpr("?TableAlias.id ASC").Scan(ctx)
	return entities, err
}

func (r *bunRepository[T]) List(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	entities := make([]*T, 0)
	query := r.db.NewSelect().Model(&entities)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	if err := query.OrderExpr("?TableAlias.id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *bunRepository[T]) Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[T], error) {
	entities := make([]*T, 0)
	query := r.db.NewSelect().Model(&entities)
	if f := pageRequest.GetFilter(); f != nil {
		query = query.Where(f.Schema, f.Args...)
	}
	pagination := types.NewPagination[T](pageRequest.GetPage(), pageRequest.GetPageSize())
	total, err := query.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}
	for _, order := range pageRequest.GetOrders() {
		query = query.OrderExpr(order)
	}
	err = query.
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (r *bunRepository[T]) Create(ctx context.Context, entity ...*T) error {
	return r.create(ctx, r.db, entity)
}

func (r *bunRepository[T]) CreateWithTx(ctx context.Context, tx *bun.Tx, entity ...*T) error {
	return r.create(ctx, r.conn(tx), entity)
}

// create inserts a single entity through its own pointer so every dialect
// writes the generated id back, and batches otherwise.
func (r *bunRepository[T]) create(ctx context.Context, db bun.IDB, entities []*T) error {
	switch len(entities) {
	case 0:
		return nil
	case 1:
		_, err := db.NewInsert().Model(entities[0]).Exec(ctx)
		return err
	default:
		_, err := db.NewInsert().Model(&entities).Exec(ctx)
		return err
	}
}

func (r *bunRepository[T]) Update(ctx context.Context, entity *T) error {
	return r.UpdateWithTx(ctx, nil, entity)
}

func (r *bunRepository[T]) UpdateWithTx(ctx context.Context, tx *bun.Tx, entity *T) error {
	_, err := r.conn(tx).NewUpdate().Model(entity).WherePK().Exec(ctx)
	return err
}

func (r *bunRepository[T]) Delete(ctx context.Context, id any) error {
	return r.DeleteWithTx(ctx, nil, id)
}

func (r *bunRepository[T]) DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error {
	res, err := r.conn(tx).NewDelete().Model((*T)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *bunRepository[T]) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	return r.db.RunInTx(ctx, nil, fn)
}

func (r *bunRepository[T]) UpsertWithTx(ctx context.Context, tx *bun.Tx, fields []string, duplicateKeys []string, entity ...*T) error {
	return r.multipleUpsert(ctx, tx, fields, duplicateKeys, entity...)
}

func (r *bunRepository[T]) multipleUpsert(ctx context.Context, tx *bun.Tx, fields []string, duplicateKeys []string, entity ...*T) error {
	if len(fields) == 0 {
		return fmt.Errorf("fields cannot be empty")
	}
	if len(entity) == 0 {
		return nil
	}
	db := r.conn(tx)
	entities := append([]*T(nil), entity...)

	switch {
	case r.db.HasFeature(feature.InsertOnConflict):
		return upsertOnConflict(ctx, db.NewInsert(), fields, duplicateKeys, entities)
	case r.db.HasFeature(feature.InsertOnDuplicateKey):
		return upsertOnDuplicateKey(ctx, db.NewInsert(), fields, entities)
	default:
		return upsertFallback(ctx, db, entities)
	}
}

func upsertOnDuplicateKey[T any](ctx context.Context, insertQuery *bun.InsertQuery, fields []string, entities []*T) error {
	assignments := make([]string, 0, len(fields))
	for _, field := range fields {
		assignments = append(assignments, fmt.Sprintf("%[1]s = VALUES(%[1]s)", field))
	}
	_, err := insertQuery.
		Model(&entities).
		On("DUPLICATE KEY UPDATE " + strings.Join(assignments, ", ")).
		Exec(ctx)
	return err
}

func upsertOnConflict[T any](ctx context.Context, insertQuery *bun.InsertQuery, fields []string, duplicateKeys []string, entities []*T) error {
	if len(duplicateKeys) == 0 {
		duplicateKeys = []string{"id"}
	}
	assignments := make([]string, 0, len(fields))
	for _, field := range fields {
		assignments = append(assignments, fmt.Sprintf("%[1]s = EXCLUDED.%[1]s", field))
	}
	_, err := insertQuery.
		Model(&entities).
		On("CONFLICT (" + strings.Join(duplicateKeys, ",") + ") DO UPDATE").
		Set(strings.Join(assignments, ", ")).
		Exec(ctx)
	return err
}

func upsertFallback[T any](ctx context.Context, db bun.IDB, entities []*T) error {
	for _, entity := range entities {
		if _, err := db.NewInsert().Model(entity).Exec(ctx); err != nil {
			if _, updateErr := db.NewUpdate().Model(entity).WherePK().Exec(ctx); updateErr != nil {
				return fmt.Errorf("upsert failed: insert error: %v, update error: %w", err, updateErr)
			}
		}
	}
	return nil
}
