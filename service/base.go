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
	"fmt"

	"github.com/hongochai/shopbackend/model"
	"github.com/hongochai/shopbackend/repository"
	"github.com/hongochai/shopbackend/types"
)

// Service is the CRUD contract every entity service provides.
type Service[T model.Entity] interface {
	// Create persists e and returns it with its assigned id.
	Create(ctx context.Context, e *T) (*T, error)

	// GetByID returns repository.ErrNotFound when the id is unknown.
	GetByID(ctx context.Context, id int64) (*T, error)

	// GetAll returns the whole collection ordered by id.
	GetAll(ctx context.Context) ([]*T, error)

	// Page returns one page of the collection ordered by id.
	Page(ctx context.Context, page, size int) (*types.Pagination[T], error)

	// Update copies the mutable fields of e onto the stored row with e's id
	// and returns the merged row.
	Update(ctx context.Context, e *T) (*T, error)

	// Delete returns repository.ErrNotFound when nothing was deleted.
	Delete(ctx context.Context, id int64) error
}

// MergeFunc copies the mutable fields of src into dst.
type MergeFunc[T any] func(dst, src *T)

// CrudService implements Service over a generic repository.
type CrudService[T model.Entity] struct {
	repo  repository.Repository[T]
	merge MergeFunc[T]
	name  string
}

var _ Service[model.Sale] = (*CrudService[model.Sale])(nil)

// NewCrudService returns a service for repo; name is used in error messages.
func NewCrudService[T model.Entity](repo repository.Repository[T], merge MergeFunc[T], name string) *CrudService[T] {
	return &CrudService[T]{repo: repo, merge: merge, name: name}
}

// Repo exposes the underlying repository.
func (s *CrudService[T]) Repo() repository.Repository[T] {
	return s.repo
}

func (s *CrudService[T]) Create(ctx context.Context, e *T) (*T, error) {
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.name, err)
	}
	return e, nil
}

func (s *CrudService[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	e, err := s.repo.GetOne(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", s.name, id, err)
	}
	return e, nil
}

func (s *CrudService[T]) GetAll(ctx context.Context) ([]*T, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.name, err)
	}
	return all, nil
}

func (s *CrudService[T]) Page(ctx context.Context, page, size int) (*types.Pagination[T], error) {
	p, err := s.repo.Page(ctx, types.NewPageRequest(page, size))
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", s.name, err)
	}
	return p, nil
}

func (s *CrudService[T]) Update(ctx context.Context, e *T) (*T, error) {
	id := (*e).GetID()
	existing, err := s.repo.GetOne(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update %s %d: %w", s.name, id, err)
	}
	s.merge(existing, e)
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("update %s %d: %w", s.name, id, err)
	}
	return existing, nil
}

func (s *CrudService[T]) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", s.name, id, err)
	}
	return nil
}
