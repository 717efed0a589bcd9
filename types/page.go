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

package types

import "math"

// QueryFilter is a WHERE expression with its bun placeholders' arguments.
type QueryFilter struct {
	Schema string
	Args   []any
}

func NewQueryFilter(schema string, args ...any) *QueryFilter {
	return &QueryFilter{Schema: schema, Args: args}
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps GetOffset within int.
	MaxPage = math.MaxInt/MaxPageSize + 1
)

// PageRequest selects one page of a listing. Page numbers start at 1; out of
// range values are clamped when read.
type PageRequest struct {
	page   int
	size   int
	filter *QueryFilter
	orders []string
}

// NewPageRequest returns a request for page of size rows ordered by id.
func NewPageRequest(page, size int) *PageRequest {
	return &PageRequest{page: page, size: size}
}

// WithFilter restricts the page to rows matching f.
func (p *PageRequest) WithFilter(f *QueryFilter) *PageRequest {
	p.filter = f
	return p
}

// OrderBy replaces the ordering, e.g. "sale_date DESC".
func (p *PageRequest) OrderBy(orders ...string) *PageRequest {
	p.orders = orders
	return p
}

func (p *PageRequest) GetPage() int {
	return min(max(p.page, 1), MaxPage)
}

func (p *PageRequest) GetPageSize() int {
	if p.size < 1 {
		return DefaultPageSize
	}
	return min(p.size, MaxPageSize)
}

func (p *PageRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

func (p *PageRequest) GetFilter() *QueryFilter {
	return p.filter
}

func (p *PageRequest) GetOrders() []string {
	if len(p.orders) == 0 {
		return []string{"id ASC"}
	}
	return p.orders
}

// Pagination is one page of items plus the size of the whole listing.
type Pagination[T any] struct {
	Page     int  `json:"page"`
	PageSize int  `json:"size"`
	Total    int  `json:"total"`
	Items    []*T `json:"items"`
}

func (p *Pagination[T]) TotalPages() int {
	if p.PageSize < 1 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// NewPagination returns an empty page.
func NewPagination[T any](page, size int) *Pagination[T] {
	return &Pagination[T]{Page: page, PageSize: size, Items: []*T{}}
}
