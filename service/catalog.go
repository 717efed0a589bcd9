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
	"github.com/uptrace/bun"
)

type CategoryService struct {
	*CrudService[model.Category]
	categories *repository.CategoryRepository
}

func NewCategoryService(db *bun.DB) *CategoryService {
	categories := repository.NewCategoryRepository(db)
	return &CategoryService{
		CrudService: NewCrudService[model.Category](categories, model.MergeCategory, "category"),
		categories:  categories,
	}
}

// SearchCategoriesByName returns categories whose name contains name,
// ignoring case, ordered by id.
func (s *CategoryService) SearchCategoriesByName(ctx context.Context, name string) ([]*model.Category, error) {
	found, err := s.categories.SearchByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("search categories %q: %w", name, err)
	}
	return found, nil
}

type ProductService struct {
	*CrudService[model.Product]
	products *repository.ProductRepository
}

func NewProductService(db *bun.DB) *ProductService {
	products := repository.NewProductRepository(db)
	return &ProductService{
		CrudService: NewCrudService[model.Product](products, model.MergeProduct, "product"),
		products:    products,
	}
}

// GetByID loads the product with its category.
func (s *ProductService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	p, err := s.products.FindWithCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (s *ProductService) GetByCategory(ctx context.Context, categoryID int64) ([]*model.Product, error) {
	products, err := s.products.FindByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products of category %d: %w", categoryID, err)
	}
	return products, nil
}

type SaleService struct {
	*CrudService[model.Sale]
	sales *repository.SaleRepository
}

func NewSaleService(db *bun.DB) *SaleService {
	sales := repository.NewSaleRepository(db)
	return &SaleService{
		CrudService: NewCrudService[model.Sale](sales, model.MergeSale, "sale"),
		sales:       sales,
	}
}

// GetRecentSales returns every sale ordered by sale date, newest first.
func (s *SaleService) GetRecentSales(ctx context.Context) ([]*model.Sale, error) {
	sales, err := s.sales.FindAllOrderBySaleDateDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("recent sales: %w", err)
	}
	return sales, nil
}

var saleImportColumns = []string{"product_id", "quantity_sold", "sale_date", "thumbnail"}

// ImportSales saves a batch of sales in one transaction. Sales without an id
// are inserted; sales with an id overwrite the stored row, or are inserted
// under that id when it is unknown.
func (s *SaleService) ImportSales(ctx context.Context, sales []*model.Sale) ([]*model.Sale, error) {
	var fresh, known []*model.Sale
	for _, sale := range sales {
		if sale.ID <= 0 {
			sale.ID = 0
			fresh = append(fresh, sale)
		} else {
			known = append(known, sale)
		}
	}
	err := s.sales.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := s.sales.CreateWithTx(ctx, &tx, fresh...); err != nil {
			return err
		}
		if len(known) == 0 {
			return nil
		}
		return s.sales.UpsertWithTx(ctx, &tx, saleImportColumns, []string{"id"}, known...)
	})
	if err != nil {
		return nil, fmt.Errorf("import %d sales: %w", len(sales), err)
	}
	return sales, nil
}
