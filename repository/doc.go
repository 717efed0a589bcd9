// Package repository provides a generic bun repository for CRUD, paging,
// upsert and transactions, plus the entity specific queries of the shop.
package repository
