// Package books provides database operations for the catalog.
//
// This package implements the CatalogStore interface defined in
// internal/services/interfaces.go.
//
// # Interface Implementation
//
//	var _ services.CatalogStore = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetByID("book-1700000000000-1-3f2a9c1b")
package books

import (
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/mrlokans/storefront/internal/catalog"
	"github.com/mrlokans/storefront/internal/entities"
)

const defaultListLimit = 50

// Repository handles all catalog book database operations.
type Repository struct {
	db *gorm.DB

	// skuMu serializes the check-then-insert of CreateIfSKUAbsent.
	skuMu sync.Mutex
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a single book. It performs no SKU check.
func (r *Repository) Create(book *entities.CatalogBook) error {
	return r.db.Create(book).Error
}

// CreateIfSKUAbsent inserts book unless another book already carries its
// SKU, in which case catalog.ErrDuplicateSKU is returned and nothing is
// written. Books without a SKU are always inserted.
func (r *Repository) CreateIfSKUAbsent(book *entities.CatalogBook) error {
	r.skuMu.Lock()
	defer r.skuMu.Unlock()

	return r.db.Transaction(func(tx *gorm.DB) error {
		if book.SKU != nil && *book.SKU != "" {
			var count int64
			if err := tx.Model(&entities.CatalogBook{}).Where("sku = ?", *book.SKU).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check sku: %w", err)
			}
			if count > 0 {
				return fmt.Errorf("%w: %s", catalog.ErrDuplicateSKU, *book.SKU)
			}
		}
		return tx.Create(book).Error
	})
}

// GetByID retrieves a book by its identifier.
func (r *Repository) GetByID(id string) (*entities.CatalogBook, error) {
	var book entities.CatalogBook
	err := r.db.Where("id = ?", id).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// FindBySKU returns the first book carrying sku, or nil when there is none.
func (r *Repository) FindBySKU(sku string) (*entities.CatalogBook, error) {
	var book entities.CatalogBook
	err := r.db.Where("sku = ?", sku).Order("created_at ASC").First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// List returns a page of books in insertion order along with the total count.
func (r *Repository) List(limit, offset int) ([]entities.CatalogBook, int64, error) {
	var books []entities.CatalogBook
	var total int64

	if err := r.db.Model(&entities.CatalogBook{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	err := r.db.Order("created_at ASC, id ASC").Limit(limit).Offset(offset).Find(&books).Error
	return books, total, err
}

// Count returns the number of books in the catalog.
func (r *Repository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&entities.CatalogBook{}).Count(&total).Error
	return total, err
}
