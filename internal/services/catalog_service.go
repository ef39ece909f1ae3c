package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/mrlokans/storefront/internal/catalog"
	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/metrics"
)

// CatalogService owns the single-record add path and catalog reads.
type CatalogService struct {
	store    CatalogStore
	pipeline *catalog.Pipeline
	metrics  *metrics.Registry
}

// NewCatalogService creates a CatalogService. metrics may be nil.
func NewCatalogService(store CatalogStore, pipelineOpts catalog.Options, reg *metrics.Registry) *CatalogService {
	return &CatalogService{
		store:    store,
		pipeline: catalog.NewPipeline(pipelineOpts),
		metrics:  reg,
	}
}

// AddBook resolves one raw record and appends it to the catalog. Unlike the
// bulk importer it refuses a SKU that is already present; on
// catalog.ErrDuplicateSKU or catalog.ErrMissingTitle the catalog is unchanged.
func (s *CatalogService) AddBook(rec catalog.RawRecord) (*entities.CatalogBook, []catalog.CoercionIssue, error) {
	book, issues, err := s.pipeline.ResolveOne(rec)
	if err != nil {
		return nil, nil, err
	}

	if err := s.store.CreateIfSKUAbsent(&book); err != nil {
		if errors.Is(err, catalog.ErrDuplicateSKU) && s.metrics != nil {
			s.metrics.DuplicateSKUs.Inc()
		}
		return nil, nil, err
	}

	if s.metrics != nil {
		s.metrics.BooksPersisted.Inc()
	}
	log.Printf("Added book %s (%s)", book.ID, book.Title)
	return &book, issues, nil
}

// GetBook returns one book or ErrBookNotFound.
func (s *CatalogService) GetBook(id string) (*entities.CatalogBook, error) {
	book, err := s.store.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load book %s: %w", id, err)
	}
	return book, nil
}

// FindBySKU returns the earliest book carrying sku or ErrBookNotFound.
func (s *CatalogService) FindBySKU(sku string) (*entities.CatalogBook, error) {
	book, err := s.store.FindBySKU(sku)
	if err != nil {
		return nil, fmt.Errorf("failed to look up SKU %s: %w", sku, err)
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	return book, nil
}

// ListBooks returns a page of the catalog and the total count.
func (s *CatalogService) ListBooks(limit, offset int) ([]entities.CatalogBook, int64, error) {
	return s.store.List(limit, offset)
}
