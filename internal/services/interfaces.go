package services

import (
	"context"

	"github.com/mrlokans/storefront/internal/catalog"
	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/woocommerce"
)

// CatalogStore persists catalog books.
type CatalogStore interface {
	// Create inserts a book without any SKU check (bulk import path).
	Create(book *entities.CatalogBook) error
	// CreateIfSKUAbsent inserts a book or fails with catalog.ErrDuplicateSKU.
	CreateIfSKUAbsent(book *entities.CatalogBook) error
	GetByID(id string) (*entities.CatalogBook, error)
	// FindBySKU returns nil, nil when no book carries sku.
	FindBySKU(sku string) (*entities.CatalogBook, error)
	List(limit, offset int) ([]entities.CatalogBook, int64, error)
}

// ImportSessionStore persists import session history.
type ImportSessionStore interface {
	Create(session *entities.ImportSession) error
	Update(session *entities.ImportSession) error
	GetByID(id string) (*entities.ImportSession, error)
	List(limit, offset int) ([]entities.ImportSession, int64, error)
}

// PayloadArchiver keeps copies of uploaded payloads and import reports.
type PayloadArchiver interface {
	SaveRaw(data []byte, ext string) (string, error)
	SaveJSON(data any) (string, error)
}

// RemoteSourceFactory builds the catalog source for one store.
type RemoteSourceFactory func(creds woocommerce.Credentials) catalog.Source

// Importer runs bulk imports. Implemented by ImportService; used by the
// HTTP layer, the task queue and the scheduler.
type Importer interface {
	ImportCSV(ctx context.Context, content []byte, opts ImportOptions) (*ImportOutcome, error)
	ImportJSON(ctx context.Context, content []byte, opts ImportOptions) (*ImportOutcome, error)
	ImportWooCommerce(ctx context.Context, creds woocommerce.Credentials, opts ImportOptions) (*ImportOutcome, error)
}
