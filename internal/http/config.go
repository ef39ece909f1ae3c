package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/storefront/internal/catalog"
	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/metrics"
	"github.com/mrlokans/storefront/internal/services"
	"github.com/mrlokans/storefront/internal/tasks"
	"github.com/mrlokans/storefront/internal/woocommerce"
)

// BookCatalog reads the catalog and adds single books to it.
type BookCatalog interface {
	AddBook(rec catalog.RawRecord) (*entities.CatalogBook, []catalog.CoercionIssue, error)
	GetBook(id string) (*entities.CatalogBook, error)
	FindBySKU(sku string) (*entities.CatalogBook, error)
	ListBooks(limit, offset int) ([]entities.CatalogBook, int64, error)
}

// ImportRunner runs imports and exposes their history.
type ImportRunner interface {
	services.Importer
	GetImport(id string) (*entities.ImportSession, error)
	ListImports(limit, offset int) ([]entities.ImportSession, int64, error)
}

// TaskQueue runs store imports in the background.
type TaskQueue interface {
	EnqueueWooCommerceImport(task tasks.WooCommerceImportTask) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// HealthChecker reports storage connectivity.
type HealthChecker interface {
	Ping() error
}

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	Catalog  BookCatalog
	Importer ImportRunner

	// TaskQueue is optional; without it async store imports are refused.
	TaskQueue TaskQueue

	// Health is optional; nil reports the database as not configured.
	Health HealthChecker

	// Metrics is optional; nil leaves /metrics unregistered.
	Metrics *metrics.Registry

	// DefaultStore is used when a store import request omits credentials.
	DefaultStore woocommerce.Credentials

	// Application info
	Version string
}
