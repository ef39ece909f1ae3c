package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/storefront/internal/audit"
	"github.com/mrlokans/storefront/internal/catalog"
	"github.com/mrlokans/storefront/internal/database"
	"github.com/mrlokans/storefront/internal/database/books"
	"github.com/mrlokans/storefront/internal/database/imports"
	"github.com/mrlokans/storefront/internal/http"
	"github.com/mrlokans/storefront/internal/scheduler"
	"github.com/mrlokans/storefront/internal/services"
	"github.com/mrlokans/storefront/internal/tasks"
	"github.com/mrlokans/storefront/internal/woocommerce"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ services.CatalogStore = (*books.Repository)(nil)
var _ services.ImportSessionStore = (*imports.Repository)(nil)
var _ tasks.StaleImportMarker = (*imports.Repository)(nil)
var _ http.HealthChecker = (*database.Database)(nil)

// PayloadArchiver implementations
var _ services.PayloadArchiver = (*audit.Auditor)(nil)

// =============================================================================
// Import Pipeline
// =============================================================================

// Source implementations
var _ catalog.Source = (*catalog.DelimitedSource)(nil)
var _ catalog.Source = (*catalog.JSONSource)(nil)
var _ catalog.Source = (*woocommerce.Source)(nil)

// =============================================================================
// Services
// =============================================================================

var _ http.BookCatalog = (*services.CatalogService)(nil)
var _ http.ImportRunner = (*services.ImportService)(nil)

// =============================================================================
// Task Queue
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.ImportEnqueuer = (*tasks.Client)(nil)
