// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - CatalogStore: Book persistence (internal/services/interfaces.go)
//   - ImportSessionStore: Import history (internal/services/interfaces.go)
//   - PayloadArchiver: Raw upload and report archive (internal/services/interfaces.go)
//   - StaleImportMarker: Interrupted import cleanup (internal/tasks/mark_stale_imports.go)
//
// ## Import Pipeline Interfaces
//
//   - catalog.Source: Produces a batch of raw records (internal/catalog/reader.go)
//   - services.Importer: Runs an import end to end (internal/services/interfaces.go)
//
// ## HTTP Interfaces
//
//   - BookCatalog, ImportRunner, TaskQueue, HealthChecker (internal/http/config.go)
//
// # Adding a New Import Source
//
//  1. Implement catalog.Source in a new package. Read returns every raw
//     record of the origin, or an error wrapping catalog.ErrInvalidSourceFormat
//     or catalog.ErrSourceUnreachable.
//  2. Add an Origin constant in internal/catalog/reader.go.
//  3. Expose it through ImportService.Run with a thin ImportX method.
//  4. Add a compile-time check to checks.go.
package interfaces
