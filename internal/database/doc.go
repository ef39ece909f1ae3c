// Package database provides the data access layer for the catalog.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── books/           # Catalog book storage
//	└── imports/         # Import session history
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./catalog.db")
//
//	booksRepo := books.NewRepository(db.DB)
//	importsRepo := imports.NewRepository(db.DB)
//
//	book, err := booksRepo.GetByID("book-1700000000000-1-3f2a9c1b")
//
// # Interface Implementations
//
//   - books.Repository: implements services.CatalogStore
//   - imports.Repository: implements services.ImportSessionStore
package database
