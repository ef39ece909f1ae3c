package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/mrlokans/storefront/internal/audit"
	"github.com/mrlokans/storefront/internal/catalog"
	"github.com/mrlokans/storefront/internal/config"
	"github.com/mrlokans/storefront/internal/database"
	"github.com/mrlokans/storefront/internal/database/books"
	"github.com/mrlokans/storefront/internal/database/imports"
	"github.com/mrlokans/storefront/internal/services"
	"github.com/mrlokans/storefront/internal/woocommerce"
)

// importEnv is the database-backed import service a command runs against.
type importEnv struct {
	db       *database.Database
	books    *books.Repository
	importer *services.ImportService
}

func openImportEnv(cfg *config.Config, dbPath, auditDir string) (*importEnv, error) {
	absDBPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	client := woocommerce.NewClient(cfg.WooCommerce.Timeout, cfg.WooCommerce.ResourcePath)
	remote := func(creds woocommerce.Credentials) catalog.Source {
		return woocommerce.NewSource(client, creds)
	}

	booksRepo := books.NewRepository(db.DB)
	importer := services.NewImportService(
		booksRepo,
		imports.NewRepository(db.DB),
		services.ImportConfig{
			PlaceholderImage: cfg.Import.PlaceholderImage,
			LocaleMarkers:    cfg.Import.LocaleMarkers,
			Strict:           cfg.Import.StrictMode,
		},
		remote,
	)
	if auditDir != "" {
		importer.WithArchiver(audit.NewAuditor(auditDir))
	}

	return &importEnv{db: db, books: booksRepo, importer: importer}, nil
}

func (e *importEnv) Close() error {
	return e.db.Close()
}

func (e *importEnv) printCatalogSize() {
	total, err := e.books.Count()
	if err != nil {
		fmt.Printf("Catalog size: unknown (%v)\n", err)
		return
	}
	fmt.Printf("Catalog size: %d books\n", total)
}

func printOutcome(outcome *services.ImportOutcome, verbose bool) {
	session := outcome.Session
	report := outcome.Report

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Import ID: %s\n", session.ID)
	fmt.Printf("Records read: %d\n", session.RecordsRead)
	fmt.Printf("Accepted: %d\n", session.Accepted)
	fmt.Printf("Rejected: %d\n", session.Rejected)
	if session.DryRun {
		fmt.Println("Saved: 0 (dry run)")
	} else {
		fmt.Printf("Saved: %d/%d\n", session.Persisted, session.Accepted)
	}
	if session.ReassignedIDs > 0 {
		fmt.Printf("Reassigned IDs: %d\n", session.ReassignedIDs)
	}
	if session.Partial() {
		fmt.Printf("Partial fetch: retrieved %d of %d available\n", session.Retrieved, session.TotalAvailable)
	}

	if report == nil {
		return
	}
	if len(report.CoercionIssues) > 0 {
		fmt.Printf("\n%d values could not be coerced:\n", len(report.CoercionIssues))
		for _, issue := range report.CoercionIssues {
			fmt.Printf("  [WARN] record %d: %s = %q\n", issue.Index, issue.Field, issue.Raw)
		}
	}
	if verbose {
		for _, rejection := range report.Rejections {
			fmt.Printf("  [REJECTED] record %d: %s\n", rejection.Index, rejection.Reason)
		}
		for _, warning := range report.Warnings {
			fmt.Printf("  [WARN] %s\n", warning)
		}
		for _, book := range report.Accepted {
			fmt.Printf("  -> %s \"%s\" by %s\n", book.ID, book.Title, book.Author)
		}
	}
	fmt.Printf("\nCompleted in %v\n", report.CompletedAt.Sub(report.StartedAt).Round(time.Millisecond))
}
