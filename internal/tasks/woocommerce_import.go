package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/storefront/internal/services"
	"github.com/mrlokans/storefront/internal/woocommerce"
)

// WooCommerceImportTask imports every product of one store.
type WooCommerceImportTask struct {
	URL            string `json:"url"`
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
	DryRun         bool   `json:"dry_run"`
	Strict         *bool  `json:"strict,omitempty"`
	// Trigger records what enqueued the task ("api", "schedule").
	Trigger string `json:"trigger,omitempty"`
}

// Config returns the queue configuration for store import tasks.
func (t WooCommerceImportTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "woocommerce_import",
		MaxAttempts: 2,
		Backoff:     5 * time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// WooCommerceImportProcessor creates a processor function for WooCommerceImportTask.
func WooCommerceImportProcessor(importer services.Importer) backlite.QueueProcessor[WooCommerceImportTask] {
	return func(ctx context.Context, task WooCommerceImportTask) error {
		if importer == nil {
			return fmt.Errorf("importer not configured")
		}

		creds := woocommerce.Credentials{
			BaseURL:        task.URL,
			ConsumerKey:    task.ConsumerKey,
			ConsumerSecret: task.ConsumerSecret,
		}
		outcome, err := importer.ImportWooCommerce(ctx, creds, services.ImportOptions{
			DryRun: task.DryRun,
			Strict: task.Strict,
		})
		if err != nil {
			return fmt.Errorf("import %s: %w", task.URL, err)
		}

		log.Printf("[TASK] Imported %s (%s): %d accepted, %d rejected, %d persisted",
			task.URL, task.Trigger, outcome.Session.Accepted, outcome.Session.Rejected, outcome.Session.Persisted)
		return nil
	}
}

// NewWooCommerceImportQueue creates a backlite queue for store imports.
func NewWooCommerceImportQueue(importer services.Importer) backlite.Queue {
	return backlite.NewQueue(WooCommerceImportProcessor(importer))
}
