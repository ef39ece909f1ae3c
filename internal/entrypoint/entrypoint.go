package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storefront/internal/audit"
	"github.com/mrlokans/storefront/internal/catalog"
	"github.com/mrlokans/storefront/internal/config"
	"github.com/mrlokans/storefront/internal/database"
	"github.com/mrlokans/storefront/internal/database/books"
	"github.com/mrlokans/storefront/internal/database/imports"
	http_controllers "github.com/mrlokans/storefront/internal/http"
	"github.com/mrlokans/storefront/internal/metrics"
	"github.com/mrlokans/storefront/internal/scheduler"
	"github.com/mrlokans/storefront/internal/services"
	"github.com/mrlokans/storefront/internal/tasks"
	"github.com/mrlokans/storefront/internal/woocommerce"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Storefront v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	booksRepo := books.NewRepository(db.DB)
	sessionsRepo := imports.NewRepository(db.DB)

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	wooClient := woocommerce.NewClient(cfg.WooCommerce.Timeout, cfg.WooCommerce.ResourcePath)
	remote := func(creds woocommerce.Credentials) catalog.Source {
		return woocommerce.NewSource(wooClient, creds)
	}

	importConfig := services.ImportConfig{
		PlaceholderImage: cfg.Import.PlaceholderImage,
		LocaleMarkers:    cfg.Import.LocaleMarkers,
		Strict:           cfg.Import.StrictMode,
	}
	importService := services.NewImportService(booksRepo, sessionsRepo, importConfig, remote).WithMetrics(reg)
	if cfg.Audit.Dir != "" {
		// Archive raw uploads and failed import reports
		importService.WithArchiver(audit.NewAuditor(cfg.Audit.Dir))
	}
	catalogService := services.NewCatalogService(booksRepo, catalog.Options{
		PlaceholderImage: importConfig.PlaceholderImage,
		LocaleMarkers:    importConfig.LocaleMarkers,
		Strict:           importConfig.Strict,
	}, reg)

	// No session of a previous process can still be running.
	startedAt := time.Now()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewWooCommerceImportQueue(importService),
			tasks.NewMarkStaleImportsQueue(sessionsRepo),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		if _, err := taskClient.Add(tasks.MarkStaleImportsTask{StartedBefore: startedAt}).Save(); err != nil {
			log.Printf("WARNING: Failed to enqueue stale import cleanup: %v", err)
		}
	} else if n, err := sessionsRepo.MarkStaleRunningFailed(startedAt); err != nil {
		log.Printf("WARNING: Failed to mark stale imports: %v", err)
	} else if n > 0 {
		log.Printf("Marked %d interrupted import sessions as failed", n)
	}

	// Periodic store sync
	syncCfg := scheduler.SyncConfig{
		Enabled:  cfg.WooCommerceSync.Enabled,
		Schedule: cfg.WooCommerceSync.Schedule,
		Credentials: woocommerce.Credentials{
			BaseURL:        cfg.WooCommerce.URL,
			ConsumerKey:    cfg.WooCommerce.ConsumerKey,
			ConsumerSecret: cfg.WooCommerce.ConsumerSecret,
		},
	}
	var enqueuer scheduler.ImportEnqueuer
	if taskClient != nil {
		enqueuer = taskClient
	}
	syncScheduler := scheduler.NewWooCommerceSyncScheduler(syncCfg, importService, enqueuer)
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	if err := syncScheduler.Start(schedulerCtx); err != nil {
		log.Printf("WARNING: Failed to start WooCommerce sync scheduler: %v", err)
	}

	if !cfg.HasWooCommerceCredentials() {
		log.Printf("WARNING: WooCommerce credentials are not set. Store imports must pass credentials in the request body.")
	}

	routerCfg := http_controllers.RouterConfig{
		Catalog:      catalogService,
		Importer:     importService,
		Health:       db,
		Metrics:      reg,
		DefaultStore: syncCfg.Credentials,
		Version:      version,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		schedulerCancel()
		syncScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
